package game

// runEffect applies one effect of the card being played. Effects that need a
// decision push an order and stop there, the rest happens when it's answered.
func (g *GameState) runEffect(p *Player, e Effect) {
	switch e := e.(type) {
	case EffectCards:
		p.DrawCards(e.N)
	case EffectActions:
		p.Actions += e.N
	case EffectBuys:
		p.Buys += e.N
	case EffectTreasure:
		p.Treasure += e.N
	case EffectOthersDraw:
		for _, o := range g.others() {
			o.DrawCards(e.N)
		}
	case EffectCurseOthers:
		for _, o := range g.others() {
			if o.handHas(Reaction) {
				continue
			}
			if g.board.Take("Curse") == nil {
				o.Gain("Curse", false)
			}
		}
	case EffectTrash:
		g.orderTrash(p, e)
	case EffectCellar:
		g.orderCellar(p)
	case EffectGain:
		g.orderGain(p, ChooseFromBoard{MaxCost: e.MaxCost, Filter: e.Filter, ToHand: e.ToHand})
	case EffectUpgrade:
		g.orderUpgrade(p, e)
	case EffectTopDeck:
		g.orderTopDeck(p)
	case EffectTrashFor:
		if i := p.Hand.Index(e.Card); i >= 0 {
			trashed, _ := p.TrashCards(FromHand, []int{i})
			g.board.AddTrash(trashed...)
			p.Treasure += e.Treasure
		}
	case EffectSentry:
		g.orderSentry(p, e.N)
	case EffectVassal:
		g.orderVassal(p)
	}
}

// others is every other player, in turn order from the current one.
func (g *GameState) others() []*Player {
	var out []*Player
	for i := 1; i < len(g.order); i++ {
		out = append(out, g.players[g.order[(g.current+i)%len(g.order)]])
	}
	return out
}

// chosenIndices checks an answer to a choose order.
func chosenIndices(d Decision, min, max, size int) ([]int, error) {
	cc, ok := d.(ChooseCards)
	if !ok {
		return nil, ErrInvalidChoice
	}
	if len(cc.Indices) < min || len(cc.Indices) > max {
		return nil, ErrInvalidChoice
	}
	if !validIndices(cc.Indices, size) {
		return nil, ErrInvalidCardAccess
	}
	return cc.Indices, nil
}

func (g *GameState) orderTrash(p *Player, e EffectTrash) {
	if len(p.Hand) == 0 {
		return
	}
	o := ChooseFromHand{
		Min:    min(e.Min, len(p.Hand)),
		Max:    min(e.Max, len(p.Hand)),
		Choice: ChoiceTrash,
	}
	g.push(p.ID, o, func(p *Player, d Decision) error {
		indices, err := chosenIndices(d, o.Min, o.Max, len(p.Hand))
		if err != nil {
			return err
		}
		trashed, err := p.TrashCards(FromHand, indices)
		if err != nil {
			return err
		}
		g.board.AddTrash(trashed...)
		return nil
	})
}

func (g *GameState) orderCellar(p *Player) {
	if len(p.Hand) == 0 {
		return
	}
	o := ChooseFromHand{Min: 0, Max: len(p.Hand), Choice: ChoiceDiscard}
	g.push(p.ID, o, func(p *Player, d Decision) error {
		indices, err := chosenIndices(d, o.Min, o.Max, len(p.Hand))
		if err != nil {
			return err
		}
		if err := p.DiscardCards(FromHand, indices); err != nil {
			return err
		}
		p.DrawCards(len(indices))
		return nil
	})
}

// gainable tells if anything on the board fits the order.
func (g *GameState) gainable(o ChooseFromBoard) bool {
	for _, pile := range g.board.Piles() {
		if g.fits(o, pile.Card) && pile.Count > 0 {
			return true
		}
	}
	return false
}

func (g *GameState) fits(o ChooseFromBoard, id string) bool {
	def, ok := g.cat.Get(id)
	if !ok || def.Cost > o.MaxCost {
		return false
	}
	return o.Filter == 0 || def.Types.Any(o.Filter)
}

func (g *GameState) orderGain(p *Player, o ChooseFromBoard) {
	if !g.gainable(o) {
		return
	}
	g.push(p.ID, o, func(p *Player, d Decision) error {
		gain, ok := d.(GainFromBoard)
		if !ok {
			return ErrInvalidChoice
		}
		if _, known := g.cat.Get(gain.Card); !known {
			return ErrUnknownCard
		}
		if !g.fits(o, gain.Card) {
			return ErrInvalidChoice
		}
		if err := g.board.Take(gain.Card); err != nil {
			return err
		}
		p.Gain(gain.Card, o.ToHand)
		return nil
	})
}

func (g *GameState) orderUpgrade(p *Player, e EffectUpgrade) {
	eligible := false
	for _, id := range p.Hand {
		if def, ok := g.cat.Get(id); ok && (e.Filter == 0 || def.Types.Any(e.Filter)) {
			eligible = true
			break
		}
	}
	if !eligible {
		return
	}

	o := ChooseFromHand{Min: 1, Max: 1, Choice: ChoiceTrash, Filter: e.Filter}
	if e.Optional {
		o.Min = 0
	}
	g.push(p.ID, o, func(p *Player, d Decision) error {
		indices, err := chosenIndices(d, o.Min, o.Max, len(p.Hand))
		if err != nil {
			return err
		}
		if len(indices) == 0 {
			return nil
		}
		def, _ := g.cat.Get(p.Hand[indices[0]])
		if e.Filter != 0 && !def.Types.Any(e.Filter) {
			return ErrInvalidCardType
		}
		trashed, err := p.TrashCards(FromHand, indices)
		if err != nil {
			return err
		}
		g.board.AddTrash(trashed...)
		g.orderGain(p, ChooseFromBoard{MaxCost: def.Cost + e.Delta, Filter: e.Filter, ToHand: e.ToHand})
		return nil
	})
}

func (g *GameState) orderTopDeck(p *Player) {
	if len(p.Hand) == 0 {
		return
	}
	o := ChooseFromHand{Min: 1, Max: 1, Choice: ChoiceTopDeck}
	g.push(p.ID, o, func(p *Player, d Decision) error {
		indices, err := chosenIndices(d, o.Min, o.Max, len(p.Hand))
		if err != nil {
			return err
		}
		taken, err := p.take(FromHand, indices)
		if err != nil {
			return err
		}
		p.Draw = append(taken, p.Draw...)
		return nil
	})
}

// orderSentry looks at the top cards, asks which to trash, then which of the
// rest to discard, and puts the others back.
func (g *GameState) orderSentry(p *Player, n int) {
	staged := p.Peek(n)
	if len(staged) == 0 {
		return
	}
	o := ChooseFromStaged{Min: 0, Max: len(staged), Choice: ChoiceTrash, Cards: staged}
	g.push(p.ID, o, func(p *Player, d Decision) error {
		indices, err := chosenIndices(d, o.Min, o.Max, len(p.Staged))
		if err != nil {
			return err
		}
		trashed, err := p.TrashCards(FromStaged, indices)
		if err != nil {
			return err
		}
		g.board.AddTrash(trashed...)
		if len(p.Staged) == 0 {
			return nil
		}

		o2 := ChooseFromStaged{Min: 0, Max: len(p.Staged), Choice: ChoiceDiscard, Cards: p.Staged.clone()}
		g.push(p.ID, o2, func(p *Player, d Decision) error {
			indices, err := chosenIndices(d, o2.Min, o2.Max, len(p.Staged))
			if err != nil {
				return err
			}
			if err := p.DiscardCards(FromStaged, indices); err != nil {
				return err
			}
			p.Unpeek()
			return nil
		})
		return nil
	})
}

// orderVassal discards the top card, unless it's an action and the player
// wants to play it.
func (g *GameState) orderVassal(p *Player) {
	staged := p.Peek(1)
	if len(staged) == 0 {
		return
	}
	def, _ := g.cat.Get(staged[0])
	if def == nil || !def.Types.Playable() {
		if err := p.DiscardCards(FromStaged, []int{0}); err != nil {
			p.Unpeek()
		}
		return
	}

	o := ChooseFromStaged{Min: 0, Max: 1, Choice: ChoicePlay, Cards: staged}
	g.push(p.ID, o, func(p *Player, d Decision) error {
		indices, err := chosenIndices(d, o.Min, o.Max, len(p.Staged))
		if err != nil {
			return err
		}
		if len(indices) == 0 {
			return p.DiscardCards(FromStaged, []int{0})
		}
		played, err := p.take(FromStaged, indices)
		if err != nil {
			return err
		}
		p.Played = append(p.Played, played...)
		g.resolving = append(append([]Effect(nil), def.Effects...), g.resolving...)
		return nil
	})
}

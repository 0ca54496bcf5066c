package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/undeconstructed/godominion/client"
	"github.com/undeconstructed/godominion/comms"
	"github.com/undeconstructed/godominion/game"

	rl "github.com/chzyer/readline"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	RED    = "[31m"
	GREEN  = "[32m"
	YELLOW = "[33m"
	CYAN   = "[36m"
	RESET  = "[0m"
)

func col(c, s string) string {
	return "\033" + c + s + "\033" + RESET
}

func main() {
	addr := flag.String("server", "localhost:7777", "server address")
	name := flag.String("name", "", "player name")
	lobby := flag.String("lobby", "", "lobby id")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *name == "" {
		fmt.Fprintln(os.Stderr, "need -name")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, err := client.Dial(ctx, *addr, client.Options{Log: &log.Logger})
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect")
	}
	defer s.Close()

	r := &repl{
		name:    *name,
		session: s,
		game:    client.NewGameProxy(s, *name, *lobby),
		cat:     game.DefaultCatalog(),
	}
	if err := r.run(); err != nil {
		log.Fatal().Err(err).Msg("client error")
	}
}

type repl struct {
	name    string
	session *client.Session
	game    *client.GameProxy
	cat     *game.Catalog
	cards   []string
	l       *rl.Instance
}

func (r *repl) completer() *rl.PrefixCompleter {
	var cardItems []rl.PrefixCompleterInterface
	for _, c := range r.cat.All() {
		cardItems = append(cardItems, rl.PcItem(c.ID))
	}
	return rl.NewPrefixCompleter(
		rl.PcItem("create"),
		rl.PcItem("join"),
		rl.PcItem("start"),
		rl.PcItem("play"),
		rl.PcItem("buy", cardItems...),
		rl.PcItem("endphase"),
		rl.PcItem("endturn"),
		rl.PcItem("choose"),
		rl.PcItem("gain", cardItems...),
		rl.PcItem("state"),
		rl.PcItem("hand"),
		rl.PcItem("cards"),
	)
}

func (r *repl) run() error {
	l, err := rl.NewEx(&rl.Config{
		Prompt:            "» ",
		HistoryFile:       os.ExpandEnv("$HOME/.dominion_history"),
		AutoComplete:      r.completer(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return err
	}
	defer l.Close()
	r.l = l

	r.session.OnPush(r.onPush)
	r.session.OnError(func(err error) {
		fmt.Fprintf(l.Stderr(), "connection lost: %v\n", err)
		l.Close()
	})

	ctx := context.Background()

	for {
		r.setPrompt()

		line, err := l.Readline()
		if err == rl.ErrInterrupt {
			if len(line) == 0 {
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			break
		} else if err != nil {
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			r.printState(r.session.State())
			continue
		}
		cmd, args := fields[0], fields[1:]

		if err := r.do(ctx, cmd, args); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}

	return nil
}

func (r *repl) do(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "create":
		if len(args) > 0 {
			r.game.SetLobby(args[0])
		}
		cards, err := r.game.Create(ctx)
		if err != nil {
			return err
		}
		r.cards = cards
		fmt.Printf("Lobby %s created, cards: %s\n", r.game.Lobby(), strings.Join(cards, " "))
	case "join":
		if len(args) != 1 {
			return fmt.Errorf("join <lobby>")
		}
		r.game.SetLobby(args[0])
		return r.game.Join(ctx)
	case "start":
		kingdom := args
		if len(kingdom) == 0 {
			kingdom = r.randomKingdom()
		}
		return r.game.Start(ctx, kingdom)
	case "play":
		if len(args) < 1 {
			return fmt.Errorf("play <index> [staged]")
		}
		i, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("play <index> [staged]")
		}
		from := game.FromHand
		if len(args) > 1 && args[1] == "staged" {
			from = game.FromStaged
		}
		return r.game.Decide(ctx, game.PlayActionCard{Index: i, From: from}, "")
	case "buy":
		if len(args) != 1 {
			return fmt.Errorf("buy <card>")
		}
		return r.game.Decide(ctx, game.BuyCard{Card: args[0]}, "")
	case "endphase":
		return r.game.Decide(ctx, game.EndActionPhase{}, "")
	case "endturn":
		return r.game.Decide(ctx, game.EndTurn{}, "")
	case "choose":
		var indices []int
		for _, a := range args {
			i, err := strconv.Atoi(a)
			if err != nil {
				return fmt.Errorf("choose <index>...")
			}
			indices = append(indices, i)
		}
		return r.game.Decide(ctx, game.ChooseCards{Indices: indices}, r.orderID())
	case "gain":
		if len(args) != 1 {
			return fmt.Errorf("gain <card>")
		}
		return r.game.Decide(ctx, game.GainFromBoard{Card: args[0]}, r.orderID())
	case "state":
		st, err := r.game.State(ctx)
		if err != nil {
			return err
		}
		r.printState(st)
	case "hand":
		st := r.session.State()
		if st == nil {
			return fmt.Errorf("no game")
		}
		printPile("Hand", st.Player.Hand)
		printPile("Staged", st.Player.Staged)
	case "cards":
		for _, c := range r.cat.All() {
			fmt.Printf("%-12s %d  %-16s %s\n", c.ID, c.Cost, c.Types, c.Text)
		}
	default:
		fmt.Printf("unknown\n")
	}
	return nil
}

func (r *repl) randomKingdom() []string {
	cards := r.cards
	if len(cards) < game.KingdomSize {
		cards = r.cat.Kingdom()
	}
	cards = append([]string(nil), cards...)
	rand.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	return cards[:game.KingdomSize]
}

func (r *repl) orderID() string {
	st := r.session.State()
	if st == nil || st.PendingOrder == nil {
		return ""
	}
	return st.PendingOrder.ID
}

func (r *repl) setPrompt() {
	st := r.session.State()
	if st == nil {
		r.l.SetPrompt(fmt.Sprintf("%s@%s» ", r.name, r.game.Lobby()))
		return
	}
	colour := CYAN
	if st.CurrentPlayer == r.name {
		colour = GREEN
	}
	must := ""
	if st.PendingOrder != nil {
		must = " !"
	}
	p := st.Player
	prompt := fmt.Sprintf("%s|%s|a%d b%d t%d%s» ", st.CurrentPlayer, st.Phase, p.Actions, p.Buys, p.Treasure, must)
	r.l.SetPrompt(col(colour, prompt))
}

func (r *repl) onPush(m comms.Message) {
	out := r.l.Stdout()
	switch m := m.(type) {
	case *comms.JoinLobbyBroadcast:
		fmt.Fprintf(out, "> players: %s\n", strings.Join(m.Players, ", "))
	case *comms.StartGameBroadcast:
		fmt.Fprintf(out, "> the game starts\n")
	case *comms.ActionOrderMessage:
		fmt.Fprintf(out, "%s\n", col(YELLOW, "> "+describeOrder(m.Order)))
	case *comms.GameStateMessage:
		if m.State.CurrentPlayer == r.name && m.State.Phase == game.ActionPhase && len(m.State.Player.Played) == 0 {
			fmt.Fprintf(out, "> your turn\n")
		}
	case *comms.EndGameBroadcast:
		fmt.Fprintf(out, "%s\n", col(RED, "> game over"))
		for i, res := range m.Results {
			fmt.Fprintf(out, "  %d. %s %d\n", i+1, res.PlayerID, res.Points)
		}
	case *comms.ResultResponse:
		if !m.Success {
			fmt.Fprintf(out, "> refused: %s\n", m.AdditionalInformation)
		}
	}
	r.setPrompt()
	r.l.Refresh()
}

func describeOrder(po game.PendingOrder) string {
	switch o := po.Order.(type) {
	case game.ChooseFromHand:
		s := fmt.Sprintf("choose %d to %d cards from your hand to %s", o.Min, o.Max, o.Choice)
		if o.Filter != 0 {
			s += fmt.Sprintf(" (%s only)", o.Filter)
		}
		return s
	case game.ChooseFromStaged:
		return fmt.Sprintf("choose %d to %d of %s to %s", o.Min, o.Max, strings.Join(o.Cards, " "), o.Choice)
	case game.ChooseFromBoard:
		s := fmt.Sprintf("gain a card costing up to %d", o.MaxCost)
		if o.Filter != 0 {
			s += fmt.Sprintf(" (%s only)", o.Filter)
		}
		return s
	}
	return "answer " + po.ID
}

func printPile(name string, p game.Pile) {
	var b strings.Builder
	for i, c := range p {
		fmt.Fprintf(&b, " %d:%s", i, c)
	}
	fmt.Printf("%-7s%s\n", name+":", b.String())
}

func (r *repl) printState(st *game.ReducedState) {
	if st == nil {
		fmt.Printf("No game\n")
		return
	}
	fmt.Printf("Turn:    %s (%s)\n", st.CurrentPlayer, st.Phase)
	p := st.Player
	fmt.Printf("You:     actions %d, buys %d, treasure %d, points %d\n", p.Actions, p.Buys, p.Treasure, p.Points)
	printPile("Hand", p.Hand)
	if len(p.Staged) > 0 {
		printPile("Staged", p.Staged)
	}
	fmt.Printf("Deck:    %d, discard %d\n", p.DrawSize, len(p.Discard))
	for _, e := range st.Enemies {
		fmt.Printf("%-8s hand %d, deck %d, discard %d, points %d\n", e.ID+":", e.HandSize, e.DrawSize, e.DiscardSize, e.Points)
	}
	fmt.Printf("Supply: ")
	for _, pile := range st.Board.Piles() {
		fmt.Printf(" %s:%d", pile.Card, pile.Count)
	}
	fmt.Printf("\n")
	if st.PendingOrder != nil {
		fmt.Printf("Order:   %s\n", describeOrder(*st.PendingOrder))
	}
}

package game

// GameError is a rule violation. It is safe to show to players.
type GameError struct {
	Code string
	Msg  string
}

func (e *GameError) ErrorCode() string { return e.Code }
func (e *GameError) Error() string     { return e.Msg }

var (
	// ErrInsufficientFunds means not enough treasure to buy the card
	ErrInsufficientFunds = &GameError{"INSUFFICIENTFUNDS", "not enough treasure"}
	// ErrCardNotAvailable means the pile is empty or not on the board
	ErrCardNotAvailable = &GameError{"CARDNOTAVAILABLE", "card is not available"}
	// ErrInvalidCardType is for playing or choosing the wrong kind of card
	ErrInvalidCardType = &GameError{"INVALIDCARDTYPE", "invalid card type"}
	// ErrOutOfPhase is for moves that the current phase doesn't allow
	ErrOutOfPhase = &GameError{"OUTOFPHASE", "not allowed in this phase"}
	// ErrOutOfActions means no actions left, the phase moves on
	ErrOutOfActions = &GameError{"OUTOFACTIONS", "no actions left"}
	// ErrOutOfBuys means no buys left
	ErrOutOfBuys = &GameError{"OUTOFBUYS", "no buys left"}
	// ErrInvalidCardAccess means the card is not where it was claimed to be
	ErrInvalidCardAccess = &GameError{"INVALIDCARDACCESS", "card is not there"}
	// ErrPlayerCountMismatch is for starting with too few or too many players
	ErrPlayerCountMismatch = &GameError{"PLAYERCOUNTMISMATCH", "invalid player count to start game"}
	// ErrDuplicatePlayer means the same player id twice
	ErrDuplicatePlayer = &GameError{"DUPLICATEPLAYER", "duplicate player"}
	// ErrWrongCardCount is for a kingdom that isn't 10 distinct cards
	ErrWrongCardCount = &GameError{"WRONGCARDCOUNT", "wrong number of kingdom cards"}
	// ErrAlreadyPlaying means a card is still being resolved
	ErrAlreadyPlaying = &GameError{"ALREADYPLAYING", "already playing a card"}
	// ErrNotYourTurn means you can't do something while it's not your turn
	ErrNotYourTurn = &GameError{"NOTYOURTURN", "it's not your turn"}
	// ErrUnknownPlayer means the player is not in this game
	ErrUnknownPlayer = &GameError{"UNKNOWNPLAYER", "unknown player"}
	// ErrUnknownCard means no such card in the catalog
	ErrUnknownCard = &GameError{"UNKNOWNCARD", "unknown card"}
	// ErrNoPendingOrder is for a choice when nothing was asked
	ErrNoPendingOrder = &GameError{"NOPENDINGORDER", "nothing to answer"}
	// ErrOrderMismatch is for a choice that answers the wrong order
	ErrOrderMismatch = &GameError{"ORDERMISMATCH", "that is not the current order"}
	// ErrInvalidChoice is for a choice that breaks the order's rules
	ErrInvalidChoice = &GameError{"INVALIDCHOICE", "invalid choice"}
	// ErrGameOver means nothing more can happen
	ErrGameOver = &GameError{"GAMEOVER", "the game is over"}
	// ErrBadRequest is for bad requests
	ErrBadRequest = &GameError{"BADREQUEST", "bad request"}
)

var errorsByCode = map[string]*GameError{}

func init() {
	for _, e := range []*GameError{
		ErrInsufficientFunds, ErrCardNotAvailable, ErrInvalidCardType, ErrOutOfPhase,
		ErrOutOfActions, ErrOutOfBuys, ErrInvalidCardAccess, ErrPlayerCountMismatch,
		ErrDuplicatePlayer, ErrWrongCardCount, ErrAlreadyPlaying, ErrNotYourTurn,
		ErrUnknownPlayer, ErrUnknownCard, ErrNoPendingOrder, ErrOrderMismatch,
		ErrInvalidChoice, ErrGameOver, ErrBadRequest,
	} {
		errorsByCode[e.Code] = e
	}
}

// ErrorByCode finds the sentinel for a code, as sent over the wire.
func ErrorByCode(code string) (*GameError, bool) {
	e, ok := errorsByCode[code]
	return e, ok
}

package server

import "github.com/undeconstructed/godominion/game"

var (
	// ErrLobbyExists means the lobby id is taken
	ErrLobbyExists = &game.GameError{Code: "LOBBYEXISTS", Msg: "Lobby already exists"}
	// ErrLobbyNotFound means no lobby with that id
	ErrLobbyNotFound = &game.GameError{Code: "LOBBYNOTFOUND", Msg: "Lobby does not exist"}
	// ErrLobbyFull means the lobby has all the players it can take
	ErrLobbyFull = &game.GameError{Code: "LOBBYFULL", Msg: "Lobby is full"}
	// ErrAlreadyJoined means the player is in the lobby already
	ErrAlreadyJoined = &game.GameError{Code: "ALREADYJOINED", Msg: "Player is already in the lobby"}
	// ErrAlreadyStarted is for joining or starting a running game
	ErrAlreadyStarted = &game.GameError{Code: "ALREADYSTARTED", Msg: "Game has already started"}
	// ErrNotGameMaster means only the game master can do that
	ErrNotGameMaster = &game.GameError{Code: "NOTGAMEMASTER", Msg: "Only the game master can start the game"}
	// ErrNotStarted means there is no game yet
	ErrNotStarted = &game.GameError{Code: "NOTSTARTED", Msg: "Game has not started"}
	// ErrNotMember means the player is not in the lobby
	ErrNotMember = &game.GameError{Code: "NOTMEMBER", Msg: "Player is not in the lobby"}
	// ErrPlayerBound means the player id belongs to another connection
	ErrPlayerBound = &game.GameError{Code: "PLAYERBOUND", Msg: "Player is connected elsewhere"}
)

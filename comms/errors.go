package comms

import "errors"

// CommsError is an error as it travels over the wire.
type CommsError struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

func (e *CommsError) ErrorCode() string { return e.Code }
func (e *CommsError) Error() string     { return e.Msg }

var (
	// ErrBadFrame means the length prefix could not be read
	ErrBadFrame = &CommsError{"BADFRAME", "bad frame"}
	// ErrFrameTooLarge means a frame declared more bytes than allowed
	ErrFrameTooLarge = &CommsError{"FRAMETOOLARGE", "frame too large"}
	// ErrUnknownType means a message type that nobody knows
	ErrUnknownType = &CommsError{"UNKNOWNTYPE", "unknown message type"}
	// ErrBadPayload means a frame that isn't a message
	ErrBadPayload = &CommsError{"BADPAYLOAD", "bad message payload"}
	// ErrRateLimited means the client is sending too much
	ErrRateLimited = &CommsError{"RATELIMITED", "too many messages"}
)

type coded interface {
	ErrorCode() string
}

// WrapError makes any error sendable, keeping the code if there is one.
func WrapError(err error) *CommsError {
	if err == nil {
		return nil
	}
	var c coded
	if errors.As(err, &c) {
		return &CommsError{Code: c.ErrorCode(), Msg: err.Error()}
	}
	return &CommsError{Code: "ERROR", Msg: err.Error()}
}

package client

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/undeconstructed/godominion/comms"
	"github.com/undeconstructed/godominion/game"

	"github.com/rs/zerolog"
)

// ErrClosed is returned for anything tried on a closed session.
var ErrClosed = errors.New("session closed")

const readBufferSize = 4096

// Options for a session. Zero values are fine.
type Options struct {
	// ReadPoll is how long each read waits before looking again.
	ReadPoll time.Duration
	MaxFrame int
	Log      *zerolog.Logger
}

// Session is one connection to a server. Requests are answered through
// Submit, everything else the server sends goes to the push callback.
type Session struct {
	conn net.Conn
	enc  *comms.Encoder
	poll time.Duration
	max  int

	wmu sync.Mutex

	mu      sync.Mutex
	waiting map[string]chan comms.Message
	onPush  func(comms.Message)
	onError func(error)
	err     error

	state *Box[*game.ReducedState]

	done chan struct{}
	once sync.Once
	log  zerolog.Logger
}

// Dial connects to a server.
func Dial(ctx context.Context, addr string, opts Options) (*Session, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewSession(conn, opts), nil
}

// NewSession runs a session on a connection that's already open.
func NewSession(conn net.Conn, opts Options) *Session {
	if opts.ReadPoll <= 0 {
		opts.ReadPoll = 5 * time.Millisecond
	}
	log := zerolog.Nop()
	if opts.Log != nil {
		log = *opts.Log
	}
	s := &Session{
		conn:    conn,
		enc:     comms.NewEncoder(conn),
		poll:    opts.ReadPoll,
		max:     opts.MaxFrame,
		waiting: map[string]chan comms.Message{},
		state:   NewBox[*game.ReducedState](),
		done:    make(chan struct{}),
		log:     log.With().Str("server", conn.RemoteAddr().String()).Logger(),
	}
	go s.listen()
	return s
}

// OnPush sets what is called with server messages that aren't answers.
// It is called on the listener goroutine.
func (s *Session) OnPush(f func(comms.Message)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onPush = f
}

// OnError sets what is called if the connection breaks.
func (s *Session) OnError(f func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onError = f
}

// Submit sends a message and waits for the answer to it. A message id is
// made if there isn't one. There is no timeout other than the context's.
func (s *Session) Submit(ctx context.Context, m comms.Message) (comms.Message, error) {
	h := m.Head()
	if h.MessageID == "" {
		h.MessageID = comms.NewMessageID()
	}

	ch := make(chan comms.Message, 1)
	s.mu.Lock()
	if s.err != nil {
		s.mu.Unlock()
		return nil, s.err
	}
	s.waiting[h.MessageID] = ch
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.waiting, h.MessageID)
		s.mu.Unlock()
	}()

	if err := s.Send(m); err != nil {
		return nil, err
	}

	select {
	case r := <-ch:
		return r, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
		return nil, s.Err()
	}
}

// Send sends a message without waiting for anything.
func (s *Session) Send(m comms.Message) error {
	h := m.Head()
	if h.MessageID == "" {
		h.MessageID = comms.NewMessageID()
	}
	select {
	case <-s.done:
		return s.Err()
	default:
	}
	s.wmu.Lock()
	defer s.wmu.Unlock()
	return s.enc.Encode(m)
}

// State is the latest game state seen, if any.
func (s *Session) State() *game.ReducedState {
	return s.state.Get()
}

// NextState waits for a state other than seen.
func (s *Session) NextState(seen *game.ReducedState) <-chan *game.ReducedState {
	return s.state.Listen(seen)
}

// Done is closed when the session ends.
func (s *Session) Done() <-chan struct{} { return s.done }

// Err is why the session ended.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close ends the session.
func (s *Session) Close() error {
	s.stop(ErrClosed)
	return s.conn.Close()
}

func (s *Session) stop(err error) bool {
	first := false
	s.once.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.done)
		first = true
	})
	return first
}

// listen reads from the server until the connection fails.
func (s *Session) listen() {
	frames := comms.NewFrameReader(s.max)
	buf := make([]byte, readBufferSize)
	for {
		select {
		case <-s.done:
			return
		default:
		}

		s.conn.SetReadDeadline(time.Now().Add(s.poll))
		n, err := s.conn.Read(buf)
		if n > 0 {
			payloads, ferr := frames.Feed(buf[:n])
			for _, p := range payloads {
				s.dispatch(p)
			}
			if ferr != nil {
				s.log.Warn().Err(ferr).Msg("bad frame from server")
			}
		}
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			s.fail(err)
			return
		}
	}
}

func (s *Session) fail(err error) {
	if !s.stop(err) {
		return
	}
	s.log.Info().Err(err).Msg("connection lost")
	s.conn.Close()

	s.mu.Lock()
	f := s.onError
	s.mu.Unlock()
	if f != nil {
		f(err)
	}
}

func (s *Session) dispatch(payload []byte) {
	m, err := comms.Unmarshal(payload)
	if err != nil {
		s.log.Warn().Err(err).Msg("bad message from server")
		return
	}

	switch m := m.(type) {
	case *comms.GameStateMessage:
		s.state.Put(m.State)
	case *comms.ActionOrderMessage:
		s.state.Put(m.State)
	}

	s.mu.Lock()
	if id := comms.InResponseTo(m); id != "" {
		if ch, ok := s.waiting[id]; ok {
			delete(s.waiting, id)
			s.mu.Unlock()
			ch <- m
			return
		}
	}
	f := s.onPush
	s.mu.Unlock()

	if f != nil {
		f(m)
	}
}

// ResultError turns a failed result into an error. Game errors come back as
// the game package's own values.
func ResultError(m comms.Message) error {
	r, ok := m.(*comms.ResultResponse)
	if !ok || r.Success {
		return nil
	}
	if ge, ok := game.ErrorByCode(r.Code); ok {
		return ge
	}
	return &comms.CommsError{Code: r.Code, Msg: r.AdditionalInformation}
}

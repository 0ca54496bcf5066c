package server

import (
	"fmt"
	"sync"

	"github.com/undeconstructed/godominion/comms"
	"github.com/undeconstructed/godominion/game"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// connection is one client, on any gateway. Outgoing bytes queue on downCh
// for the gateway's writer.
type connection struct {
	addr   string
	downCh chan []byte
	done   chan struct{}
	once   sync.Once
	log    zerolog.Logger
}

func newConnection(addr string, buffer int, log zerolog.Logger) *connection {
	return &connection{
		addr:   addr,
		downCh: make(chan []byte, buffer),
		done:   make(chan struct{}),
		log:    log,
	}
}

func (c *connection) Addr() string { return c.addr }

func (c *connection) Send(b []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.downCh <- b:
		return true
	default:
		// client lagging
		return false
	}
}

func (c *connection) close() {
	c.once.Do(func() { close(c.done) })
}

// writeLoop sends queued bytes until the connection is closed or a write
// fails.
func (c *connection) writeLoop(write func([]byte) error) {
	for {
		select {
		case <-c.done:
			return
		case b := <-c.downCh:
			if err := write(b); err != nil {
				c.log.Info().Err(err).Msg("send error")
				c.close()
				return
			}
		}
	}
}

// inbound turns bytes from a client into messages for the lobbies.
type inbound struct {
	conn      *connection
	reg       *Registry
	lobbies   *LobbyManager
	frames    *comms.FrameReader
	limiter   *rate.Limiter
	badFrames int
	maxBad    int
}

func (s *Server) newInbound(c *connection) *inbound {
	limit := rate.Limit(s.cfg.Server.RateLimit)
	if limit == 0 {
		limit = rate.Inf
	}
	return &inbound{
		conn:    c,
		reg:     s.reg,
		lobbies: s.lobbies,
		frames:  comms.NewFrameReader(s.cfg.Server.MaxFrame),
		limiter: rate.NewLimiter(limit, s.cfg.Server.RateBurst),
		maxBad:  s.cfg.Server.MaxFrameErrors,
	}
}

// feed takes whatever was read. An error means the stream is beyond saving.
func (in *inbound) feed(b []byte) error {
	payloads, err := in.frames.Feed(b)
	for _, p := range payloads {
		in.badFrames = 0
		in.handle(p)
	}
	if err != nil {
		frameErrorsTotal.Inc()
		in.badFrames++
		in.conn.log.Info().Err(err).Int("count", in.badFrames).Msg("bad frame")
		if in.badFrames > in.maxBad {
			return fmt.Errorf("too many bad frames: %w", err)
		}
	}
	return nil
}

func (in *inbound) handle(payload []byte) {
	log := in.conn.log

	m, err := comms.Unmarshal(payload)
	if err != nil {
		log.Info().Err(err).Msg("bad message")
		sendTo(in.conn, reject("", "", err), log)
		return
	}
	messagesTotal.WithLabelValues(m.MessageType()).Inc()
	log.Debug().Str("type", m.MessageType()).Str("lobby", m.Head().LobbyID).Msg("received")

	h := m.Head()
	cm, ok := m.(comms.ClientMessage)
	if !ok {
		sendTo(in.conn, reject(h.LobbyID, h.MessageID, comms.ErrUnknownType), log)
		return
	}
	if !in.limiter.Allow() {
		sendTo(in.conn, reject(h.LobbyID, h.MessageID, comms.ErrRateLimited), log)
		return
	}
	if cm.Sender() == "" {
		sendTo(in.conn, reject(h.LobbyID, h.MessageID, game.ErrBadRequest), log)
		return
	}
	if err := in.reg.Bind(cm.Sender(), in.conn.addr); err != nil {
		sendTo(in.conn, reject(h.LobbyID, h.MessageID, err), log)
		return
	}

	in.lobbies.Handle(cm)
}

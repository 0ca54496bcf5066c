package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/undeconstructed/godominion/config"
	"github.com/undeconstructed/godominion/game"
	"github.com/undeconstructed/godominion/store"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Server owns the registry, the messenger and the lobbies, and runs the
// gateways that feed them.
type Server struct {
	cfg     *config.Config
	cat     *game.Catalog
	reg     *Registry
	msgr    Messenger
	lobbies *LobbyManager
	store   store.Store
	log     zerolog.Logger

	// connection handlers, on any gateway
	conns sync.WaitGroup
}

// New makes a server. The store may be nil.
func New(cfg *config.Config, st store.Store) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if st == nil {
		st = store.Nop{}
	}
	log := log.With().Str("component", "server").Logger()
	cat := game.DefaultCatalog()
	reg := NewRegistry()
	msgr := newNetworkMessenger(reg, log)

	return &Server{
		cfg:     cfg,
		cat:     cat,
		reg:     reg,
		msgr:    msgr,
		lobbies: NewLobbyManager(msgr, cat, st, log),
		store:   st,
		log:     log,
	}
}

// Lobbies is the lobby manager.
func (s *Server) Lobbies() *LobbyManager { return s.lobbies }

// Run listens on the configured addresses until the context ends or a
// gateway fails.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info().Msg("server running")
	defer s.log.Info().Msg("server stopping")

	tcpLn, err := net.Listen("tcp", s.cfg.Server.TCPAddr)
	if err != nil {
		return err
	}
	webLn, err := net.Listen("tcp", s.cfg.Server.WebAddr)
	if err != nil {
		tcpLn.Close()
		return err
	}

	return s.serve(ctx, tcpLn, webLn)
}

// serve runs the gateways on the listeners. It returns once every
// connection has been let go and every finished game saved.
func (s *Server) serve(ctx context.Context, tcpLn, webLn net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	hs := &http.Server{
		Handler:     s.WebHandler(),
		ReadTimeout: time.Second * 10,
		// hijacked websockets keep this context, so they end with the server
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g.Go(func() error {
		return s.ServeTCP(ctx, tcpLn)
	})
	g.Go(func() error {
		s.log.Info().Str("gw", "web").Msgf("web listening on http://%v", webLn.Addr())
		err := hs.Serve(webLn)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return hs.Shutdown(sctx)
	})

	err := g.Wait()
	// no more games can finish once the connections are gone
	s.conns.Wait()
	s.lobbies.Wait()
	return err
}

func (s *Server) connect(c *connection) {
	s.reg.AddConn(c)
	connectionsGauge.Inc()
}

func (s *Server) disconnect(c *connection) {
	gone := s.reg.RemoveConn(c.addr)
	c.close()
	connectionsGauge.Dec()
	c.log.Info().Strs("players", gone).Msg("disconnected")
}

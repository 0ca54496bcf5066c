package server

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/undeconstructed/godominion/comms"

	"github.com/rs/zerolog"
)

const readBufferSize = 4096

// ServeTCP runs the game protocol on a listener until the context ends.
func (s *Server) ServeTCP(ctx context.Context, ln net.Listener) error {
	log := s.log.With().Str("gw", "tcp").Logger()
	log.Info().Msgf("comms listening on tcp:%v", ln.Addr())

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.manageTCPConnection(ctx, conn, log)
		}()
	}
}

func (s *Server) manageTCPConnection(ctx context.Context, conn net.Conn, log zerolog.Logger) {
	addr := conn.RemoteAddr().String()
	log = log.With().Str("client", addr).Logger()
	log.Info().Msg("connecting")

	c := newConnection(addr, s.cfg.Server.DownBuffer, log)
	s.connect(c)
	defer s.disconnect(c)
	defer conn.Close()

	enc := comms.NewEncoder(conn)
	go func() {
		c.writeLoop(enc.Send)
		// a failed write ends the reads too
		conn.Close()
	}()

	in := s.newInbound(c)
	poll := s.cfg.GetReadPoll()
	buf := make([]byte, readBufferSize)
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		default:
		}

		conn.SetReadDeadline(time.Now().Add(poll))
		n, err := conn.Read(buf)
		if n > 0 {
			if ferr := in.feed(buf[:n]); ferr != nil {
				log.Info().Err(ferr).Msg("hanging up")
				return
			}
		}
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				// nothing to read yet
				continue
			}
			if err != io.EOF {
				log.Info().Err(err).Msg("read error")
			}
			return
		}
	}
}

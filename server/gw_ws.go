package server

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
)

// subprotocol is what websocket clients must ask for.
const subprotocol = "dominion"

// commsHandler carries the game protocol over websockets. Each binary message
// holds framed bytes, exactly as they would be on TCP.
type commsHandler struct {
	server  *Server
	origins []string
	log     zerolog.Logger
}

func (ch *commsHandler) serveWS(c *gin.Context) {
	ch.server.conns.Add(1)
	defer ch.server.conns.Done()

	addr := c.Request.RemoteAddr

	log := ch.log.With().Str("client", addr).Logger()
	log.Info().Msgf("connecting")

	socket, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		Subprotocols:   []string{subprotocol},
		OriginPatterns: ch.origins,
	})
	if err != nil {
		log.Info().Err(err).Msg("websocket accept error")
		return
	}
	defer socket.Close(websocket.StatusInternalError, "the sky is falling")

	if socket.Subprotocol() != subprotocol {
		socket.Close(websocket.StatusPolicyViolation, "client must speak the "+subprotocol+" subprotocol")
		return
	}

	// frame prefix on top of the payload
	socket.SetReadLimit(int64(ch.server.cfg.Server.MaxFrame) + 16)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	conn := newConnection("ws:"+addr, ch.server.cfg.Server.DownBuffer, log)
	ch.server.connect(conn)
	defer ch.server.disconnect(conn)

	go func() {
		conn.writeLoop(func(b []byte) error {
			return socket.Write(ctx, websocket.MessageBinary, b)
		})
		cancel()
	}()

	in := ch.server.newInbound(conn)
	for {
		typ, data, err := socket.Read(ctx)
		if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
			return
		}
		if err != nil {
			log.Info().Err(err).Msg("client read error")
			return
		}
		if typ != websocket.MessageBinary {
			socket.Close(websocket.StatusUnsupportedData, "binary messages only")
			return
		}
		if err := in.feed(data); err != nil {
			log.Info().Err(err).Msg("hanging up")
			socket.Close(websocket.StatusProtocolError, "bad frames")
			return
		}
	}
}

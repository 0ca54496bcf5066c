package server

import (
	"github.com/undeconstructed/godominion/comms"

	"github.com/rs/zerolog"
)

// Messenger delivers messages to players. Delivery is best effort, failures
// are logged and forgotten.
type Messenger interface {
	Send(player string, m comms.Message)
	Broadcast(players []string, m comms.Message)
}

type networkMessenger struct {
	reg *Registry
	log zerolog.Logger
}

func newNetworkMessenger(reg *Registry, log zerolog.Logger) *networkMessenger {
	return &networkMessenger{reg: reg, log: log}
}

func (nm *networkMessenger) Send(player string, m comms.Message) {
	c, ok := nm.reg.Lookup(player)
	if !ok {
		nm.log.Debug().Str("player", player).Msgf("not connected, dropping %s", m.MessageType())
		return
	}
	sendTo(c, m, nm.log)
}

func (nm *networkMessenger) Broadcast(players []string, m comms.Message) {
	b, err := comms.Encode(m)
	if err != nil {
		nm.log.Error().Err(err).Msg("encode error")
		return
	}
	for _, p := range players {
		c, ok := nm.reg.Lookup(p)
		if !ok {
			continue
		}
		if !c.Send(b) {
			nm.log.Info().Str("player", p).Msg("client lagging")
		}
	}
}

// sendTo encodes and queues one message on a connection.
func sendTo(c Conn, m comms.Message, log zerolog.Logger) {
	b, err := comms.Encode(m)
	if err != nil {
		log.Error().Err(err).Msg("encode error")
		return
	}
	if !c.Send(b) {
		log.Info().Str("client", c.Addr()).Msg("client lagging")
	}
}

package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	connectionsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dominion_connections",
			Help: "Open client connections",
		},
	)
	lobbiesGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dominion_lobbies",
			Help: "Lobbies that exist",
		},
	)
	messagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dominion_messages_total",
			Help: "Messages received, by type",
		},
		[]string{"type"},
	)
	frameErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dominion_frame_errors_total",
			Help: "Frames that could not be read",
		},
	)
	rejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dominion_rejections_total",
			Help: "Requests refused, by error code",
		},
		[]string{"code"},
	)
	gamesStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dominion_games_started_total",
			Help: "Games started",
		},
	)
	gamesFinished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dominion_games_finished_total",
			Help: "Games played to the end",
		},
	)
)

func init() {
	prometheus.MustRegister(connectionsGauge)
	prometheus.MustRegister(lobbiesGauge)
	prometheus.MustRegister(messagesTotal)
	prometheus.MustRegister(frameErrorsTotal)
	prometheus.MustRegister(rejectionsTotal)
	prometheus.MustRegister(gamesStarted)
	prometheus.MustRegister(gamesFinished)
}

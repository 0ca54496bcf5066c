package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/undeconstructed/godominion/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const defaultListLimit = 20

// WebHandler is the REST API, the websocket gateway and the metrics.
func (s *Server) WebHandler() http.Handler {
	log := s.log.With().Str("gw", "web").Logger()

	rh := restHandler{
		server: s,
		log:    log,
	}

	ch := commsHandler{
		server:  s,
		origins: s.cfg.Server.WSOrigins,
		log:     log,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	a := r.Group("/api")
	a.GET("/lobbies", rh.getLobbies)
	a.GET("/lobbies/:id", rh.getLobby)
	a.GET("/cards", rh.getCards)
	a.GET("/results", rh.getResults)
	a.GET("/leaders", rh.getLeaders)
	r.GET("/ws", ch.serveWS)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

type restHandler struct {
	server *Server
	log    zerolog.Logger
}

func (rh *restHandler) getLobbies(c *gin.Context) {
	list := rh.server.lobbies.Lobbies()
	c.JSON(http.StatusOK, list)
}

func (rh *restHandler) getLobby(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.String(http.StatusBadRequest, "missing id")
		return
	}

	l, ok := rh.server.lobbies.Lobby(id)
	if !ok {
		c.JSON(http.StatusNotFound, nil)
		return
	}

	c.JSON(http.StatusOK, l.Info())
}

func (rh *restHandler) getCards(c *gin.Context) {
	c.JSON(http.StatusOK, rh.server.cat.All())
}

func (rh *restHandler) getResults(c *gin.Context) {
	limit, ok := listLimit(c)
	if !ok {
		return
	}

	recs, err := rh.server.store.Recent(c.Request.Context(), limit)
	if err != nil {
		rh.log.Error().Err(err).Msg("recent games error")
		c.String(http.StatusInternalServerError, "error: %v", err)
		return
	}
	if recs == nil {
		recs = []store.GameRecord{}
	}

	c.JSON(http.StatusOK, recs)
}

func (rh *restHandler) getLeaders(c *gin.Context) {
	limit, ok := listLimit(c)
	if !ok {
		return
	}

	lb, ok := rh.server.store.(store.Leaderboard)
	if !ok {
		c.String(http.StatusNotImplemented, "no leaderboard")
		return
	}

	leaders, err := lb.Leaders(c.Request.Context(), limit)
	if err != nil {
		rh.log.Error().Err(err).Msg("leaders error")
		c.String(http.StatusInternalServerError, "error: %v", err)
		return
	}

	c.JSON(http.StatusOK, leaders)
}

func listLimit(c *gin.Context) (int, bool) {
	s := c.Query("limit")
	if s == "" {
		return defaultListLimit, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		c.String(http.StatusBadRequest, "bad limit")
		return 0, false
	}
	return n, true
}

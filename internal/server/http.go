// Package server exposes the match engine over HTTP and WebSocket.
package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/3jesters/opentcg-server-go/internal/game"
	"github.com/3jesters/opentcg-server-go/internal/game/state"
	"github.com/3jesters/opentcg-server-go/internal/repository"
)

// Server routes HTTP requests into the orchestrator and pushes
// resulting match views through the hub.
type Server struct {
	orchestrator *game.Orchestrator
	hub          *Hub
	logger       *zap.Logger
	router       *gin.Engine
}

// NewServer builds the router.
func NewServer(orchestrator *game.Orchestrator, hub *Hub, logger *zap.Logger) *Server {
	s := &Server{
		orchestrator: orchestrator,
		hub:          hub,
		logger:       logger,
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/matches", s.createMatch)
		api.POST("/matches/:id/join", s.joinMatch)
		api.POST("/matches/:id/approve", s.approveMatch)
		api.POST("/matches/:id/actions", s.submitAction)
		api.GET("/matches/:id", s.getMatch)
		api.GET("/matches/:id/ws", hub.HandleConnection)
	}
	s.router = router
	return s
}

// Handler returns the http handler for the listener.
func (s *Server) Handler() http.Handler {
	return s.router
}

type createMatchRequest struct {
	PlayerID string `json:"playerId" binding:"required"`
	DeckID   string `json:"deckId" binding:"required"`
}

func (s *Server) createMatch(c *gin.Context) {
	var req createMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "playerId and deckId are required"})
		return
	}
	m, err := s.orchestrator.CreateMatch(c.Request.Context(), req.PlayerID, req.DeckID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	view, err := game.ViewFor(m, req.PlayerID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

type joinMatchRequest struct {
	PlayerID string `json:"playerId" binding:"required"`
	DeckID   string `json:"deckId" binding:"required"`
}

func (s *Server) joinMatch(c *gin.Context) {
	var req joinMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "playerId and deckId are required"})
		return
	}
	m, err := s.orchestrator.JoinMatch(c.Request.Context(), c.Param("id"), req.PlayerID, req.DeckID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.hub.BroadcastMatch(m)
	view, err := game.ViewFor(m, req.PlayerID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type approveMatchRequest struct {
	PlayerID string `json:"playerId" binding:"required"`
}

func (s *Server) approveMatch(c *gin.Context) {
	var req approveMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "playerId is required"})
		return
	}
	m, err := s.orchestrator.ApproveMatch(c.Request.Context(), c.Param("id"), req.PlayerID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.hub.BroadcastMatch(m)
	view, err := game.ViewFor(m, req.PlayerID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type actionRequest struct {
	PlayerID   string          `json:"playerId" binding:"required"`
	ActionType string          `json:"actionType" binding:"required"`
	Data       game.ActionData `json:"actionData"`
}

func (s *Server) submitAction(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "playerId and actionType are required"})
		return
	}
	m, err := s.orchestrator.ExecuteAction(c.Request.Context(), c.Param("id"),
		req.PlayerID, state.PlayerActionType(req.ActionType), req.Data)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.hub.BroadcastMatch(m)
	view, err := game.ViewFor(m, req.PlayerID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) getMatch(c *gin.Context) {
	playerID := c.Query("playerId")
	if playerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "playerId query parameter is required"})
		return
	}
	m, err := s.orchestrator.Match(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	view, err := game.ViewFor(m, playerID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// writeError maps engine error classes onto HTTP statuses.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, game.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, game.ErrIllegalTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		if s.logger != nil {
			s.logger.Error("internal error", zap.Error(err))
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// requestLogger logs each request at debug level.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if logger != nil {
			logger.Debug("http request",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Int("status", c.Writer.Status()))
		}
	}
}

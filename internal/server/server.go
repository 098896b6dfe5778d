// Package server exposes the engine over local HTTP for other tools on
// the machine. It is a thin surface: all semantics live in the crm
// engine.
package server

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openclaw/rolodex/internal/crm"
	"github.com/openclaw/rolodex/internal/logger"
)

type Server struct {
	db     *sql.DB
	engine *crm.Engine
	log    *logger.Logger
	router *gin.Engine
}

// New wires the routes. The database handle and engine come from the
// caller, which owns their lifecycle.
func New(database *sql.DB, eng *crm.Engine, log *logger.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{db: database, engine: eng, log: log, router: router}
	router.Use(s.requestLog())

	router.GET("/healthz", s.healthz)
	api := router.Group("/api")
	{
		api.GET("/query", s.query)
		api.GET("/summary", s.summary)
		api.POST("/ingest", s.ingest)
	}
	return s
}

// Run blocks serving HTTP on addr.
func (s *Server) Run(addr string) error {
	s.log.Info("listening", "addr", addr)
	return s.router.Run(addr)
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}

func (s *Server) healthz(c *gin.Context) {
	if err := s.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) query(c *gin.Context) {
	q := c.Query("q")
	results, err := s.engine.Query(q)
	if err != nil {
		s.log.Error("query failed", "q", q, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"intent":  crm.ParseIntent(q).String(),
		"results": results,
	})
}

func (s *Server) summary(c *gin.Context) {
	report, err := s.engine.Summary()
	if err != nil {
		s.log.Error("summary failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) ingest(c *gin.Context) {
	var envelopes []crm.Envelope
	if err := c.ShouldBindJSON(&envelopes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid envelope payload"})
		return
	}
	stats, err := s.engine.Ingest(envelopes)
	if err != nil {
		s.log.Error("ingest failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

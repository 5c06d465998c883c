// Package httpapi exposes the knowledge base over HTTP.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbase-labs/kbase/internal/core/ports/driven"
	"github.com/kbase-labs/kbase/internal/core/ports/driving"
)

// Config wires the server's dependencies.
type Config struct {
	Knowledge  driving.KnowledgeService
	Answers    driving.AnswerService
	Extractors driven.ExtractorRegistry

	// History is optional; without it /api/history returns 404.
	History driven.IngestHistory

	// UploadDir receives uploaded files before ingestion.
	UploadDir string

	// DocumentsDir is the directory re-ingested by /api/rebuild.
	DocumentsDir string

	// DefaultTopK is used when a request omits top_k.
	DefaultTopK int
}

// Server is the HTTP API adapter.
type Server struct {
	cfg    Config
	engine *gin.Engine
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(cfg Config) *Server {
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = 5
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{cfg: cfg, engine: engine}

	api := engine.Group("/api")
	api.GET("/stats", s.handleStats)
	api.GET("/documents", s.handleDocuments)
	api.GET("/health", s.handleHealth)
	api.POST("/search", s.handleSearch)
	api.POST("/ask", s.handleAsk)
	api.POST("/add_document", s.handleAddDocument)
	api.POST("/upload_document", s.handleUploadDocument)
	api.POST("/rebuild", s.handleRebuild)
	if cfg.History != nil {
		api.GET("/history", s.handleHistory)
	}

	return s
}

// Handler returns the underlying HTTP handler. Useful for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves the API on addr until the listener fails.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbase-labs/kbase/internal/core/domain"
	"github.com/kbase-labs/kbase/internal/logger"
)

// searchRequest is the /api/search payload.
type searchRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"top_k"`
}

// askRequest is the /api/ask payload.
type askRequest struct {
	Question string `json:"question" binding:"required"`
	TopK     int    `json:"top_k"`
}

// addDocumentRequest is the /api/add_document payload.
type addDocumentRequest struct {
	FilePath string `json:"file_path" binding:"required"`
}

// handleStats returns corpus statistics.
// GET /api/stats
func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.cfg.Knowledge.Stats())
}

// handleDocuments lists ingested documents.
// GET /api/documents
func (s *Server) handleDocuments(c *gin.Context) {
	docs := s.cfg.Knowledge.Documents()
	c.JSON(http.StatusOK, gin.H{
		"documents": docs,
		"count":     len(docs),
	})
}

// handleHealth reports service liveness and backend reachability.
// GET /api/health
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"ollama_connected": s.cfg.Answers.CheckConnection(c.Request.Context()),
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
	})
}

// handleSearch runs a similarity search.
// POST /api/search
func (s *Server) handleSearch(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.TopK <= 0 {
		req.TopK = s.cfg.DefaultTopK
	}

	results, err := s.cfg.Knowledge.Search(c.Request.Context(), req.Query, req.TopK)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   req.Query,
		"results": results,
		"count":   len(results),
	})
}

// handleAsk answers a question grounded in retrieved context.
// POST /api/ask
func (s *Server) handleAsk(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.TopK <= 0 {
		req.TopK = s.cfg.DefaultTopK
	}

	answer, err := s.cfg.Answers.Ask(c.Request.Context(), req.Question, req.TopK)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, answer)
}

// handleAddDocument ingests a file already on disk and persists the
// corpus.
// POST /api/add_document
func (s *Server) handleAddDocument(c *gin.Context) {
	var req addDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := s.cfg.Knowledge.AddDocument(c.Request.Context(), req.FilePath)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.cfg.Knowledge.Save(); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "added",
		"file_path":   doc.FilePath,
		"chunk_count": doc.ChunkCount,
		"word_count":  doc.WordCount,
	})
}

// handleUploadDocument accepts a multipart upload, stores it under the
// upload directory, and ingests it. Files with unsupported extensions
// are skipped without error.
// POST /api/upload_document
func (s *Server) handleUploadDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}

	if !s.cfg.Extractors.Supported(fileHeader.Filename) {
		logger.Debug("Skipping upload %s: unsupported format", fileHeader.Filename)
		c.JSON(http.StatusOK, gin.H{
			"status":    "skipped",
			"file_name": fileHeader.Filename,
			"reason":    "unsupported format",
		})
		return
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		s.fail(c, fmt.Errorf("create upload directory: %w", err))
		return
	}

	// Prefix with a UUID so concurrent uploads of the same name never
	// collide.
	name := uuid.NewString() + "_" + filepath.Base(fileHeader.Filename)
	dest := filepath.Join(s.cfg.UploadDir, name)
	if err := c.SaveUploadedFile(fileHeader, dest); err != nil {
		s.fail(c, fmt.Errorf("store upload: %w", err))
		return
	}

	doc, err := s.cfg.Knowledge.AddDocument(c.Request.Context(), dest)
	if err != nil {
		os.Remove(dest)
		s.fail(c, err)
		return
	}
	if err := s.cfg.Knowledge.Save(); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "added",
		"file_name":   fileHeader.Filename,
		"file_path":   doc.FilePath,
		"chunk_count": doc.ChunkCount,
	})
}

// handleRebuild clears the corpus and re-ingests the documents
// directory from scratch.
// POST /api/rebuild
func (s *Server) handleRebuild(c *gin.Context) {
	if err := s.cfg.Knowledge.Clear(); err != nil {
		s.fail(c, err)
		return
	}

	docs, failures, err := s.cfg.Knowledge.AddDirectory(c.Request.Context(), s.cfg.DocumentsDir, true)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.cfg.Knowledge.Save(); err != nil {
		s.fail(c, err)
		return
	}

	if failures == nil {
		failures = []domain.IngestFailure{}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":          "rebuilt",
		"documents_added": len(docs),
		"failures":        failures,
	})
}

// handleHistory returns recent ingest attempts.
// GET /api/history
func (s *Server) handleHistory(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	records, err := s.cfg.History.List(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	if records == nil {
		records = []domain.IngestRecord{}
	}
	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"count":   len(records),
	})
}

// fail translates domain errors into HTTP status codes.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrUnsupportedFormat):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrModelNotInstalled),
		errors.Is(err, domain.ErrGenerationConnection),
		errors.Is(err, domain.ErrGenerationTimeout):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"prism/internal/ast"
	"prism/internal/crawler"
	"prism/internal/extractor"
	"prism/internal/knowledge"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the failure envelope shared by every route.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, ErrorResponse{Success: false, Error: msg})
}

// fail maps err to a status code and writes the envelope.
func fail(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, ast.ErrSyntax):
		logger.Info("syntax error in submitted code", slog.String("error", err.Error()))
		writeError(c, http.StatusBadRequest, extractor.SyntaxMessage(err))
	case errors.Is(err, knowledge.ErrCapabilityUnavailable):
		logger.Warn("ranking requested without embeddings", slog.String("error", err.Error()))
		writeError(c, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, crawler.ErrNotDirectory):
		writeError(c, http.StatusBadRequest, err.Error())
	default:
		logger.Error("request failed", slog.String("error", err.Error()))
		writeError(c, http.StatusInternalServerError, fmt.Sprintf("Error processing code: %s", err.Error()))
	}
}

// bind decodes the JSON body into req. An empty body leaves req zeroed so
// the handler can report the missing field.
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		writeError(c, http.StatusBadRequest, fmt.Sprintf("Invalid request: %s", err.Error()))
		return false
	}
	return true
}

package ledger

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	"github.com/SscSPs/invoice_pipeline/internal/middleware"
	"github.com/gin-gonic/gin"
)

// NewAPIHandler serves a MemoryLedger over the Ledger API:
//
//	POST /journal-entries               -> 201 posted, 422 declined, 400 malformed
//	GET  /journal-entries/:entryID/status
//
// When apiKey is not empty every request must carry it as a bearer token.
func NewAPIHandler(l *MemoryLedger, apiKey string, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.StructuredLoggingMiddleware(logger))
	if apiKey != "" {
		router.Use(requireAPIKey(apiKey))
	}

	api := &apiHandler{ledger: l}
	router.POST("/journal-entries", api.postEntry)
	router.GET("/journal-entries/:entryID/status", api.entryStatus)
	return router
}

type apiHandler struct {
	ledger *MemoryLedger
}

func requireAPIKey(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
			return
		}
		c.Next()
	}
}

func (h *apiHandler) postEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var payload entryPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, postingPayload{Success: false, Message: "Invalid journal entry: " + err.Error()})
		return
	}

	result := h.ledger.Record(payload.toDomain())
	c.Header(EntryIDHeader, result.EntryID)
	if !result.Success {
		logger.Warn("Journal entry declined",
			slog.String("entry_id", result.EntryID),
			slog.String("invoice_number", payload.InvoiceNumber),
			slog.String("reason", result.Message))
		c.JSON(http.StatusUnprocessableEntity, toPostingPayload(result))
		return
	}

	logger.Info("Journal entry posted",
		slog.String("entry_id", result.EntryID),
		slog.String("invoice_number", payload.InvoiceNumber))
	c.JSON(http.StatusCreated, toPostingPayload(result))
}

func (h *apiHandler) entryStatus(c *gin.Context) {
	entryID := c.Param("entryID")
	status, err := h.ledger.GetEntryStatus(c.Request.Context(), entryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if status == domain.LedgerEntryNotFound {
		c.JSON(http.StatusNotFound, statusPayload{EntryID: entryID, Status: string(status)})
		return
	}
	c.JSON(http.StatusOK, statusPayload{EntryID: entryID, Status: string(status)})
}

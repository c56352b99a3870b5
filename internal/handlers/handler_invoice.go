package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	portssvc "github.com/SscSPs/invoice_pipeline/internal/core/ports/services"
	"github.com/SscSPs/invoice_pipeline/internal/dto"
	"github.com/SscSPs/invoice_pipeline/internal/middleware"
	"github.com/gin-gonic/gin"
)

// invoiceHandler handles document submission and the invoice register.
type invoiceHandler struct {
	pipeline       portssvc.PipelineSvcFacade
	maxUploadBytes int64
}

func newInvoiceHandler(pipeline portssvc.PipelineSvcFacade, maxUploadBytes int64) *invoiceHandler {
	return &invoiceHandler{pipeline: pipeline, maxUploadBytes: maxUploadBytes}
}

// registerInvoiceRoutes registers routes related to invoices.
func registerInvoiceRoutes(rg *gin.RouterGroup, pipeline portssvc.PipelineSvcFacade, maxUploadBytes int64) {
	h := newInvoiceHandler(pipeline, maxUploadBytes)

	invoices := rg.Group("/invoices")
	{
		invoices.POST("", middleware.BodyLimit(maxUploadBytes), h.submitInvoice)
		invoices.GET("", h.listInvoices)
	}
}

// submitInvoice godoc
// @Summary Submit an invoice document
// @Description Uploads a document and runs the pipeline until the invoice is posted, terminated, or waiting for review
// @Tags invoices
// @Accept  multipart/form-data
// @Produce  json
// @Param   file formData file true "Invoice document (JSON, text, PNG, JPEG, WebP or GIF)"
// @Success 201 {object} dto.TaskResponse
// @Failure 400 {object} map[string]string "Missing or unreadable file"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 413 {object} map[string]string "Document too large"
// @Failure 500 {object} map[string]string "Failed to submit invoice"
// @Security BearerAuth
// @Router /invoices [post]
func (h *invoiceHandler) submitInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		logger.Warn("Multipart file missing", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "A document must be uploaded in the 'file' form field"})
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Document exceeds maximum allowed size"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Uploaded document could not be read"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		logger.Error("Failed to read uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Uploaded document could not be read"})
		return
	}

	upload := domain.Upload{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}
	logger.Info("Received invoice document",
		slog.String("file_name", upload.FileName),
		slog.Int("size", len(data)))

	task, err := h.pipeline.Submit(c.Request.Context(), upload, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to submit invoice")
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskResponse(task))
}

// listInvoices godoc
// @Summary List invoice records
// @Description Lists recorded invoices, newest first
// @Tags invoices
// @Produce  json
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token returned by the previous page"
// @Success 200 {object} dto.ListInvoicesResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list invoices"
// @Security BearerAuth
// @Router /invoices [get]
func (h *invoiceHandler) listInvoices(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err)
		return
	}

	resp, err := h.pipeline.ListInvoices(c.Request.Context(), params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list invoices")
		return
	}
	c.JSON(http.StatusOK, resp)
}

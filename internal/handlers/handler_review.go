package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/invoice_pipeline/internal/core/ports/services"
	"github.com/SscSPs/invoice_pipeline/internal/dto"
	"github.com/SscSPs/invoice_pipeline/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// reviewHandler is the reviewer-facing side of the review gate. Decisions and cancellations go through
// the pipeline so the task resumes in the same request.
type reviewHandler struct {
	reviews  portssvc.ReviewReaderSvc
	pipeline portssvc.PipelineSvcFacade
}

// registerReviewRoutes registers routes related to human review.
func registerReviewRoutes(rg *gin.RouterGroup, reviews portssvc.ReviewReaderSvc, pipeline portssvc.PipelineSvcFacade) {
	h := &reviewHandler{reviews: reviews, pipeline: pipeline}

	group := rg.Group("/reviews")
	{
		group.GET("", h.listPendingReviews)
		group.GET("/:taskID", h.getReview)
		group.POST("/:taskID/decision", h.decide)
		group.POST("/:taskID/cancel", h.cancel)
	}
}

// listPendingReviews godoc
// @Summary List pending reviews
// @Description Lists review requests waiting for a decision, oldest first
// @Tags reviews
// @Produce  json
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token returned by the previous page"
// @Success 200 {object} dto.ListReviewsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /reviews [get]
func (h *reviewHandler) listPendingReviews(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err)
		return
	}

	resp, err := h.reviews.ListPendingReviews(c.Request.Context(), params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list reviews")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getReview godoc
// @Summary Get a review request
// @Tags reviews
// @Produce  json
// @Param   taskID path string true "Task ID"
// @Success 200 {object} dto.ReviewResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Review not found"
// @Security BearerAuth
// @Router /reviews/{taskID} [get]
func (h *reviewHandler) getReview(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("task_id", c.Param("taskID")))

	review, err := h.reviews.GetReview(c.Request.Context(), c.Param("taskID"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve review")
		return
	}
	c.JSON(http.StatusOK, dto.ToReviewResponse(review))
}

// decide godoc
// @Summary Decide a pending review
// @Description Approves or rejects the invoice, optionally replacing it as a whole, and resumes the task
// @Tags reviews
// @Accept  json
// @Produce  json
// @Param   taskID path string true "Task ID"
// @Param   decision body dto.ReviewDecisionRequest true "Reviewer decision"
// @Success 200 {object} dto.TaskResponse
// @Failure 400 {object} map[string]string "Invalid decision or replacement invoice"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Task not found"
// @Failure 409 {object} map[string]string "Task is not awaiting review"
// @Security BearerAuth
// @Router /reviews/{taskID}/decision [post]
func (h *reviewHandler) decide(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("task_id", c.Param("taskID")))

	userID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	var req dto.ReviewDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}
	if *req.Approved && req.Invoice != nil {
		if err := binding.Validator.ValidateStruct(req.Invoice); err != nil {
			respondBindError(c, logger, err)
			return
		}
	}
	logger.Info("Received review decision", slog.Bool("approved", *req.Approved), slog.Bool("edited", req.Invoice != nil))

	task, err := h.pipeline.Resume(c.Request.Context(), c.Param("taskID"), req.ToDomain(userID))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to record review decision")
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskResponse(task))
}

// cancel godoc
// @Summary Cancel a pending review
// @Tags reviews
// @Accept  json
// @Produce  json
// @Param   taskID path string true "Task ID"
// @Param   request body dto.CancelReviewRequest true "Cancellation reason"
// @Success 200 {object} dto.TaskResponse
// @Failure 400 {object} map[string]string "Missing reason"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Task not found"
// @Failure 409 {object} map[string]string "Task is not awaiting review"
// @Security BearerAuth
// @Router /reviews/{taskID}/cancel [post]
func (h *reviewHandler) cancel(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("task_id", c.Param("taskID")))

	userID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	var req dto.CancelReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	task, err := h.pipeline.CancelReview(c.Request.Context(), c.Param("taskID"), req.Reason, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to cancel review")
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskResponse(task))
}

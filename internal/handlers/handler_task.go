package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/invoice_pipeline/internal/core/ports/services"
	"github.com/SscSPs/invoice_pipeline/internal/dto"
	"github.com/SscSPs/invoice_pipeline/internal/middleware"
	"github.com/gin-gonic/gin"
)

type taskHandler struct {
	pipeline portssvc.PipelineSvcFacade
}

// registerTaskRoutes registers routes related to pipeline tasks.
func registerTaskRoutes(rg *gin.RouterGroup, pipeline portssvc.PipelineSvcFacade) {
	h := &taskHandler{pipeline: pipeline}

	tasks := rg.Group("/tasks")
	{
		tasks.GET("/:taskID", h.getTask)
		tasks.POST("/:taskID/reconcile", h.reconcileTask)
	}
}

// getTask godoc
// @Summary Get a pipeline task
// @Description Returns the latest checkpoint of a task
// @Tags tasks
// @Produce  json
// @Param   taskID path string true "Task ID"
// @Success 200 {object} dto.TaskResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Task not found"
// @Security BearerAuth
// @Router /tasks/{taskID} [get]
func (h *taskHandler) getTask(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("task_id", c.Param("taskID")))

	task, err := h.pipeline.GetTask(c.Request.Context(), c.Param("taskID"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve task")
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskResponse(task))
}

// reconcileTask godoc
// @Summary Reconcile an uncertain posting
// @Description Looks up the ledger entry of a task whose posting failed after an entry id was issued
// @Tags tasks
// @Produce  json
// @Param   taskID path string true "Task ID"
// @Success 200 {object} dto.TaskResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Task not found"
// @Failure 409 {object} map[string]string "Task has nothing to reconcile"
// @Failure 500 {object} map[string]string "Ledger lookup failed"
// @Security BearerAuth
// @Router /tasks/{taskID}/reconcile [post]
func (h *taskHandler) reconcileTask(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("task_id", c.Param("taskID")))

	userID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	task, err := h.pipeline.ReconcilePosting(c.Request.Context(), c.Param("taskID"), userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to reconcile task")
		return
	}
	logger.Info("Task reconciled", slog.String("state", string(task.State)))
	c.JSON(http.StatusOK, dto.ToTaskResponse(task))
}

package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Harsha-vardhan456/bus-complaint-system/internal/logging"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/metrics"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/notify"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/repository"
)

// AdminHandler serves /api/admin. Routes are guarded by JWTAuth and
// RequireAdmin.
type AdminHandler struct {
	Complaints *repository.ComplaintRepo
	Notifier   notify.Dispatcher
	Metrics    *metrics.Metrics
}

func NewAdminHandler(r *repository.ComplaintRepo, n notify.Dispatcher, m *metrics.Metrics) *AdminHandler {
	return &AdminHandler{Complaints: r, Notifier: n, Metrics: m}
}

type statusReq struct {
	Status  string `json:"status"`
	Remarks string `json:"remarks"`
}

// List returns complaints filtered by ?status, ?type, ?startDate, ?endDate.
func (h *AdminHandler) List(c echo.Context) error {
	f := repository.ComplaintFilter{
		Status:    c.QueryParam("status"),
		Type:      c.QueryParam("type"),
		StartDate: c.QueryParam("startDate"),
		EndDate:   c.QueryParam("endDate"),
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.Complaints.ListFiltered(ctx, f)
	if err != nil {
		if errors.Is(err, repository.ErrValidation) {
			return errorDetails(c, http.StatusBadRequest, "Invalid filter", validationMessage(err))
		}
		return serverError(c, "Failed to fetch complaints", err)
	}
	return c.JSON(http.StatusOK, list)
}

// UpdateStatus changes a complaint's status and remarks and notifies the
// submitter.
func (h *AdminHandler) UpdateStatus(c echo.Context) error {
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Status is required")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	id := c.Param("id")
	updated, err := h.Complaints.UpdateStatus(ctx, id, req.Status, req.Remarks)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrValidation):
			return errorJSON(c, http.StatusBadRequest, "Status is required")
		case errors.Is(err, repository.ErrNotFound):
			return errorJSON(c, http.StatusNotFound, "Complaint not found")
		default:
			return serverError(c, "Failed to update complaint", err)
		}
	}
	h.Metrics.StatusUpdated(updated.Status)

	if !h.Notifier.SendStatusUpdate(ctx, updated.UserEmail, updated.ID, updated.Status, updated.Remarks) {
		logging.FromContext(ctx).Warn("status update email not queued", "tracking_id", updated.ID)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Complaint status updated successfully",
		"status":  updated.Status,
	})
}

// Stats returns the total count and status/type distributions.
func (h *AdminHandler) Stats(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	st, err := h.Complaints.Stats(ctx)
	if err != nil {
		return serverError(c, "Failed to compute statistics", err)
	}
	return c.JSON(http.StatusOK, st)
}

package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Harsha-vardhan456/bus-complaint-system/internal/logging"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/metrics"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/middleware"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/model"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/notify"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/repository"
)

// ComplaintHandler serves the rider-facing complaint endpoints.
type ComplaintHandler struct {
	Complaints *repository.ComplaintRepo
	Notifier   notify.Dispatcher
	Metrics    *metrics.Metrics
}

func NewComplaintHandler(r *repository.ComplaintRepo, n notify.Dispatcher, m *metrics.Metrics) *ComplaintHandler {
	return &ComplaintHandler{Complaints: r, Notifier: n, Metrics: m}
}

// Submit stores a complaint for the authenticated user and queues the
// confirmation email. A failed notification does not fail the request.
func (h *ComplaintHandler) Submit(c echo.Context) error {
	var in model.ComplaintInput
	if err := c.Bind(&in); err != nil {
		h.Metrics.ComplaintSubmitted("invalid")
		return errorJSON(c, http.StatusBadRequest, "Invalid request data")
	}
	email := middleware.Email(c)

	ctx, cancel := requestContext(c)
	defer cancel()

	id, err := h.Complaints.Submit(ctx, in, email)
	if err != nil {
		var dup *repository.DuplicateComplaintError
		switch {
		case errors.As(err, &dup):
			h.Metrics.ComplaintSubmitted("duplicate")
			return c.JSON(http.StatusConflict, echo.Map{
				"error":                 "Duplicate complaint",
				"details":               "A similar complaint has already been submitted today for this bus and route",
				"existing_complaint_id": dup.ExistingID,
			})
		case errors.Is(err, repository.ErrValidation):
			h.Metrics.ComplaintSubmitted("invalid")
			return errorDetails(c, http.StatusBadRequest, "Missing required fields", validationMessage(err))
		default:
			h.Metrics.ComplaintSubmitted("error")
			return serverError(c, "Failed to submit complaint", err)
		}
	}
	h.Metrics.ComplaintSubmitted("created")

	in = in.Trimmed()
	complaint := &model.Complaint{
		ID:            id,
		BusNumber:     in.BusNumber,
		RouteNumber:   in.RouteNumber,
		ComplaintType: in.ComplaintType,
		Description:   in.Description,
		Location:      in.Location,
		Date:          in.Date,
		Status:        model.StatusPending,
		UserEmail:     email,
	}
	msg := "Complaint submitted successfully"
	if !h.Notifier.SendConfirmation(ctx, email, id, complaint) {
		logging.FromContext(ctx).Warn("confirmation email not queued", "tracking_id", id)
		msg = "Complaint submitted successfully but email notification failed"
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": msg, "tracking_id": id})
}

// Track returns a complaint by its tracking id. No authentication needed.
func (h *ComplaintHandler) Track(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	complaint, err := h.Complaints.GetByID(ctx, c.Param("tracking_id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errorJSON(c, http.StatusNotFound, "Complaint not found")
		}
		return serverError(c, "Failed to fetch complaint", err)
	}
	return c.JSON(http.StatusOK, complaint)
}

// ListMine returns the authenticated user's complaints, newest first.
func (h *ComplaintHandler) ListMine(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.Complaints.GetByUser(ctx, middleware.Email(c))
	if err != nil {
		return serverError(c, "Failed to fetch complaints", err)
	}
	return c.JSON(http.StatusOK, list)
}

package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Harsha-vardhan456/bus-complaint-system/internal/logging"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/repository"
)

// storeTimeout bounds every store call made while serving a request.
const storeTimeout = 5 * time.Second

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), storeTimeout)
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"error": msg})
}

func errorDetails(c echo.Context, status int, msg, details string) error {
	return c.JSON(status, echo.Map{"error": msg, "details": details})
}

// serverError logs err with the request logger and answers 500 with a
// generic message.
func serverError(c echo.Context, msg string, err error) error {
	logging.FromContext(c.Request().Context()).Error(msg, "err", err)
	return errorJSON(c, http.StatusInternalServerError, msg)
}

// validationMessage strips the sentinel prefix from a wrapped ErrValidation.
func validationMessage(err error) string {
	if !errors.Is(err, repository.ErrValidation) {
		return err.Error()
	}
	return strings.TrimPrefix(err.Error(), repository.ErrValidation.Error()+": ")
}

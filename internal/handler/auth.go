package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Harsha-vardhan456/bus-complaint-system/internal/logging"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/notify"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/repository"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/utils"
)

// AuthHandler bundles dependencies for the /api/auth endpoints.
type AuthHandler struct {
	Users    *repository.UserRepo
	Tokens   *utils.TokenService
	Notifier notify.Dispatcher
}

func NewAuthHandler(u *repository.UserRepo, t *utils.TokenService, n notify.Dispatcher) *AuthHandler {
	return &AuthHandler{Users: u, Tokens: t, Notifier: n}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type forgotReq struct {
	Email string `json:"email" validate:"required"`
}

type resetReq struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

type userPart struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type loginResp struct {
	Token   string   `json:"token"`
	User    userPart `json:"user"`
	Message string   `json:"message"`
}

const forgotPasswordAck = "If your email is registered, you will receive password reset instructions"

// Register creates a user account with the "user" role.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return errorDetails(c, http.StatusBadRequest, "Invalid request data", "No JSON data provided")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := c.Validate(&req); err != nil {
		if missing := missingFields(err); len(missing) > 0 {
			return errorDetails(c, http.StatusBadRequest, "Missing required fields",
				"Please provide: "+strings.Join(missing, ", "))
		}
		if failedTag(err, "email", "email") {
			return errorDetails(c, http.StatusBadRequest, "Invalid email format", "The email address is not valid")
		}
		return errorDetails(c, http.StatusBadRequest, "Invalid request data", err.Error())
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.Users.Register(ctx, req.Name, req.Email, req.Password); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return errorDetails(c, http.StatusBadRequest, "Email already registered",
				"Please use a different email or try logging in")
		case errors.Is(err, repository.ErrValidation):
			return errorDetails(c, http.StatusBadRequest, "Invalid password", validationMessage(err))
		default:
			return serverError(c, "Failed to create user account", err)
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"details": "You can now log in with your email and password",
	})
}

// Login verifies credentials and returns a session token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return errorDetails(c, http.StatusBadRequest, "Invalid request data", "No JSON data provided")
	}
	if err := c.Validate(&req); err != nil {
		return errorDetails(c, http.StatusBadRequest, "Missing required fields",
			"Please provide: "+strings.Join(missingFields(err), ", "))
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCredentials) {
			return errorDetails(c, http.StatusUnauthorized, "Authentication failed", "Invalid email or password")
		}
		return serverError(c, "Authentication failed", err)
	}

	tok, err := h.Tokens.IssueSessionToken(*u)
	if err != nil {
		return serverError(c, "Failed to generate authentication token", err)
	}

	return c.JSON(http.StatusOK, loginResp{
		Token:   tok.Token,
		User:    userPart{Name: u.Name, Email: u.Email, Role: u.Role},
		Message: "Login successful",
	})
}

// ForgotPassword mails a reset link. Unknown emails get the same answer as
// known ones.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil || c.Validate(&req) != nil {
		return errorJSON(c, http.StatusBadRequest, "Email is required")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logging.FromContext(ctx).Info("password reset requested for unknown email")
			return c.JSON(http.StatusOK, echo.Map{"message": forgotPasswordAck})
		}
		return serverError(c, "An unexpected error occurred", err)
	}

	tok, err := h.Tokens.IssueResetToken(u.Email)
	if err != nil {
		return serverError(c, "An unexpected error occurred", err)
	}
	if !h.Notifier.SendPasswordReset(ctx, u.Email, tok.Token) {
		return errorJSON(c, http.StatusInternalServerError, "Failed to send password reset email")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": forgotPasswordAck})
}

// ResetPassword sets a new password for the email carried by a reset token.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil || c.Validate(&req) != nil {
		return errorJSON(c, http.StatusBadRequest, "Token and new password are required")
	}

	email, err := h.Tokens.VerifyReset(req.Token)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid or expired reset token")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Users.ResetPassword(ctx, email, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, repository.ErrValidation):
			return errorDetails(c, http.StatusBadRequest, "Invalid password", validationMessage(err))
		case errors.Is(err, repository.ErrNotFound):
			return errorJSON(c, http.StatusBadRequest, "Invalid or expired reset token")
		default:
			return serverError(c, "Failed to update password", err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password updated successfully"})
}

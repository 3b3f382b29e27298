package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/voucher_approval_app/internal/apperrors"
	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
	portssvc "github.com/SscSPs/voucher_approval_app/internal/core/ports/services"
	"github.com/SscSPs/voucher_approval_app/internal/dto"
	"github.com/SscSPs/voucher_approval_app/internal/middleware"
	"github.com/SscSPs/voucher_approval_app/internal/utils"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles registration and login. None of its routes require a token.
type AuthHandler struct {
	organizationService portssvc.OrganizationSvcFacade
	userService         portssvc.UserSvcFacade
	tokenService        portssvc.TokenSvcFacade
	googleOAuthService  portssvc.GoogleOAuthHandlerSvcFacade
	posthogClient       *utils.PosthogClientWrapper
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(services *portssvc.ServiceContainer, posthogClient *utils.PosthogClientWrapper) *AuthHandler {
	return &AuthHandler{
		organizationService: services.Organization,
		userService:         services.User,
		tokenService:        services.TokenService,
		googleOAuthService:  services.GoogleOAuthHandler,
		posthogClient:       posthogClient,
	}
}

// RegisterAuthRoutes sets up the public authentication routes behind the given middlewares.
func RegisterAuthRoutes(r gin.IRouter, h *AuthHandler, middlewares ...gin.HandlerFunc) {
	auth := r.Group("/auth", middlewares...)
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/google", h.LoginGoogle)
	}
}

// Register godoc
// @Summary Register an organization
// @Description Creates an organization and its main admin, and signs the admin in.
// @Tags auth
// @Accept json
// @Produce json
// @Param register body dto.RegisterRequest true "Organization and admin details"
// @Success 201 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Organization name or email already taken"
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	org, admin, err := h.organizationService.RegisterOrganization(c.Request.Context(), req)
	if err != nil {
		respondWithError(c, err, "Failed to register organization")
		return
	}
	logger.Info("Organization registered", slog.String("organization_id", org.OrganizationID), slog.String("user_id", admin.UserID))

	middleware.PosthogEvent(c, h.posthogClient, admin.UserID, "organization_registered", map[string]any{
		"organization_id": org.OrganizationID,
	})
	h.respondWithToken(c, http.StatusCreated, admin)
}

// Login godoc
// @Summary Password login
// @Description Authenticates a user and returns a JWT token.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	user, err := h.userService.AuthenticateUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid email or password"})
			return
		}
		respondWithError(c, err, "Failed to log in")
		return
	}

	middleware.PosthogEvent(c, h.posthogClient, user.UserID, "user_logged_in", map[string]any{"provider": "password"})
	h.respondWithToken(c, http.StatusOK, user)
}

// LoginGoogle godoc
// @Summary Google sign-in
// @Description Accepts an authorization code or a Google ID token. Only existing members with a verified
// @Description Google email can sign in, accounts are never created here.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.GoogleLoginRequest true "Authorization code or ID token"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse "Google could not be reached"
// @Router /auth/google [post]
func (h *AuthHandler) LoginGoogle(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)

	var req dto.GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	idTokenString := strings.TrimSpace(req.IDToken)
	if idTokenString == "" {
		if strings.TrimSpace(req.Code) == "" {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Either code or idToken is required"})
			return
		}

		oauth2Token, err := h.googleOAuthService.ExchangeCodeForToken(ctx, req.Code)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to exchange authorization code with Google", slog.String("error", err.Error()))
			lowered := strings.ToLower(err.Error())
			if strings.Contains(lowered, "invalid_grant") || strings.Contains(lowered, "bad request") {
				c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid or expired authorization code"})
				return
			}
			c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Failed to communicate with Google"})
			return
		}

		idTokenString, _ = oauth2Token.Extra("id_token").(string)
		if idTokenString == "" {
			logger.ErrorContext(ctx, "ID token not found in Google's token response")
			c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Google did not return an ID token"})
			return
		}
	}

	payload, err := h.googleOAuthService.ValidateGoogleIDToken(ctx, idTokenString)
	if err != nil {
		logger.WarnContext(ctx, "Google ID token validation failed", slog.String("error", err.Error()))
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid Google ID token"})
		return
	}

	email, _ := payload.Claims["email"].(string)
	emailVerified, _ := payload.Claims["email_verified"].(bool)
	if email == "" || !emailVerified {
		logger.WarnContext(ctx, "Google account has no verified email", slog.String("google_user_id", payload.Subject))
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Google account email is not verified"})
		return
	}

	user, err := h.userService.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.InfoContext(ctx, "Google sign-in for unknown email", slog.String("google_user_id", payload.Subject))
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "No account is registered for this email"})
			return
		}
		respondWithError(c, err, "Failed to log in")
		return
	}

	middleware.PosthogEvent(c, h.posthogClient, user.UserID, "user_logged_in", map[string]any{"provider": "google"})
	h.respondWithToken(c, http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, user *domain.User) {
	token, expiresAt, err := h.tokenService.GenerateAccessToken(c.Request.Context(), user)
	if err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to sign JWT token", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate token"})
		return
	}

	c.JSON(status, dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.ToUserResponse(user),
	})
}

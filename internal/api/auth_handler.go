package api

import (
	"net/http"

	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/middleware"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler exposes account and session endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register creates a new account
// @Summary Register account
// @Description Create a new player account
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body service.RegisterRequest true "registration payload"
// @Success 200 {object} service.AuthResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "invalid request payload",
			Details: err.Error(),
		})
		return
	}

	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		if err == service.ErrUserExists {
			c.JSON(http.StatusConflict, ErrorResponse{
				Code:    "ACCOUNT_EXISTS",
				Message: err.Error(),
			})
			return
		}
		respondError(c, "REGISTER_FAILED", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Login authenticates a player
// @Summary Login
// @Description Authenticate with username and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body service.LoginRequest true "credentials"
// @Success 200 {object} service.AuthResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "invalid request payload",
			Details: err.Error(),
		})
		return
	}

	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		status := http.StatusUnauthorized
		if err == service.ErrAccountDisabled {
			status = http.StatusForbidden
		}

		c.JSON(status, ErrorResponse{
			Code:    "LOGIN_FAILED",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Logout drops the current session
// @Summary Logout
// @Description End the current session
// @Tags Auth
// @Security Bearer
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, ok := middleware.GetJTI(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    "UNAUTHORIZED",
			Message: "not logged in",
		})
		return
	}

	if err := h.authService.Logout(c.Request.Context(), jti); err != nil {
		respondError(c, "LOGOUT_FAILED", err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "logged out",
	})
}

// RefreshToken rotates the token pair
// @Summary Refresh tokens
// @Description Exchange a refresh token for a new token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RefreshTokenRequest true "refresh token"
// @Success 200 {object} service.AuthResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    "REFRESH_FAILED",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetProfile returns the current player
// @Summary Current player profile
// @Description Return the authenticated player's profile
// @Tags Auth
// @Security Bearer
// @Success 200 {object} models.Player
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	playerID, ok := middleware.GetPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    "UNAUTHORIZED",
			Message: "not logged in",
		})
		return
	}

	player, err := h.authService.CurrentPlayer(c.Request.Context(), playerID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    "PLAYER_NOT_FOUND",
			Message: "player not found",
		})
		return
	}

	c.JSON(http.StatusOK, player)
}

// RefreshTokenRequest is the refresh payload.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

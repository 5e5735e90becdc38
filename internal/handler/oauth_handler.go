package handler

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/immochat/auth-service/internal/dto"
	"github.com/immochat/auth-service/internal/service"
	"go.uber.org/zap"
)

const stateCookieMaxAge = 600

// OAuthHandler handles the Google sign-in flow
type OAuthHandler struct {
	oauthService service.OAuthService
	logger       *zap.Logger
}

// NewOAuthHandler creates a new OAuth handler
func NewOAuthHandler(oauthService service.OAuthService, logger *zap.Logger) *OAuthHandler {
	return &OAuthHandler{
		oauthService: oauthService,
		logger:       logger,
	}
}

// GoogleLogin redirects to the provider authorization URL with a fresh
// state cookie
// @Summary Start Google sign-in
// @Tags oauth
// @Success 302
// @Router /auth/google/login [get]
func (h *OAuthHandler) GoogleLogin(c *gin.Context) {
	state, err := randomState()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.SetCookie("oauth_state", state, stateCookieMaxAge, "/api/v1/auth/google", "", true, true)
	c.Redirect(http.StatusFound, h.oauthService.LoginURL(state))
}

// GoogleCallback finishes the sign-in: state check, code exchange, identity
// resolution and session mint
// @Summary Finish Google sign-in
// @Tags oauth
// @Produce json
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/google/callback [get]
func (h *OAuthHandler) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	cookieState, err := c.Cookie("oauth_state")
	if err != nil || state == "" || state != cookieState {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "invalid oauth state",
		})
		return
	}

	c.SetCookie("oauth_state", "", -1, "/api/v1/auth/google", "", true, true)

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad request",
			Message: "missing authorization code",
		})
		return
	}

	response, err := h.oauthService.HandleCallback(c.Request.Context(), code)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	setRefreshCookie(c, response.RefreshToken, response.ExpiresIn)
	c.JSON(http.StatusOK, response.AuthResponse)
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

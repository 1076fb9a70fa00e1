package interfaces

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"jobselect/domain"
	"jobselect/usecase"
)

const oauthStateCookie = "oauth_state"

// Login exchanges an identity assertion for {token, user}.
func (h *HTTPHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}

	session, err := h.Auth.Login(c.Request.Context(), usecase.LoginInput{
		Email:   req.Email,
		Name:    req.Name,
		Photo:   req.Photo,
		IDToken: req.IDToken,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// GoogleLogin redirects to Google's consent screen with a state cookie.
func (h *HTTPHandler) GoogleLogin(c *gin.Context) {
	if !h.Auth.GoogleEnabled() {
		writeError(c, domain.NotFound("google sign-in is not configured"))
		return
	}
	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/", "", !h.cfg.IsDevelopment(), true)
	c.Redirect(http.StatusFound, h.Auth.GoogleAuthURL(state))
}

// GoogleCallback completes the code flow and answers {token, user}.
func (h *HTTPHandler) GoogleCallback(c *gin.Context) {
	if !h.Auth.GoogleEnabled() {
		writeError(c, domain.NotFound("google sign-in is not configured"))
		return
	}
	expected, err := c.Cookie(oauthStateCookie)
	if err != nil || expected == "" || expected != c.Query("state") {
		writeError(c, domain.NewError(domain.KindInvalidCredential, "oauth state mismatch", err))
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", !h.cfg.IsDevelopment(), true)

	session, err := h.Auth.GoogleCallback(c.Request.Context(), c.Query("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *HTTPHandler) Me(c *gin.Context) {
	session, _ := sessionFrom(c)
	c.JSON(http.StatusOK, session.User)
}

// Logout is stateless: the client discards its session.
func (h *HTTPHandler) Logout(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

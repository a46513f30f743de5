package handlers

import (
	"encoding/json"
	"net/http"

	"cashloan/internal/backend"
	"cashloan/internal/domain/models"
	"cashloan/internal/session"
	"cashloan/internal/validate"

	"github.com/gin-gonic/gin"
)

const tokenCookieMaxAge = 7 * 24 * 60 * 60

// POST /api/auth/login forwards the credentials and, on success, keeps the
// token in an HTTP-only cookie as well as returning it.
func (g *Gateway) Login(c *gin.Context) {
	var body models.LoginRequest
	if !BindJSONOrError(c, &body) {
		return
	}
	if err := validate.Struct(body); err != nil {
		RespondDomainError(c, err)
		return
	}
	req, err := backend.JSONRequest(http.MethodPost, backend.PathLogin, "", body)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	resp, err := g.service(c).Forward(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if resp.OK() {
		var out models.LoginResponse
		if err := json.Unmarshal(resp.Body, &out); err == nil && out.Token != "" {
			g.setTokenCookie(c, out.Token, tokenCookieMaxAge)
		}
	}
	relay(c, resp, 0)
}

// POST /api/auth/logout. The cookie is cleared even when the backend call
// fails, so the browser never stays half signed in.
func (g *Gateway) Logout(c *gin.Context) {
	g.setTokenCookie(c, "", -1)

	token, ok := session.FromRequest(c.Request, g.CookieName())
	if !ok {
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
		return
	}
	resp, err := g.service(c).Forward(c.Request.Context(), backend.Request{
		Method: http.MethodPost,
		Path:   backend.PathLogout,
		Token:  token,
	})
	if err != nil || !resp.OK() {
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
		return
	}
	relay(c, resp, 0)
}

// GET /api/auth/me
func (g *Gateway) Me(c *gin.Context) {
	g.forward(c, backend.Request{Method: http.MethodGet, Path: backend.PathMe})
}

// setTokenCookie writes the token unescaped; gin's SetCookie would
// query-escape Sanctum tokens such as "12|abc".
func (g *Gateway) setTokenCookie(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     g.CookieName(),
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   g.SecureCookie,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

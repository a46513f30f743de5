package handlers

import (
	"time"

	"cashloan/internal/backend"
	"cashloan/internal/cache"
	"cashloan/internal/http/middleware"
	"cashloan/internal/repositories"
	"cashloan/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Gateway holds what every handler needs to reach the backend.
type Gateway struct {
	Client      *backend.Client
	Cache       cache.Cache
	CacheTTL    time.Duration
	Audit       repositories.AuditRepository
	Log         *zap.Logger
	TokenCookie string
	// SecureCookie marks the login cookie Secure; off for plain http in dev.
	SecureCookie bool
	ExportLimit  int
}

func (g *Gateway) service(c *gin.Context) services.GatewayService {
	return services.GatewayService{
		Client:    g.Client,
		Cache:     g.Cache,
		CacheTTL:  g.CacheTTL,
		Audit:     g.Audit,
		Log:       g.Log,
		RequestID: middleware.GetRequestID(c),
	}
}

func (g *Gateway) CookieName() string {
	if g.TokenCookie != "" {
		return g.TokenCookie
	}
	return "token"
}

// forward relays one read to the backend with the caller's token.
func (g *Gateway) forward(c *gin.Context, req backend.Request) {
	req.Token = middleware.GetToken(c)
	resp, err := g.service(c).Forward(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	relay(c, resp, 0)
}

// forwardCached is forward through the read cache for scope.
func (g *Gateway) forwardCached(c *gin.Context, scope string, req backend.Request) {
	req.Token = middleware.GetToken(c)
	resp, hit, err := g.service(c).ForwardCached(c.Request.Context(), scope, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if hit {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	relay(c, resp, 0)
}

// forwardAction sends a mutation, audits it and relays the answer.
func (g *Gateway) forwardAction(c *gin.Context, action services.Action, req backend.Request, successStatus int) {
	req.Token = middleware.GetToken(c)
	action.Claims = middleware.GetClaims(c)
	resp, err := g.service(c).ForwardAction(c.Request.Context(), action, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	relay(c, resp, successStatus)
}

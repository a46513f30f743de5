package handlers

import (
	"net/http"

	"cashloan/internal/backend"
	"cashloan/internal/domain/models"
	"cashloan/internal/services"
	"cashloan/internal/validate"

	"github.com/gin-gonic/gin"
)

// GET /api/users
func (g *Gateway) ListUsers(c *gin.Context) {
	g.forward(c, backend.Request{Method: http.MethodGet, Path: backend.PathUsers, Query: c.Request.URL.Query()})
}

// PUT /api/users/:id
func (g *Gateway) UpdateUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var body models.UserUpdate
	if !BindJSONOrError(c, &body) {
		return
	}
	if err := validate.Struct(body); err != nil {
		RespondDomainError(c, err)
		return
	}
	req, err := backend.JSONRequest(http.MethodPut, backend.UserPath(id), "", body)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	g.forwardAction(c, services.Action{
		Name:       "user.update",
		TargetID:   id,
		Invalidate: []string{services.ScopeAdminDashboard, services.ScopeLenders},
	}, req, 0)
}

// PUT /api/settings/update-contact
func (g *Gateway) UpdateContact(c *gin.Context) {
	var body models.ContactUpdate
	if !BindJSONOrError(c, &body) {
		return
	}
	body.Normalize()
	if err := validate.Struct(body); err != nil {
		RespondDomainError(c, err)
		return
	}
	req, err := backend.JSONRequest(http.MethodPut, backend.PathUpdateContact, "", body)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	g.forwardAction(c, services.Action{Name: "settings.update_contact"}, req, 0)
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.admin.ListUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usersToResponse(users))
}

func (h *Handler) listApplications(c *gin.Context) {
	apps, err := h.admin.ListApplications(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, applicationDetailsToResponse(apps))
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	out, err := h.admin.DeleteUser(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.logWarnings(c, out.Errs)

	c.JSON(http.StatusOK, withWarnings(gin.H{"deleted": id}, out.Warnings...))
}

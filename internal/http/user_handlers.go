package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobboard/internal/service"
)

type updateProfileRequest struct {
	Name     string `json:"name" validate:"omitempty,max=100"`
	Email    string `json:"email" validate:"omitempty,email,max=255"`
	Password string `json:"password" validate:"omitempty,min=8,max=72"`
}

func (r *updateProfileRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
}

func (h *Handler) getProfile(c *gin.Context) {
	user, err := h.profile.GetProfile(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := h.bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	user, err := h.profile.UpdateProfile(c.Request.Context(), currentUser(c).ID, service.ProfileUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) myApplications(c *gin.Context) {
	apps, err := h.profile.MyApplications(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, applicationDetailsToResponse(apps))
}

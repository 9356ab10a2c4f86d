package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobboard/internal/domain"
	"jobboard/internal/service"
)

const (
	warnVerificationEmail = "verification email could not be sent, request a new one later"
	warnResetEmail        = "password reset email could not be sent, try again later"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=candidate recruiter"`
}

func (r *registerRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Role = strings.TrimSpace(r.Role)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *emailRequest) normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

type resetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func withWarnings(resp gin.H, warnings ...string) gin.H {
	if len(warnings) > 0 {
		resp["warnings"] = warnings
	}
	return resp
}

func (h *Handler) deliveryWarnings(c *gin.Context, d service.Delivery, warning string) []string {
	if !d.Failed() {
		return nil
	}
	h.logWarnings(c, []error{d.Err})
	return []string{warning}
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := h.bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	user, delivery, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, withWarnings(gin.H{
		"message": "registration successful, please check your email to verify your account",
		"user":    userToResponse(*user),
	}, h.deliveryWarnings(c, delivery, warnVerificationEmail)...))
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := h.bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": res.Token,
		"user":  userToResponse(*res.User),
	})
}

func (h *Handler) verifyEmail(c *gin.Context) {
	if _, err := h.auth.VerifyEmail(c.Request.Context(), c.Param("token")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "email verified successfully"})
}

func (h *Handler) resendVerification(c *gin.Context) {
	var req emailRequest
	if err := h.bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	delivery, err := h.auth.ResendVerification(c.Request.Context(), req.Email)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, withWarnings(gin.H{
		"message": "verification email sent",
	}, h.deliveryWarnings(c, delivery, warnVerificationEmail)...))
}

func (h *Handler) forgotPassword(c *gin.Context) {
	var req emailRequest
	if err := h.bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	delivery, err := h.auth.RequestReset(c.Request.Context(), req.Email)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, withWarnings(gin.H{
		"message": "password reset email sent",
	}, h.deliveryWarnings(c, delivery, warnResetEmail)...))
}

func (h *Handler) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := h.bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.auth.ConsumeReset(c.Request.Context(), c.Param("token"), req.Password); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password has been reset"})
}

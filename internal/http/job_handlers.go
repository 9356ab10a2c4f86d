package http

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobboard/internal/apperr"
	"jobboard/internal/domain"
	"jobboard/internal/service"
)

// multipart framing on top of the logo itself
const logoFormOverhead = 64 << 10

type createJobRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=10000"`
	Company     string `json:"company" validate:"required,max=200"`
	Location    string `json:"location" validate:"required,max=200"`
}

func (r *createJobRequest) normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Company = strings.TrimSpace(r.Company)
	r.Location = strings.TrimSpace(r.Location)
}

func (h *Handler) listJobs(c *gin.Context) {
	jobs, err := h.jobs.ListJobs(c.Request.Context(), domain.JobFilter{
		Query:    c.Query("q"),
		Location: c.Query("location"),
		Company:  c.Query("company"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobsToResponse(jobs))
}

func (h *Handler) getJob(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	job, err := h.jobs.GetJob(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobToResponse(*job))
}

func (h *Handler) createJob(c *gin.Context) {
	var req createJobRequest
	if err := h.bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	job, err := h.jobs.PostJob(c.Request.Context(), currentUser(c), service.JobInput{
		Title:       req.Title,
		Description: req.Description,
		Company:     req.Company,
		Location:    req.Location,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, jobToResponse(*job))
}

func (h *Handler) deleteJob(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	out, err := h.jobs.DeleteJob(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.logWarnings(c, out.Errs)

	c.JSON(http.StatusOK, withWarnings(gin.H{"deleted": id}, out.Warnings...))
}

func (h *Handler) applyToJob(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	app, err := h.jobs.ApplyToJob(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":     "application submitted",
		"application": applicationToResponse(*app),
	})
}

func (h *Handler) listJobApplications(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	apps, err := h.jobs.ListApplicants(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, applicationDetailsToResponse(apps))
}

func (h *Handler) uploadLogo(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, service.MaxLogoSize+logoFormOverhead)
	header, err := c.FormFile("logo")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			h.respondError(c, logoError("is too large"))
			return
		}
		h.respondError(c, logoError("is required"))
		return
	}

	file, err := header.Open()
	if err != nil {
		h.respondError(c, apperr.Internal(err))
		return
	}
	defer file.Close()

	// the declared part type is not trusted; sniff the leading bytes instead
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		h.respondError(c, apperr.Internal(err))
		return
	}
	head = head[:n]

	job, out, err := h.jobs.UploadLogo(c.Request.Context(), currentUser(c), id, service.LogoUpload{
		ContentType: http.DetectContentType(head),
		Size:        header.Size,
		Body:        io.MultiReader(bytes.NewReader(head), file),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.logWarnings(c, out.Errs)

	c.JSON(http.StatusOK, withWarnings(gin.H{"job": jobToResponse(*job)}, out.Warnings...))
}

func (h *Handler) getLogo(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	url, err := h.jobs.LogoURL(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

func logoError(message string) error {
	return apperr.Validation("logo "+message).WithDetails(map[string]string{"logo": message})
}

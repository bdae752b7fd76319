package applications

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"application-tracker/internal/shared/server/middleware"
	"application-tracker/internal/shared/server/respond"
	"application-tracker/internal/shared/telemetry"
	"application-tracker/internal/uploads"
)

const (
	resumeField     = "resume"
	multipartMemory = 8 << 20
)

// Handler wires HTTP handlers to the application and status services.
type Handler struct {
	Apps   *Service
	Status *StatusService
}

func NewHandler(apps *Service, status *StatusService) *Handler {
	return &Handler{Apps: apps, Status: status}
}

// RegisterRoutes attaches application routes. applyMiddleware runs before the submit handler.
func (h *Handler) RegisterRoutes(r gin.IRouter, applyMiddleware ...gin.HandlerFunc) {
	r.POST("/apply", append(applyMiddleware, h.apply)...)
	r.GET("/api/applications/:token", h.getJSON)
	r.GET("/applications/:token", h.page)
	r.POST("/api/applications/:token/status", middleware.OperatorCredential(), h.updateStatus)
}

func (h *Handler) apply(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "upload exceeds the size limit", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "invalid_form", "unable to parse form", nil)
		return
	}
	if c.Request.MultipartForm != nil {
		defer c.Request.MultipartForm.RemoveAll()
	}

	quiz, err := ParseQuiz(c.PostForm("quizDetails"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	sub := Submission{
		Name:    c.PostForm("name"),
		Email:   c.PostForm("email"),
		Role:    c.PostForm("role"),
		Skills:  c.PostForm("skills"),
		Message: c.PostForm("message"),
		Quiz:    quiz,
	}

	if fh := formFile(c.Request.MultipartForm, resumeField); fh != nil {
		file, err := fh.Open()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "invalid_form", "unable to read resume", nil)
			return
		}
		defer file.Close()
		sub.Attachment = &uploads.Attachment{
			OriginalName: fh.Filename,
			DeclaredType: fh.Header.Get("Content-Type"),
			Size:         fh.Size,
			Body:         file,
		}
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	if h.Apps.BaseURL == "" {
		ctx = WithBaseURL(ctx, requestOrigin(c.Request))
	}
	receipt, err := h.Apps.Submit(ctx, sub)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Set(middleware.ApplicationTokenKey, receipt.Token)
	respond.OK(c, gin.H{"token": receipt.Token, "url": receipt.TrackingURL})
}

// requestOrigin rebuilds scheme://host for the incoming request.
func requestOrigin(r *http.Request) string {
	if r.Host == "" {
		return ""
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	} else if proto := strings.ToLower(strings.TrimSpace(strings.Split(r.Header.Get("X-Forwarded-Proto"), ",")[0])); proto == "https" || proto == "http" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

func (h *Handler) getJSON(c *gin.Context) {
	token := c.Param("token")
	c.Set(middleware.ApplicationTokenKey, token)

	rec, err := h.Status.Get(c.Request.Context(), token)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"application": rec})
}

func (h *Handler) page(c *gin.Context) {
	token := c.Param("token")
	c.Set(middleware.ApplicationTokenKey, token)

	rec, err := h.Status.Get(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.Render(http.StatusNotFound, render.HTML{Template: pageTemplates, Name: "not_found"})
			return
		}
		telemetry.Error("applications.page_failed", map[string]any{"token": token, "error": err.Error()})
		c.String(http.StatusInternalServerError, "server error")
		return
	}
	c.Render(http.StatusOK, render.HTML{Template: pageTemplates, Name: "status", Data: rec})
}

type statusRequest struct {
	Status string `json:"status" form:"status"`
}

func (h *Handler) updateStatus(c *gin.Context) {
	token := c.Param("token")
	c.Set(middleware.ApplicationTokenKey, token)

	// A missing or malformed body is reported as missing_status after authorization.
	var req statusRequest
	_ = c.ShouldBind(&req)

	rec, err := h.Status.UpdateStatus(c.Request.Context(), token, req.Status, middleware.OperatorCredentialFromContext(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Set(middleware.StatusTransitionKey, PreviousStatus(rec)+"->"+rec.Status)
	respond.OK(c, gin.H{"application": rec})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var vErr *ValidationError
	switch {
	case errors.As(err, &vErr) && vErr.Field == quizField:
		respond.Error(c, http.StatusBadRequest, "invalid_quiz", vErr.Error(), gin.H{"field": vErr.Field})
	case errors.As(err, &vErr):
		respond.Error(c, http.StatusBadRequest, "missing_required", vErr.Error(), gin.H{"field": vErr.Field})
	case errors.Is(err, uploads.ErrPayloadTooLarge):
		respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "resume exceeds the size limit", nil)
	case errors.Is(err, uploads.ErrUnsupportedType):
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_type", "resume must be a PDF", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "application not found", nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "operator credential required", nil)
	case errors.Is(err, ErrInvalidArgument):
		respond.Error(c, http.StatusBadRequest, "missing_status", "status is required", nil)
	default:
		telemetry.Error("applications.request_failed", map[string]any{
			"error":      err.Error(),
			"request_id": middleware.RequestIDFromContext(c),
		})
		respond.Error(c, http.StatusInternalServerError, "server_error", "unexpected server error", nil)
	}
}

func formFile(form *multipart.Form, field string) *multipart.FileHeader {
	if form == nil {
		return nil
	}
	files := form.File[field]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

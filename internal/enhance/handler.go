package enhance

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resume-enhancer/internal/shared/server/middleware"
	"resume-enhancer/internal/shared/server/respond"
	"resume-enhancer/resume/contract"
)

const defaultMaxUploadBytes = 16 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	Mode           contract.Mode
	MaxUploadBytes int64
	// BasePath prefixes the artifact URLs returned to clients.
	BasePath string
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, mode contract.Mode, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{Svc: svc, Mode: mode, MaxUploadBytes: maxUploadBytes, BasePath: "/api/v1"}
}

// RegisterRoutes attaches enhance routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/enhance", h.enhance)
	rg.POST("/render", h.render)
	rg.GET("/enhance/:id/download", h.download)
	rg.GET("/enhance/:id/preview", h.preview)
}

func (h *Handler) enhance(c *gin.Context) {
	// Multipart overhead on top of the file itself.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+1<<20)

	fileHeader, err := c.FormFile("resume")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "resume file is too large", gin.H{"maxBytes": h.MaxUploadBytes})
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "resume file is required", nil)
		return
	}
	if fileHeader.Size > h.MaxUploadBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "resume file is too large", gin.H{"maxBytes": h.MaxUploadBytes})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read resume file", nil)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read resume file", nil)
		return
	}

	res, err := h.Svc.Enhance(c.Request.Context(), Input{
		FileName:       fileHeader.Filename,
		MimeType:       fileHeader.Header.Get("Content-Type"),
		FileData:       data,
		JobDescription: c.PostForm("job_description"),
		JobURL:         c.PostForm("job_url"),
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrExtractFailed):
			respond.Error(c, http.StatusUnprocessableEntity, "extract_failed", "could not extract text from resume", err.Error())
		case errors.Is(err, ErrMalformedResume):
			respond.Error(c, http.StatusBadGateway, "malformed_resume", "rewrite returned an invalid resume", malformedDetails(err))
		case errors.Is(err, ErrRewriteFailed):
			respond.Error(c, http.StatusBadGateway, "rewrite_failed", "resume rewrite failed", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to enhance resume", nil)
		}
		return
	}

	c.Set(middleware.EnhanceIDKey, res.ID)
	c.Set(middleware.PDFAvailableKey, res.PDFAvailable)
	respond.OK(c, toEnhanceResponse(h.BasePath, res))
}

func (h *Handler) render(c *gin.Context) {
	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read request body", nil)
		return
	}
	doc, err := contract.Decode(raw, h.Mode)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid resume document", malformedDetails(err))
		return
	}

	out, err := h.Svc.Render(c.Request.Context(), "", doc)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to render resume", nil)
		return
	}
	c.Set(middleware.EnhanceIDKey, out.ID)
	c.Set(middleware.PDFAvailableKey, out.PDFAvailable)
	respond.OK(c, toRenderResponse(h.BasePath, out))
}

func (h *Handler) download(c *gin.Context) {
	h.serveArtifact(c, ArtifactPDF, "application/pdf", map[string]string{
		"Content-Disposition": `attachment; filename="enhanced_resume.pdf"`,
	})
}

func (h *Handler) preview(c *gin.Context) {
	h.serveArtifact(c, ArtifactPreview, "text/html; charset=utf-8", nil)
}

func (h *Handler) serveArtifact(c *gin.Context, name, contentType string, headers map[string]string) {
	id := strings.TrimSpace(c.Param("id"))
	if _, err := uuid.Parse(id); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "id must be a UUID", nil)
		return
	}
	rc, err := h.Svc.OpenArtifact(c.Request.Context(), id, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "Enhanced resume not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to open artifact", nil)
		return
	}
	defer rc.Close()

	c.Set(middleware.EnhanceIDKey, id)
	c.DataFromReader(http.StatusOK, -1, contentType, rc, headers)
}

func malformedDetails(err error) any {
	var malformed *contract.MalformedInputError
	if errors.As(err, &malformed) && len(malformed.Fields) > 0 {
		return gin.H{"fields": malformed.Fields}
	}
	return nil
}

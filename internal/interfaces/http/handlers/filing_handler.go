package handlers

import (
	"context"
	stderrors "errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/legajos-penal/internal/application/upload"
	"github.com/turtacn/legajos-penal/internal/infrastructure/monitoring/logging"
)

// FilingLibrary manages the filings already on disk.
type FilingLibrary interface {
	DeleteMatching(ctx context.Context, number string) ([]string, error)
	DeleteMatchingAny(ctx context.Context, numbers []string) ([]string, error)
	Resolve(p string) (string, error)
}

// FilingHandler serves bulk upload, deletion and download of PDF filings.
type FilingHandler struct {
	uploads upload.Service
	library FilingLibrary
	logger  logging.Logger
}

// NewFilingHandler creates a FilingHandler that stores uploads through
// uploads and deletes or serves stored filings through library.
func NewFilingHandler(uploads upload.Service, library FilingLibrary, logger logging.Logger) *FilingHandler {
	return &FilingHandler{uploads: uploads, library: library, logger: logger}
}

// uploadField is the repeated multipart field carrying the PDFs.
const uploadField = "file"

// Upload handles POST /upload.
func (h *FilingHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "La carga excede el tamaño máximo permitido"})
		return
	}
	if err != nil || len(form.File[uploadField]) == 0 {
		badRequest(c, "No se recibieron archivos")
		return
	}

	headers := form.File[uploadField]
	files := make([]upload.IncomingFile, 0, len(headers))
	for _, fh := range headers {
		content, err := readPart(fh)
		if err != nil {
			h.logger.Warn("skipping unreadable part", logging.String("filename", fh.Filename), logging.Err(err))
			continue
		}
		files = append(files, upload.IncomingFile{Filename: fh.Filename, Content: content})
	}

	report, err := h.uploads.Process(c.Request.Context(), files)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, report)
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

type deleteRequest struct {
	Number string `json:"registro_ppu"`
}

type cleanRequest struct {
	Numbers []string `json:"ppus"`
}

type deleteResponse struct {
	Message string   `json:"message"`
	Deleted []string `json:"deleted"`
}

// DeleteByNumber handles POST /api/eliminar_pdfs_por_registro.
func (h *FilingHandler) DeleteByNumber(c *gin.Context) {
	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "registro_ppu es requerido")
		return
	}
	deleted, err := h.library.DeleteMatching(c.Request.Context(), req.Number)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, deleteResponse{Message: "Archivos eliminados", Deleted: deleted})
}

// CleanByNumbers handles POST /api/limpiar_pdfs_por_registros.
func (h *FilingHandler) CleanByNumbers(c *gin.Context) {
	var req cleanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Se requiere una lista de registros PPU")
		return
	}
	deleted, err := h.library.DeleteMatchingAny(c.Request.Context(), req.Numbers)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, deleteResponse{Message: "Archivos eliminados", Deleted: deleted})
}

// Download handles GET /api/descargar_pdf?ruta= and sends the file as an
// attachment.
func (h *FilingHandler) Download(c *gin.Context) {
	p, err := h.library.Resolve(c.Query("ruta"))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.FileAttachment(p, filepath.Base(p))
}

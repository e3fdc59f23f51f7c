package importer

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chatinsight/core/internal/middleware"
	"github.com/chatinsight/core/internal/pkg/response"
)

type Handler struct {
	svc *Service
	log *zap.Logger
}

func NewHandler(svc *Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/import", authMW)
	g.POST("/csv", h.upload)
	g.POST("/csv/file", h.fromPath)
}

type importResult struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
	Stats    *Stats `json:"stats"`
}

// POST /import/csv (multipart field "file")
func (h *Handler) upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".csv") {
		response.BadRequest(c, "Only CSV files are allowed")
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	defer f.Close()

	stats, err := h.svc.Import(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, importResult{Filename: fh.Filename, Status: "success", Stats: stats})
}

// POST /import/csv/file?file_path=... (admin only)
func (h *Handler) fromPath(c *gin.Context) {
	if !middleware.IsAdmin(c) {
		response.Forbidden(c, "Only admins can import server-side files")
		return
	}
	path := strings.TrimSpace(c.Query("file_path"))
	if path == "" {
		response.BadRequest(c, "file_path is required")
		return
	}

	stats, err := h.svc.ImportFile(c.Request.Context(), path)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, importResult{Filename: filepath.Base(path), Status: "success", Stats: stats})
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrFileNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, ErrInvalidCSV):
		response.BadRequest(c, err.Error())
	default:
		h.log.Error("csv import failed", zap.Error(err))
		response.InternalError(c, err)
	}
}

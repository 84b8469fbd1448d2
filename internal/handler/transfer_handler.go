package handler

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"logbook/backend/internal/service"
)

const maxImportSize = 10 << 20

type TransferHandler struct {
	imports service.ImportService
	entries service.EntryService
}

func NewTransferHandler(imports service.ImportService, entries service.EntryService) *TransferHandler {
	return &TransferHandler{imports: imports, entries: entries}
}

func (h *TransferHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/import", h.Import)
	g.GET("/export", h.Export)
}

// Import merges entries from an uploaded JSON or CSV file.
// @Summary Import entries
// @Description Import entries from a JSON array or a CSV export; duplicates are skipped
// @Tags transfer
// @Accept multipart/form-data
// @Accept json
// @Accept plain
// @Produce json
// @Param file formData file false "File to import"
// @Success 200 {object} service.ImportResult
// @Failure 400 {object} errorResponse
// @Failure 413 {object} errorResponse
// @Router /import [post]
func (h *TransferHandler) Import(c echo.Context) error {
	req := c.Request()
	req.Body = http.MaxBytesReader(c.Response().Writer, req.Body, maxImportSize)

	var reader io.Reader
	filename := ""
	contentType := req.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/") {
		file, err := c.FormFile("file")
		if err != nil {
			if err == http.ErrMissingFile {
				return c.JSON(http.StatusBadRequest, errorResponse{Error: "missing file"})
			}
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
		}
		if file.Size > maxImportSize {
			return c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Error: "file too large"})
		}
		src, err := file.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
		}
		defer src.Close()
		reader = io.LimitReader(src, maxImportSize)
		filename = file.Filename
	} else {
		reader = io.LimitReader(req.Body, maxImportSize)
	}

	payload, err := io.ReadAll(reader)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}

	var result service.ImportResult
	if looksLikeJSON(payload, filename, contentType) {
		result, err = h.imports.ImportJSON(req.Context(), payload)
	} else {
		result, err = h.imports.ImportCSV(req.Context(), string(payload))
	}
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Export downloads all entries as a JSON file.
// @Summary Export entries
// @Description Export the full journal as a JSON array
// @Tags transfer
// @Produce json
// @Success 200 {string} string "JSON file content"
// @Router /export [get]
func (h *TransferHandler) Export(c echo.Context) error {
	payload, err := h.entries.Export(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	filename := fmt.Sprintf("logbook-%s.json", time.Now().Format("2006-01-02"))
	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK, "application/json", payload)
}

// looksLikeJSON decides the import format. The filename extension wins
// when present; otherwise the first non-space byte of the payload.
func looksLikeJSON(payload []byte, filename, contentType string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return true
	case ".csv":
		return false
	}
	if strings.Contains(contentType, "json") {
		return true
	}
	if strings.Contains(contentType, "csv") {
		return false
	}
	trimmed := strings.TrimSpace(string(payload))
	return strings.HasPrefix(trimmed, "[")
}

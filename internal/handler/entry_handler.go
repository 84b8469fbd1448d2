package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"logbook/backend/internal/model"
	"logbook/backend/internal/service"
)

type EntryHandler struct {
	service     service.EntryService
	compilation service.CompilationService
}

func NewEntryHandler(service service.EntryService, compilation service.CompilationService) *EntryHandler {
	return &EntryHandler{service: service, compilation: compilation}
}

func (h *EntryHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/entries", h.List)
	g.POST("/entries", h.Create)
	g.GET("/entries/:id", h.GetByID)
	g.PATCH("/entries/:id", h.Update)
	g.DELETE("/entries/:id", h.Delete)
	g.POST("/entries/:id/duplicate", h.Duplicate)
	g.POST("/entries/compile", h.Compile)
}

type entryResponse struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	Content      string `json:"content"`
	TicketNumber string `json:"ticketNumber,omitempty"`
	ImageURL     string `json:"imageUrl,omitempty"`
}

type entryListResponse struct {
	Entries []entryResponse `json:"entries"`
}

type createEntryRequest struct {
	Content      string `json:"content"`
	TicketNumber string `json:"ticketNumber"`
	ImageURL     string `json:"imageUrl"`
}

type updateEntryRequest struct {
	Content      *string `json:"content"`
	Date         *string `json:"date"`
	TicketNumber *string `json:"ticketNumber"`
}

type compileRequest struct {
	TicketNumber string `json:"ticketNumber"`
}

// List returns all entries, newest first.
// @Summary List entries
// @Description Get all journal entries sorted by date descending
// @Tags entries
// @Produce json
// @Success 200 {object} entryListResponse
// @Router /entries [get]
func (h *EntryHandler) List(c echo.Context) error {
	entries := h.service.List(c.Request().Context())

	response := entryListResponse{Entries: make([]entryResponse, len(entries))}
	for i, e := range entries {
		response.Entries[i] = toEntryResponse(e)
	}
	return c.JSON(http.StatusOK, response)
}

// Create adds a new entry.
// @Summary Create entry
// @Description Create a journal entry; content is required unless an image is attached
// @Tags entries
// @Accept json
// @Produce json
// @Param request body createEntryRequest true "Entry payload"
// @Success 201 {object} entryResponse
// @Failure 400 {object} errorResponse
// @Router /entries [post]
func (h *EntryHandler) Create(c echo.Context) error {
	var req createEntryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}

	entry, err := h.service.Create(c.Request().Context(), model.EntryDraft{
		Content:      req.Content,
		TicketNumber: req.TicketNumber,
		ImageURL:     req.ImageURL,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toEntryResponse(entry))
}

// GetByID returns an entry by its ID.
// @Summary Get entry
// @Tags entries
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} entryResponse
// @Failure 404 {object} errorResponse
// @Router /entries/{id} [get]
func (h *EntryHandler) GetByID(c echo.Context) error {
	entry, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toEntryResponse(entry))
}

// Update shallow-merges the given fields into an entry.
// @Summary Update entry
// @Description Patch content, date or ticket number; unknown ids are a no-op
// @Tags entries
// @Accept json
// @Param id path string true "Entry ID"
// @Param request body updateEntryRequest true "Fields to merge"
// @Success 204 "No Content"
// @Failure 400 {object} errorResponse
// @Router /entries/{id} [patch]
func (h *EntryHandler) Update(c echo.Context) error {
	var req updateEntryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}

	h.service.Update(c.Request().Context(), c.Param("id"), model.EntryPatch{
		Content:      req.Content,
		Date:         req.Date,
		TicketNumber: req.TicketNumber,
	})
	return c.NoContent(http.StatusNoContent)
}

// Delete removes an entry.
// @Summary Delete entry
// @Description Remove an entry immediately and irreversibly; unknown ids are a no-op
// @Tags entries
// @Param id path string true "Entry ID"
// @Success 204 "No Content"
// @Router /entries/{id} [delete]
func (h *EntryHandler) Delete(c echo.Context) error {
	h.service.Delete(c.Request().Context(), c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

// Duplicate creates a new entry from an existing one.
// @Summary Duplicate entry
// @Tags entries
// @Produce json
// @Param id path string true "Entry ID"
// @Success 201 {object} entryResponse
// @Failure 404 {object} errorResponse
// @Router /entries/{id}/duplicate [post]
func (h *EntryHandler) Duplicate(c echo.Context) error {
	entry, err := h.service.Duplicate(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toEntryResponse(entry))
}

// Compile merges all entries sharing a ticket number into one.
// @Summary Compile ticket
// @Description Merge all entries bearing the ticket number into a single chronological entry
// @Tags entries
// @Accept json
// @Produce json
// @Param request body compileRequest true "Ticket number"
// @Success 200 {object} entryResponse
// @Success 204 "No Content (fewer than two matching entries)"
// @Failure 400 {object} errorResponse
// @Router /entries/compile [post]
func (h *EntryHandler) Compile(c echo.Context) error {
	var req compileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	if req.TicketNumber == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "ticketNumber is required"})
	}

	compiled, ok := h.compilation.Compile(c.Request().Context(), req.TicketNumber)
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, toEntryResponse(compiled))
}

func toEntryResponse(e model.Entry) entryResponse {
	return entryResponse{
		ID:           e.ID,
		Date:         e.Date,
		Content:      e.Content,
		TicketNumber: e.TicketNumber,
		ImageURL:     e.ImageURL,
	}
}

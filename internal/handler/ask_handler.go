package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"logbook/backend/internal/service"
)

type AskHandler struct {
	service service.AskService
}

type askRequest struct {
	Question string            `json:"question"`
	Location *service.Location `json:"location"`
}

type askResponse struct {
	Text      string             `json:"text"`
	Citations []service.Citation `json:"citations"`
}

type chatHistoryResponse struct {
	Messages []service.ChatMessage `json:"messages"`
}

func NewAskHandler(service service.AskService) *AskHandler {
	return &AskHandler{service: service}
}

func (h *AskHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/ask", h.Ask)
	g.POST("/ask/stream", h.AskStream)
	g.GET("/chat", h.History)
}

// Ask answers a question about the journal.
// @Summary Ask the assistant
// @Description Answer a natural-language question grounded in the journal entries
// @Tags ask
// @Accept json
// @Produce json
// @Param request body askRequest true "Question and optional location"
// @Success 200 {object} askResponse
// @Failure 400 {object} errorResponse
// @Failure 412 {object} errorResponse "AI is not configured"
// @Router /ask [post]
func (h *AskHandler) Ask(c echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	if strings.TrimSpace(req.Question) == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "question is required"})
	}

	answer, err := h.service.Ask(c.Request().Context(), req.Question, req.Location)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, askResponse{Text: answer.Text, Citations: answer.Citations})
}

// AskStream streams an answer over SSE.
// @Summary Ask the assistant (streaming)
// @Description Stream the answer text, then a final citations event
// @Tags ask
// @Accept json
// @Produce text/event-stream
// @Param request body askRequest true "Question and optional location"
// @Failure 400 {object} errorResponse
// @Failure 412 {object} errorResponse "AI is not configured"
// @Router /ask/stream [post]
func (h *AskHandler) AskStream(c echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	if strings.TrimSpace(req.Question) == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "question is required"})
	}

	ctx := c.Request().Context()

	textCh, errCh, err := h.service.AskStream(ctx, req.Question, req.Location)
	if err != nil {
		return writeServiceError(c, err)
	}

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	var fullText strings.Builder

	for {
		select {
		case text, ok := <-textCh:
			if !ok {
				select {
				case err := <-errCh:
					if err != nil {
						c.Logger().Errorf("ask stream error: %v", err)
						fmt.Fprintf(c.Response(), "event: error\ndata: %s\n\n", err.Error())
						c.Response().Flush()
						return nil
					}
				default:
				}

				if fullText.Len() > 0 {
					answer := h.service.RecordExchange(ctx, req.Question, fullText.String())
					if payload, err := json.Marshal(answer.Citations); err == nil {
						fmt.Fprintf(c.Response(), "event: citations\ndata: %s\n\n", payload)
						c.Response().Flush()
					}
				}

				return nil
			}

			fullText.WriteString(text)

			fmt.Fprintf(c.Response(), "data: %s\n\n", strings.ReplaceAll(text, "\n", "\ndata: "))
			c.Response().Flush()

		case <-ctx.Done():
			return nil
		}
	}
}

// History returns the chat history for this server run.
// @Summary Chat history
// @Tags ask
// @Produce json
// @Success 200 {object} chatHistoryResponse
// @Router /chat [get]
func (h *AskHandler) History(c echo.Context) error {
	messages := h.service.History()
	if messages == nil {
		messages = []service.ChatMessage{}
	}
	return c.JSON(http.StatusOK, chatHistoryResponse{Messages: messages})
}

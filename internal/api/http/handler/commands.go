package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nati-dev/nati-console/internal/api/http/dto"
	"github.com/nati-dev/nati-console/internal/commands"
	"github.com/nati-dev/nati-console/internal/session"
)

type CommandsHandler struct {
	sessions *session.Manager
}

func NewCommandsHandler(sessions *session.Manager) *CommandsHandler {
	return &CommandsHandler{sessions: sessions}
}

// Send dispatches a remote command to the selected agent.
// POST /api/v1/commands
func (h *CommandsHandler) Send(c *gin.Context) {
	var req dto.SendCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	typ, err := commands.ParseType(req.Type)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s := h.sessions.Get(c.GetString("user_id"))
	cmd, err := s.Dispatcher.Send(c.Request.Context(), typ, req.Target, req.Payload)
	if err != nil {
		c.JSON(commandErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, dto.NewCommandResponse(cmd))
}

func commandErrorStatus(err error) int {
	switch {
	case errors.Is(err, commands.ErrInFlight):
		return http.StatusConflict
	case errors.Is(err, commands.ErrNoAgentSelected), errors.Is(err, commands.ErrUnknownType):
		return http.StatusBadRequest
	case errors.Is(err, commands.ErrDispatcherClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

type TerminalHandler struct {
	sessions *session.Manager
}

func NewTerminalHandler(sessions *session.Manager) *TerminalHandler {
	return &TerminalHandler{sessions: sessions}
}

// GET /api/v1/terminal
func (h *TerminalHandler) Lines(c *gin.Context) {
	s := h.sessions.Get(c.GetString("user_id"))
	c.JSON(http.StatusOK, terminalResponse(s.Terminal.Lines()))
}

// Submit runs one terminal line against the selected agent.
// POST /api/v1/terminal
func (h *TerminalHandler) Submit(c *gin.Context) {
	var req dto.TerminalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s := h.sessions.Get(c.GetString("user_id"))
	s.Terminal.Submit(c.Request.Context(), req.Target, req.Command)
	c.JSON(http.StatusOK, terminalResponse(s.Terminal.Lines()))
}

// DELETE /api/v1/terminal
func (h *TerminalHandler) Clear(c *gin.Context) {
	s := h.sessions.Get(c.GetString("user_id"))
	s.Terminal.Clear()
	c.Status(http.StatusNoContent)
}

func terminalResponse(lines []commands.Line) dto.TerminalResponse {
	resp := dto.TerminalResponse{Lines: make([]dto.TerminalLine, len(lines))}
	for i, l := range lines {
		resp.Lines[i] = dto.TerminalLine{Kind: string(l.Kind), Text: l.Text, At: l.At}
	}
	return resp
}

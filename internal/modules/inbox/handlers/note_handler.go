package handlers

import (
	"github.com/MuhamadAgungGumelar/support-console-be/internal/modules/inbox/services"
	"github.com/gofiber/fiber/v2"
)

type NoteHandler struct {
	notes *services.NoteService
}

func NewNoteHandler(notes *services.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

type NoteRequest struct {
	Message string `json:"message"`
}

// ListNotes godoc
// @Summary List internal notes
// @Description Notes of a conversation, oldest first
// @Tags Notes
// @Produce json
// @Param id path string true "Conversation ID"
// @Success 200 {array} models.InternalNote
// @Failure 404 {object} map[string]string
// @Router /conversations/{id}/notes [get]
func (h *NoteHandler) ListNotes(c *fiber.Ctx) error {
	notes, err := h.notes.List(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(notes)
}

// CreateNote godoc
// @Summary Add internal note
// @Tags Notes
// @Accept json
// @Produce json
// @Param id path string true "Conversation ID"
// @Param X-User-Id header string true "Agent ID"
// @Param X-User-Name header string false "Agent name"
// @Param note body NoteRequest true "Note"
// @Success 201 {object} models.InternalNote
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /conversations/{id}/notes [post]
func (h *NoteHandler) CreateNote(c *fiber.Ctx) error {
	var req NoteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	note, err := h.notes.Create(c.UserContext(), c.Params("id"), actorFrom(c), req.Message)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}

// UpdateNote godoc
// @Summary Edit internal note
// @Description Replaces the message and refreshes the timestamp
// @Tags Notes
// @Accept json
// @Produce json
// @Param id path string true "Conversation ID"
// @Param noteId path string true "Note ID"
// @Param note body NoteRequest true "Note"
// @Success 200 {object} models.InternalNote
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /conversations/{id}/notes/{noteId} [put]
func (h *NoteHandler) UpdateNote(c *fiber.Ctx) error {
	var req NoteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	note, err := h.notes.Update(c.UserContext(), c.Params("id"), c.Params("noteId"), actorFrom(c), req.Message)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(note)
}

// DeleteNote godoc
// @Summary Delete internal note
// @Tags Notes
// @Produce json
// @Param id path string true "Conversation ID"
// @Param noteId path string true "Note ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /conversations/{id}/notes/{noteId} [delete]
func (h *NoteHandler) DeleteNote(c *fiber.Ctx) error {
	if err := h.notes.Delete(c.UserContext(), c.Params("id"), c.Params("noteId"), actorFrom(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

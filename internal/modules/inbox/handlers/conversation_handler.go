package handlers

import (
	"strconv"

	"github.com/MuhamadAgungGumelar/support-console-be/internal/modules/inbox/models"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/modules/inbox/repositories"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/modules/inbox/services"
	"github.com/gofiber/fiber/v2"
)

type ConversationHandler struct {
	inbox   *services.InboxService
	replies *services.ReplyService
}

func NewConversationHandler(inbox *services.InboxService, replies *services.ReplyService) *ConversationHandler {
	return &ConversationHandler{inbox: inbox, replies: replies}
}

// LabelsRequest carries label names, e.g. ["service","payment"]
type LabelsRequest struct {
	Labels []string `json:"labels"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

// AssignRequest hands a conversation to a user, or to the AI assistant when AI is true
type AssignRequest struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	AI       bool   `json:"ai"`
}

// parseFilter reads status, label, handler, q and limit query params
func parseFilter(c *fiber.Ctx) (repositories.ConversationFilter, error) {
	var filter repositories.ConversationFilter

	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}
	if raw := c.Query("label"); raw != "" {
		label, err := models.ParseLabel(raw)
		if err != nil {
			return filter, err
		}
		filter.Label = label
	}
	switch h := models.HandlerKind(c.Query("handler")); h {
	case "", models.HandlerHuman, models.HandlerAI:
		filter.Handler = h
	default:
		return filter, fiber.NewError(fiber.StatusBadRequest, "handler must be human or ai")
	}
	filter.Search = c.Query("q")
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return filter, fiber.NewError(fiber.StatusBadRequest, "limit must be a positive number")
		}
		filter.Limit = limit
	}
	return filter, nil
}

// ListConversations godoc
// @Summary List conversations
// @Description Conversations ordered by last activity, newest first
// @Tags Conversations
// @Produce json
// @Param status query string false "pending, open, resolved or none"
// @Param label query string false "service, warranty, payment, maintenance or spareparts"
// @Param handler query string false "human or ai"
// @Param q query string false "Search by name or phone"
// @Param limit query int false "Max results"
// @Success 200 {array} models.Conversation
// @Failure 400 {object} map[string]string
// @Router /conversations [get]
func (h *ConversationHandler) ListConversations(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return respondError(c, err)
	}

	convs, err := h.inbox.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(convs)
}

// CreateConversation godoc
// @Summary Open a conversation
// @Description Creates a conversation for a phone number, or returns the existing one
// @Tags Conversations
// @Accept json
// @Produce json
// @Param conversation body services.CreateConversationRequest true "Customer"
// @Success 201 {object} models.Conversation
// @Success 200 {object} models.Conversation
// @Failure 400 {object} map[string]string
// @Router /conversations [post]
func (h *ConversationHandler) CreateConversation(c *fiber.Ctx) error {
	var req services.CreateConversationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	if req.PhoneNumber == "" {
		return badRequest(c, "phone_number is required")
	}

	conv, created, err := h.inbox.Create(c.UserContext(), actorFrom(c), req)
	if err != nil {
		return respondError(c, err)
	}
	if created {
		return c.Status(fiber.StatusCreated).JSON(conv)
	}
	return c.JSON(conv)
}

// GetConversation godoc
// @Summary Get conversation
// @Tags Conversations
// @Produce json
// @Param id path string true "Conversation ID"
// @Success 200 {object} models.Conversation
// @Failure 404 {object} map[string]string
// @Router /conversations/{id} [get]
func (h *ConversationHandler) GetConversation(c *fiber.Ctx) error {
	conv, err := h.inbox.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(conv)
}

// SetLabels godoc
// @Summary Replace labels
// @Description Replaces the label set; resets the evaluation flag
// @Tags Labels
// @Accept json
// @Produce json
// @Param id path string true "Conversation ID"
// @Param labels body LabelsRequest true "Labels"
// @Success 200 {object} models.Conversation
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /conversations/{id}/labels [put]
func (h *ConversationHandler) SetLabels(c *fiber.Ctx) error {
	labels, err := parseLabelsBody(c)
	if err != nil {
		return respondError(c, err)
	}
	conv, err := h.inbox.SetLabels(c.UserContext(), actorFrom(c), c.Params("id"), labels)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(conv)
}

// AddLabels godoc
// @Summary Add labels
// @Description Adds labels, ignoring ones already present
// @Tags Labels
// @Accept json
// @Produce json
// @Param id path string true "Conversation ID"
// @Param labels body LabelsRequest true "Labels"
// @Success 200 {object} models.Conversation
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /conversations/{id}/labels [post]
func (h *ConversationHandler) AddLabels(c *fiber.Ctx) error {
	labels, err := parseLabelsBody(c)
	if err != nil {
		return respondError(c, err)
	}
	if len(labels) == 0 {
		return badRequest(c, "labels is required")
	}
	conv, err := h.inbox.AddLabels(c.UserContext(), actorFrom(c), c.Params("id"), labels)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(conv)
}

// RemoveLabel godoc
// @Summary Remove one label
// @Tags Labels
// @Produce json
// @Param id path string true "Conversation ID"
// @Param label path string true "Label"
// @Success 200 {object} models.Conversation
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /conversations/{id}/labels/{label} [delete]
func (h *ConversationHandler) RemoveLabel(c *fiber.Ctx) error {
	label, err := models.ParseLabel(c.Params("label"))
	if err != nil {
		return respondError(c, err)
	}
	conv, err := h.inbox.RemoveLabel(c.UserContext(), actorFrom(c), c.Params("id"), label)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(conv)
}

// ClearLabels godoc
// @Summary Remove all labels
// @Tags Labels
// @Produce json
// @Param id path string true "Conversation ID"
// @Success 200 {object} models.Conversation
// @Failure 404 {object} map[string]string
// @Router /conversations/{id}/labels [delete]
func (h *ConversationHandler) ClearLabels(c *fiber.Ctx) error {
	conv, err := h.inbox.ClearLabels(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(conv)
}

// SetStatus godoc
// @Summary Set status
// @Description Tags the conversation pending, open, resolved or none; counts as an evaluation
// @Tags Conversations
// @Accept json
// @Produce json
// @Param id path string true "Conversation ID"
// @Param status body StatusRequest true "Status"
// @Success 200 {object} models.Conversation
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /conversations/{id}/status [put]
func (h *ConversationHandler) SetStatus(c *fiber.Ctx) error {
	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		return respondError(c, err)
	}

	conv, err := h.inbox.SetStatus(c.UserContext(), actorFrom(c), c.Params("id"), status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(conv)
}

// MarkSeen godoc
// @Summary Mark as seen
// @Description Records the requesting agent (X-User-Id) as having seen the conversation
// @Tags Conversations
// @Produce json
// @Param id path string true "Conversation ID"
// @Param X-User-Id header string true "Agent ID"
// @Param X-User-Name header string false "Agent name"
// @Success 200 {object} models.Conversation
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /conversations/{id}/seen [post]
func (h *ConversationHandler) MarkSeen(c *fiber.Ctx) error {
	conv, err := h.inbox.MarkSeen(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(conv)
}

// Assign godoc
// @Summary Assign handler
// @Tags Conversations
// @Accept json
// @Produce json
// @Param id path string true "Conversation ID"
// @Param assignee body AssignRequest true "Assignee"
// @Success 200 {object} models.Conversation
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /conversations/{id}/assign [post]
func (h *ConversationHandler) Assign(c *fiber.Ctx) error {
	var req AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	handler := models.User{ID: req.UserID, Name: req.UserName}
	if req.AI {
		handler = models.AIUser
	}

	conv, err := h.inbox.Assign(c.UserContext(), actorFrom(c), c.Params("id"), handler)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(conv)
}

// GetActivity godoc
// @Summary Conversation activity
// @Description Audit trail of changes, newest first
// @Tags Conversations
// @Produce json
// @Param id path string true "Conversation ID"
// @Param limit query int false "Max entries (default 100)"
// @Success 200 {array} audit.AuditLog
// @Failure 404 {object} map[string]string
// @Router /conversations/{id}/activity [get]
func (h *ConversationHandler) GetActivity(c *fiber.Ctx) error {
	logs, err := h.inbox.Activity(c.UserContext(), c.Params("id"), c.QueryInt("limit", 100))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(logs)
}

// SuggestReply godoc
// @Summary Draft a reply
// @Description Uses the LLM to draft an answer to the customer's last message
// @Tags Conversations
// @Produce json
// @Param id path string true "Conversation ID"
// @Param alternatives query int false "Number of drafts, 1 to 5"
// @Success 200 {object} services.ReplySuggestion
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /conversations/{id}/reply-suggestion [get]
func (h *ConversationHandler) SuggestReply(c *fiber.Ctx) error {
	alternatives := c.QueryInt("alternatives", 1)
	if alternatives < 1 || alternatives > 5 {
		return badRequest(c, "alternatives must be between 1 and 5")
	}

	suggestion, err := h.replies.Suggest(c.UserContext(), c.Params("id"), services.SuggestOptions{
		Alternatives: alternatives,
		Agent:        actorFrom(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(suggestion)
}

func parseLabelsBody(c *fiber.Ctx) ([]models.Label, error) {
	var req LabelsRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid request")
	}
	return models.ParseLabels(req.Labels)
}

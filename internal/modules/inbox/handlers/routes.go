package handlers

import "github.com/gofiber/fiber/v2"

// Handlers groups everything RegisterRoutes mounts
type Handlers struct {
	Health       *HealthHandler
	Conversation *ConversationHandler
	Note         *NoteHandler
	Export       *ExportHandler
}

func RegisterRoutes(app fiber.Router, h Handlers) {
	// Health check
	app.Get("/health", h.Health.GetHealth)

	// Conversation routes; /export must come before /:id
	conv := app.Group("/conversations")
	conv.Get("/", h.Conversation.ListConversations)
	conv.Post("/", h.Conversation.CreateConversation)
	conv.Get("/export", h.Export.ExportConversations)
	conv.Get("/:id", h.Conversation.GetConversation)

	// Labels
	conv.Put("/:id/labels", h.Conversation.SetLabels)
	conv.Post("/:id/labels", h.Conversation.AddLabels)
	conv.Delete("/:id/labels", h.Conversation.ClearLabels)
	conv.Delete("/:id/labels/:label", h.Conversation.RemoveLabel)

	// Triage
	conv.Put("/:id/status", h.Conversation.SetStatus)
	conv.Post("/:id/seen", h.Conversation.MarkSeen)
	conv.Post("/:id/assign", h.Conversation.Assign)
	conv.Get("/:id/activity", h.Conversation.GetActivity)
	conv.Get("/:id/reply-suggestion", h.Conversation.SuggestReply)

	// Internal notes
	conv.Get("/:id/notes", h.Note.ListNotes)
	conv.Post("/:id/notes", h.Note.CreateNote)
	conv.Put("/:id/notes/:noteId", h.Note.UpdateNote)
	conv.Delete("/:id/notes/:noteId", h.Note.DeleteNote)
}

package handlers

import (
	"fmt"

	"github.com/MuhamadAgungGumelar/support-console-be/internal/core/export"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/modules/inbox/services"
	"github.com/gofiber/fiber/v2"
)

type ExportHandler struct {
	exports *services.ExportService
}

func NewExportHandler(exports *services.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// ExportConversations godoc
// @Summary Export conversations
// @Description Downloads the filtered conversation list as Excel or PDF
// @Tags Conversations
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce application/pdf
// @Param format query string false "excel (default) or pdf"
// @Param status query string false "pending, open, resolved or none"
// @Param label query string false "Label"
// @Param handler query string false "human or ai"
// @Param q query string false "Search by name or phone"
// @Success 200 {file} file
// @Failure 400 {object} map[string]string
// @Router /conversations/export [get]
func (h *ExportHandler) ExportConversations(c *fiber.Ctx) error {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		return respondError(c, err)
	}
	filter, err := parseFilter(c)
	if err != nil {
		return respondError(c, err)
	}

	file, name, err := h.exports.Export(c.UserContext(), filter, format)
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Send(file.Content)
}

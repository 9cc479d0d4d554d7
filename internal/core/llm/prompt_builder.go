package llm

import (
	"fmt"
	"strings"
)

// ReplyContext is what an agent sees when drafting a reply
type ReplyContext struct {
	CustomerName string
	LastMessage  string
	Labels       []string
	Status       string
	Notes        []string
}

// BuildReplySystemPrompt membuat system prompt untuk draft balasan agent
func BuildReplySystemPrompt(ctx *ReplyContext) string {
	var sb strings.Builder

	sb.WriteString("Anda membantu agent customer support menyusun balasan WhatsApp.\n")
	if len(ctx.Labels) > 0 {
		sb.WriteString(fmt.Sprintf("Topik percakapan: %s.\n", strings.Join(ctx.Labels, ", ")))
	}
	if ctx.Status != "" {
		sb.WriteString(fmt.Sprintf("Status tiket: %s.\n", ctx.Status))
	}
	sb.WriteString("\n")

	// Internal notes never reach the customer, they only steer the draft
	if len(ctx.Notes) > 0 {
		sb.WriteString("=== CATATAN INTERNAL ===\n")
		for _, n := range ctx.Notes {
			sb.WriteString(fmt.Sprintf("- %s\n", n))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Instruksi:\n")
	sb.WriteString("- Jawab dengan ramah dan profesional\n")
	sb.WriteString("- Jangan menyebutkan catatan internal kepada pelanggan\n")
	sb.WriteString("- Jika tidak tahu, katakan dengan jujur\n")

	return sb.String()
}

// BuildReplyUserMessage frames the customer's last message
func BuildReplyUserMessage(ctx *ReplyContext) string {
	name := ctx.CustomerName
	if name == "" {
		name = "Pelanggan"
	}
	return fmt.Sprintf("Pesan terakhir dari %s:\n%s", name, ctx.LastMessage)
}

package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MuhamadAgungGumelar/support-console-be/internal/core/export"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/core/phone"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/modules/inbox/models"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/modules/inbox/repositories"
)

var exportHeaders = []string{
	"Name", "Phone", "Status", "Labels", "Handler", "Handled By",
	"Unread", "Last Message", "Last Activity", "Evaluated", "Notes",
}

// ExportService renders conversation reports
type ExportService struct {
	conversations repositories.ConversationRepo
	exporter      *export.Service
}

func NewExportService(conversations repositories.ConversationRepo, exporter *export.Service) *ExportService {
	return &ExportService{conversations: conversations, exporter: exporter}
}

// Export returns the file and a suggested file name
func (s *ExportService) Export(ctx context.Context, filter repositories.ConversationFilter, format export.Format) (*export.File, string, error) {
	convs, err := s.conversations.List(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	table := &export.Table{
		Title:       "Conversation Report",
		Subtitle:    describeFilter(filter),
		GeneratedAt: now,
		Headers:     exportHeaders,
		Rows:        make([][]string, 0, len(convs)),
	}
	for _, c := range convs {
		table.Rows = append(table.Rows, conversationRow(c))
	}

	file, err := s.exporter.Export(table, format)
	if err != nil {
		return nil, "", err
	}
	name := fmt.Sprintf("conversations_%s%s", now.Format("20060102_150405"), file.Extension)
	return file, name, nil
}

func conversationRow(c models.Conversation) []string {
	labels := make([]string, 0, len(c.Labels))
	for _, l := range c.Labels {
		labels = append(labels, l.DisplayName())
	}
	handledBy := ""
	if c.HandledBy != nil {
		handledBy = c.HandledBy.Name
	}
	status := string(c.Status)
	if status == "" {
		status = "-"
	}
	evaluated := "no"
	if c.IsEvaluated {
		evaluated = "yes"
	}

	return []string{
		c.Name,
		phone.FormatForDisplay(c.PhoneNumber),
		status,
		strings.Join(labels, ", "),
		string(c.HandlerKind),
		handledBy,
		strconv.Itoa(c.UnreadCount),
		c.LastMessage,
		c.LastMessageAt.Format("2006-01-02 15:04"),
		evaluated,
		strconv.Itoa(len(c.InternalNotes)),
	}
}

func describeFilter(f repositories.ConversationFilter) string {
	var parts []string
	if f.Status != nil {
		s := string(*f.Status)
		if s == "" {
			s = "none"
		}
		parts = append(parts, "status: "+s)
	}
	if f.Label != "" {
		parts = append(parts, "label: "+f.Label.DisplayName())
	}
	if f.Handler != "" {
		parts = append(parts, "handler: "+string(f.Handler))
	}
	if f.Search != "" {
		parts = append(parts, "search: "+f.Search)
	}
	if len(parts) == 0 {
		return "All conversations"
	}
	return strings.Join(parts, " | ")
}

package models

import (
	"errors"
	"testing"
	"time"
)

func TestParseLabel(t *testing.T) {
	tests := []struct {
		raw     string
		want    Label
		wantErr bool
	}{
		{"service", LabelService, false},
		{" Warranty ", LabelWarranty, false},
		{"SPAREPARTS", LabelSpareparts, false},
		{"refund", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseLabel(tt.raw)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidLabel) {
				t.Errorf("ParseLabel(%q) error = %v, want ErrInvalidLabel", tt.raw, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseLabel(%q) = %q, %v, want %q", tt.raw, got, err, tt.want)
		}
	}
}

func TestLabelSelection(t *testing.T) {
	s := NewLabelSelection(LabelPayment, LabelPayment, LabelService)
	if s.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", s.Count())
	}

	s.Toggle(LabelPayment)
	if s.IsSelected(LabelPayment) {
		t.Fatalf("IsSelected(payment) = true after toggle")
	}
	s.Toggle(LabelWarranty)
	if !s.IsSelected(LabelWarranty) {
		t.Fatalf("IsSelected(warranty) = false after toggle")
	}

	got := s.Selected()
	if len(got) != 2 || got[0] != LabelService || got[1] != LabelWarranty {
		t.Fatalf("Selected() = %v, want [service warranty]", got)
	}

	if NewLabelSelection().Count() != 0 {
		t.Fatalf("empty selection not empty")
	}
}

func TestInternalNoteUpdating(t *testing.T) {
	n := InternalNote{ID: "n1", ConversationID: "c1", Message: "lama", CreatedAt: time.Unix(0, 0)}
	edited := n.Updating("baru")

	if edited.Message != "baru" || edited.ID != n.ID {
		t.Fatalf("Updating() = %+v", edited)
	}
	if !edited.CreatedAt.After(n.CreatedAt) {
		t.Fatalf("Updating() did not refresh timestamp")
	}
	if n.Message != "lama" {
		t.Fatalf("original note mutated")
	}
	if edited.Equal(n) {
		t.Fatalf("edited note equal to original")
	}
}

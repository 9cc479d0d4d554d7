package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidLabel is returned when a label outside the fixed enumeration is parsed
var ErrInvalidLabel = errors.New("invalid label")

// Label is a categorical tag attached to a conversation
type Label string

const (
	LabelService     Label = "service"
	LabelWarranty    Label = "warranty"
	LabelPayment     Label = "payment"
	LabelMaintenance Label = "maintenance"
	LabelSpareparts  Label = "spareparts"
)

var allLabels = []Label{
	LabelService,
	LabelWarranty,
	LabelPayment,
	LabelMaintenance,
	LabelSpareparts,
}

var labelDisplayNames = map[Label]string{
	LabelService:     "Service",
	LabelWarranty:    "Warranty",
	LabelPayment:     "Payment",
	LabelMaintenance: "Maintenance",
	LabelSpareparts:  "Spare Parts",
}

// AllLabels returns every label in canonical order
func AllLabels() []Label {
	out := make([]Label, len(allLabels))
	copy(out, allLabels)
	return out
}

// ParseLabel converts a raw string (case-insensitive) into a Label
func ParseLabel(raw string) (Label, error) {
	l := Label(strings.ToLower(strings.TrimSpace(raw)))
	if !l.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidLabel, raw)
	}
	return l, nil
}

// ParseLabels parses every entry, failing on the first invalid one
func ParseLabels(raw []string) ([]Label, error) {
	out := make([]Label, 0, len(raw))
	for _, r := range raw {
		l, err := ParseLabel(r)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func (l Label) IsValid() bool {
	_, ok := labelDisplayNames[l]
	return ok
}

func (l Label) DisplayName() string {
	if name, ok := labelDisplayNames[l]; ok {
		return name
	}
	return string(l)
}

func (l Label) String() string {
	return string(l)
}

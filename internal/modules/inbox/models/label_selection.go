package models

// LabelSelection is the transient multi-select state used while composing a label edit.
// It is not tied to a conversation and is discarded once the edit is committed or cancelled.
type LabelSelection struct {
	selected map[Label]struct{}
}

func NewLabelSelection(labels ...Label) *LabelSelection {
	s := &LabelSelection{selected: make(map[Label]struct{}, len(labels))}
	for _, l := range labels {
		s.selected[l] = struct{}{}
	}
	return s
}

// Toggle adds the label if absent, removes it otherwise
func (s *LabelSelection) Toggle(label Label) {
	if _, ok := s.selected[label]; ok {
		delete(s.selected, label)
		return
	}
	s.selected[label] = struct{}{}
}

func (s *LabelSelection) IsSelected(label Label) bool {
	_, ok := s.selected[label]
	return ok
}

func (s *LabelSelection) Count() int {
	return len(s.selected)
}

// Selected returns the chosen labels in canonical enumeration order
func (s *LabelSelection) Selected() []Label {
	out := make([]Label, 0, len(s.selected))
	for _, l := range allLabels {
		if s.IsSelected(l) {
			out = append(out, l)
		}
	}
	return out
}

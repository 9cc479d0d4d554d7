package models

// ConversationBuilder threads a conversation through several transforms at one call site
type ConversationBuilder struct {
	conversation Conversation
}

func NewConversationBuilder(c Conversation) *ConversationBuilder {
	return &ConversationBuilder{conversation: c}
}

func (b *ConversationBuilder) WithLabels(labels ...Label) *ConversationBuilder {
	b.conversation = b.conversation.UpdatingLabels(labels)
	return b
}

func (b *ConversationBuilder) AddingLabel(label Label) *ConversationBuilder {
	b.conversation = b.conversation.AddingLabel(label)
	return b
}

func (b *ConversationBuilder) RemovingLabel(label Label) *ConversationBuilder {
	b.conversation = b.conversation.RemovingLabel(label)
	return b
}

func (b *ConversationBuilder) WithStatus(status Status) *ConversationBuilder {
	b.conversation = b.conversation.UpdatingStatus(status)
	return b
}

func (b *ConversationBuilder) WithInternalNote(note InternalNote) *ConversationBuilder {
	b.conversation = b.conversation.AddingInternalNote(note)
	return b
}

func (b *ConversationBuilder) Build() Conversation {
	return b.conversation.Clone()
}

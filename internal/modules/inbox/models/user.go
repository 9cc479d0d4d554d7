package models

// User is an agent or AI identity
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Email     string `json:"email,omitempty"`
}

// AIUser is the identity used for conversations handled by the AI assistant
var AIUser = User{
	ID:   "ai-assistant",
	Name: "AI Assistant",
}

func (u User) IsZero() bool {
	return u == User{}
}

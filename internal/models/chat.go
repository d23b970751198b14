package models

import "time"

// ChatAgent identifies the speaker of a chat turn
type ChatAgent string

const (
	ChatAgentUser ChatAgent = "user"
	ChatAgentAI   ChatAgent = "ai"
)

// ChatTurn represents one exchange in the tutoring conversation.
// Turns are append-only and ordered by creation time.
type ChatTurn struct {
	ID        string    `json:"id"`
	LessonID  string    `json:"lessonId"`
	UserID    string    `json:"userId"`
	ContentID string    `json:"contentId"`
	Agent     ChatAgent `json:"agent"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// InteractRequest represents a tutoring interaction request
type InteractRequest struct {
	UserID       string `json:"userId"`
	UserChat     string `json:"userChat"`
	ContentID    string `json:"contentId"`
	LanguageCode string `json:"languageCode,omitempty"`
}

// InteractionData is the payload returned for a tutoring interaction
type InteractionData struct {
	UserID       string `json:"userId"`
	ContentID    string `json:"contentId"`
	UserQuestion string `json:"userQuestion"`
	AIResponse   string `json:"aiResponse"`
	Completion   int    `json:"completion"`
}

package models

import "time"

// Difficulty represents the difficulty level of a lesson
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// GeneratingStatus represents the state of the lesson generation pipeline
type GeneratingStatus string

const (
	GeneratingStatusNotStarted GeneratingStatus = "not_started"
	GeneratingStatusInProgress GeneratingStatus = "in_progress"
	GeneratingStatusCompleted  GeneratingStatus = "completed"
	GeneratingStatusFailed     GeneratingStatus = "failed"
)

// Lesson represents one user-initiated learning unit
type Lesson struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Difficulty       Difficulty       `json:"difficulty"`
	EstimatedTime    int              `json:"estimatedTime"` // Total time in seconds
	UserID           string           `json:"userId"`
	UserRequest      string           `json:"userRequest"` // The original free-text request
	GeneratingStatus GeneratingStatus `json:"generatingStatus"`
	LanguageCode     string           `json:"languageCode"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// GenerateLessonRequest represents a request to generate a lesson
type GenerateLessonRequest struct {
	UserRequest  string `json:"userRequest"`
	UserID       string `json:"userId"`
	LanguageCode string `json:"languageCode,omitempty"`
}

// UpdateLanguageRequest represents a request to change a lesson's language
type UpdateLanguageRequest struct {
	LanguageCode string `json:"languageCode"`
}

// LessonDetailResponse bundles a lesson with its ordered content sections
type LessonDetailResponse struct {
	Lesson   Lesson          `json:"lesson"`
	Contents []LessonContent `json:"contents"`
}

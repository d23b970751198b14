package models

import "time"

// CompletionStatus represents a learner's progress state on a content section
type CompletionStatus string

const (
	CompletionStatusNotStarted CompletionStatus = "not_started"
	CompletionStatusInProgress CompletionStatus = "in_progress"
	CompletionStatusCompleted  CompletionStatus = "completed"
)

// LessonContent represents one teachable section belonging to a lesson
//
// Sequence numbers within a lesson are contiguous starting at 1 and define
// the teaching order. Progress is an integer 0-100 and never decreases.
type LessonContent struct {
	ID               string           `json:"id"`
	LessonID         string           `json:"lessonId"`
	UserID           string           `json:"userId"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	SequenceNumber   int              `json:"sequenceNumber"`
	Content          string           `json:"content"` // Markdown body
	CompletionStatus CompletionStatus `json:"completionStatus"`
	CurrentProgress  int              `json:"currentProgress"`
	LastAccessedAt   *time.Time       `json:"lastAccessedAt"`
	EstimatedTime    int              `json:"estimatedTime"` // Seconds
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

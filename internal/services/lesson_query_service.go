package services

import (
	"context"
	"fmt"

	"github.com/edusphere/ai-service/internal/models"
)

// chatHistoryLimit caps how many turns a history read returns
const chatHistoryLimit = 100

// QueryLessonRepository defines the lesson access methods for reads and
// the language update
type QueryLessonRepository interface {
	// GetByID retrieves a lesson by ID
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the lesson.
	//
	// Returns the lesson and an error if any.
	GetByID(ctx context.Context, id string) (*models.Lesson, error)
	// GetByUser retrieves all lessons belonging to a user, newest first
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	//
	// Returns the lessons and an error if any.
	GetByUser(ctx context.Context, userID string) ([]models.Lesson, error)
	// UpdateLanguage changes a lesson's language code
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the lesson.
	// "userID" is the ID of the owning user.
	// "languageCode" is the new language code.
	//
	// Returns an error if any.
	UpdateLanguage(ctx context.Context, id, userID, languageCode string) error
}

// QueryContentRepository defines the content access methods for reads
type QueryContentRepository interface {
	// GetByLessonID retrieves a lesson's sections ordered by sequence number
	//
	// "ctx" is the context for the request.
	// "lessonID" is the ID of the lesson.
	//
	// Returns the content sections and an error if any.
	GetByLessonID(ctx context.Context, lessonID string) ([]models.LessonContent, error)
}

// QueryChatRepository defines the chat history access methods for reads
type QueryChatRepository interface {
	// GetRecent retrieves the most recent chat turns, newest first
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "contentID" is the ID of the content section.
	// "limit" is the maximum number of turns to return.
	//
	// Returns the chat turns and an error if any.
	GetRecent(ctx context.Context, userID, contentID string, limit int) ([]models.ChatTurn, error)
}

type lessonQueryService struct {
	lessonRepo  QueryLessonRepository
	contentRepo QueryContentRepository
	chatRepo    QueryChatRepository
}

// NewLessonQueryService creates a new lesson query service
func NewLessonQueryService(
	lessonRepo QueryLessonRepository,
	contentRepo QueryContentRepository,
	chatRepo QueryChatRepository,
) *lessonQueryService {
	return &lessonQueryService{
		lessonRepo:  lessonRepo,
		contentRepo: contentRepo,
		chatRepo:    chatRepo,
	}
}

// ListByUser retrieves all lessons belonging to a user
func (s *lessonQueryService) ListByUser(ctx context.Context, userID string) ([]models.Lesson, error) {
	return s.lessonRepo.GetByUser(ctx, userID)
}

// GetDetail retrieves a lesson together with its ordered content sections
func (s *lessonQueryService) GetDetail(ctx context.Context, lessonID string) (*models.LessonDetailResponse, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	contents, err := s.contentRepo.GetByLessonID(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	return &models.LessonDetailResponse{
		Lesson:   *lesson,
		Contents: contents,
	}, nil
}

// GetChatHistory retrieves a user's conversation for one content section
// in chronological order
func (s *lessonQueryService) GetChatHistory(ctx context.Context, userID, contentID string) ([]models.ChatTurn, error) {
	turns, err := s.chatRepo.GetRecent(ctx, userID, contentID, chatHistoryLimit)
	if err != nil {
		return nil, err
	}
	// GetRecent returns newest first
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// UpdateLanguage changes the language a lesson is tutored in
func (s *lessonQueryService) UpdateLanguage(ctx context.Context, lessonID, userID, languageCode string) error {
	if languageCode == "" {
		return fmt.Errorf("language code is required")
	}
	return s.lessonRepo.UpdateLanguage(ctx, lessonID, userID, languageCode)
}

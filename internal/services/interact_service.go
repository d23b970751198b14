package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/edusphere/ai-service/internal/llm"
	"github.com/edusphere/ai-service/internal/logger"
	"github.com/edusphere/ai-service/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// maxResponseLength bounds every tutoring reply in characters
	maxResponseLength = 2000

	// chatHistoryWindow is how many recent turns feed the prompt
	chatHistoryWindow = 5

	// fallbackResponse is returned whenever the interaction cannot be
	// completed, so the learner always gets a reply
	fallbackResponse = "Sorry, I encountered an error while processing your question. Please try again."

	defaultLanguageCode = "en"
)

// InteractContentRepository defines the content access methods the
// interaction engine needs
type InteractContentRepository interface {
	// GetByID retrieves a content section by ID
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the content section.
	//
	// Returns the content section and an error if any.
	GetByID(ctx context.Context, id string) (*models.LessonContent, error)
	// GetBySequence retrieves a content section by lesson and sequence number
	//
	// "ctx" is the context for the request.
	// "lessonID" is the ID of the lesson.
	// "sequenceNumber" is the position within the lesson.
	//
	// Returns the content section, or nil without error when none exists.
	GetBySequence(ctx context.Context, lessonID string, sequenceNumber int) (*models.LessonContent, error)
	// UpdateProgress updates a section's completion status and progress
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the content section.
	// "status" is the new completion status.
	// "progress" is the new progress percentage.
	// "accessedAt" is the access timestamp to record.
	//
	// Returns an error if any.
	UpdateProgress(ctx context.Context, id string, status models.CompletionStatus, progress int, accessedAt time.Time) error
}

// InteractLessonRepository defines the lesson access methods the
// interaction engine needs
type InteractLessonRepository interface {
	// GetByID retrieves a lesson by ID
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the lesson.
	//
	// Returns the lesson and an error if any.
	GetByID(ctx context.Context, id string) (*models.Lesson, error)
}

// InteractUserRepository defines the user access methods the interaction
// engine needs
type InteractUserRepository interface {
	// GetByID retrieves a user by ID
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the user.
	//
	// Returns the user and an error if any.
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// InteractChatRepository defines the chat history methods the interaction
// engine needs
type InteractChatRepository interface {
	// Create appends a chat turn
	//
	// "ctx" is the context for the request.
	// "turn" is the chat turn to append.
	//
	// Returns an error if any.
	Create(ctx context.Context, turn *models.ChatTurn) error
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

// interactionResult is the typed shape of a tutoring completion
type interactionResult struct {
	AIResponse string `json:"aiResponse"`
	Completion int    `json:"completion"`
}

type interactService struct {
	contentRepo InteractContentRepository
	lessonRepo  InteractLessonRepository
	userRepo    InteractUserRepository
	chatRepo    InteractChatRepository
	client      llm.Client
	retryer     *llm.Retryer
	detector    CompletionIntentDetector
}

// NewInteractService creates a new tutoring interaction service
func NewInteractService(
	contentRepo InteractContentRepository,
	lessonRepo InteractLessonRepository,
	userRepo InteractUserRepository,
	chatRepo InteractChatRepository,
	client llm.Client,
	retryer *llm.Retryer,
	detector CompletionIntentDetector,
) *interactService {
	return &interactService{
		contentRepo: contentRepo,
		lessonRepo:  lessonRepo,
		userRepo:    userRepo,
		chatRepo:    chatRepo,
		client:      client,
		retryer:     retryer,
		detector:    detector,
	}
}

// HandleInteraction answers one learner message against the current content
// section and advances the section's progress.
//
// The learner always gets a reply: on any failure the returned data carries
// an apology message with zero completion, and the error is returned so the
// caller can set the envelope accordingly. Progress never decreases; a
// completion below what the learner already reached is clamped up.
func (s *interactService) HandleInteraction(ctx context.Context, req *models.InteractRequest) (*models.InteractionData, error) {
	data, err := s.interact(ctx, req)
	if err != nil {
		logger.Logger.Error("interaction failed",
			zap.String("user_id", req.UserID),
			zap.String("content_id", req.ContentID),
			zap.Error(err),
		)
		return &models.InteractionData{
			UserID:       req.UserID,
			ContentID:    req.ContentID,
			UserQuestion: req.UserChat,
			AIResponse:   fallbackResponse,
			Completion:   0,
		}, err
	}
	return data, nil
}

func (s *interactService) interact(ctx context.Context, req *models.InteractRequest) (*models.InteractionData, error) {
	content, err := s.contentRepo.GetByID(ctx, req.ContentID)
	if err != nil {
		return nil, err
	}
	lesson, err := s.lessonRepo.GetByID(ctx, content.LessonID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	nextContent, err := s.contentRepo.GetBySequence(ctx, content.LessonID, content.SequenceNumber+1)
	if err != nil {
		return nil, err
	}
	history, err := s.chatRepo.GetRecent(ctx, req.UserID, req.ContentID, chatHistoryWindow)
	if err != nil {
		return nil, err
	}

	language := req.LanguageCode
	if language == "" {
		language = user.LanguageCode
	}
	if language == "" {
		language = defaultLanguageCode
	}

	prompt := buildInteractionPrompt(interactionPromptInput{
		User:             user,
		Lesson:           lesson,
		Content:          content,
		NextContent:      nextContent,
		FormattedHistory: formatChatHistory(history),
		UserQuestion:     req.UserChat,
		Language:         language,
		IsCompletion:     s.detector.Detect(req.UserChat),
	})

	result, err := llm.Do(ctx, s.retryer, "AI response generation", func(ctx context.Context) (*interactionResult, error) {
		raw, err := s.client.Complete(ctx, prompt)
		if err != nil {
			return nil, err
		}
		var res interactionResult
		if err := llm.ExtractJSON(raw, &res); err != nil {
			return nil, err
		}
		if res.AIResponse == "" {
			return nil, fmt.Errorf("completion has no aiResponse: %w", llm.ErrMalformedCompletion)
		}
		return &res, nil
	})
	if err != nil {
		return nil, err
	}

	result.AIResponse = clampResponse(result.AIResponse)

	progress := result.Completion
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	if progress < content.CurrentProgress {
		progress = content.CurrentProgress
	}
	status := models.CompletionStatusInProgress
	if progress >= 100 {
		status = models.CompletionStatusCompleted
	}
	if err := s.contentRepo.UpdateProgress(ctx, req.ContentID, status, progress, time.Now()); err != nil {
		return nil, err
	}

	s.appendChatTurns(ctx, req, content.LessonID, result.AIResponse)

	return &models.InteractionData{
		UserID:       req.UserID,
		ContentID:    req.ContentID,
		UserQuestion: req.UserChat,
		AIResponse:   result.AIResponse,
		Completion:   progress,
	}, nil
}

// appendChatTurns records the user message and the reply. The reply has
// already been delivered at this point, so persistence failures are logged
// and not propagated.
func (s *interactService) appendChatTurns(ctx context.Context, req *models.InteractRequest, lessonID, aiResponse string) {
	now := time.Now()
	turns := []models.ChatTurn{
		{
			ID:        uuid.NewString(),
			LessonID:  lessonID,
			UserID:    req.UserID,
			ContentID: req.ContentID,
			Agent:     models.ChatAgentUser,
			Content:   req.UserChat,
			CreatedAt: now,
		},
		{
			ID:        uuid.NewString(),
			LessonID:  lessonID,
			UserID:    req.UserID,
			ContentID: req.ContentID,
			Agent:     models.ChatAgentAI,
			Content:   aiResponse,
			CreatedAt: now.Add(time.Millisecond),
		},
	}
	for i := range turns {
		if err := s.chatRepo.Create(ctx, &turns[i]); err != nil {
			logger.Logger.Warn("failed to record chat turn",
				zap.String("content_id", req.ContentID),
				zap.String("agent", string(turns[i].Agent)),
				zap.Error(err),
			)
		}
	}
}

// formatChatHistory renders recent turns oldest first as "AGENT: text" lines
func formatChatHistory(history []models.ChatTurn) string {
	lines := make([]string, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		turn := history[i]
		lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(string(turn.Agent)), turn.Content))
	}
	return strings.Join(lines, "\n")
}

// clampResponse truncates a reply that exceeds the response length cap
func clampResponse(response string) string {
	runes := []rune(response)
	if len(runes) <= maxResponseLength {
		return response
	}
	return string(runes[:maxResponseLength-3]) + "..."
}

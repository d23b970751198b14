package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/edusphere/ai-service/internal/llm"
	"github.com/edusphere/ai-service/internal/logger"
	"github.com/edusphere/ai-service/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	minOutlineSections = 3
	maxOutlineSections = 7

	// Reading-speed heuristic used when the model returns no usable time
	// estimate: 150 words per minute, padded to 90 seconds per minute of
	// reading to account for examples and reflection.
	wordsPerMinute   = 150.0
	secondsPerMinute = 90.0
)

// GeneratorLessonRepository defines the lesson persistence methods the
// generation pipeline needs
type GeneratorLessonRepository interface {
	// Create persists a new lesson
	//
	// "ctx" is the context for the request.
	// "lesson" is the lesson to create.
	//
	// Returns an error if any.
	Create(ctx context.Context, lesson *models.Lesson) error
	// UpdateGeneration updates a lesson's generation status and estimated time
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the lesson.
	// "status" is the new generation status.
	// "estimatedTime" is the total estimated time in seconds.
	//
	// Returns an error if any.
	UpdateGeneration(ctx context.Context, id string, status models.GeneratingStatus, estimatedTime int) error
}

// GeneratorContentRepository defines the content persistence methods the
// generation pipeline needs
type GeneratorContentRepository interface {
	// CreateBatch persists content sections, tolerating per-row failures
	//
	// "ctx" is the context for the request.
	// "contents" is the list of sections to insert.
	//
	// Returns the successfully inserted sections and per-row errors if any.
	CreateBatch(ctx context.Context, contents []models.LessonContent) ([]models.LessonContent, []error)
}

// lessonPlan is the typed shape of a plan completion
type lessonPlan struct {
	Topic       string        `json:"topic"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Outline     []outlineItem `json:"outline"`
}

type outlineItem struct {
	SequenceNumber int    `json:"sequenceNumber"`
	Title          string `json:"title"`
}

// sectionPayload is the typed shape of a section content completion.
// EstimatedSeconds stays raw because models occasionally return it as a
// string or omit it; anything unusable falls back to the word-count
// heuristic rather than failing the section.
type sectionPayload struct {
	Content          string          `json:"content"`
	EstimatedSeconds json.RawMessage `json:"estimatedSeconds"`
}

type generatorService struct {
	lessonRepo  GeneratorLessonRepository
	contentRepo GeneratorContentRepository
	client      llm.Client
	retryer     *llm.Retryer
}

// NewGeneratorService creates a new lesson generator service
func NewGeneratorService(
	lessonRepo GeneratorLessonRepository,
	contentRepo GeneratorContentRepository,
	client llm.Client,
	retryer *llm.Retryer,
) *generatorService {
	return &generatorService{
		lessonRepo:  lessonRepo,
		contentRepo: contentRepo,
		client:      client,
		retryer:     retryer,
	}
}

// GenerateLesson runs the full pipeline: plan the lesson, persist it in
// progress, generate all section contents in parallel, bulk insert them,
// and finish with the rolled-up time estimate.
//
// Section generation is all-or-nothing: if any section fails after retries,
// the error is returned and the lesson stays in progress so a later run can
// recover it. The bulk insert is tolerant instead, keeping whatever sections
// made it in.
func (s *generatorService) GenerateLesson(ctx context.Context, req *models.GenerateLessonRequest) (*models.Lesson, []models.LessonContent, error) {
	plan, err := llm.Do(ctx, s.retryer, "plan generation", func(ctx context.Context) (*lessonPlan, error) {
		return s.generatePlan(ctx, req.UserRequest)
	})
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	lesson := &models.Lesson{
		ID:               uuid.NewString(),
		Title:            plan.Title,
		Description:      plan.Description,
		Difficulty:       models.DifficultyBeginner,
		EstimatedTime:    0,
		UserID:           req.UserID,
		UserRequest:      req.UserRequest,
		GeneratingStatus: models.GeneratingStatusInProgress,
		LanguageCode:     req.LanguageCode,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.lessonRepo.Create(ctx, lesson); err != nil {
		return nil, nil, err
	}

	logger.Logger.Info("lesson created, generating sections",
		zap.String("lesson_id", lesson.ID),
		zap.Int("section_count", len(plan.Outline)),
	)

	sections := make([]*sectionResult, len(plan.Outline))
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range plan.Outline {
		g.Go(func() error {
			result, err := s.generateSection(gctx, req.UserRequest, plan.Topic, item.Title)
			if err != nil {
				return err
			}
			sections[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	contents := make([]models.LessonContent, len(plan.Outline))
	for i, item := range plan.Outline {
		description := fmt.Sprintf("Section %d of %s", item.SequenceNumber, plan.Title)
		if item.SequenceNumber == 1 {
			description = plan.Description
		}
		contents[i] = models.LessonContent{
			ID:               uuid.NewString(),
			LessonID:         lesson.ID,
			UserID:           req.UserID,
			Title:            item.Title,
			Description:      description,
			SequenceNumber:   item.SequenceNumber,
			Content:          sections[i].content,
			CompletionStatus: models.CompletionStatusNotStarted,
			CurrentProgress:  0,
			LastAccessedAt:   nil,
			EstimatedTime:    sections[i].estimatedSeconds,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
	}

	inserted, rowErrs := s.contentRepo.CreateBatch(ctx, contents)
	for _, rowErr := range rowErrs {
		logger.Logger.Warn("content section insert failed",
			zap.String("lesson_id", lesson.ID),
			zap.Error(rowErr),
		)
	}

	totalEstimatedTime := 0
	for _, content := range inserted {
		totalEstimatedTime += heuristicSeconds(content.Content)
	}

	if err := s.lessonRepo.UpdateGeneration(ctx, lesson.ID, models.GeneratingStatusCompleted, totalEstimatedTime); err != nil {
		return nil, nil, err
	}
	lesson.GeneratingStatus = models.GeneratingStatusCompleted
	lesson.EstimatedTime = totalEstimatedTime

	logger.Logger.Info("lesson generation completed",
		zap.String("lesson_id", lesson.ID),
		zap.Int("sections_saved", len(inserted)),
		zap.Int("estimated_time", totalEstimatedTime),
	)

	return lesson, inserted, nil
}

// generatePlan runs one plan completion and validates its shape
func (s *generatorService) generatePlan(ctx context.Context, userRequest string) (*lessonPlan, error) {
	raw, err := s.client.Complete(ctx, buildPlanPrompt(userRequest))
	if err != nil {
		return nil, err
	}

	var plan lessonPlan
	if err := llm.ExtractJSON(raw, &plan); err != nil {
		return nil, err
	}
	if err := validatePlan(&plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// validatePlan rejects completions that parsed but are unusable: missing
// fields, an outline outside the 3-7 section range, or sequence numbers
// that are not exactly 1..N.
func validatePlan(plan *lessonPlan) error {
	if plan.Topic == "" || plan.Title == "" || plan.Description == "" {
		return fmt.Errorf("plan is missing required fields: %w", llm.ErrMalformedCompletion)
	}
	if len(plan.Outline) < minOutlineSections || len(plan.Outline) > maxOutlineSections {
		return fmt.Errorf("plan outline has %d sections, want %d-%d: %w",
			len(plan.Outline), minOutlineSections, maxOutlineSections, llm.ErrMalformedCompletion)
	}

	sort.Slice(plan.Outline, func(i, j int) bool {
		return plan.Outline[i].SequenceNumber < plan.Outline[j].SequenceNumber
	})
	for i, item := range plan.Outline {
		if item.SequenceNumber != i+1 {
			return fmt.Errorf("plan outline sequence numbers are not contiguous from 1: %w", llm.ErrMalformedCompletion)
		}
		if item.Title == "" {
			return fmt.Errorf("plan outline section %d has no title: %w", i+1, llm.ErrMalformedCompletion)
		}
	}
	return nil
}

type sectionResult struct {
	content          string
	estimatedSeconds int
}

// generateSection produces one section's content with retry. A missing or
// non-positive time estimate falls back to the word-count heuristic.
func (s *generatorService) generateSection(ctx context.Context, userRequest, topic, sectionTitle string) (*sectionResult, error) {
	label := fmt.Sprintf("content generation for section: %s", sectionTitle)
	return llm.Do(ctx, s.retryer, label, func(ctx context.Context) (*sectionResult, error) {
		raw, err := s.client.Complete(ctx, buildSectionPrompt(userRequest, topic, sectionTitle))
		if err != nil {
			return nil, err
		}

		var payload sectionPayload
		if err := llm.ExtractJSON(raw, &payload); err != nil {
			return nil, err
		}
		if strings.TrimSpace(payload.Content) == "" {
			return nil, fmt.Errorf("section completion has no content: %w", llm.ErrMalformedCompletion)
		}

		estimated := parseEstimatedSeconds(payload.EstimatedSeconds)
		if estimated <= 0 {
			estimated = heuristicSeconds(payload.Content)
		}

		return &sectionResult{content: payload.Content, estimatedSeconds: estimated}, nil
	})
}

// parseEstimatedSeconds returns the numeric estimate or 0 when the field is
// absent or not a number
func parseEstimatedSeconds(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var seconds float64
	if err := json.Unmarshal(raw, &seconds); err != nil {
		return 0
	}
	return int(math.Round(seconds))
}

// heuristicSeconds estimates reading time from word count
func heuristicSeconds(content string) int {
	wordCount := len(strings.Fields(content))
	return int(math.Round(float64(wordCount) / wordsPerMinute * secondsPerMinute))
}

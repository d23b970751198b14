package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/edusphere/ai-service/internal/llm"
	"github.com/edusphere/ai-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockGeneratorLessonRepo is a mock implementation of GeneratorLessonRepository
type mockGeneratorLessonRepo struct {
	created   *models.Lesson
	createErr error

	updatedStatus models.GeneratingStatus
	updatedTime   int
	updateCalled  bool
	updateErr     error
}

func (m *mockGeneratorLessonRepo) Create(ctx context.Context, lesson *models.Lesson) error {
	if m.createErr != nil {
		return m.createErr
	}
	copied := *lesson
	m.created = &copied
	return nil
}

func (m *mockGeneratorLessonRepo) UpdateGeneration(ctx context.Context, id string, status models.GeneratingStatus, estimatedTime int) error {
	m.updateCalled = true
	m.updatedStatus = status
	m.updatedTime = estimatedTime
	return m.updateErr
}

// mockGeneratorContentRepo is a mock implementation of GeneratorContentRepository
type mockGeneratorContentRepo struct {
	received []models.LessonContent
	failSeq  int // sequence number whose insert fails, 0 for none
}

func (m *mockGeneratorContentRepo) CreateBatch(ctx context.Context, contents []models.LessonContent) ([]models.LessonContent, []error) {
	m.received = contents

	var inserted []models.LessonContent
	var rowErrs []error
	for _, content := range contents {
		if m.failSeq != 0 && content.SequenceNumber == m.failSeq {
			rowErrs = append(rowErrs, fmt.Errorf("failed to insert content section %d: duplicate entry", content.SequenceNumber))
			continue
		}
		inserted = append(inserted, content)
	}
	return inserted, rowErrs
}

func fastRetryer(maxAttempts int) *llm.Retryer {
	return llm.NewRetryer(llm.RetryConfig{
		MaxAttempts: maxAttempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
	}, zap.NewNop())
}

func testPlanJSON(t *testing.T) string {
	t.Helper()
	plan := map[string]any{
		"topic":       "Go Concurrency",
		"title":       "Mastering Go Concurrency",
		"description": "Channels and goroutines in depth.",
		"outline": []map[string]any{
			{"sequenceNumber": 1, "title": "Goroutines"},
			{"sequenceNumber": 2, "title": "Channels"},
			{"sequenceNumber": 3, "title": "Select"},
		},
	}
	b, err := json.Marshal(plan)
	require.NoError(t, err)
	return string(b)
}

// testSectionJSON returns a section completion whose content has exactly
// 150 words, so the reading-time heuristic yields 90 seconds.
func testSectionJSON(t *testing.T) string {
	t.Helper()
	content := strings.TrimSpace(strings.Repeat("word ", 150))
	b, err := json.Marshal(map[string]any{
		"content":          content,
		"estimatedSeconds": 120,
	})
	require.NoError(t, err)
	return string(b)
}

func TestGeneratorService_GenerateLesson(t *testing.T) {
	sectionJSON := testSectionJSON(t)
	client := llm.NewMockClient(
		llm.MockCompletion{Text: testPlanJSON(t)},
		llm.MockCompletion{Text: sectionJSON},
		llm.MockCompletion{Text: sectionJSON},
		llm.MockCompletion{Text: sectionJSON},
	)
	lessonRepo := &mockGeneratorLessonRepo{}
	contentRepo := &mockGeneratorContentRepo{}
	svc := NewGeneratorService(lessonRepo, contentRepo, client, fastRetryer(3))

	lesson, contents, err := svc.GenerateLesson(context.Background(), &models.GenerateLessonRequest{
		UserRequest:  "teach me go concurrency",
		UserID:       "u1",
		LanguageCode: "en",
	})

	require.NoError(t, err)
	require.NotNil(t, lesson)
	require.Len(t, contents, 3)

	// The lesson is persisted in progress before any section work starts
	require.NotNil(t, lessonRepo.created)
	assert.Equal(t, models.GeneratingStatusInProgress, lessonRepo.created.GeneratingStatus)
	assert.Equal(t, "Mastering Go Concurrency", lessonRepo.created.Title)
	assert.Equal(t, models.DifficultyBeginner, lessonRepo.created.Difficulty)
	assert.Equal(t, 0, lessonRepo.created.EstimatedTime)

	// Returned lesson reflects the final state
	assert.Equal(t, models.GeneratingStatusCompleted, lesson.GeneratingStatus)
	assert.Equal(t, 270, lesson.EstimatedTime)
	assert.True(t, lessonRepo.updateCalled)
	assert.Equal(t, models.GeneratingStatusCompleted, lessonRepo.updatedStatus)
	assert.Equal(t, 270, lessonRepo.updatedTime)

	// Section one inherits the plan description, later ones get positional ones
	assert.Equal(t, "Channels and goroutines in depth.", contents[0].Description)
	assert.Equal(t, "Section 2 of Mastering Go Concurrency", contents[1].Description)
	assert.Equal(t, "Section 3 of Mastering Go Concurrency", contents[2].Description)
	for i, content := range contents {
		assert.Equal(t, i+1, content.SequenceNumber)
		assert.Equal(t, lesson.ID, content.LessonID)
		assert.Equal(t, "u1", content.UserID)
		assert.Equal(t, models.CompletionStatusNotStarted, content.CompletionStatus)
		assert.Equal(t, 0, content.CurrentProgress)
		assert.Nil(t, content.LastAccessedAt)
		assert.Equal(t, 120, content.EstimatedTime)
	}

	assert.Equal(t, 4, client.CallCount())
}

func TestGeneratorService_GenerateLesson_PlanRetriedOnMalformedCompletion(t *testing.T) {
	sectionJSON := testSectionJSON(t)
	client := llm.NewMockClient(
		llm.MockCompletion{Text: "I could not produce JSON, sorry."},
		llm.MockCompletion{Text: testPlanJSON(t)},
		llm.MockCompletion{Text: sectionJSON},
		llm.MockCompletion{Text: sectionJSON},
		llm.MockCompletion{Text: sectionJSON},
	)
	lessonRepo := &mockGeneratorLessonRepo{}
	contentRepo := &mockGeneratorContentRepo{}
	svc := NewGeneratorService(lessonRepo, contentRepo, client, fastRetryer(3))

	lesson, contents, err := svc.GenerateLesson(context.Background(), &models.GenerateLessonRequest{
		UserRequest: "teach me go concurrency",
		UserID:      "u1",
	})

	require.NoError(t, err)
	assert.Equal(t, models.GeneratingStatusCompleted, lesson.GeneratingStatus)
	assert.Len(t, contents, 3)
	assert.Equal(t, 5, client.CallCount())
}

func TestGeneratorService_GenerateLesson_PlanFailsAfterRetries(t *testing.T) {
	client := llm.NewMockClient(
		llm.MockCompletion{Err: errors.New("provider unavailable")},
		llm.MockCompletion{Err: errors.New("provider unavailable")},
	)
	lessonRepo := &mockGeneratorLessonRepo{}
	contentRepo := &mockGeneratorContentRepo{}
	svc := NewGeneratorService(lessonRepo, contentRepo, client, fastRetryer(2))

	lesson, contents, err := svc.GenerateLesson(context.Background(), &models.GenerateLessonRequest{
		UserRequest: "teach me go concurrency",
		UserID:      "u1",
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "plan generation")
	assert.Nil(t, lesson)
	assert.Nil(t, contents)
	assert.Nil(t, lessonRepo.created)
	assert.Equal(t, 2, client.CallCount())
}

func TestGeneratorService_GenerateLesson_SectionFailureLeavesLessonInProgress(t *testing.T) {
	// One section fails on every attempt, so generation aborts after the
	// lesson row was created and no completion update happens.
	client := llm.NewMockClient(llm.MockCompletion{Text: testPlanJSON(t)})
	for range 6 {
		client.AddCompletion(llm.MockCompletion{Err: errors.New("provider unavailable")})
	}
	lessonRepo := &mockGeneratorLessonRepo{}
	contentRepo := &mockGeneratorContentRepo{}
	svc := NewGeneratorService(lessonRepo, contentRepo, client, fastRetryer(2))

	lesson, contents, err := svc.GenerateLesson(context.Background(), &models.GenerateLessonRequest{
		UserRequest: "teach me go concurrency",
		UserID:      "u1",
	})

	assert.Error(t, err)
	assert.Nil(t, lesson)
	assert.Nil(t, contents)
	require.NotNil(t, lessonRepo.created)
	assert.Equal(t, models.GeneratingStatusInProgress, lessonRepo.created.GeneratingStatus)
	assert.False(t, lessonRepo.updateCalled)
	assert.Nil(t, contentRepo.received)
}

func TestGeneratorService_GenerateLesson_ToleratesPartialInsert(t *testing.T) {
	sectionJSON := testSectionJSON(t)
	client := llm.NewMockClient(
		llm.MockCompletion{Text: testPlanJSON(t)},
		llm.MockCompletion{Text: sectionJSON},
		llm.MockCompletion{Text: sectionJSON},
		llm.MockCompletion{Text: sectionJSON},
	)
	lessonRepo := &mockGeneratorLessonRepo{}
	contentRepo := &mockGeneratorContentRepo{failSeq: 2}
	svc := NewGeneratorService(lessonRepo, contentRepo, client, fastRetryer(3))

	lesson, contents, err := svc.GenerateLesson(context.Background(), &models.GenerateLessonRequest{
		UserRequest: "teach me go concurrency",
		UserID:      "u1",
	})

	require.NoError(t, err)
	assert.Len(t, contents, 2)
	// The rollup only counts sections that actually made it in
	assert.Equal(t, 180, lesson.EstimatedTime)
	assert.Equal(t, models.GeneratingStatusCompleted, lesson.GeneratingStatus)
}

func TestValidatePlan(t *testing.T) {
	validOutline := func(n int) []outlineItem {
		items := make([]outlineItem, n)
		for i := range items {
			items[i] = outlineItem{SequenceNumber: i + 1, Title: fmt.Sprintf("Section %d", i+1)}
		}
		return items
	}

	tests := []struct {
		name          string
		plan          lessonPlan
		expectedError bool
	}{
		{
			name: "valid plan with three sections",
			plan: lessonPlan{Topic: "t", Title: "ti", Description: "d", Outline: validOutline(3)},
		},
		{
			name: "valid plan with seven sections",
			plan: lessonPlan{Topic: "t", Title: "ti", Description: "d", Outline: validOutline(7)},
		},
		{
			name:          "missing topic",
			plan:          lessonPlan{Title: "ti", Description: "d", Outline: validOutline(3)},
			expectedError: true,
		},
		{
			name:          "too few sections",
			plan:          lessonPlan{Topic: "t", Title: "ti", Description: "d", Outline: validOutline(2)},
			expectedError: true,
		},
		{
			name:          "too many sections",
			plan:          lessonPlan{Topic: "t", Title: "ti", Description: "d", Outline: validOutline(8)},
			expectedError: true,
		},
		{
			name: "gap in sequence numbers",
			plan: lessonPlan{Topic: "t", Title: "ti", Description: "d", Outline: []outlineItem{
				{SequenceNumber: 1, Title: "a"},
				{SequenceNumber: 2, Title: "b"},
				{SequenceNumber: 4, Title: "c"},
			}},
			expectedError: true,
		},
		{
			name: "untitled section",
			plan: lessonPlan{Topic: "t", Title: "ti", Description: "d", Outline: []outlineItem{
				{SequenceNumber: 1, Title: "a"},
				{SequenceNumber: 2, Title: ""},
				{SequenceNumber: 3, Title: "c"},
			}},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePlan(&tt.plan)
			if tt.expectedError {
				assert.ErrorIs(t, err, llm.ErrMalformedCompletion)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePlan_SortsOutline(t *testing.T) {
	plan := lessonPlan{
		Topic:       "t",
		Title:       "ti",
		Description: "d",
		Outline: []outlineItem{
			{SequenceNumber: 3, Title: "c"},
			{SequenceNumber: 1, Title: "a"},
			{SequenceNumber: 2, Title: "b"},
		},
	}

	require.NoError(t, validatePlan(&plan))
	assert.Equal(t, 1, plan.Outline[0].SequenceNumber)
	assert.Equal(t, "a", plan.Outline[0].Title)
	assert.Equal(t, 3, plan.Outline[2].SequenceNumber)
}

func TestGeneratorService_GenerateSection_TimeEstimateFallback(t *testing.T) {
	content50 := strings.TrimSpace(strings.Repeat("word ", 50))

	tests := []struct {
		name            string
		payload         map[string]any
		expectedSeconds int
	}{
		{
			name:            "model estimate used when positive",
			payload:         map[string]any{"content": content50, "estimatedSeconds": 200},
			expectedSeconds: 200,
		},
		{
			name:            "missing estimate falls back to word count",
			payload:         map[string]any{"content": content50},
			expectedSeconds: 30,
		},
		{
			name:            "non-numeric estimate falls back to word count",
			payload:         map[string]any{"content": content50, "estimatedSeconds": "about five minutes"},
			expectedSeconds: 30,
		},
		{
			name:            "non-positive estimate falls back to word count",
			payload:         map[string]any{"content": content50, "estimatedSeconds": -10},
			expectedSeconds: 30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.payload)
			require.NoError(t, err)

			client := llm.NewMockClient(llm.MockCompletion{Text: string(b)})
			svc := NewGeneratorService(&mockGeneratorLessonRepo{}, &mockGeneratorContentRepo{}, client, fastRetryer(1))

			result, err := svc.generateSection(context.Background(), "req", "topic", "Section")

			require.NoError(t, err)
			assert.Equal(t, tt.expectedSeconds, result.estimatedSeconds)
			assert.Equal(t, content50, result.content)
		})
	}
}

func TestGeneratorService_GenerateSection_RejectsBlankContent(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
	}{
		{
			name:    "empty content",
			payload: map[string]any{"content": "", "estimatedSeconds": 120},
		},
		{
			name:    "whitespace-only content",
			payload: map[string]any{"content": "  \n\t ", "estimatedSeconds": 120},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.payload)
			require.NoError(t, err)

			client := llm.NewMockClient(llm.MockCompletion{Text: string(b)})
			svc := NewGeneratorService(&mockGeneratorLessonRepo{}, &mockGeneratorContentRepo{}, client, fastRetryer(1))

			_, err = svc.generateSection(context.Background(), "req", "topic", "Section")

			require.Error(t, err)
			assert.ErrorIs(t, err, llm.ErrMalformedCompletion)
		})
	}
}

func TestHeuristicSeconds(t *testing.T) {
	assert.Equal(t, 90, heuristicSeconds(strings.TrimSpace(strings.Repeat("word ", 150))))
	assert.Equal(t, 30, heuristicSeconds(strings.TrimSpace(strings.Repeat("word ", 50))))
	assert.Equal(t, 1, heuristicSeconds("one two"))
	assert.Equal(t, 0, heuristicSeconds(""))
}

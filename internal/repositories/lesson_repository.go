package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/edusphere/ai-service/internal/models"
)

type lessonRepository struct {
	db *sql.DB
}

// NewLessonRepository creates a new lesson repository
func NewLessonRepository(db *sql.DB) *lessonRepository {
	return &lessonRepository{
		db: db,
	}
}

// Create persists a new lesson
func (r *lessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	query := `
		INSERT INTO lessons (id, title, description, difficulty, estimated_time, user_id, user_request, generating_status, language_code, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		lesson.ID,
		lesson.Title,
		lesson.Description,
		lesson.Difficulty,
		lesson.EstimatedTime,
		lesson.UserID,
		lesson.UserRequest,
		lesson.GeneratingStatus,
		lesson.LanguageCode,
		lesson.CreatedAt,
		lesson.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}

	return nil
}

// GetByID retrieves a lesson by its ID
func (r *lessonRepository) GetByID(ctx context.Context, id string) (*models.Lesson, error) {
	query := `
		SELECT id, title, description, difficulty, estimated_time, user_id, user_request, generating_status, language_code, created_at, updated_at
		FROM lessons
		WHERE id = ?
		LIMIT 1
	`

	var lesson models.Lesson
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&lesson.ID,
		&lesson.Title,
		&lesson.Description,
		&lesson.Difficulty,
		&lesson.EstimatedTime,
		&lesson.UserID,
		&lesson.UserRequest,
		&lesson.GeneratingStatus,
		&lesson.LanguageCode,
		&lesson.CreatedAt,
		&lesson.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("lesson not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson by id: %w", err)
	}

	return &lesson, nil
}

// GetByUser retrieves all lessons owned by a user, newest first
func (r *lessonRepository) GetByUser(ctx context.Context, userID string) ([]models.Lesson, error) {
	query := `
		SELECT id, title, description, difficulty, estimated_time, user_id, user_request, generating_status, language_code, created_at, updated_at
		FROM lessons
		WHERE user_id = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	var lessons []models.Lesson
	for rows.Next() {
		var lesson models.Lesson
		err := rows.Scan(
			&lesson.ID,
			&lesson.Title,
			&lesson.Description,
			&lesson.Difficulty,
			&lesson.EstimatedTime,
			&lesson.UserID,
			&lesson.UserRequest,
			&lesson.GeneratingStatus,
			&lesson.LanguageCode,
			&lesson.CreatedAt,
			&lesson.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		lessons = append(lessons, lesson)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return lessons, nil
}

// UpdateGeneration sets the generation status and total estimated time
func (r *lessonRepository) UpdateGeneration(ctx context.Context, id string, status models.GeneratingStatus, estimatedTime int) error {
	query := `
		UPDATE lessons
		SET generating_status = ?, estimated_time = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, status, estimatedTime, id)
	if err != nil {
		return fmt.Errorf("failed to update lesson generation state: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("lesson not found")
	}

	return nil
}

// UpdateLanguage changes the language code of a user's lesson
func (r *lessonRepository) UpdateLanguage(ctx context.Context, id, userID, languageCode string) error {
	query := `
		UPDATE lessons
		SET language_code = ?
		WHERE id = ? AND user_id = ?
	`

	result, err := r.db.ExecContext(ctx, query, languageCode, id, userID)
	if err != nil {
		return fmt.Errorf("failed to update lesson language: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("lesson not found")
	}

	return nil
}

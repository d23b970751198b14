package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/edusphere/ai-service/internal/models"
)

type lessonContentRepository struct {
	db *sql.DB
}

// NewLessonContentRepository creates a new lesson content repository
func NewLessonContentRepository(db *sql.DB) *lessonContentRepository {
	return &lessonContentRepository{
		db: db,
	}
}

// CreateBatch persists a batch of content sections, continuing past
// individual row failures so one bad section does not prevent its siblings
// from being saved. It returns the rows that were inserted and the errors
// for the rows that were not.
func (r *lessonContentRepository) CreateBatch(ctx context.Context, contents []models.LessonContent) ([]models.LessonContent, []error) {
	query := `
		INSERT INTO lesson_contents (id, lesson_id, user_id, title, description, sequence_number, content, completion_status, current_progress, last_accessed_at, estimated_time, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var inserted []models.LessonContent
	var rowErrs []error

	for _, content := range contents {
		_, err := r.db.ExecContext(ctx, query,
			content.ID,
			content.LessonID,
			content.UserID,
			content.Title,
			content.Description,
			content.SequenceNumber,
			content.Content,
			content.CompletionStatus,
			content.CurrentProgress,
			content.LastAccessedAt,
			content.EstimatedTime,
			content.CreatedAt,
			content.UpdatedAt,
		)
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("failed to insert content section %d: %w", content.SequenceNumber, err))
			continue
		}
		inserted = append(inserted, content)
	}

	return inserted, rowErrs
}

// GetByID retrieves a content section by its ID
func (r *lessonContentRepository) GetByID(ctx context.Context, id string) (*models.LessonContent, error) {
	query := `
		SELECT id, lesson_id, user_id, title, description, sequence_number, content, completion_status, current_progress, last_accessed_at, estimated_time, created_at, updated_at
		FROM lesson_contents
		WHERE id = ?
		LIMIT 1
	`

	var content models.LessonContent
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&content.ID,
		&content.LessonID,
		&content.UserID,
		&content.Title,
		&content.Description,
		&content.SequenceNumber,
		&content.Content,
		&content.CompletionStatus,
		&content.CurrentProgress,
		&content.LastAccessedAt,
		&content.EstimatedTime,
		&content.CreatedAt,
		&content.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("content not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get content by id: %w", err)
	}

	return &content, nil
}

// GetByLessonID retrieves all content sections of a lesson in teaching order
func (r *lessonContentRepository) GetByLessonID(ctx context.Context, lessonID string) ([]models.LessonContent, error) {
	query := `
		SELECT id, lesson_id, user_id, title, description, sequence_number, content, completion_status, current_progress, last_accessed_at, estimated_time, created_at, updated_at
		FROM lesson_contents
		WHERE lesson_id = ?
		ORDER BY sequence_number
	`

	rows, err := r.db.QueryContext(ctx, query, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contents: %w", err)
	}
	defer rows.Close()

	var contents []models.LessonContent
	for rows.Next() {
		var content models.LessonContent
		err := rows.Scan(
			&content.ID,
			&content.LessonID,
			&content.UserID,
			&content.Title,
			&content.Description,
			&content.SequenceNumber,
			&content.Content,
			&content.CompletionStatus,
			&content.CurrentProgress,
			&content.LastAccessedAt,
			&content.EstimatedTime,
			&content.CreatedAt,
			&content.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content: %w", err)
		}
		contents = append(contents, content)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return contents, nil
}

// GetBySequence retrieves the content section of a lesson with the given
// sequence number. Returns (nil, nil) when no such section exists.
func (r *lessonContentRepository) GetBySequence(ctx context.Context, lessonID string, sequenceNumber int) (*models.LessonContent, error) {
	query := `
		SELECT id, lesson_id, user_id, title, description, sequence_number, content, completion_status, current_progress, last_accessed_at, estimated_time, created_at, updated_at
		FROM lesson_contents
		WHERE lesson_id = ? AND sequence_number = ?
		LIMIT 1
	`

	var content models.LessonContent
	err := r.db.QueryRowContext(ctx, query, lessonID, sequenceNumber).Scan(
		&content.ID,
		&content.LessonID,
		&content.UserID,
		&content.Title,
		&content.Description,
		&content.SequenceNumber,
		&content.Content,
		&content.CompletionStatus,
		&content.CurrentProgress,
		&content.LastAccessedAt,
		&content.EstimatedTime,
		&content.CreatedAt,
		&content.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get content by sequence: %w", err)
	}

	return &content, nil
}

// UpdateProgress sets a section's completion status, progress, and
// last-accessed timestamp
func (r *lessonContentRepository) UpdateProgress(ctx context.Context, id string, status models.CompletionStatus, progress int, accessedAt time.Time) error {
	query := `
		UPDATE lesson_contents
		SET completion_status = ?, current_progress = ?, last_accessed_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, status, progress, accessedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update content progress: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("content not found")
	}

	return nil
}

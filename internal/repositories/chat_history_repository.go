package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/edusphere/ai-service/internal/models"
)

type chatHistoryRepository struct {
	db *sql.DB
}

// NewChatHistoryRepository creates a new chat history repository
func NewChatHistoryRepository(db *sql.DB) *chatHistoryRepository {
	return &chatHistoryRepository{
		db: db,
	}
}

// Create appends a chat turn. Turns are append-only and never mutated.
func (r *chatHistoryRepository) Create(ctx context.Context, turn *models.ChatTurn) error {
	query := `
		INSERT INTO lesson_chat_history (id, lesson_id, user_id, content_id, agent, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		turn.ID,
		turn.LessonID,
		turn.UserID,
		turn.ContentID,
		turn.Agent,
		turn.Content,
		turn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create chat turn: %w", err)
	}

	return nil
}

// GetRecent retrieves the most recent chat turns for a user and content
// section, newest first
func (r *chatHistoryRepository) GetRecent(ctx context.Context, userID, contentID string, limit int) ([]models.ChatTurn, error) {
	query := `
		SELECT id, lesson_id, user_id, content_id, agent, content, created_at
		FROM lesson_chat_history
		WHERE user_id = ? AND content_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, userID, contentID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat history: %w", err)
	}
	defer rows.Close()

	var turns []models.ChatTurn
	for rows.Next() {
		var turn models.ChatTurn
		err := rows.Scan(
			&turn.ID,
			&turn.LessonID,
			&turn.UserID,
			&turn.ContentID,
			&turn.Agent,
			&turn.Content,
			&turn.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat turn: %w", err)
		}
		turns = append(turns, turn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return turns, nil
}

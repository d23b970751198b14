package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/edusphere/ai-service/internal/models"
)

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{
		db: db,
	}
}

// GetByID retrieves a learner profile by user ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, name, language_code, accessibility_needs
		FROM users
		WHERE id = ?
		LIMIT 1
	`

	var user models.User
	var needs sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.LanguageCode,
		&needs,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	if needs.Valid && needs.String != "" {
		for _, need := range strings.Split(needs.String, ",") {
			need = strings.TrimSpace(need)
			if need != "" {
				user.AccessibilityNeeds = append(user.AccessibilityNeeds, need)
			}
		}
	}

	return &user, nil
}

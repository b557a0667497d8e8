package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/altrove/habitlens/internal/core/domain"
)

type PostgresScreenTimeRepository struct {
	db *sqlx.DB
}

func NewPostgresScreenTimeRepository(db *sqlx.DB) *PostgresScreenTimeRepository {
	return &PostgresScreenTimeRepository{db: db}
}

// CreateBatch inserts one upload atomically: a CSV that fails halfway
// leaves no partial rows behind.
func (r *PostgresScreenTimeRepository) CreateBatch(ctx context.Context, logs []*domain.ScreenTimeLog) error {
	if len(logs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch insert: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO screen_time_logs (
			id, user_id, log_date, app_name, usage_minutes, upload_file, created_at
		) VALUES (
			:id, :user_id, :log_date, :app_name, :usage_minutes, :upload_file, :created_at
		)`

	for _, log := range logs {
		if log.ID == "" {
			log.ID = uuid.NewString()
		}
		if _, err := tx.NamedExecContext(ctx, query, log); err != nil {
			return fmt.Errorf("insert screen time row: %w", err)
		}
	}

	return tx.Commit()
}

func (r *PostgresScreenTimeRepository) ListByUserID(ctx context.Context, userID string, from, to time.Time) ([]*domain.ScreenTimeLog, error) {
	logs := []*domain.ScreenTimeLog{}

	query := `
		SELECT * FROM screen_time_logs
		WHERE user_id = $1
		  AND ($2::timestamptz IS NULL OR log_date >= $2)
		  AND log_date <= $3
		ORDER BY log_date DESC, app_name ASC`

	err := r.db.SelectContext(ctx, &logs, query, userID, nullableTime(from), to)
	if err != nil {
		return nil, err
	}
	return logs, nil
}

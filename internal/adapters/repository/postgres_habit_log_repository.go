package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/altrove/habitlens/internal/core/domain"
)

type PostgresHabitLogRepository struct {
	db *sqlx.DB
}

func NewPostgresHabitLogRepository(db *sqlx.DB) *PostgresHabitLogRepository {
	return &PostgresHabitLogRepository{db: db}
}

func (r *PostgresHabitLogRepository) Create(ctx context.Context, log *domain.HabitLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}

	query := `
		INSERT INTO habit_logs (
			id, habit_id, user_id,
			log_date, completed, notes,
			version, created_at, updated_at
		) VALUES (
			:id, :habit_id, :user_id,
			:log_date, :completed, :notes,
			:version, :created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, log)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23503" {
				return errors.New("referenced habit or user does not exist")
			}
			// Unique (habit_id, log_date): a concurrent writer beat us
			// to this day.
			if pqErr.Code == "23505" {
				return domain.ErrLogConflict
			}
		}
		return err
	}
	return nil
}

func (r *PostgresHabitLogRepository) Update(ctx context.Context, log *domain.HabitLog) error {
	query := `
		UPDATE habit_logs
		SET completed = :completed,
		    notes = :notes,
		    version = :version,
		    updated_at = :updated_at
		WHERE id = :id
		  AND version = :version - 1  -- Optimistic Lock check`

	result, err := r.db.NamedExecContext(ctx, query, log)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		exists, _ := r.exists(ctx, log.ID)
		if !exists {
			return domain.ErrLogNotFound
		}
		return domain.ErrLogConflict
	}

	return nil
}

func (r *PostgresHabitLogRepository) GetByHabitAndDate(ctx context.Context, habitID string, date time.Time) (*domain.HabitLog, error) {
	var log domain.HabitLog
	query := `SELECT * FROM habit_logs WHERE habit_id = $1 AND log_date = $2`

	err := r.db.GetContext(ctx, &log, query, habitID, domain.Day(date))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLogNotFound
		}
		return nil, err
	}
	return &log, nil
}

func (r *PostgresHabitLogRepository) ListByHabitID(ctx context.Context, habitID string, from, to time.Time) ([]*domain.HabitLog, error) {
	logs := []*domain.HabitLog{}

	query := `
		SELECT * FROM habit_logs
		WHERE habit_id = $1
		  AND ($2::timestamptz IS NULL OR log_date >= $2)
		  AND log_date <= $3
		ORDER BY log_date DESC`

	err := r.db.SelectContext(ctx, &logs, query, habitID, nullableTime(from), to)
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *PostgresHabitLogRepository) ListByUserID(ctx context.Context, userID string, from, to time.Time) ([]*domain.HabitLog, error) {
	logs := []*domain.HabitLog{}

	query := `
		SELECT * FROM habit_logs
		WHERE user_id = $1
		  AND ($2::timestamptz IS NULL OR log_date >= $2)
		  AND log_date <= $3
		ORDER BY log_date DESC`

	err := r.db.SelectContext(ctx, &logs, query, userID, nullableTime(from), to)
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *PostgresHabitLogRepository) exists(ctx context.Context, id string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, "SELECT count(*) FROM habit_logs WHERE id = $1", id)
	return count > 0, err
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

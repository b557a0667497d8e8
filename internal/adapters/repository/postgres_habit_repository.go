package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/altrove/habitlens/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresHabitRepository struct {
	db *sqlx.DB
}

func NewPostgresHabitRepository(db *sqlx.DB) *PostgresHabitRepository {
	return &PostgresHabitRepository{db: db}
}

func (r *PostgresHabitRepository) Create(ctx context.Context, h *domain.Habit) error {
	query := `
        INSERT INTO habits (
            id, user_id, name, description, frequency, goal,
            current_streak, longest_streak,
            version, deleted_at, created_at, updated_at
        ) VALUES (
            :id, :user_id, :name, :description, :frequency, :goal,
            :current_streak, :longest_streak,
            1, NULL, :created_at, :updated_at
        )`

	_, err := r.db.NamedExecContext(ctx, query, h)
	if err != nil {
		return fmt.Errorf("failed to insert habit: %w", err)
	}

	h.Version = 1
	return nil
}

func (r *PostgresHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	var h domain.Habit
	query := `SELECT * FROM habits WHERE id = $1 AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &h, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return &h, nil
}

func (r *PostgresHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	habits := []*domain.Habit{}
	query := `
        SELECT * FROM habits
        WHERE user_id = $1 AND deleted_at IS NULL
        ORDER BY created_at ASC`

	err := r.db.SelectContext(ctx, &habits, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}

	return habits, nil
}

func (r *PostgresHabitRepository) Update(ctx context.Context, h *domain.Habit) error {
	query := `
        UPDATE habits SET
            name=$1, description=$2, frequency=$3, goal=$4,
            updated_at=NOW(), version = version + 1
        WHERE id=$5 AND version=$6 AND deleted_at IS NULL
        RETURNING version, updated_at`

	row := r.db.QueryRowContext(ctx, query,
		h.Name, h.Description, h.Frequency, h.Goal,
		h.ID, h.Version,
	)

	var newVersion int
	var newUpdatedAt time.Time

	err := row.Scan(&newVersion, &newUpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var count int
			if checkErr := r.db.QueryRowContext(ctx, `SELECT count(*) FROM habits WHERE id = $1`, h.ID).Scan(&count); checkErr != nil {
				return fmt.Errorf("existence check failed: %w", checkErr)
			}
			if count == 0 {
				return domain.ErrHabitNotFound
			}
			return domain.ErrHabitConflict
		}
		return fmt.Errorf("update query failed: %w", err)
	}

	h.Version = newVersion
	h.UpdatedAt = newUpdatedAt

	return nil
}

func (r *PostgresHabitRepository) Delete(ctx context.Context, id string) error {
	query := `
        UPDATE habits
        SET deleted_at = NOW(), updated_at = NOW(), version = version + 1
        WHERE id = $1 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}

// UpdateStreaks refreshes the cached columns without touching version:
// streak recomputation is not a user edit and must never trip the
// optimistic lock.
func (r *PostgresHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	query := `
        UPDATE habits
        SET current_streak = $1, longest_streak = $2
        WHERE id = $3 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, current, longest, id)
	if err != nil {
		return fmt.Errorf("streak update failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}

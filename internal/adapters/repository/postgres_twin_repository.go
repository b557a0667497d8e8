package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/altrove/habitlens/internal/core/domain"
)

type PostgresTwinRepository struct {
	db *sqlx.DB
}

func NewPostgresTwinRepository(db *sqlx.DB) *PostgresTwinRepository {
	return &PostgresTwinRepository{db: db}
}

func (r *PostgresTwinRepository) Create(ctx context.Context, twin *domain.DigitalTwin) error {
	query := `
		INSERT INTO digital_twins (
			id, user_id, habit_id, completion_rate, streak, last_updated
		) VALUES (
			:id, :user_id, :habit_id, :completion_rate, :streak, :last_updated
		)`

	_, err := r.db.NamedExecContext(ctx, query, twin)
	return err
}

func (r *PostgresTwinRepository) Update(ctx context.Context, twin *domain.DigitalTwin) error {
	query := `
		UPDATE digital_twins
		SET streak = :streak, last_updated = :last_updated
		WHERE habit_id = :habit_id`

	result, err := r.db.NamedExecContext(ctx, query, twin)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrTwinNotFound
	}
	return nil
}

func (r *PostgresTwinRepository) GetByHabitID(ctx context.Context, habitID string) (*domain.DigitalTwin, error) {
	var twin domain.DigitalTwin
	query := `SELECT * FROM digital_twins WHERE habit_id = $1`

	err := r.db.GetContext(ctx, &twin, query, habitID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTwinNotFound
		}
		return nil, err
	}
	return &twin, nil
}

func (r *PostgresTwinRepository) DeleteByHabitID(ctx context.Context, habitID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM digital_twins WHERE habit_id = $1`, habitID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrTwinNotFound
	}
	return nil
}

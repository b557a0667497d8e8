package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/altrove/habitlens/internal/core/domain"
)

type PostgresDetoxPlanRepository struct {
	db *sqlx.DB
}

func NewPostgresDetoxPlanRepository(db *sqlx.DB) *PostgresDetoxPlanRepository {
	return &PostgresDetoxPlanRepository{db: db}
}

func (r *PostgresDetoxPlanRepository) Create(ctx context.Context, plan *domain.DetoxPlan) error {
	query := `
		INSERT INTO detox_plans (
			id, user_id, daily_limit_minutes, start_date, end_date, is_active,
			enable_app_blocking, enable_notifications, enable_break_reminders,
			break_interval_minutes, created_at
		) VALUES (
			:id, :user_id, :daily_limit_minutes, :start_date, :end_date, :is_active,
			:enable_app_blocking, :enable_notifications, :enable_break_reminders,
			:break_interval_minutes, :created_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, plan)
	return err
}

func (r *PostgresDetoxPlanRepository) Update(ctx context.Context, plan *domain.DetoxPlan) error {
	query := `
		UPDATE detox_plans
		SET daily_limit_minutes = :daily_limit_minutes,
		    end_date = :end_date,
		    is_active = :is_active,
		    enable_app_blocking = :enable_app_blocking,
		    enable_notifications = :enable_notifications,
		    enable_break_reminders = :enable_break_reminders,
		    break_interval_minutes = :break_interval_minutes
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, plan)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrDetoxPlanNotFound
	}
	return nil
}

func (r *PostgresDetoxPlanRepository) GetByID(ctx context.Context, id string) (*domain.DetoxPlan, error) {
	var plan domain.DetoxPlan
	query := `SELECT * FROM detox_plans WHERE id = $1`

	err := r.db.GetContext(ctx, &plan, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDetoxPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *PostgresDetoxPlanRepository) ListActive(ctx context.Context, userID string) ([]*domain.DetoxPlan, error) {
	plans := []*domain.DetoxPlan{}
	query := `SELECT * FROM detox_plans WHERE user_id = $1 AND is_active ORDER BY start_date DESC`

	if err := r.db.SelectContext(ctx, &plans, query, userID); err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *PostgresDetoxPlanRepository) CountInactive(ctx context.Context, userID string) (int, error) {
	var count int
	query := `SELECT count(*) FROM detox_plans WHERE user_id = $1 AND NOT is_active`

	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, err
	}
	return count, nil
}

type PostgresAppLimitRepository struct {
	db *sqlx.DB
}

func NewPostgresAppLimitRepository(db *sqlx.DB) *PostgresAppLimitRepository {
	return &PostgresAppLimitRepository{db: db}
}

func (r *PostgresAppLimitRepository) Create(ctx context.Context, limit *domain.AppLimit) error {
	query := `
		INSERT INTO app_limits (
			id, user_id, app_name, daily_limit_minutes, is_active, created_at
		) VALUES (
			:id, :user_id, :app_name, :daily_limit_minutes, :is_active, :created_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, limit)
	return err
}

func (r *PostgresAppLimitRepository) Update(ctx context.Context, limit *domain.AppLimit) error {
	query := `
		UPDATE app_limits
		SET daily_limit_minutes = :daily_limit_minutes,
		    is_active = :is_active
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, limit)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrAppLimitNotFound
	}
	return nil
}

func (r *PostgresAppLimitRepository) GetByID(ctx context.Context, id string) (*domain.AppLimit, error) {
	var limit domain.AppLimit
	query := `SELECT * FROM app_limits WHERE id = $1`

	err := r.db.GetContext(ctx, &limit, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAppLimitNotFound
		}
		return nil, err
	}
	return &limit, nil
}

func (r *PostgresAppLimitRepository) GetByUserAndApp(ctx context.Context, userID, appName string) (*domain.AppLimit, error) {
	var limit domain.AppLimit
	query := `SELECT * FROM app_limits WHERE user_id = $1 AND lower(app_name) = lower($2)`

	err := r.db.GetContext(ctx, &limit, query, userID, appName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAppLimitNotFound
		}
		return nil, err
	}
	return &limit, nil
}

func (r *PostgresAppLimitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.AppLimit, error) {
	limits := []*domain.AppLimit{}
	query := `SELECT * FROM app_limits WHERE user_id = $1 ORDER BY app_name ASC`

	if err := r.db.SelectContext(ctx, &limits, query, userID); err != nil {
		return nil, err
	}
	return limits, nil
}

func (r *PostgresAppLimitRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM app_limits WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrAppLimitNotFound
	}
	return nil
}

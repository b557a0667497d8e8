package repository

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/altrove/habitlens/internal/core/domain"
)

type PostgresAchievementRepository struct {
	db *sqlx.DB
}

func NewPostgresAchievementRepository(db *sqlx.DB) *PostgresAchievementRepository {
	return &PostgresAchievementRepository{db: db}
}

func (r *PostgresAchievementRepository) ListDefinitions(ctx context.Context) ([]*domain.Achievement, error) {
	defs := []*domain.Achievement{}
	query := `SELECT * FROM achievements ORDER BY threshold ASC, name ASC`

	if err := r.db.SelectContext(ctx, &defs, query); err != nil {
		return nil, err
	}
	return defs, nil
}

func (r *PostgresAchievementRepository) ListGrants(ctx context.Context, userID string) ([]*domain.UserAchievement, error) {
	grants := []*domain.UserAchievement{}
	query := `SELECT * FROM user_achievements WHERE user_id = $1 ORDER BY earned_at ASC`

	if err := r.db.SelectContext(ctx, &grants, query, userID); err != nil {
		return nil, err
	}
	return grants, nil
}

// InsertGrant relies on the unique (user_id, achievement_id) constraint
// for idempotence: two concurrent evaluations both insert, one wins,
// the loser's violation is swallowed.
func (r *PostgresAchievementRepository) InsertGrant(ctx context.Context, grant *domain.UserAchievement) error {
	query := `
		INSERT INTO user_achievements (id, user_id, achievement_id, earned_at)
		VALUES (:id, :user_id, :achievement_id, :earned_at)
		ON CONFLICT (user_id, achievement_id) DO NOTHING`

	_, err := r.db.NamedExecContext(ctx, query, grant)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil
		}
		return err
	}
	return nil
}

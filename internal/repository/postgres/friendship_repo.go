package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tandemhq/tandem/internal/domain"
)

// execer is satisfied by both the pool and a transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// insertFriendship adds the canonical edge for a pair; a no-op if the edge
// already exists. Shared by AddEdge and the accept transaction.
func insertFriendship(ctx context.Context, db execer, a, b uuid.UUID) error {
	u1, u2 := orderPair(a, b)
	_, err := db.Exec(ctx, `
		INSERT INTO friendships (id, user1_id, user2_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user1_id, user2_id) DO NOTHING`,
		uuid.New(), u1, u2, time.Now(),
	)
	return err
}

type FriendshipRepo struct {
	pool *pgxpool.Pool
}

func NewFriendshipRepo(pool *pgxpool.Pool) *FriendshipRepo {
	return &FriendshipRepo{pool: pool}
}

func (r *FriendshipRepo) AddEdge(ctx context.Context, a, b uuid.UUID) error {
	return insertFriendship(ctx, r.pool, a, b)
}

func (r *FriendshipRepo) IsFriend(ctx context.Context, a, b uuid.UUID) (bool, error) {
	u1, u2 := orderPair(a, b)
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM friendships WHERE user1_id = $1 AND user2_id = $2)`,
		u1, u2,
	).Scan(&exists)
	return exists, err
}

func (r *FriendshipRepo) FriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT CASE WHEN user1_id = $1 THEN user2_id ELSE user1_id END
		FROM friendships
		WHERE user1_id = $1 OR user2_id = $1`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *FriendshipRepo) ListFriends(ctx context.Context, userID uuid.UUID) ([]domain.User, error) {
	query := `
		SELECT u.id, u.full_name, u.email, u.profile_pic, u.bio, u.native_language, u.learning_language, u.location, u.is_onboarded, u.created_at, u.updated_at
		FROM friendships f
		JOIN users u ON u.id = CASE WHEN f.user1_id = $1 THEN f.user2_id ELSE f.user1_id END
		WHERE f.user1_id = $1 OR f.user2_id = $1
		ORDER BY f.created_at ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(
			&u.ID, &u.FullName, &u.Email, &u.ProfilePic, &u.Bio,
			&u.NativeLanguage, &u.LearningLanguage, &u.Location,
			&u.IsOnboarded, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// orderPair puts an unordered user pair into canonical storage order.
func orderPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() > b.String() {
		return b, a
	}
	return a, b
}

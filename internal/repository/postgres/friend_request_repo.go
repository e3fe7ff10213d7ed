package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/repository"
)

const uniqueViolation = "23505"

type FriendRequestRepo struct {
	pool *pgxpool.Pool
}

func NewFriendRequestRepo(pool *pgxpool.Pool) *FriendRequestRepo {
	return &FriendRequestRepo{pool: pool}
}

// Create inserts a pending request. The unique index on the normalized
// pair covers the whole request lifecycle, so the insert fails both when
// a pending request exists and when the pair was already accepted; either
// way the violation surfaces as repository.ErrDuplicatePair.
func (r *FriendRequestRepo) Create(ctx context.Context, req *domain.FriendRequest) error {
	query := `
		INSERT INTO friend_requests (id, sender_id, recipient_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query, req.ID, req.SenderID, req.RecipientID, req.Status, req.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrDuplicatePair
	}
	return err
}

func (r *FriendRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.FriendRequest, error) {
	query := `
		SELECT id, sender_id, recipient_id, status, created_at
		FROM friend_requests
		WHERE id = $1`
	var req domain.FriendRequest
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&req.ID, &req.SenderID, &req.RecipientID, &req.Status, &req.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *FriendRequestRepo) HasPendingBetween(ctx context.Context, a, b uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM friend_requests
			WHERE status = 'pending'
			  AND ((sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1))
		)`, a, b,
	).Scan(&exists)
	return exists, err
}

// Accept flips the request to accepted and inserts the symmetric friendship
// edge in one transaction, so no reader observes one without the other.
// The status predicate makes a concurrent double accept resolve to exactly
// one winner; the loser sees (nil, nil).
func (r *FriendRequestRepo) Accept(ctx context.Context, id uuid.UUID) (*domain.FriendRequest, error) {
	var req domain.FriendRequest
	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			UPDATE friend_requests
			SET status = 'accepted'
			WHERE id = $1 AND status = 'pending'
			RETURNING id, sender_id, recipient_id, status, created_at`, id,
		).Scan(&req.ID, &req.SenderID, &req.RecipientID, &req.Status, &req.CreatedAt)
		if err != nil {
			return err
		}

		return insertFriendship(ctx, tx, req.SenderID, req.RecipientID)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *FriendRequestRepo) ListIncoming(ctx context.Context, userID uuid.UUID) ([]domain.FriendRequest, error) {
	query := `
		SELECT r.id, r.sender_id, r.recipient_id, r.status, r.created_at,
			u.id, u.full_name, u.email, u.profile_pic, u.bio, u.native_language, u.learning_language, u.location, u.is_onboarded, u.created_at, u.updated_at
		FROM friend_requests r
		JOIN users u ON r.sender_id = u.id
		WHERE r.recipient_id = $1
		ORDER BY r.created_at ASC`

	return r.listJoined(ctx, query, userID, func(req *domain.FriendRequest, u *domain.User) {
		req.Sender = u
	})
}

func (r *FriendRequestRepo) ListOutgoing(ctx context.Context, userID uuid.UUID) ([]domain.FriendRequest, error) {
	query := `
		SELECT r.id, r.sender_id, r.recipient_id, r.status, r.created_at,
			u.id, u.full_name, u.email, u.profile_pic, u.bio, u.native_language, u.learning_language, u.location, u.is_onboarded, u.created_at, u.updated_at
		FROM friend_requests r
		JOIN users u ON r.recipient_id = u.id
		WHERE r.sender_id = $1 AND r.status = 'pending'
		ORDER BY r.created_at ASC`

	return r.listJoined(ctx, query, userID, func(req *domain.FriendRequest, u *domain.User) {
		req.Recipient = u
	})
}

func (r *FriendRequestRepo) listJoined(ctx context.Context, query string, userID uuid.UUID, attach func(*domain.FriendRequest, *domain.User)) ([]domain.FriendRequest, error) {
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []domain.FriendRequest
	for rows.Next() {
		var req domain.FriendRequest
		var u domain.User
		if err := rows.Scan(
			&req.ID, &req.SenderID, &req.RecipientID, &req.Status, &req.CreatedAt,
			&u.ID, &u.FullName, &u.Email, &u.ProfilePic, &u.Bio,
			&u.NativeLanguage, &u.LearningLanguage, &u.Location,
			&u.IsOnboarded, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		attach(&req, &u)
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tandemhq/tandem/internal/domain"
)

// ErrDuplicatePair is returned by FriendRequestRepository.Create when a
// request already exists for the unordered user pair, pending or accepted.
// The storage layer enforces the uniqueness so concurrent sends, and sends
// racing an acceptance, resolve in the database, not in-process.
var ErrDuplicatePair = errors.New("friend request already exists for this pair")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	// ListOnboarded returns every onboarded user except excludeID, in
	// directory insertion order.
	ListOnboarded(ctx context.Context, excludeID uuid.UUID) ([]domain.User, error)
}

type FriendRequestRepository interface {
	Create(ctx context.Context, req *domain.FriendRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.FriendRequest, error)
	HasPendingBetween(ctx context.Context, a, b uuid.UUID) (bool, error)
	// Accept flips a pending request to accepted and inserts the friendship
	// edge in the same transaction. Returns (nil, nil) if the request was
	// not pending anymore, so a lost accept race is observable.
	Accept(ctx context.Context, id uuid.UUID) (*domain.FriendRequest, error)
	ListIncoming(ctx context.Context, userID uuid.UUID) ([]domain.FriendRequest, error)
	ListOutgoing(ctx context.Context, userID uuid.UUID) ([]domain.FriendRequest, error)
}

type FriendshipRepository interface {
	// AddEdge is idempotent; adding an existing edge is a no-op.
	AddEdge(ctx context.Context, a, b uuid.UUID) error
	IsFriend(ctx context.Context, a, b uuid.UUID) (bool, error)
	FriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	ListFriends(ctx context.Context, userID uuid.UUID) ([]domain.User, error)
}

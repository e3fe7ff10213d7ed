package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/repository"
)

var (
	ErrSelfRequest      = errors.New("cannot send a friend request to yourself")
	ErrUserNotFound     = errors.New("user not found")
	ErrDuplicateRequest = errors.New("a pending request already exists between these users")
	ErrAlreadyFriends   = errors.New("users are already friends")
	ErrRequestNotFound  = errors.New("friend request not found")
	ErrNotRecipient     = errors.New("only the recipient can accept a friend request")
	ErrAlreadyAccepted  = errors.New("friend request already accepted")
)

type FriendService struct {
	requestRepo    repository.FriendRequestRepository
	friendshipRepo repository.FriendshipRepository
	userRepo       repository.UserRepository
}

func NewFriendService(requestRepo repository.FriendRequestRepository, friendshipRepo repository.FriendshipRepository, userRepo repository.UserRepository) *FriendService {
	return &FriendService{
		requestRepo:    requestRepo,
		friendshipRepo: friendshipRepo,
		userRepo:       userRepo,
	}
}

// SendRequest creates a pending friend request from sender to recipient.
func (s *FriendService) SendRequest(ctx context.Context, senderID, recipientID uuid.UUID) (*domain.FriendRequest, error) {
	if senderID == recipientID {
		return nil, ErrSelfRequest
	}

	for _, id := range []uuid.UUID{senderID, recipientID} {
		user, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("looking up user: %w", err)
		}
		if user == nil {
			return nil, ErrUserNotFound
		}
	}

	already, err := s.friendshipRepo.IsFriend(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, ErrAlreadyFriends
	}

	// Covers both directions; the storage constraint is the backstop for
	// races between this check and the insert.
	pending, err := s.requestRepo.HasPendingBetween(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrDuplicateRequest
	}

	req := &domain.FriendRequest{
		ID:          uuid.New(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Status:      domain.RequestStatusPending,
		CreatedAt:   time.Now(),
	}

	if err := s.requestRepo.Create(ctx, req); err != nil {
		if errors.Is(err, repository.ErrDuplicatePair) {
			// The pair constraint fired after our checks passed. One row
			// per pair: a pending row means a concurrent duplicate send,
			// anything else means the pair was accepted mid-flight.
			pending, perr := s.requestRepo.HasPendingBetween(ctx, senderID, recipientID)
			if perr == nil && !pending {
				return nil, ErrAlreadyFriends
			}
			return nil, ErrDuplicateRequest
		}
		return nil, fmt.Errorf("creating friend request: %w", err)
	}

	return req, nil
}

// AcceptRequest flips a pending request to accepted and establishes the
// symmetric friendship. Only the recipient may accept.
func (s *FriendService) AcceptRequest(ctx context.Context, actorID, requestID uuid.UUID) (*domain.FriendRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if req.RecipientID != actorID {
		return nil, ErrNotRecipient
	}
	if req.Status == domain.RequestStatusAccepted {
		return nil, ErrAlreadyAccepted
	}

	accepted, err := s.requestRepo.Accept(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("accepting friend request: %w", err)
	}
	if accepted == nil {
		// Another accept won the race after our status check.
		return nil, ErrAlreadyAccepted
	}

	return accepted, nil
}

// ListIncoming returns requests addressed to the user, any status, oldest
// first, with the sender profile attached.
func (s *FriendService) ListIncoming(ctx context.Context, userID uuid.UUID) ([]domain.FriendRequest, error) {
	reqs, err := s.requestRepo.ListIncoming(ctx, userID)
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []domain.FriendRequest{}
	}
	return reqs, nil
}

// ListOutgoing returns the user's pending requests with the recipient
// profile attached.
func (s *FriendService) ListOutgoing(ctx context.Context, userID uuid.UUID) ([]domain.FriendRequest, error) {
	reqs, err := s.requestRepo.ListOutgoing(ctx, userID)
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []domain.FriendRequest{}
	}
	return reqs, nil
}

// ListFriends returns the full profiles of the user's friends.
func (s *FriendService) ListFriends(ctx context.Context, userID uuid.UUID) ([]domain.User, error) {
	friends, err := s.friendshipRepo.ListFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	if friends == nil {
		friends = []domain.User{}
	}
	return friends, nil
}

package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/repository"
)

type RecommendService struct {
	userRepo       repository.UserRepository
	friendshipRepo repository.FriendshipRepository
}

func NewRecommendService(userRepo repository.UserRepository, friendshipRepo repository.FriendshipRepository) *RecommendService {
	return &RecommendService{
		userRepo:       userRepo,
		friendshipRepo: friendshipRepo,
	}
}

// Recommend returns the candidate partners for a user: every onboarded user
// except the user themselves and their existing friends, in directory
// insertion order. The set is recomputed on every call.
//
// Users with a pending request in either direction are deliberately not
// excluded; the client decides how to present them.
func (s *RecommendService) Recommend(ctx context.Context, userID uuid.UUID) ([]domain.User, error) {
	candidates, err := s.userRepo.ListOnboarded(ctx, userID)
	if err != nil {
		return nil, err
	}

	friendIDs, err := s.friendshipRepo.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	friends := make(map[uuid.UUID]struct{}, len(friendIDs))
	for _, id := range friendIDs {
		friends[id] = struct{}{}
	}

	recommended := []domain.User{}
	for _, u := range candidates {
		if _, ok := friends[u.ID]; ok {
			continue
		}
		recommended = append(recommended, u)
	}
	return recommended, nil
}

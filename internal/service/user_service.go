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

var ErrProfileNotFound = errors.New("user profile not found")

// ProfileCache sits in front of profile reads. Entries may lag a profile
// update by up to their TTL; the service deletes entries on write.
type ProfileCache interface {
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	SetUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type UserService struct {
	userRepo repository.UserRepository
	cache    ProfileCache
}

func NewUserService(userRepo repository.UserRepository, cache ProfileCache) *UserService {
	return &UserService{
		userRepo: userRepo,
		cache:    cache,
	}
}

type OnboardingInput struct {
	FullName         string `json:"full_name"`
	Bio              string `json:"bio"`
	ProfilePic       string `json:"profile_pic"`
	NativeLanguage   string `json:"native_language"`
	LearningLanguage string `json:"learning_language"`
	Location         string `json:"location"`
}

// GetProfile reads a profile through the cache. Cache failures degrade to a
// direct repository read.
func (s *UserService) GetProfile(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if s.cache != nil {
		if user, err := s.cache.GetUser(ctx, id); err == nil && user != nil {
			return user, nil
		}
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrProfileNotFound
	}

	if s.cache != nil {
		// Best effort; a failed write just means the next read misses.
		s.cache.SetUser(ctx, user)
	}
	return user, nil
}

// CompleteOnboarding fills in the profile fields required to appear in
// recommendations and marks the user as onboarded.
func (s *UserService) CompleteOnboarding(ctx context.Context, id uuid.UUID, input OnboardingInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrProfileNotFound
	}

	user.FullName = input.FullName
	user.Bio = input.Bio
	if input.ProfilePic != "" {
		user.ProfilePic = input.ProfilePic
	}
	user.NativeLanguage = input.NativeLanguage
	user.LearningLanguage = input.LearningLanguage
	user.Location = input.Location
	user.IsOnboarded = true
	user.UpdatedAt = time.Now()

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	if s.cache != nil {
		s.cache.DeleteUser(ctx, id)
	}
	return user, nil
}

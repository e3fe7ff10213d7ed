package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tandemhq/tandem/internal/domain"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, full_name, email, password_hash, profile_pic, bio, native_language, learning_language, location, is_onboarded, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.FullName, user.Email, user.PasswordHash,
		user.ProfilePic, user.Bio, user.NativeLanguage, user.LearningLanguage,
		user.Location, user.IsOnboarded, user.CreatedAt, user.UpdatedAt,
	)
	return err
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.scanUser(ctx, "SELECT id, full_name, email, password_hash, profile_pic, bio, native_language, learning_language, location, is_onboarded, created_at, updated_at FROM users WHERE id = $1", id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(ctx, "SELECT id, full_name, email, password_hash, profile_pic, bio, native_language, learning_language, location, is_onboarded, created_at, updated_at FROM users WHERE email = $1", email)
}

func (r *UserRepo) UpdateProfile(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET full_name = $2, profile_pic = $3, bio = $4, native_language = $5,
			learning_language = $6, location = $7, is_onboarded = $8, updated_at = $9
		WHERE id = $1`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.FullName, user.ProfilePic, user.Bio,
		user.NativeLanguage, user.LearningLanguage, user.Location,
		user.IsOnboarded, user.UpdatedAt,
	)
	return err
}

func (r *UserRepo) ListOnboarded(ctx context.Context, excludeID uuid.UUID) ([]domain.User, error) {
	query := `
		SELECT id, full_name, email, profile_pic, bio, native_language, learning_language, location, is_onboarded, created_at, updated_at
		FROM users
		WHERE is_onboarded AND id <> $1
		ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, excludeID)
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

func (r *UserRepo) scanUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.FullName, &u.Email, &u.PasswordHash,
		&u.ProfilePic, &u.Bio, &u.NativeLanguage, &u.LearningLanguage,
		&u.Location, &u.IsOnboarded, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

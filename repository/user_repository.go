package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"restaurant-pos/db"
	"restaurant-pos/models"
)

// UserRepository handles database operations for staff accounts
type UserRepository struct{}

// NewUserRepository creates a new UserRepository
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// Ensure UserRepository implements UserRepositoryInterface
var _ UserRepositoryInterface = (*UserRepository)(nil)

// Create inserts an account; a taken email yields models.ErrEmailInUse
func (r *UserRepository) Create(ctx context.Context, email, passwordHash string, role models.Role) (*models.User, error) {
	var user models.User
	err := db.DB.GetContext(ctx, &user, `
		INSERT INTO users (email, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, email, password_hash, role, created_at`,
		strings.ToLower(email), passwordHash, role)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrEmailInUse
		}
		log.Printf("❌ CreateUser: Error inserting user: %v", err)
		return nil, errors.Wrap(err, "failed to create user")
	}
	log.Printf("✅ CreateUser: id=%s role=%s", user.ID, user.Role)
	return &user, nil
}

// GetByEmail looks an account up case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `WHERE email = $1`, strings.ToLower(email))
}

// Get looks an account up by id
func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	var user models.User
	err := db.DB.GetContext(ctx, &user, `SELECT id, email, password_hash, role, created_at FROM users `+where, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, errors.Wrap(err, "failed to get user")
	}
	return &user, nil
}

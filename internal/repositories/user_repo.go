package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"sipoma/internal/common"
	"sipoma/internal/models"
)

// UserRepository is the identity store for accounts. Status only changes
// through TransitionStatus.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListByStatus(ctx context.Context, status models.UserStatus) ([]*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	CountByStatus(ctx context.Context, status models.UserStatus) (int, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, fullName, email string) (*models.User, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.UserStatus) (*models.User, error)
}

type userRepo struct {
	db DBTX
}

func NewUserRepo(db DBTX) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, email, password_hash, full_name, status, role, version, created_at, updated_at`

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var status, role string
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&status,
		&role,
		&user.Version,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Status = models.UserStatus(status)
	user.Role = models.UserRole(role)
	return user, nil
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.Email = strings.ToLower(user.Email)

	query := `
		INSERT INTO users (id, email, password_hash, full_name, status, role, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 1, NOW(), NOW())
		RETURNING version, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.FullName, string(user.Status), string(user.Role),
	).Scan(&user.Version, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (r *userRepo) ListByStatus(ctx context.Context, status models.UserStatus) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE status = $1 ORDER BY created_at ASC, id ASC`
	rows, err := r.db.Query(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list users by status: %w", err)
	}
	return collectUsers(rows)
}

func (r *userRepo) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC, id ASC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return collectUsers(rows)
}

func collectUsers(rows pgx.Rows) ([]*models.User, error) {
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

func (r *userRepo) CountByStatus(ctx context.Context, status models.UserStatus) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM users WHERE status = $1`
	if err := r.db.QueryRow(ctx, query, string(status)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// UpdateProfile overwrites full_name and email. Last write wins.
func (r *userRepo) UpdateProfile(ctx context.Context, id uuid.UUID, fullName, email string) (*models.User, error) {
	query := `
		UPDATE users
		SET full_name = $1, email = $2, version = version + 1, updated_at = NOW()
		WHERE id = $3
		RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRow(ctx, query, fullName, strings.ToLower(email), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, common.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update user profile: %w", err)
	}
	return user, nil
}

// TransitionStatus moves a user from one status to another only if the
// stored status still equals from. When it does not, the current status is
// reported through common.InvalidStateTransitionError.
func (r *userRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.UserStatus) (*models.User, error) {
	query := `
		UPDATE users
		SET status = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND status = $3
		RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRow(ctx, query, string(to), id, string(from)))
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return nil, &common.InvalidStateTransitionError{
		UserID: id,
		From:   string(current.Status),
		To:     string(to),
	}
}

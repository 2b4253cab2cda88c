package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storefront-labs/storefront-api/internal/domain"
)

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, int, error)
	SetPendingCode(ctx context.Context, id string, code domain.OneTimeCode) error
	ConsumeVerification(ctx context.Context, id, code string, now time.Time) (bool, error)
	ConsumePasswordReset(ctx context.Context, id, code, passwordHash string, now time.Time) (bool, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetActive(ctx context.Context, id string, active bool) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, name, email, password_hash, role, is_active, is_verified, phone, bio, avatar,
               pending_action, pending_code, pending_code_expires_at, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, role, is_active, is_verified, phone, bio, avatar,
                           pending_action, pending_code, pending_code_expires_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id, created_at, updated_at`

	action, code, expires := pendingArgs(user.Pending)
	err := r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.IsActive,
		user.IsVerified,
		user.Phone,
		user.Bio,
		user.Avatar,
		action,
		code,
		expires,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrEmailTaken
	}
	return err
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET name=$1, phone=$2, bio=$3, avatar=$4, role=$5, is_active=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`

	return r.pool.QueryRow(ctx, query,
		user.Name,
		user.Phone,
		user.Bio,
		user.Avatar,
		user.Role,
		user.IsActive,
		user.ID,
	).Scan(&user.UpdatedAt)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email)=LOWER($1)`, email)
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]domain.User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]domain.User, 0, limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *user)
	}
	return users, total, rows.Err()
}

func (r *userRepository) SetPendingCode(ctx context.Context, id string, code domain.OneTimeCode) error {
	const query = `
        UPDATE users SET pending_action=$1, pending_code=$2, pending_code_expires_at=$3, updated_at=NOW()
        WHERE id=$4`
	return r.execOne(ctx, query, code.Action, code.Code, code.ExpiresAt, id)
}

// ConsumeVerification marks the account verified when the code is still the
// pending verification code. It reports false when another request got there first.
func (r *userRepository) ConsumeVerification(ctx context.Context, id, code string, now time.Time) (bool, error) {
	const query = `
        UPDATE users SET is_verified=TRUE,
            pending_action=NULL, pending_code=NULL, pending_code_expires_at=NULL, updated_at=NOW()
        WHERE id=$1 AND pending_action='verification' AND pending_code=$2 AND pending_code_expires_at >= $3`
	return r.consume(ctx, query, id, code, now)
}

// ConsumePasswordReset stores the new hash when the code is still the pending
// reset code. Reset proves mailbox ownership, so the account becomes verified too.
func (r *userRepository) ConsumePasswordReset(ctx context.Context, id, code, passwordHash string, now time.Time) (bool, error) {
	const query = `
        UPDATE users SET password_hash=$4, is_verified=TRUE,
            pending_action=NULL, pending_code=NULL, pending_code_expires_at=NULL, updated_at=NOW()
        WHERE id=$1 AND pending_action='password_reset' AND pending_code=$2 AND pending_code_expires_at >= $3`
	return r.consume(ctx, query, id, code, now, passwordHash)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.execOne(ctx, `UPDATE users SET password_hash=$1, updated_at=NOW() WHERE id=$2`, passwordHash, id)
}

func (r *userRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.execOne(ctx, `UPDATE users SET is_active=$1, updated_at=NOW() WHERE id=$2`, active, id)
}

func (r *userRepository) consume(ctx context.Context, query string, args ...any) (bool, error) {
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *userRepository) execOne(ctx context.Context, query string, args ...any) error {
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, query, arg))
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user    domain.User
		action  *string
		code    *string
		expires *time.Time
	)
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.IsActive,
		&user.IsVerified,
		&user.Phone,
		&user.Bio,
		&user.Avatar,
		&action,
		&code,
		&expires,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if action != nil && code != nil && expires != nil {
		user.Pending = &domain.OneTimeCode{
			Action:    domain.PendingAction(*action),
			Code:      *code,
			ExpiresAt: *expires,
		}
	}
	return &user, nil
}

func pendingArgs(code *domain.OneTimeCode) (*string, *string, *time.Time) {
	if code == nil {
		return nil, nil, nil
	}
	action := string(code.Action)
	return &action, &code.Code, &code.ExpiresAt
}

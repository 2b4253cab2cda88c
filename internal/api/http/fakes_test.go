package http

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/storefront-labs/storefront-api/internal/domain"
	"github.com/storefront-labs/storefront-api/internal/mail"
)

type memUsers struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]*domain.User{}}
}

func (r *memUsers) copyOf(u *domain.User) *domain.User {
	c := *u
	if u.Pending != nil {
		p := *u.Pending
		c.Pending = &p
	}
	return &c
}

func (r *memUsers) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return domain.ErrEmailTaken
		}
	}
	r.seq++
	u.ID = fmt.Sprintf("00000000-0000-0000-0000-%012d", r.seq)
	u.CreatedAt, u.UpdatedAt = time.Now(), time.Now()
	r.users[u.ID] = r.copyOf(u)
	return nil
}

func (r *memUsers) Update(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[u.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Name, stored.Phone, stored.Bio, stored.Avatar, stored.Role, stored.IsActive =
		u.Name, u.Phone, u.Bio, u.Avatar, u.Role, u.IsActive
	return nil
}

func (r *memUsers) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r.copyOf(u), nil
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return r.copyOf(u), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUsers) List(_ context.Context, limit, offset int) ([]domain.User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *r.copyOf(u))
	}
	total := len(out)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return out[offset:end], total, nil
}

func (r *memUsers) SetPendingCode(_ context.Context, id string, code domain.OneTimeCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.Pending = &code
	return nil
}

func (r *memUsers) ConsumeVerification(_ context.Context, id, code string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.Pending == nil || u.Pending.Action != domain.PendingActionVerification ||
		u.Pending.Code != code || u.Pending.Expired(now) {
		return false, nil
	}
	u.IsVerified, u.Pending = true, nil
	return true, nil
}

func (r *memUsers) ConsumePasswordReset(_ context.Context, id, code, hash string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.Pending == nil || u.Pending.Action != domain.PendingActionPasswordReset ||
		u.Pending.Code != code || u.Pending.Expired(now) {
		return false, nil
	}
	u.PasswordHash, u.IsVerified, u.Pending = hash, true, nil
	return true, nil
}

func (r *memUsers) UpdatePassword(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.PasswordHash = hash
	return nil
}

func (r *memUsers) SetActive(_ context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.IsActive = active
	return nil
}

type nopMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *nopMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

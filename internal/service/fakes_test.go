package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/storefront-labs/storefront-api/internal/domain"
	"github.com/storefront-labs/storefront-api/internal/events"
	"github.com/storefront-labs/storefront-api/internal/mail"
	"github.com/storefront-labs/storefront-api/internal/repository"
)

type memUserRepo struct {
	mu      sync.Mutex
	seq     int
	byID    map[string]*domain.User
	deleted []string
}

var _ repository.UserRepository = (*memUserRepo)(nil)

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*domain.User{}}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	if u.Pending != nil {
		p := *u.Pending
		c.Pending = &p
	}
	return &c
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	r.seq++
	user.ID = fmt.Sprintf("user-%d", r.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.byID[user.ID] = cloneUser(user)
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Name, stored.Phone, stored.Bio, stored.Avatar = user.Name, user.Phone, user.Bio, user.Avatar
	stored.Role, stored.IsActive = user.Role, user.IsActive
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.byID, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cloneUser(u), nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) List(_ context.Context, limit, offset int) ([]domain.User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		all = append(all, *cloneUser(u))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := len(all)
	if offset >= total {
		return []domain.User{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *memUserRepo) SetPendingCode(_ context.Context, id string, code domain.OneTimeCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.Pending = &code
	return nil
}

func (r *memUserRepo) consumable(id, code string, action domain.PendingAction, now time.Time) (*domain.User, bool) {
	u, ok := r.byID[id]
	if !ok || u.Pending == nil {
		return nil, false
	}
	p := u.Pending
	if p.Action != action || p.Code != code || p.Expired(now) {
		return nil, false
	}
	return u, true
}

func (r *memUserRepo) ConsumeVerification(_ context.Context, id, code string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.consumable(id, code, domain.PendingActionVerification, now)
	if !ok {
		return false, nil
	}
	u.IsVerified = true
	u.Pending = nil
	return true, nil
}

func (r *memUserRepo) ConsumePasswordReset(_ context.Context, id, code, hash string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.consumable(id, code, domain.PendingActionPasswordReset, now)
	if !ok {
		return false, nil
	}
	u.PasswordHash = hash
	u.IsVerified = true
	u.Pending = nil
	return true, nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.PasswordHash = hash
	return nil
}

func (r *memUserRepo) SetActive(_ context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.IsActive = active
	return nil
}

// stored returns the persisted record for assertions.
func (r *memUserRepo) stored(email string) *domain.User {
	u, err := r.GetByEmail(context.Background(), email)
	if err != nil {
		return nil
	}
	return u
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}

type memProductRepo struct {
	mu    sync.Mutex
	seq   int
	items map[string]*domain.Product
	lists int
}

var _ repository.ProductRepository = (*memProductRepo)(nil)

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{items: map[string]*domain.Product{}}
}

func (r *memProductRepo) Create(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	p.ID = fmt.Sprintf("prod-%03d", r.seq)
	c := *p
	r.items[p.ID] = &c
	return nil
}

func (r *memProductRepo) Update(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID]; !ok {
		return pgx.ErrNoRows
	}
	c := *p
	r.items[p.ID] = &c
	return nil
}

func (r *memProductRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

func (r *memProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	c := *p
	return &c, nil
}

func (r *memProductRepo) List(_ context.Context, f repository.ProductFilter) ([]domain.Product, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	var matched []domain.Product
	for _, p := range r.items {
		text := strings.ToLower(p.Name + " " + p.Description)
		if f.SearchTerm == "" || strings.Contains(text, f.SearchTerm) {
			matched = append(matched, *p)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	total := len(matched)
	if f.Offset >= total {
		return []domain.Product{}, total, nil
	}
	end := f.Offset + f.Limit
	if end > total {
		end = total
	}
	return matched[f.Offset:end], total, nil
}

type memExampleRepo struct {
	mu    sync.Mutex
	seq   int
	items map[string]*domain.Example
}

var _ repository.ExampleRepository = (*memExampleRepo)(nil)

func newMemExampleRepo() *memExampleRepo {
	return &memExampleRepo{items: map[string]*domain.Example{}}
}

func (r *memExampleRepo) Create(_ context.Context, e *domain.Example) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	e.ID = fmt.Sprintf("ex-%d", r.seq)
	c := *e
	r.items[e.ID] = &c
	return nil
}

func (r *memExampleRepo) Update(_ context.Context, e *domain.Example) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[e.ID]; !ok {
		return pgx.ErrNoRows
	}
	c := *e
	r.items[e.ID] = &c
	return nil
}

func (r *memExampleRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

func (r *memExampleRepo) GetByID(_ context.Context, id string) (*domain.Example, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	c := *e
	return &c, nil
}

func (r *memExampleRepo) List(_ context.Context, limit, offset int) ([]domain.Example, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Example, 0, len(r.items))
	for _, e := range r.items {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return []domain.Example{}, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

type memPushRepo struct {
	mu   sync.Mutex
	subs map[string]domain.PushSubscription
}

var _ repository.PushSubscriptionRepository = (*memPushRepo)(nil)

func newMemPushRepo(endpoints ...string) *memPushRepo {
	r := &memPushRepo{subs: map[string]domain.PushSubscription{}}
	for i, ep := range endpoints {
		r.subs[ep] = domain.PushSubscription{ID: fmt.Sprintf("sub-%d", i+1), Endpoint: ep, P256dh: "p", Auth: "a"}
	}
	return r
}

func (r *memPushRepo) Upsert(_ context.Context, sub *domain.PushSubscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.subs[sub.Endpoint]; ok {
		sub.ID = existing.ID
	} else {
		sub.ID = fmt.Sprintf("sub-%d", len(r.subs)+1)
	}
	r.subs[sub.Endpoint] = *sub
	return nil
}

func (r *memPushRepo) DeleteByEndpoint(_ context.Context, endpoint string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[endpoint]; !ok {
		return false, nil
	}
	delete(r.subs, endpoint)
	return true, nil
}

func (r *memPushRepo) List(context.Context) ([]domain.PushSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.PushSubscription, 0, len(r.subs))
	for _, s := range r.subs {
		out = append(out, s)
	}
	return out, nil
}

func (r *memPushRepo) has(endpoint string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.subs[endpoint]
	return ok
}

type goneErr struct{ status int }

func (e goneErr) Error() string { return fmt.Sprintf("push status %d", e.status) }
func (e goneErr) Gone() bool    { return e.status == 404 || e.status == 410 }

// scriptedPusher fails endpoints listed in failures with the given error.
type scriptedPusher struct {
	mu       sync.Mutex
	failures map[string]error
	payloads [][]byte
}

func (p *scriptedPusher) PublicKey() string { return "BPublicKey" }

func (p *scriptedPusher) Send(_ context.Context, sub domain.PushSubscription, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	if err, ok := p.failures[sub.Endpoint]; ok {
		return err
	}
	return nil
}

var errSMTPDown = errors.New("smtp down")

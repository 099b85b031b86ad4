package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"eventhub/internal/model"
	"eventhub/internal/service"
)

// The memory repositories implement the same store contracts as their
// pgx counterparts over mutex-guarded maps, including the cascade and
// uniqueness behavior the schema provides. They back the test suite and
// `serve --dev`.

// MemoryEventRepo is an in-memory EventStore.
type MemoryEventRepo struct {
	mu     sync.RWMutex
	events map[string]model.Event

	// participations is consulted for cascade deletes and the
	// participating-events view; wired via AttachParticipations.
	participations *MemoryParticipationRepo
	comments       *MemoryCommentRepo
}

// NewMemoryEventRepo constructs a MemoryEventRepo.
func NewMemoryEventRepo() *MemoryEventRepo {
	return &MemoryEventRepo{events: make(map[string]model.Event)}
}

// AttachParticipations wires the participation repo used for cascades
// and the participating-events view.
func (r *MemoryEventRepo) AttachParticipations(p *MemoryParticipationRepo) {
	r.participations = p
}

// AttachComments wires the comment repo used for cascade deletes.
func (r *MemoryEventRepo) AttachComments(c *MemoryCommentRepo) {
	r.comments = c
}

func (r *MemoryEventRepo) Create(ctx context.Context, e *model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[e.ID] = *e
	return nil
}

func (r *MemoryEventRepo) GetByID(ctx context.Context, id string) (*model.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.events[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	return &e, nil
}

func (r *MemoryEventRepo) Update(ctx context.Context, e *model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[e.ID]; !ok {
		return service.ErrNotFound
	}
	r.events[e.ID] = *e
	return nil
}

func (r *MemoryEventRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	if _, ok := r.events[id]; !ok {
		r.mu.Unlock()
		return service.ErrNotFound
	}
	delete(r.events, id)
	r.mu.Unlock()

	if r.participations != nil {
		r.participations.deleteByEvent(id)
	}
	if r.comments != nil {
		r.comments.deleteByEvent(id)
	}
	return nil
}

func (r *MemoryEventRepo) ListVisible(ctx context.Context, userID string) ([]model.Event, error) {
	return r.list(func(e *model.Event) bool {
		return service.CanAccess(e, userID)
	}), nil
}

func (r *MemoryEventRepo) ListPublic(ctx context.Context) ([]model.Event, error) {
	return r.list(func(e *model.Event) bool { return e.IsPublic() }), nil
}

func (r *MemoryEventRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Event, error) {
	return r.list(func(e *model.Event) bool { return e.OwnerID == ownerID }), nil
}

func (r *MemoryEventRepo) ListParticipating(ctx context.Context, userID string) ([]model.Event, error) {
	if r.participations == nil {
		return nil, nil
	}
	joined := r.participations.eventIDsForUser(userID)
	return r.list(func(e *model.Event) bool { return joined[e.ID] }), nil
}

func (r *MemoryEventRepo) FindStartingBetween(ctx context.Context, start, end time.Time) ([]model.Event, error) {
	events := r.list(func(e *model.Event) bool {
		return !e.StartAt.Before(start) && !e.StartAt.After(end)
	})
	sort.Slice(events, func(i, j int) bool {
		return events[i].StartAt.Before(events[j].StartAt)
	})
	return events, nil
}

func (r *MemoryEventRepo) list(keep func(*model.Event) bool) []model.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.Event
	for id := range r.events {
		e := r.events[id]
		if keep(&e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// MemoryParticipationRepo is an in-memory ParticipationStore. Keys are
// (event_id, user_id), mirroring the table's primary key.
type MemoryParticipationRepo struct {
	mu      sync.RWMutex
	records map[string]model.Participation
}

// NewMemoryParticipationRepo constructs a MemoryParticipationRepo.
func NewMemoryParticipationRepo() *MemoryParticipationRepo {
	return &MemoryParticipationRepo{records: make(map[string]model.Participation)}
}

func participationKey(eventID, userID string) string {
	return eventID + "\x00" + userID
}

func (r *MemoryParticipationRepo) Find(ctx context.Context, eventID, userID string) (*model.Participation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.records[participationKey(eventID, userID)]
	if !ok {
		return nil, service.ErrNotFound
	}
	return &p, nil
}

func (r *MemoryParticipationRepo) Create(ctx context.Context, p *model.Participation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := participationKey(p.EventID, p.UserID)
	if _, ok := r.records[key]; ok {
		return service.ErrConflict
	}
	r.records[key] = *p
	return nil
}

func (r *MemoryParticipationRepo) UpdateStatus(ctx context.Context, eventID, userID string, status model.ParticipationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := participationKey(eventID, userID)
	p, ok := r.records[key]
	if !ok {
		return service.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	r.records[key] = p
	return nil
}

func (r *MemoryParticipationRepo) Delete(ctx context.Context, eventID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := participationKey(eventID, userID)
	if _, ok := r.records[key]; !ok {
		return service.ErrNotFound
	}
	delete(r.records, key)
	return nil
}

func (r *MemoryParticipationRepo) ListByEvent(ctx context.Context, eventID string) ([]model.Participation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.Participation
	for key, p := range r.records {
		if strings.HasPrefix(key, eventID+"\x00") {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryParticipationRepo) deleteByEvent(eventID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.records {
		if strings.HasPrefix(key, eventID+"\x00") {
			delete(r.records, key)
		}
	}
}

func (r *MemoryParticipationRepo) eventIDsForUser(userID string) map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]bool)
	for _, p := range r.records {
		if p.UserID == userID {
			out[p.EventID] = true
		}
	}
	return out
}

// MemoryUserRepo is an in-memory UserStore.
type MemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]model.User
}

// NewMemoryUserRepo constructs a MemoryUserRepo.
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: make(map[string]model.User)}
}

func (r *MemoryUserRepo) Create(ctx context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return service.ErrConflict
		}
	}
	r.users[u.ID] = *u
	return nil
}

func (r *MemoryUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getBy(func(u *model.User) bool { return u.ID == id })
}

func (r *MemoryUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getBy(func(u *model.User) bool { return u.Email == email })
}

func (r *MemoryUserRepo) GetByToken(ctx context.Context, token string) (*model.User, error) {
	return r.getBy(func(u *model.User) bool { return u.APIToken == token })
}

func (r *MemoryUserRepo) GetByTelegramID(ctx context.Context, telegramID string) (*model.User, error) {
	return r.getBy(func(u *model.User) bool {
		return u.TelegramID != "" && u.TelegramID == telegramID
	})
}

func (r *MemoryUserRepo) List(ctx context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryUserRepo) SetTelegramID(ctx context.Context, userID, telegramID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return service.ErrNotFound
	}
	u.TelegramID = telegramID
	r.users[userID] = u
	return nil
}

func (r *MemoryUserRepo) getBy(match func(*model.User) bool) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id := range r.users {
		u := r.users[id]
		if match(&u) {
			return &u, nil
		}
	}
	return nil, service.ErrNotFound
}

// MemoryCommentRepo is an in-memory CommentStore.
type MemoryCommentRepo struct {
	mu       sync.RWMutex
	comments map[string]model.Comment
}

// NewMemoryCommentRepo constructs a MemoryCommentRepo.
func NewMemoryCommentRepo() *MemoryCommentRepo {
	return &MemoryCommentRepo{comments: make(map[string]model.Comment)}
}

func (r *MemoryCommentRepo) Create(ctx context.Context, c *model.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comments[c.ID] = *c
	return nil
}

func (r *MemoryCommentRepo) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.comments[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	return &c, nil
}

func (r *MemoryCommentRepo) Update(ctx context.Context, c *model.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[c.ID]; !ok {
		return service.ErrNotFound
	}
	r.comments[c.ID] = *c
	return nil
}

func (r *MemoryCommentRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[id]; !ok {
		return service.ErrNotFound
	}
	delete(r.comments, id)
	return nil
}

func (r *MemoryCommentRepo) ListByEvent(ctx context.Context, eventID string) ([]model.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.Comment
	for _, c := range r.comments {
		if c.EventID == eventID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryCommentRepo) deleteByEvent(eventID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.comments {
		if c.EventID == eventID {
			delete(r.comments, id)
		}
	}
}

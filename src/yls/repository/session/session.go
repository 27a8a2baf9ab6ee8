package session

import (
	"context"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/uber-go/tally"
	"github.com/uber/yara-lsp/src/yls/entity"
	"github.com/uber/yara-lsp/src/yls/internal/errors"
	"github.com/uber/yara-lsp/src/yls/mapper"
	"github.com/uber/yara-lsp/src/yls/model"
)

//go:generate mockgen -destination=repositorymock/session_mock.go -package=repositorymock . Repository

// Repository stores the sessions of all connected editors.
type Repository interface {
	Get(context.Context, uuid.UUID) (*entity.Session, error)
	GetFromContext(ctx context.Context) (*entity.Session, error)
	Set(context.Context, *entity.Session) error
	// UpdateState moves a stored session to state, refusing transitions that are not forward.
	UpdateState(ctx context.Context, id uuid.UUID, state entity.SessionState) error
	Delete(ctx context.Context, id uuid.UUID) error
	SessionCount(ctx context.Context) (int, error)
}

type repository struct {
	mu       sync.Mutex
	memstore map[uuid.UUID]*model.Session
	stats    tally.Scope
}

// New returns an in-memory session repository.
func New(stats tally.Scope) Repository {
	return &repository{
		memstore: make(map[uuid.UUID]*model.Session),
		stats:    stats,
	}
}

// Get returns a copy of the session stored under id.
func (r *repository) Get(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.memstore[id]
	if !ok {
		return nil, &errors.UUIDNotFoundError{UUID: id}
	}
	return mapper.ModelToSession(m)
}

// GetFromContext returns the session whose UUID is carried by ctx.
func (r *repository) GetFromContext(ctx context.Context) (*entity.Session, error) {
	id, err := mapper.ContextToSessionUUID(ctx)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Set stores s, replacing any session with the same UUID.
func (r *repository) Set(ctx context.Context, s *entity.Session) error {
	if s == nil {
		return errors.New("can't save nil session")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.memstore[s.UUID] = mapper.SessionToModel(s)
	r.reportLocked()
	return nil
}

func (r *repository) UpdateState(ctx context.Context, id uuid.UUID, state entity.SessionState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.memstore[id]
	if !ok {
		return &errors.UUIDNotFoundError{UUID: id}
	}
	current := entity.SessionState(m.State)
	if !current.CanTransitionTo(state) {
		return &errors.StateTransitionError{From: current, To: state}
	}

	m.State = int(state)
	r.reportLocked()
	return nil
}

// Delete removes the session stored under id. Deleting an unknown id is not an error.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.memstore, id)
	r.reportLocked()
	return nil
}

// SessionCount returns the number of stored sessions, whatever their state.
func (r *repository) SessionCount(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.memstore), nil
}

// reportLocked updates the per-state session gauges. r.mu must be held.
func (r *repository) reportLocked() {
	counts := make(map[entity.SessionState]int, 4)
	for _, m := range r.memstore {
		counts[entity.SessionState(m.State)]++
	}
	for state := entity.SessionStateUninitialized; state <= entity.SessionStateClosed; state++ {
		r.stats.Tagged(map[string]string{"state": state.String()}).Gauge("sessions").Update(float64(counts[state]))
	}
}

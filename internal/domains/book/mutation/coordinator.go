// Package mutation applies create, update and delete operations to the local
// book store optimistically and reconciles them with the server.
//
// Each Run walks Idle → Pending → Committed | RolledBack (or Cancelled).
// Entering Pending takes a snapshot and, for before-confirm policies, projects
// the change; the transport call is the only point where Run waits. Any
// failure restores the snapshot in full, then re-applies what other
// mutations projected or committed after it was taken.
package mutation

import (
	"context"
	"errors"
	"sync"

	"bookit/internal/domains/book/model"
	"bookit/internal/domains/book/store"
	"bookit/internal/infrastructure/notify"

	"github.com/rs/zerolog"
)

// Transport is the part of the books API a mutation needs.
type Transport interface {
	Create(ctx context.Context, b model.Book) (model.Book, error)
	// Update returns the echoed book, or nil when the server sent no body.
	Update(ctx context.Context, id int, b model.Book) (*model.Book, error)
	Delete(ctx context.Context, id int) error
}

// Coordinator runs mutations against a shared store.
//
// Mutations of the same book id are serialized, and a newer one supersedes
// the one in flight: the older response is ignored and its projection undone.
// Create has no id yet and is not serialized.
type Coordinator struct {
	store     *store.Store
	transport Transport
	sink      notify.Sink
	policies  PolicyTable
	log       zerolog.Logger

	// stateMu makes snapshot+projection and commit/rollback atomic with
	// respect to other mutations. It also guards journal.
	stateMu sync.Mutex
	journal *journal
	locks   *keyedLocks

	mu      sync.Mutex
	nextGen uint64
	latest  map[int]uint64
	active  map[int]*activeRun
}

type activeRun struct {
	gen    uint64
	cancel context.CancelCauseFunc
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithPolicies replaces the default policy table.
func WithPolicies(t PolicyTable) Option {
	return func(c *Coordinator) { c.policies = t }
}

// WithLogger sets the logger used for state transitions.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

// NewCoordinator wires a coordinator to its store, transport and sink.
func NewCoordinator(s *store.Store, t Transport, sink notify.Sink, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:     s,
		transport: t,
		sink:      sink,
		policies:  DefaultPolicies(),
		log:       zerolog.Nop(),
		journal:   newJournal(),
		locks:     newKeyedLocks(),
		latest:    make(map[int]uint64),
		active:    make(map[int]*activeRun),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes op to a terminal state and returns the outcome. It never
// returns an error: remote failures are reported in Result and through the
// notification sink.
func (c *Coordinator) Run(ctx context.Context, op Operation) Result {
	rec := newRecord(op)
	log := c.log.With().
		Str("record_id", rec.ID.String()).
		Str("kind", rec.Kind.String()).
		Int("book_id", rec.TargetID).
		Logger()

	if op.Kind != KindCreate && op.ID <= 0 {
		f := &model.ValidationError{Fields: []string{"book_id"}}
		log.Warn().Msg("[MUTATION] rejected: missing book id")
		return Result{RecordID: rec.ID, Kind: rec.Kind, State: StateIdle, Err: f}
	}

	runCtx := ctx
	if op.Kind != KindCreate {
		gen := c.arrive(op.ID)
		release, err := c.locks.Lock(ctx, op.ID)
		if err != nil {
			c.leave(op.ID, gen)
			log.Debug().Err(err).Msg("[MUTATION] cancelled while queued")
			return c.cancelled(rec, err)
		}
		defer release()

		var cancel context.CancelCauseFunc
		runCtx, cancel = context.WithCancelCause(ctx)
		defer cancel(nil)

		if !c.activate(op.ID, gen, cancel) {
			log.Debug().Msg("[MUTATION] superseded while queued")
			return c.cancelled(rec, ErrSuperseded)
		}
		defer c.leave(op.ID, gen)
	}

	policy := c.policies.For(op.Kind)

	// Idle → Pending
	c.stateMu.Lock()
	rec.snapshot = c.store.Snapshot()
	c.journal.begin(rec)
	rec.State = StatePending
	if policy.Timing == BeforeConfirm {
		c.journal.apply(c.store, rec, func(s *store.Store) { policy.Project(s, rec) })
	}
	c.stateMu.Unlock()
	log.Debug().Str("timing", policy.Timing.String()).Msg("[MUTATION] pending")

	confirmed, callErr := c.call(runCtx, rec)

	c.stateMu.Lock()
	if runCtx.Err() != nil {
		replayed := c.journal.rollback(c.store, rec)
		c.stateMu.Unlock()
		cause := context.Cause(runCtx)
		log.Info().Err(cause).Int("replayed", replayed).Msg("[MUTATION] late response ignored")
		return c.cancelled(rec, cause)
	}

	if callErr != nil {
		// Pending → RolledBack
		replayed := c.journal.rollback(c.store, rec)
		rec.State = StateRolledBack
		c.stateMu.Unlock()

		f := model.AsFailure(callErr)
		log.Warn().Err(f).Int("replayed", replayed).Msg("[MUTATION] rolled back")
		c.sink.Notify(ctx, FailureNotification(TitleFailure, f))
		return Result{RecordID: rec.ID, Kind: rec.Kind, State: rec.State, Err: f}
	}

	// Pending → Committed
	c.journal.apply(c.store, rec, func(s *store.Store) { policy.Merge(s, rec, confirmed) })
	c.journal.end(rec)
	rec.State = StateCommitted
	c.stateMu.Unlock()

	log.Info().Int("confirmed_id", confirmed.ID).Msg("[MUTATION] committed")
	c.sink.Notify(ctx, SuccessNotification(rec.Kind))
	return Result{RecordID: rec.ID, Kind: rec.Kind, State: rec.State, Book: confirmed}
}

// call issues the transport request and returns the canonical entity.
func (c *Coordinator) call(ctx context.Context, rec *Record) (model.Book, error) {
	switch rec.Kind {
	case KindCreate:
		created, err := c.transport.Create(ctx, rec.Payload.WithoutID())
		if err != nil {
			return model.Book{}, err
		}
		if !created.HasID() {
			return model.Book{}, &model.UnknownResponseError{Body: "created book has no book_id"}
		}
		return created.Normalize(), nil

	case KindUpdate:
		echoed, err := c.transport.Update(ctx, rec.TargetID, rec.Payload.WithoutID())
		if err != nil {
			return model.Book{}, err
		}
		if echoed == nil {
			return rec.Payload.WithID(rec.TargetID), nil
		}
		return echoed.Normalize().WithID(rec.TargetID), nil

	default:
		if err := c.transport.Delete(ctx, rec.TargetID); err != nil {
			return model.Book{}, err
		}
		return model.Book{ID: rec.TargetID}, nil
	}
}

func (c *Coordinator) cancelled(rec *Record, cause error) Result {
	rec.State = StateCancelled
	if cause == nil {
		cause = context.Canceled
	}
	return Result{RecordID: rec.ID, Kind: rec.Kind, State: rec.State, Cause: cause}
}

// ========================================
// SUPERSESSION BOOKKEEPING
// ========================================

// arrive registers a new mutation of id and cancels the one in flight.
func (c *Coordinator) arrive(id int) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextGen++
	gen := c.nextGen
	c.latest[id] = gen
	if a := c.active[id]; a != nil {
		a.cancel(ErrSuperseded)
	}
	return gen
}

// activate marks gen as the running mutation of id, unless a newer one
// arrived while it was queued.
func (c *Coordinator) activate(id int, gen uint64, cancel context.CancelCauseFunc) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.latest[id] != gen {
		return false
	}
	c.active[id] = &activeRun{gen: gen, cancel: cancel}
	return true
}

func (c *Coordinator) leave(id int, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if a := c.active[id]; a != nil && a.gen == gen {
		delete(c.active, id)
	}
	if c.latest[id] == gen {
		delete(c.latest, id)
	}
}

// IsSuperseded reports whether err is the cancellation cause of a superseded run.
func IsSuperseded(err error) bool {
	return errors.Is(err, ErrSuperseded)
}

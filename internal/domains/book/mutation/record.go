package mutation

import (
	"errors"
	"fmt"

	"bookit/internal/domains/book/model"
	"bookit/internal/domains/book/store"

	"github.com/google/uuid"
)

// ErrSuperseded is the cancellation cause of a mutation replaced by a newer
// mutation of the same book.
var ErrSuperseded = errors.New("superseded by a newer mutation")

// State is the lifecycle position of a mutation record.
type State int

const (
	StateIdle State = iota
	StatePending
	StateCommitted
	StateRolledBack
	// StateCancelled means the response was ignored because the caller's
	// context ended or a newer mutation of the same book took over.
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled_back"
	case StateCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateCommitted || s == StateRolledBack || s == StateCancelled
}

// Operation is a request to mutate one book.
type Operation struct {
	Kind Kind
	// ID is the target for update and delete.
	ID int
	// Book is the payload for create and update.
	Book model.Book
}

func Create(b model.Book) Operation {
	return Operation{Kind: KindCreate, Book: b.WithoutID()}
}

func Update(id int, b model.Book) Operation {
	return Operation{Kind: KindUpdate, ID: id, Book: b.WithID(id)}
}

func Delete(id int) Operation {
	return Operation{Kind: KindDelete, ID: id}
}

// Record tracks one in-flight mutation. It lives only as long as Run.
type Record struct {
	ID       uuid.UUID
	Kind     Kind
	TargetID int
	Payload  model.Book
	State    State

	snapshot store.Snapshot
	// seq is the journal position when the snapshot was taken.
	seq  uint64
	slot store.Slot
}

func newRecord(op Operation) *Record {
	return &Record{
		ID:       uuid.New(),
		Kind:     op.Kind,
		TargetID: op.ID,
		Payload:  op.Book.Clone(),
		State:    StateIdle,
	}
}

// Result is the outcome of Run.
//
// On StateCommitted, Book is the confirmed entity (for delete only its ID is
// set) and Err is nil. On StateRolledBack or StateIdle, Err is one of the
// model.Failure kinds. On StateCancelled, Cause says why.
type Result struct {
	RecordID uuid.UUID
	Kind     Kind
	State    State
	Book     model.Book
	Err      model.Failure
	Cause    error
}

// OK reports whether the mutation committed.
func (r Result) OK() bool {
	return r.State == StateCommitted
}

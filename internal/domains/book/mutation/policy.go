package mutation

import (
	"fmt"

	"bookit/internal/domains/book/model"
	"bookit/internal/domains/book/store"
)

// Kind is the operation a mutation performs.
type Kind int

const (
	KindCreate Kind = iota
	KindUpdate
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindCreate:
		return "create"
	case KindUpdate:
		return "update"
	case KindDelete:
		return "delete"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Timing says when a mutation is projected onto the store.
type Timing int

const (
	// BeforeConfirm applies the expected effect before the request is sent.
	BeforeConfirm Timing = iota
	// AfterConfirm leaves the store alone until the server answers.
	AfterConfirm
)

func (t Timing) String() string {
	if t == BeforeConfirm {
		return "before-confirm"
	}
	return "after-confirm"
}

// Policy is the reconciliation rule for one kind of mutation.
type Policy struct {
	Kind   Kind
	Timing Timing
}

// PolicyTable declares one policy per kind.
type PolicyTable struct {
	Create Policy
	Update Policy
	Delete Policy
}

// DefaultPolicies waits for the server on create, since a new book has no id
// to key a projection on, and projects update and delete immediately.
func DefaultPolicies() PolicyTable {
	return PolicyTable{
		Create: Policy{Kind: KindCreate, Timing: AfterConfirm},
		Update: Policy{Kind: KindUpdate, Timing: BeforeConfirm},
		Delete: Policy{Kind: KindDelete, Timing: BeforeConfirm},
	}
}

// For returns the policy declared for kind.
func (t PolicyTable) For(kind Kind) Policy {
	switch kind {
	case KindCreate:
		return t.Create
	case KindUpdate:
		return t.Update
	default:
		return t.Delete
	}
}

// Project applies the provisional effect of rec to s.
//
// Create inserts the payload into a fresh slot and remembers the slot on the
// record. Update and Delete are keyed by the target id.
func (p Policy) Project(s *store.Store, rec *Record) {
	switch p.Kind {
	case KindCreate:
		rec.slot = s.InsertProvisional(rec.Payload)
	case KindUpdate:
		s.Update(rec.TargetID, rec.Payload)
		s.ReselectIf(rec.TargetID, rec.Payload)
	case KindDelete:
		s.Remove(rec.TargetID)
		s.DeselectIf(rec.TargetID)
	}
}

// Merge folds the confirmed server entity into s.
//
// Create replaces the provisional slot when one was projected and inserts
// otherwise; it never invents an id. Update is keyed by id and Delete merges
// by omission. Both are idempotent, so re-applying a projection is harmless.
func (p Policy) Merge(s *store.Store, rec *Record, confirmed model.Book) {
	switch p.Kind {
	case KindCreate:
		if rec.slot != "" {
			s.ReplaceSlot(rec.slot, confirmed)
			return
		}
		s.Insert(confirmed)
	case KindUpdate:
		s.Update(rec.TargetID, confirmed)
		s.ReselectIf(rec.TargetID, confirmed)
	case KindDelete:
		s.Remove(rec.TargetID)
		s.DeselectIf(rec.TargetID)
	}
}

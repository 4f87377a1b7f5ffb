package mutation

import (
	"bookit/internal/domains/book/store"

	"github.com/google/uuid"
)

// effect is one store change made by a mutation: a projection or a merge.
type effect struct {
	seq   uint64
	owner uuid.UUID
	apply func(*store.Store)
}

// journal remembers the effects applied since the oldest pending snapshot,
// so a rollback can restore its snapshot and then re-apply what other
// mutations did after it. All methods require Coordinator.stateMu.
type journal struct {
	seq     uint64
	effects []effect
	pending map[uuid.UUID]uint64
}

func newJournal() *journal {
	return &journal{pending: make(map[uuid.UUID]uint64)}
}

// begin marks rec pending from the current position.
func (j *journal) begin(rec *Record) {
	rec.seq = j.seq
	j.pending[rec.ID] = rec.seq
}

// apply runs fn on s and records it under rec.
func (j *journal) apply(s *store.Store, rec *Record, fn func(*store.Store)) {
	fn(s)
	j.seq++
	j.effects = append(j.effects, effect{seq: j.seq, owner: rec.ID, apply: fn})
}

// rollback restores rec's snapshot, forgets rec's own effects and replays
// the effects other mutations applied after the snapshot, in order.
func (j *journal) rollback(s *store.Store, rec *Record) int {
	s.Restore(rec.snapshot)

	kept := j.effects[:0]
	replayed := 0
	for _, e := range j.effects {
		if e.owner == rec.ID {
			continue
		}
		kept = append(kept, e)
		if e.seq > rec.seq {
			e.apply(s)
			replayed++
		}
	}
	j.effects = kept
	j.end(rec)
	return replayed
}

// end marks rec terminal and drops effects no pending snapshot predates.
func (j *journal) end(rec *Record) {
	delete(j.pending, rec.ID)
	if len(j.pending) == 0 {
		j.effects = nil
		return
	}

	oldest := j.seq
	for _, seq := range j.pending {
		if seq < oldest {
			oldest = seq
		}
	}
	i := 0
	for i < len(j.effects) && j.effects[i].seq <= oldest {
		i++
	}
	j.effects = append([]effect(nil), j.effects[i:]...)
}

func (j *journal) size() int {
	return len(j.effects)
}

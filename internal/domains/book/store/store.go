// Package store holds the client-side cache of books and the current selection.
//
// Every method is synchronous and total. Update and Remove on an id that is
// not present do nothing. Restore overwrites both the collection and the
// selection with the snapshot contents, which is what makes rollback exact.
package store

import (
	"sync"

	"bookit/internal/domains/book/model"

	"github.com/google/uuid"
)

// Slot identifies a provisional entry inserted before the server assigned an id.
type Slot string

type entry struct {
	book model.Book
	slot Slot
}

// Store is the in-memory book collection. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	entries  []entry
	selected *model.Book
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Snapshot is an immutable copy of the store taken before a mutation.
type Snapshot struct {
	entries  []entry
	selected *model.Book
}

// Books returns a copy of the snapshot's collection.
func (s Snapshot) Books() []model.Book {
	return booksOf(s.entries)
}

// Selected returns a copy of the snapshot's selection.
func (s Snapshot) Selected() (model.Book, bool) {
	if s.selected == nil {
		return model.Book{}, false
	}
	return s.selected.Clone(), true
}

// ========================================
// READS
// ========================================

// Books returns a deep copy of the collection in insertion order.
func (s *Store) Books() []model.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return booksOf(s.entries)
}

// Len returns the number of books, provisional entries included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Get returns a copy of the book with the given id.
func (s *Store) Get(id int) (model.Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.entries[i].book.Clone(), true
	}
	return model.Book{}, false
}

// Selected returns a copy of the current selection.
func (s *Store) Selected() (model.Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return model.Book{}, false
	}
	return s.selected.Clone(), true
}

// ========================================
// MUTATIONS
// ========================================

// ReplaceAll swaps the whole collection, e.g. after a successful list fetch.
// Duplicate ids keep their first occurrence.
func (s *Store) ReplaceAll(books []model.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[int]struct{}, len(books))
	entries := make([]entry, 0, len(books))
	for _, b := range books {
		if b.HasID() {
			if _, dup := seen[b.ID]; dup {
				continue
			}
			seen[b.ID] = struct{}{}
		}
		entries = append(entries, entry{book: b.Clone()})
	}
	s.entries = entries
}

// Insert appends a book. A book whose id is already present replaces that
// entry in place so ids stay unique.
func (s *Store) Insert(b model.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.HasID() {
		if i := s.indexOf(b.ID); i >= 0 {
			s.entries[i] = entry{book: b.Clone()}
			return
		}
	}
	s.entries = append(s.entries, entry{book: b.Clone()})
}

// InsertProvisional appends a book that has no server id yet and returns the
// slot it occupies, so the confirmed entity can later replace it.
func (s *Store) InsertProvisional(b model.Book) Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot := Slot(uuid.NewString())
	s.entries = append(s.entries, entry{book: b.Clone(), slot: slot})
	return slot
}

// ReplaceSlot swaps the provisional entry at slot for the confirmed book.
// If the slot is gone the book is inserted instead.
func (s *Store) ReplaceSlot(slot Slot, b model.Book) {
	s.mu.Lock()
	for i, e := range s.entries {
		if e.slot == slot && slot != "" {
			s.entries[i] = entry{book: b.Clone()}
			s.mu.Unlock()
			return
		}
	}
	s.mu.Unlock()
	s.Insert(b)
}

// Update replaces the book with the given id. Unknown ids are ignored.
func (s *Store) Update(id int, b model.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		s.entries[i] = entry{book: b.WithID(id)}
	}
}

// Remove deletes the book with the given id. Unknown ids are ignored.
func (s *Store) Remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
	}
}

// Select stores a copy of b as the current selection. Later changes to the
// collection do not reach the selection, and vice versa.
func (s *Store) Select(b model.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := b.Clone()
	s.selected = &c
}

// ClearSelection drops the current selection.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
}

// ReselectIf refreshes the selection with b when it points at id.
func (s *Store) ReselectIf(id int, b model.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected != nil && s.selected.ID == id {
		c := b.WithID(id)
		s.selected = &c
	}
}

// DeselectIf clears the selection when it points at id.
func (s *Store) DeselectIf(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected != nil && s.selected.ID == id {
		s.selected = nil
	}
}

// ========================================
// SNAPSHOT / RESTORE
// ========================================

// Snapshot captures the collection and the selection.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		entries:  cloneEntries(s.entries),
		selected: cloneSelected(s.selected),
	}
}

// Restore overwrites the collection and selection with the snapshot.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = cloneEntries(snap.entries)
	s.selected = cloneSelected(snap.selected)
}

// ========================================
// HELPERS
// ========================================

func (s *Store) indexOf(id int) int {
	if id <= 0 {
		return -1
	}
	for i, e := range s.entries {
		if e.book.ID == id {
			return i
		}
	}
	return -1
}

func booksOf(entries []entry) []model.Book {
	out := make([]model.Book, len(entries))
	for i, e := range entries {
		out[i] = e.book.Clone()
	}
	return out
}

func cloneEntries(entries []entry) []entry {
	out := make([]entry, len(entries))
	for i, e := range entries {
		out[i] = entry{book: e.book.Clone(), slot: e.slot}
	}
	return out
}

func cloneSelected(b *model.Book) *model.Book {
	if b == nil {
		return nil
	}
	c := b.Clone()
	return &c
}

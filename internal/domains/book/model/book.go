package model

import (
	"strings"
	"time"
)

// PubDateLayout is the wire and canonical in-memory layout for publication dates.
const PubDateLayout = "2006-01-02"

// Book represents one persisted record of the /books resource.
//
// ID is assigned by the server; a zero ID means the book has never been persisted.
// NumPages is optional and nil is not the same thing as zero pages.
type Book struct {
	ID       int    `json:"book_id,omitempty" db:"book_id"`
	Title    string `json:"title" db:"title"`
	Author   string `json:"author" db:"author"`
	PubDate  string `json:"pub_date" db:"pub_date"`
	NumPages *int   `json:"num_pages,omitempty" db:"num_pages"`
}

// HasID reports whether the server has assigned an identifier.
func (b Book) HasID() bool {
	return b.ID > 0
}

// Clone returns a deep copy. Snapshots and selections rely on it so that
// no two copies share the NumPages pointer.
func (b Book) Clone() Book {
	out := b
	if b.NumPages != nil {
		n := *b.NumPages
		out.NumPages = &n
	}
	return out
}

// WithID returns a copy carrying the given identifier.
func (b Book) WithID(id int) Book {
	out := b.Clone()
	out.ID = id
	return out
}

// WithoutID returns a copy suitable as a POST/PUT body.
func (b Book) WithoutID() Book {
	return b.WithID(0)
}

// Equal compares two books field by field, dereferencing NumPages.
func (b Book) Equal(o Book) bool {
	if b.ID != o.ID || b.Title != o.Title || b.Author != o.Author || b.PubDate != o.PubDate {
		return false
	}
	switch {
	case b.NumPages == nil && o.NumPages == nil:
		return true
	case b.NumPages == nil || o.NumPages == nil:
		return false
	default:
		return *b.NumPages == *o.NumPages
	}
}

// Pages is a convenience constructor for the optional page count.
func Pages(n int) *int {
	return &n
}

// CloneBooks deep-copies a slice of books. A nil input yields an empty slice.
func CloneBooks(books []Book) []Book {
	out := make([]Book, len(books))
	for i, b := range books {
		out[i] = b.Clone()
	}
	return out
}

// NormalizePubDate converts whatever date form the server sent into the
// canonical YYYY-MM-DD string. Values that cannot be parsed are returned as-is.
func NormalizePubDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if _, err := time.Parse(PubDateLayout, raw); err == nil {
		return raw
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(PubDateLayout)
		}
	}
	return raw
}

// Normalize returns a copy with the publication date in canonical form.
func (b Book) Normalize() Book {
	out := b.Clone()
	out.PubDate = NormalizePubDate(b.PubDate)
	return out
}

package session

import (
	"strconv"
	"strings"

	"bookit/internal/domains/book/model"
)

// Form holds raw user input for one book plus the fields that failed
// validation the last time they were checked.
type Form struct {
	Values  map[string]string
	Invalid map[string]bool
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{Values: make(map[string]string), Invalid: make(map[string]bool)}
}

// NewFormFrom pre-populates a form from an existing book. A missing page
// count is shown as an empty field; zero stays "0" so it survives an edit.
func NewFormFrom(b model.Book) *Form {
	f := NewForm()
	f.Values[model.FieldTitle] = b.Title
	f.Values[model.FieldAuthor] = b.Author
	f.Values[model.FieldPubDate] = b.PubDate
	if b.NumPages != nil {
		f.Values[model.FieldNumPages] = strconv.Itoa(*b.NumPages)
	}
	return f
}

// Set stores a value and re-validates that field.
func (f *Form) Set(field, raw string) {
	f.Values[field] = raw
	f.Invalid[field] = !model.Validate(field, raw)
}

// Check validates every field and returns a ValidationError naming the
// invalid ones by display name, or nil.
func (f *Form) Check() *model.ValidationError {
	var names []string
	for _, field := range model.FormFields {
		ok := model.Validate(field, f.Values[field])
		f.Invalid[field] = !ok
		if !ok {
			names = append(names, model.FieldDisplayNames[field])
		}
	}
	if len(names) == 0 {
		return nil
	}
	return &model.ValidationError{Fields: names}
}

// Book converts a checked form into an entity without an id.
func (f *Form) Book() model.Book {
	b := model.Book{
		Title:   strings.TrimSpace(f.Values[model.FieldTitle]),
		Author:  strings.TrimSpace(f.Values[model.FieldAuthor]),
		PubDate: strings.TrimSpace(f.Values[model.FieldPubDate]),
	}
	if raw := strings.TrimSpace(f.Values[model.FieldNumPages]); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			b.NumPages = model.Pages(n)
		}
	}
	return b
}

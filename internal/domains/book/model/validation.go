package model

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Field names used by forms and by the invalid-field map.
const (
	FieldTitle    = "title"
	FieldAuthor   = "author"
	FieldPubDate  = "pub_date"
	FieldNumPages = "num_pages"
)

// FormFields lists the editable fields in display order.
var FormFields = []string{FieldTitle, FieldAuthor, FieldPubDate, FieldNumPages}

// FieldDisplayNames maps field names to the labels shown to the user.
var FieldDisplayNames = map[string]string{
	FieldTitle:    "Book Title",
	FieldAuthor:   "Author",
	FieldPubDate:  "Publication Date",
	FieldNumPages: "Number of Pages",
}

var (
	pubDateRx  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	numPagesRx = regexp.MustCompile(`^\d+$`)
)

// fitsInt rejects digit strings too large for an int.
var fitsInt = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := strconv.Atoi(s); err != nil {
		return errors.New("must fit in an integer")
	}
	return nil
})

var fieldRules = map[string][]validation.Rule{
	FieldTitle:    {validation.Required},
	FieldAuthor:   {validation.Required},
	FieldPubDate:  {validation.Required, validation.Match(pubDateRx), validation.Date(PubDateLayout)},
	FieldNumPages: {validation.Match(numPagesRx), fitsInt},
}

// Validate checks one raw form value after trimming surrounding spaces, so a
// blank title is as empty as a missing one. Unknown fields are always valid.
//
// The publication date must match YYYY-MM-DD and also be a real calendar
// date, so "2024-13-40" is rejected. The page count is optional.
func Validate(field, raw string) bool {
	rules, ok := fieldRules[field]
	if !ok {
		return true
	}
	return validation.Validate(strings.TrimSpace(raw), rules...) == nil
}

// ========================================
// SERVER REQUEST DTO
// ========================================

// BookRequest is the body accepted by POST /books and PUT /books/{id}.
// Any book_id in the body is ignored; the path or the database decides it.
type BookRequest struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	PubDate  string `json:"pub_date"`
	NumPages *int   `json:"num_pages,omitempty"`
}

// Validate reports empty fields first, then the date, then the page count.
func (r BookRequest) Validate() error {
	var empty []string
	if validation.Validate(strings.TrimSpace(r.Title), validation.Required) != nil {
		empty = append(empty, FieldTitle)
	}
	if validation.Validate(strings.TrimSpace(r.Author), validation.Required) != nil {
		empty = append(empty, FieldAuthor)
	}
	if validation.Validate(r.PubDate, validation.Required) != nil {
		empty = append(empty, FieldPubDate)
	}
	if len(empty) > 0 {
		return &EmptyFieldsError{Fields: empty}
	}

	if err := validation.Validate(r.PubDate, validation.Date(PubDateLayout)); err != nil {
		return ErrInvalidPubDate
	}
	if r.NumPages != nil {
		if err := validation.Validate(*r.NumPages, validation.Min(0)); err != nil {
			return ErrInvalidNumPages
		}
	}
	return nil
}

// ToBook builds the entity stored for this request.
func (r BookRequest) ToBook(id int) Book {
	b := Book{
		ID:      id,
		Title:   strings.TrimSpace(r.Title),
		Author:  strings.TrimSpace(r.Author),
		PubDate: r.PubDate,
	}
	if r.NumPages != nil {
		b.NumPages = Pages(*r.NumPages)
	}
	return b
}

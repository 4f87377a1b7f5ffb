// Package session ties the book store, the API client and the mutation
// coordinator together the way an interactive client uses them.
package session

import (
	"context"
	"errors"

	"bookit/internal/domains/book/model"
	"bookit/internal/domains/book/mutation"
	"bookit/internal/domains/book/store"
	"bookit/internal/infrastructure/notify"

	"github.com/rs/zerolog"
)

const (
	TitleFetchFailure = "Error, Could not fetch book list"
	TitleOpenFailure  = "Error, Could not fetch book"
)

// ErrNoSelection is returned by Update and Delete when no book is selected.
var ErrNoSelection = errors.New("no book selected")

// API is the read and write surface of the books API.
type API interface {
	mutation.Transport
	List(ctx context.Context) ([]model.Book, error)
	Get(ctx context.Context, id int) (model.Book, error)
}

type Session struct {
	store *store.Store
	api   API
	sink  notify.Sink
	coord *mutation.Coordinator
	log   zerolog.Logger
}

func New(api API, sink notify.Sink, log zerolog.Logger, opts ...mutation.Option) *Session {
	s := store.New()
	opts = append([]mutation.Option{mutation.WithLogger(log)}, opts...)
	return &Session{
		store: s,
		api:   api,
		sink:  sink,
		coord: mutation.NewCoordinator(s, api, sink, opts...),
		log:   log,
	}
}

// Store exposes the local cache for rendering.
func (s *Session) Store() *store.Store {
	return s.store
}

// Refresh replaces the cache with the server's list. On failure the cache is
// left unchanged and a failure notification is sent.
func (s *Session) Refresh(ctx context.Context) error {
	books, err := s.api.List(ctx)
	if err != nil {
		f := model.AsFailure(err)
		s.log.Warn().Err(f).Msg("[SESSION] refresh failed")
		s.sink.Notify(ctx, mutation.FailureNotification(TitleFetchFailure, f))
		return f
	}
	s.store.ReplaceAll(books)
	s.log.Debug().Int("count", len(books)).Msg("[SESSION] refreshed")
	return nil
}

// Open fetches one book and selects it.
func (s *Session) Open(ctx context.Context, id int) (model.Book, error) {
	b, err := s.api.Get(ctx, id)
	if err != nil {
		f := model.AsFailure(err)
		s.sink.Notify(ctx, mutation.FailureNotification(TitleOpenFailure, f))
		return model.Book{}, f
	}
	s.store.Select(b)
	return b, nil
}

// Select selects a cached book without a round trip.
func (s *Session) Select(id int) bool {
	b, ok := s.store.Get(id)
	if !ok {
		return false
	}
	s.store.Select(b)
	return true
}

// Create validates form and runs a create mutation.
func (s *Session) Create(ctx context.Context, form *Form) (mutation.Result, error) {
	if verr := form.Check(); verr != nil {
		return mutation.Result{Kind: mutation.KindCreate, State: mutation.StateIdle, Err: verr}, verr
	}
	return s.finish(s.coord.Run(ctx, mutation.Create(form.Book())))
}

// Update validates form and runs an update of the selected book.
func (s *Session) Update(ctx context.Context, form *Form) (mutation.Result, error) {
	sel, ok := s.store.Selected()
	if !ok {
		return mutation.Result{Kind: mutation.KindUpdate}, ErrNoSelection
	}
	if verr := form.Check(); verr != nil {
		return mutation.Result{Kind: mutation.KindUpdate, State: mutation.StateIdle, Err: verr}, verr
	}
	return s.finish(s.coord.Run(ctx, mutation.Update(sel.ID, form.Book())))
}

// Delete runs a delete of the selected book.
func (s *Session) Delete(ctx context.Context) (mutation.Result, error) {
	sel, ok := s.store.Selected()
	if !ok {
		return mutation.Result{Kind: mutation.KindDelete}, ErrNoSelection
	}
	return s.finish(s.coord.Run(ctx, mutation.Delete(sel.ID)))
}

func (s *Session) finish(res mutation.Result) (mutation.Result, error) {
	switch {
	case res.Err != nil:
		return res, res.Err
	case res.State == mutation.StateCancelled:
		return res, res.Cause
	}
	return res, nil
}

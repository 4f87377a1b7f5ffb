package mutation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bookit/internal/domains/book/model"
	"bookit/internal/domains/book/store"
	"bookit/internal/infrastructure/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Setup
// =============================================================================

// fakeTransport lets each test script the server's answer.
type fakeTransport struct {
	mu      sync.Mutex
	calls   []string
	create  func(ctx context.Context, b model.Book) (model.Book, error)
	update  func(ctx context.Context, id int, b model.Book) (*model.Book, error)
	del     func(ctx context.Context, id int) error
}

func (f *fakeTransport) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeTransport) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeTransport) Create(ctx context.Context, b model.Book) (model.Book, error) {
	f.record("create")
	return f.create(ctx, b)
}

func (f *fakeTransport) Update(ctx context.Context, id int, b model.Book) (*model.Book, error) {
	f.record("update")
	return f.update(ctx, id, b)
}

func (f *fakeTransport) Delete(ctx context.Context, id int) error {
	f.record("delete")
	return f.del(ctx, id)
}

func seeded(books ...model.Book) *store.Store {
	s := store.New()
	s.ReplaceAll(books)
	return s
}

func sample(id int, title string) model.Book {
	return model.Book{ID: id, Title: title, Author: "Author", PubDate: "2020-01-01", NumPages: model.Pages(100)}
}

// =============================================================================
// Scenarios
// =============================================================================

func TestRun_UpdateServerErrorRollsBack(t *testing.T) {
	s := seeded(model.Book{ID: 1, Title: "A"})
	sink := notify.NewMemorySink()

	var seenDuringCall []model.Book
	tr := &fakeTransport{update: func(ctx context.Context, id int, b model.Book) (*model.Book, error) {
		seenDuringCall = s.Books()
		return nil, &model.ServerError{Status: 500, Msg: "db down"}
	}}
	c := NewCoordinator(s, tr, sink)

	res := c.Run(context.Background(), Update(1, model.Book{Title: "B"}))

	assert.Equal(t, StateRolledBack, res.State)
	require.Len(t, seenDuringCall, 1)
	assert.Equal(t, "B", seenDuringCall[0].Title, "update is projected before the call")

	assert.Equal(t, []model.Book{{ID: 1, Title: "A"}}, s.Books())

	var serverErr *model.ServerError
	require.ErrorAs(t, res.Err, &serverErr)
	last, ok := sink.Last()
	require.True(t, ok)
	assert.Equal(t, notify.LevelFailure, last.Level)
	assert.Equal(t, "db down", last.Description)
}

func TestRun_CreateReconcilesServerID(t *testing.T) {
	s := store.New()
	sink := notify.NewMemorySink()

	var sizeDuringCall int
	tr := &fakeTransport{create: func(ctx context.Context, b model.Book) (model.Book, error) {
		sizeDuringCall = s.Len()
		assert.Zero(t, b.ID, "create body carries no id")
		return b.WithID(7), nil
	}}
	c := NewCoordinator(s, tr, sink)

	res := c.Run(context.Background(), Create(model.Book{Title: "X", Author: "Y", PubDate: "2023-05-01"}))

	require.True(t, res.OK())
	assert.Equal(t, 0, sizeDuringCall, "create waits for the server by default")
	assert.Equal(t, []model.Book{{ID: 7, Title: "X", Author: "Y", PubDate: "2023-05-01"}}, s.Books())
	last, _ := sink.Last()
	assert.Equal(t, "Book added successfully", last.Description)
}

func TestRun_CreateBeforeConfirmReplacesProvisionalEntry(t *testing.T) {
	s := seeded(sample(1, "A"))
	policies := DefaultPolicies()
	policies.Create.Timing = BeforeConfirm

	var duringCall []model.Book
	tr := &fakeTransport{create: func(ctx context.Context, b model.Book) (model.Book, error) {
		duringCall = s.Books()
		return b.WithID(42), nil
	}}
	c := NewCoordinator(s, tr, notify.NewMemorySink(), WithPolicies(policies))

	res := c.Run(context.Background(), Create(model.Book{Title: "N", Author: "Y", PubDate: "2023-05-01"}))

	require.True(t, res.OK())
	require.Len(t, duringCall, 2)
	assert.Zero(t, duringCall[1].ID, "provisional entry has no id")

	got := s.Books()
	require.Len(t, got, 2)
	assert.Equal(t, 42, got[1].ID)
	assert.Equal(t, "N", got[1].Title)
}

func TestRun_CreateWithoutServerIDRollsBack(t *testing.T) {
	s := seeded(sample(1, "A"))
	before := s.Snapshot()
	tr := &fakeTransport{create: func(ctx context.Context, b model.Book) (model.Book, error) {
		return b, nil
	}}
	sink := notify.NewMemorySink()
	c := NewCoordinator(s, tr, sink)

	res := c.Run(context.Background(), Create(model.Book{Title: "X", Author: "Y", PubDate: "2023-05-01"}))

	assert.Equal(t, StateRolledBack, res.State)
	assert.IsType(t, &model.UnknownResponseError{}, res.Err)
	assert.Equal(t, before.Books(), s.Books())
	last, _ := sink.Last()
	assert.Equal(t, MsgUnknownResponse, last.Description)
}

func TestRun_UpdateCommitKeepsSingleEntryForID(t *testing.T) {
	s := seeded(sample(1, "A"), sample(2, "B"))
	s.Select(sample(2, "B"))
	tr := &fakeTransport{update: func(ctx context.Context, id int, b model.Book) (*model.Book, error) {
		return nil, nil
	}}
	c := NewCoordinator(s, tr, notify.NewMemorySink())

	payload := model.Book{Title: "B2", Author: "Z", PubDate: "2021-03-04"}
	res := c.Run(context.Background(), Update(2, payload))

	require.True(t, res.OK())
	count := 0
	for _, b := range s.Books() {
		if b.ID == 2 {
			count++
			assert.True(t, b.Equal(payload.WithID(2)))
		}
	}
	assert.Equal(t, 1, count)

	sel, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, "B2", sel.Title, "selection follows the committed update")
}

func TestRun_UpdateUsesEchoedBody(t *testing.T) {
	s := seeded(sample(1, "A"))
	tr := &fakeTransport{update: func(ctx context.Context, id int, b model.Book) (*model.Book, error) {
		echoed := b
		echoed.PubDate = "2021-03-04T00:00:00Z"
		return &echoed, nil
	}}
	c := NewCoordinator(s, tr, notify.NewMemorySink())

	res := c.Run(context.Background(), Update(1, model.Book{Title: "A2", Author: "Z", PubDate: "2021-03-04"}))

	require.True(t, res.OK())
	got, _ := s.Get(1)
	assert.Equal(t, "2021-03-04", got.PubDate)
	assert.Equal(t, 1, res.Book.ID)
}

func TestRun_DeleteRemovesEntity(t *testing.T) {
	s := seeded(sample(1, "A"), sample(2, "B"))
	s.Select(sample(1, "A"))
	sink := notify.NewMemorySink()
	tr := &fakeTransport{del: func(ctx context.Context, id int) error { return nil }}
	c := NewCoordinator(s, tr, sink)

	res := c.Run(context.Background(), Delete(1))

	require.True(t, res.OK())
	_, found := s.Get(1)
	assert.False(t, found)
	assert.Equal(t, 1, s.Len())
	_, selected := s.Selected()
	assert.False(t, selected)
	last, _ := sink.Last()
	assert.Equal(t, "Book Deleted", last.Description)
}

func TestRun_DeleteNetworkErrorRestoresSnapshotExactly(t *testing.T) {
	s := seeded(sample(1, "A"), sample(2, "B"), sample(3, "C"))
	s.Select(sample(2, "B"))
	before := s.Snapshot()
	sink := notify.NewMemorySink()
	tr := &fakeTransport{del: func(ctx context.Context, id int) error {
		return &model.NetworkError{Err: errors.New("connection refused")}
	}}
	c := NewCoordinator(s, tr, sink)

	res := c.Run(context.Background(), Delete(2))

	assert.Equal(t, StateRolledBack, res.State)
	assert.Equal(t, before.Books(), s.Books())
	sel, ok := s.Selected()
	require.True(t, ok)
	wantSel, _ := before.Selected()
	assert.Equal(t, wantSel, sel)
	last, _ := sink.Last()
	assert.Equal(t, MsgNetworkError, last.Description)
	assert.Equal(t, TitleFailure, last.Title)
}

func TestRun_PlainErrorIsTreatedAsNetworkFailure(t *testing.T) {
	s := seeded(sample(1, "A"))
	tr := &fakeTransport{del: func(ctx context.Context, id int) error { return errors.New("dial tcp: refused") }}
	c := NewCoordinator(s, tr, notify.NewMemorySink())

	res := c.Run(context.Background(), Delete(1))

	assert.IsType(t, &model.NetworkError{}, res.Err)
	assert.Equal(t, 1, s.Len())
}

func TestRun_MissingIDNeverReachesTransport(t *testing.T) {
	tr := &fakeTransport{}
	c := NewCoordinator(store.New(), tr, notify.NewMemorySink())

	res := c.Run(context.Background(), Delete(0))

	assert.Equal(t, StateIdle, res.State)
	assert.IsType(t, &model.ValidationError{}, res.Err)
	assert.Empty(t, tr.Calls())
}

func TestRun_AfterConfirmUpdateLeavesStoreUntilResponse(t *testing.T) {
	s := seeded(sample(1, "A"))
	policies := DefaultPolicies()
	policies.Update.Timing = AfterConfirm

	var duringCall string
	tr := &fakeTransport{update: func(ctx context.Context, id int, b model.Book) (*model.Book, error) {
		got, _ := s.Get(1)
		duringCall = got.Title
		return nil, nil
	}}
	c := NewCoordinator(s, tr, notify.NewMemorySink(), WithPolicies(policies))

	res := c.Run(context.Background(), Update(1, model.Book{Title: "B", Author: "A", PubDate: "2020-01-01"}))

	require.True(t, res.OK())
	assert.Equal(t, "A", duringCall)
	got, _ := s.Get(1)
	assert.Equal(t, "B", got.Title)
}

// =============================================================================
// Cancellation & serialization
// =============================================================================

func TestRun_CallerCancellationIgnoresLateSuccess(t *testing.T) {
	s := seeded(sample(1, "A"))
	before := s.Snapshot()
	sink := notify.NewMemorySink()

	ctx, cancel := context.WithCancel(context.Background())
	tr := &fakeTransport{update: func(_ context.Context, id int, b model.Book) (*model.Book, error) {
		cancel()
		return &b, nil
	}}
	c := NewCoordinator(s, tr, sink)

	res := c.Run(ctx, Update(1, model.Book{Title: "late", Author: "A", PubDate: "2020-01-01"}))

	assert.Equal(t, StateCancelled, res.State)
	assert.ErrorIs(t, res.Cause, context.Canceled)
	assert.Equal(t, before.Books(), s.Books())
	assert.Empty(t, sink.All(), "no notification for a torn-down caller")
}

func TestRun_NewerMutationSupersedesInFlight(t *testing.T) {
	s := seeded(sample(1, "A"))
	sink := notify.NewMemorySink()

	started := make(chan struct{})
	tr := &fakeTransport{update: func(ctx context.Context, id int, b model.Book) (*model.Book, error) {
		if b.Title == "first" {
			close(started)
			<-ctx.Done()
			return nil, &model.NetworkError{Err: ctx.Err()}
		}
		return &b, nil
	}}
	c := NewCoordinator(s, tr, sink)

	firstDone := make(chan Result, 1)
	go func() {
		firstDone <- c.Run(context.Background(), Update(1, model.Book{Title: "first", Author: "A", PubDate: "2020-01-01"}))
	}()
	<-started

	second := c.Run(context.Background(), Update(1, model.Book{Title: "second", Author: "A", PubDate: "2020-01-01"}))

	var first Result
	select {
	case first = <-firstDone:
	case <-time.After(2 * time.Second):
		t.Fatal("first mutation never finished")
	}

	assert.Equal(t, StateCancelled, first.State)
	assert.True(t, IsSuperseded(first.Cause))
	require.True(t, second.OK())

	got, _ := s.Get(1)
	assert.Equal(t, "second", got.Title)
	require.Len(t, sink.All(), 1)
	assert.Equal(t, "Book Updated", sink.All()[0].Description)
	assert.Equal(t, 0, c.locks.size())
	assert.Equal(t, 0, c.journal.size())
}

func TestRun_DifferentIDsDoNotBlockEachOther(t *testing.T) {
	s := seeded(sample(1, "A"), sample(2, "B"))

	release := make(chan struct{})
	tr := &fakeTransport{update: func(ctx context.Context, id int, b model.Book) (*model.Book, error) {
		if id == 1 {
			<-release
		}
		return nil, nil
	}}
	c := NewCoordinator(s, tr, notify.NewMemorySink())

	done := make(chan Result, 1)
	go func() {
		done <- c.Run(context.Background(), Update(1, model.Book{Title: "A2", Author: "A", PubDate: "2020-01-01"}))
	}()

	res := c.Run(context.Background(), Update(2, model.Book{Title: "B2", Author: "A", PubDate: "2020-01-01"}))
	require.True(t, res.OK())

	close(release)
	assert.True(t, (<-done).OK())

	a, _ := s.Get(1)
	b, _ := s.Get(2)
	assert.Equal(t, "A2", a.Title)
	assert.Equal(t, "B2", b.Title)
}

func TestRun_RollbackKeepsLaterCommitOnOtherID(t *testing.T) {
	s := seeded(sample(1, "A"), sample(2, "B"))
	sink := notify.NewMemorySink()

	started := make(chan struct{})
	release := make(chan struct{})
	tr := &fakeTransport{update: func(ctx context.Context, id int, b model.Book) (*model.Book, error) {
		if id == 1 {
			close(started)
			<-release
			return nil, &model.ServerError{Status: 500, Msg: "db down"}
		}
		return nil, nil
	}}
	c := NewCoordinator(s, tr, sink)

	done := make(chan Result, 1)
	go func() {
		done <- c.Run(context.Background(), Update(1, model.Book{Title: "A2", Author: "Author", PubDate: "2020-01-01"}))
	}()
	<-started

	second := c.Run(context.Background(), Update(2, model.Book{Title: "B2", Author: "Author", PubDate: "2020-01-01"}))
	require.True(t, second.OK())

	close(release)
	first := <-done
	assert.Equal(t, StateRolledBack, first.State)

	a, _ := s.Get(1)
	b, _ := s.Get(2)
	assert.Equal(t, sample(1, "A"), a, "failed update is undone")
	assert.Equal(t, "B2", b.Title, "confirmed update survives the rollback")
	assert.Equal(t, 0, c.journal.size())
}

func TestRun_RollbackKeepsPendingProjectionOfOtherID(t *testing.T) {
	s := seeded(sample(1, "A"), sample(2, "B"))

	started := map[int]chan struct{}{1: make(chan struct{}), 2: make(chan struct{})}
	release := map[int]chan struct{}{1: make(chan struct{}), 2: make(chan struct{})}
	tr := &fakeTransport{update: func(ctx context.Context, id int, b model.Book) (*model.Book, error) {
		close(started[id])
		<-release[id]
		if id == 1 {
			return nil, &model.NetworkError{Err: errors.New("connection reset")}
		}
		return nil, nil
	}}
	c := NewCoordinator(s, tr, notify.NewMemorySink())

	results := map[int]chan Result{1: make(chan Result, 1), 2: make(chan Result, 1)}
	for _, id := range []int{1, 2} {
		id := id
		go func() {
			results[id] <- c.Run(context.Background(), Update(id, model.Book{Title: "new", Author: "Author", PubDate: "2020-01-01"}))
		}()
		<-started[id]
	}

	close(release[1])
	assert.Equal(t, StateRolledBack, (<-results[1]).State)

	a, _ := s.Get(1)
	b, _ := s.Get(2)
	assert.Equal(t, "A", a.Title)
	assert.Equal(t, "new", b.Title, "pending projection stays visible")

	close(release[2])
	assert.True(t, (<-results[2]).OK())
	b, _ = s.Get(2)
	assert.Equal(t, "new", b.Title)
	assert.Equal(t, 0, c.journal.size())
}

func TestRun_QueuedCallerCancellation(t *testing.T) {
	s := seeded(sample(1, "A"))
	started := make(chan struct{})
	release := make(chan struct{})
	tr := &fakeTransport{del: func(ctx context.Context, id int) error {
		close(started)
		<-release
		return nil
	}}
	c := NewCoordinator(s, tr, notify.NewMemorySink())

	go c.Run(context.Background(), Delete(1))
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := c.Run(ctx, Delete(1))
	close(release)

	assert.Equal(t, StateCancelled, res.State)
}

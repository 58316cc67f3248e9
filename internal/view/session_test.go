package view

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/student-records-api/internal/models"
	"github.com/noah-isme/student-records-api/internal/query"
)

type stubLister struct {
	calls int64
	fn    func(q models.RecordQuery) (*query.Result, *models.Pagination, error)
}

func (s *stubLister) List(ctx context.Context, q models.RecordQuery) (*query.Result, *models.Pagination, error) {
	atomic.AddInt64(&s.calls, 1)
	if s.fn != nil {
		return s.fn(q)
	}
	return &query.Result{Items: []models.StudentRecord{}, Total: 0},
		&models.Pagination{Page: q.Page, PageSize: q.PageSize}, nil
}

func (s *stubLister) callCount() int64 {
	return atomic.LoadInt64(&s.calls)
}

func queryForSearch(search string) models.RecordQuery {
	return models.RecordQuery{
		Search:    search,
		SortField: models.SortFieldName,
		SortOrder: models.SortOrderAsc,
		Page:      1,
		PageSize:  10,
	}
}

func waitForUpdate(t *testing.T, session *Session) Update {
	t.Helper()
	select {
	case u, ok := <-session.Updates():
		require.True(t, ok, "updates channel closed unexpectedly")
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for update")
		return Update{}
	}
}

func TestSessionIssueDeliversResult(t *testing.T) {
	lister := &stubLister{}
	session := NewSession(lister, 0, zap.NewNop())
	defer session.Close()

	session.Issue(context.Background(), queryForSearch("amy"))

	update := waitForUpdate(t, session)
	require.NoError(t, update.Err)
	assert.Equal(t, "amy", update.Query.Search)
	require.NotNil(t, update.Result)
	assert.EqualValues(t, 1, lister.callCount())
}

func TestSessionDiscardsStaleResults(t *testing.T) {
	release := make(chan struct{})
	lister := &stubLister{fn: func(q models.RecordQuery) (*query.Result, *models.Pagination, error) {
		if q.Search == "slow" {
			<-release
		}
		return &query.Result{Items: []models.StudentRecord{}, Total: len(q.Search)},
			&models.Pagination{Page: q.Page, PageSize: q.PageSize}, nil
	}}
	session := NewSession(lister, 0, zap.NewNop())

	session.Issue(context.Background(), queryForSearch("slow"))
	session.Issue(context.Background(), queryForSearch("now"))

	update := waitForUpdate(t, session)
	assert.Equal(t, "now", update.Query.Search)

	// Let the superseded query finish; its result must never surface.
	close(release)
	session.Close()
	for u := range session.Updates() {
		assert.Equal(t, "now", u.Query.Search)
	}
}

func TestSessionDebounceCoalescesBursts(t *testing.T) {
	lister := &stubLister{}
	session := NewSession(lister, 40*time.Millisecond, zap.NewNop())
	defer session.Close()

	ctx := context.Background()
	session.IssueDebounced(ctx, queryForSearch("a"))
	session.IssueDebounced(ctx, queryForSearch("am"))
	session.IssueDebounced(ctx, queryForSearch("amy"))

	update := waitForUpdate(t, session)
	assert.Equal(t, "amy", update.Query.Search)
	assert.EqualValues(t, 1, lister.callCount())
}

func TestSessionImmediateIssueCancelsPendingDebounce(t *testing.T) {
	lister := &stubLister{}
	session := NewSession(lister, 40*time.Millisecond, zap.NewNop())
	defer session.Close()

	ctx := context.Background()
	session.IssueDebounced(ctx, queryForSearch("pending"))
	session.Issue(ctx, queryForSearch("now"))

	update := waitForUpdate(t, session)
	assert.Equal(t, "now", update.Query.Search)

	time.Sleep(80 * time.Millisecond)
	assert.EqualValues(t, 1, lister.callCount())
}

func TestSessionZeroDebounceRunsImmediately(t *testing.T) {
	lister := &stubLister{}
	session := NewSession(lister, 0, zap.NewNop())
	defer session.Close()

	session.IssueDebounced(context.Background(), queryForSearch("amy"))

	update := waitForUpdate(t, session)
	assert.Equal(t, "amy", update.Query.Search)
}

func TestSessionCloseDrainsAndStops(t *testing.T) {
	lister := &stubLister{}
	session := NewSession(lister, 40*time.Millisecond, zap.NewNop())

	session.IssueDebounced(context.Background(), queryForSearch("never"))
	session.Close()

	_, ok := <-session.Updates()
	assert.False(t, ok)

	time.Sleep(80 * time.Millisecond)
	assert.EqualValues(t, 0, lister.callCount())

	// Issuing after close is a no-op.
	session.Issue(context.Background(), queryForSearch("late"))
	assert.EqualValues(t, 0, lister.callCount())
}

func TestSessionConcurrentIssuesDeliverLatest(t *testing.T) {
	lister := &stubLister{}
	session := NewSession(lister, 0, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session.Issue(context.Background(), queryForSearch("racer"))
		}()
	}
	wg.Wait()

	update := waitForUpdate(t, session)
	assert.Equal(t, "racer", update.Query.Search)
	session.Close()
}

package view

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/student-records-api/internal/models"
	"github.com/noah-isme/student-records-api/internal/query"
)

// Lister executes a list query and returns its page plus pagination metadata.
type Lister interface {
	List(ctx context.Context, q models.RecordQuery) (*query.Result, *models.Pagination, error)
}

// Update is one delivered query outcome. Either Result and Pagination are set
// or Err is.
type Update struct {
	Query      models.RecordQuery
	Result     *query.Result
	Pagination *models.Pagination
	Err        error
}

// Session coordinates interactive queries issued against the record list.
// Rapid successive queries are debounced, and once a newer query has been
// issued the results of older in-flight queries are discarded, so consumers
// reading Updates only ever observe the outcome of the latest query.
type Session struct {
	lister   Lister
	debounce time.Duration
	logger   *zap.Logger
	updates  chan Update

	mu         sync.Mutex
	generation uint64
	timer      *time.Timer
	closed     bool
	wg         sync.WaitGroup
}

// NewSession constructs a query session. A non-positive debounce makes
// IssueDebounced behave like Issue.
func NewSession(lister Lister, debounce time.Duration, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		lister:   lister,
		debounce: debounce,
		logger:   logger,
		updates:  make(chan Update, 1),
	}
}

// Updates exposes delivered query outcomes. The channel is closed by Close.
func (s *Session) Updates() <-chan Update {
	return s.updates
}

// Issue runs the query immediately, superseding any pending debounced query
// and any query still in flight.
func (s *Session) Issue(ctx context.Context, q models.RecordQuery) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.stopTimerLocked()
	s.generation++
	gen := s.generation
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		result, pagination, err := s.lister.List(ctx, q)
		if err != nil {
			s.logger.Debug("list query failed", zap.Error(err))
		}
		s.deliver(Update{Query: q, Result: result, Pagination: pagination, Err: err}, gen)
	}()
}

// IssueDebounced schedules the query after the debounce interval. Calling it
// again before the interval elapses replaces the pending query, so a burst of
// keystrokes produces a single execution.
func (s *Session) IssueDebounced(ctx context.Context, q models.RecordQuery) {
	if s.debounce <= 0 {
		s.Issue(ctx, q)
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.stopTimerLocked()
	s.timer = time.AfterFunc(s.debounce, func() {
		s.Issue(ctx, q)
	})
	s.mu.Unlock()
}

// Close cancels any pending debounced query, waits for in-flight queries to
// finish, and closes the updates channel.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopTimerLocked()
	s.mu.Unlock()

	s.wg.Wait()
	close(s.updates)
}

// deliver publishes an outcome unless a newer query has superseded it. An
// undelivered pending update is dropped in favour of the newer one, keeping
// the channel send non-blocking while holding the lock.
func (s *Session) deliver(u Update, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || gen != s.generation {
		return
	}
	select {
	case <-s.updates:
	default:
	}
	s.updates <- u
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

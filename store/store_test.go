package store_test

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/theleeeo/pgjobq/model"
	"github.com/theleeeo/pgjobq/store"
	"github.com/theleeeo/pgjobq/testutil"
)

// StoreSuite holds the behaviour every Store implementation must share.
type StoreSuite struct {
	suite.Suite

	// newStore returns an empty store; it runs before every test.
	newStore func() store.Store
	store    store.Store
}

func TestMemoryStore(t *testing.T) {
	suite.Run(t, &StoreSuite{
		newStore: func() store.Store { return store.NewMemoryStore() },
	})
}

func TestPostgresStore(t *testing.T) {
	db := testutil.NewTestDB(t)
	pg := store.NewPostgresStore(db.Pool)
	suite.Run(t, &StoreSuite{
		newStore: func() store.Store {
			db.Reset(t)
			return pg
		},
	})
}

func (s *StoreSuite) SetupTest() {
	s.store = s.newStore()
}

func (s *StoreSuite) insert(n model.NewJob) int64 {
	if n.Retries == 0 {
		n.Retries = 3
	}
	id, err := s.store.Insert(context.Background(), n)
	s.Require().NoError(err)
	return id
}

func (s *StoreSuite) claim(names ...string) *model.Job {
	j, err := s.store.Claim(context.Background(), names)
	s.Require().NoError(err)
	return j
}

func (s *StoreSuite) get(id int64) model.Job {
	j, err := s.store.Get(context.Background(), id)
	s.Require().NoError(err)
	return j
}

func (s *StoreSuite) TestInsertDefaults() {
	id := s.insert(model.NewJob{Name: "email"})

	j := s.get(id)
	s.Equal("email", j.Name)
	s.JSONEq(`{}`, string(j.Args))
	s.Equal(0, j.Attempts)
	s.Equal(3, j.Retries)
	s.Nil(j.StartedAt)
	s.Nil(j.CompletedAt)
	s.Nil(j.Error)
	s.Equal(model.StatePending, j.State())
	s.False(j.StartAfter.IsZero())
}

func (s *StoreSuite) TestGetMissing() {
	_, err := s.store.Get(context.Background(), 4242)
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *StoreSuite) TestClaimEmpty() {
	s.Nil(s.claim())
}

func (s *StoreSuite) TestClaimMarksRunning() {
	args := json.RawMessage(`{"to":"a@b.com"}`)
	id := s.insert(model.NewJob{Name: "email", Args: args})

	j := s.claim()
	s.Require().NotNil(j)
	s.Equal(id, j.ID)
	s.Equal(1, j.Attempts)
	s.NotNil(j.StartedAt)
	s.JSONEq(string(args), string(j.Args))
	s.Equal(model.StateRunning, s.get(id).State())

	s.Nil(s.claim(), "a running job must not be claimed twice")
}

func (s *StoreSuite) TestClaimOrder() {
	base := time.Now().Add(-time.Hour)
	late := s.insert(model.NewJob{Name: "a", StartAfter: base.Add(2 * time.Minute)})
	early := s.insert(model.NewJob{Name: "a", StartAfter: base})
	mid := s.insert(model.NewJob{Name: "a", StartAfter: base.Add(time.Minute)})

	s.Equal(early, s.claim().ID)
	s.Equal(mid, s.claim().ID)
	s.Equal(late, s.claim().ID)
}

func (s *StoreSuite) TestClaimSkipsDelayed() {
	s.insert(model.NewJob{Name: "later", StartAfter: time.Now().Add(time.Hour)})
	s.Nil(s.claim())

	c, err := s.store.Counts(context.Background(), "")
	s.Require().NoError(err)
	s.EqualValues(1, c.ByState[model.StatePending])
	s.EqualValues(1, c.Delayed)
}

func (s *StoreSuite) TestClaimNameFilter() {
	s.insert(model.NewJob{Name: "a"})
	b := s.insert(model.NewJob{Name: "b"})

	s.Nil(s.claim("c"))
	j := s.claim("b", "c")
	s.Require().NotNil(j)
	s.Equal(b, j.ID)
}

func (s *StoreSuite) TestComplete() {
	id := s.insert(model.NewJob{Name: "a"})
	j := s.claim()

	s.Require().NoError(s.store.Complete(context.Background(), id, j.Attempts))
	got := s.get(id)
	s.Equal(model.StateCompleted, got.State())
	s.NotNil(got.CompletedAt)

	err := s.store.Complete(context.Background(), id, j.Attempts)
	s.ErrorIs(err, store.ErrClaimLost)
}

func (s *StoreSuite) TestCompleteRequiresClaim() {
	id := s.insert(model.NewJob{Name: "a"})
	err := s.store.Complete(context.Background(), id, 0)
	s.ErrorIs(err, store.ErrClaimLost)
	s.Equal(model.StatePending, s.get(id).State())
}

func (s *StoreSuite) TestRetry() {
	id := s.insert(model.NewJob{Name: "a"})
	j := s.claim()

	s.Require().NoError(s.store.Retry(context.Background(), id, j.Attempts, "boom", 0))
	got := s.get(id)
	s.Equal(model.StatePending, got.State())
	s.Equal(1, got.Attempts)
	s.Equal("boom", got.LastError())
	s.Nil(got.StartedAt)

	again := s.claim()
	s.Require().NotNil(again)
	s.Equal(2, again.Attempts)
}

func (s *StoreSuite) TestRetryWithDelay() {
	id := s.insert(model.NewJob{Name: "a"})
	j := s.claim()

	s.Require().NoError(s.store.Retry(context.Background(), id, j.Attempts, "boom", time.Hour))
	s.Nil(s.claim())
	s.True(s.get(id).StartAfter.After(time.Now().Add(50 * time.Minute)))
}

func (s *StoreSuite) TestRetryOnLastAttemptIsRejected() {
	id := s.insert(model.NewJob{Name: "a", Retries: 1})
	j := s.claim()

	err := s.store.Retry(context.Background(), id, j.Attempts, "boom", 0)
	s.ErrorIs(err, store.ErrClaimLost)
}

func (s *StoreSuite) TestBury() {
	id := s.insert(model.NewJob{Name: "a", Retries: 5})
	j := s.claim()

	s.Require().NoError(s.store.Bury(context.Background(), id, j.Attempts, "bad input"))
	got := s.get(id)
	s.Equal(model.StateDead, got.State())
	s.Equal(5, got.Attempts)
	s.Equal("bad input", got.LastError())
	s.Nil(got.StartedAt)
	s.False(got.InFlight())
	s.Nil(s.claim())
}

func (s *StoreSuite) TestErrorIsTruncated() {
	id := s.insert(model.NewJob{Name: "a"})
	j := s.claim()

	long := strings.Repeat("x", 5000)
	s.Require().NoError(s.store.Bury(context.Background(), id, j.Attempts, long))
	s.Less(len(s.get(id).LastError()), 2100)
}

func (s *StoreSuite) TestReapStaleFencesOldClaim() {
	id := s.insert(model.NewJob{Name: "a"})
	stale := s.claim()
	time.Sleep(20 * time.Millisecond)

	n, err := s.store.ReapStale(context.Background(), time.Millisecond)
	s.Require().NoError(err)
	s.EqualValues(1, n)

	got := s.get(id)
	s.Equal(model.StatePending, got.State())
	s.Equal(1, got.Attempts)
	s.Contains(got.LastError(), "requeued")

	fresh := s.claim()
	s.Require().NotNil(fresh)
	s.Equal(2, fresh.Attempts)

	s.ErrorIs(s.store.Complete(context.Background(), id, stale.Attempts), store.ErrClaimLost)
	s.NoError(s.store.Complete(context.Background(), id, fresh.Attempts))
}

func (s *StoreSuite) TestReapStaleReleasesAbandonedFinalAttempt() {
	id := s.insert(model.NewJob{Name: "a", Retries: 1})
	stale := s.claim()
	s.Require().NotNil(stale)
	s.True(s.get(id).InFlight())
	time.Sleep(20 * time.Millisecond)

	n, err := s.store.ReapStale(context.Background(), time.Millisecond)
	s.Require().NoError(err)
	s.EqualValues(1, n)

	got := s.get(id)
	s.Equal(model.StateDead, got.State())
	s.False(got.InFlight())
	s.Equal(1, got.Attempts)
	s.Contains(got.LastError(), "abandoned")
	s.Nil(s.claim())

	s.ErrorIs(s.store.Complete(context.Background(), id, stale.Attempts), store.ErrClaimLost)
}

func (s *StoreSuite) TestReapStaleLeavesFreshClaims() {
	s.insert(model.NewJob{Name: "a"})
	s.claim()

	n, err := s.store.ReapStale(context.Background(), time.Hour)
	s.Require().NoError(err)
	s.Zero(n)

	_, err = s.store.ReapStale(context.Background(), 0)
	s.Error(err)
}

func (s *StoreSuite) TestCounts() {
	ctx := context.Background()
	s.insert(model.NewJob{Name: "a"})
	s.insert(model.NewJob{Name: "a", StartAfter: time.Now().Add(time.Hour)})
	running := s.insert(model.NewJob{Name: "b", StartAfter: time.Now().Add(-time.Hour)})

	j := s.claim("b")
	s.Require().Equal(running, j.ID)

	c, err := s.store.Counts(ctx, "")
	s.Require().NoError(err)
	s.EqualValues(3, c.Total)
	s.EqualValues(2, c.ByState[model.StatePending])
	s.EqualValues(1, c.ByState[model.StateRunning])
	s.EqualValues(0, c.ByState[model.StateDead])
	s.EqualValues(1, c.Delayed)

	c, err = s.store.Counts(ctx, "b")
	s.Require().NoError(err)
	s.EqualValues(1, c.Total)
	s.EqualValues(1, c.ByState[model.StateRunning])
}

func (s *StoreSuite) TestList() {
	ctx := context.Background()
	a := s.insert(model.NewJob{Name: "a", Args: json.RawMessage(`{"n":1}`)})
	b := s.insert(model.NewJob{Name: "b"})
	s.insert(model.NewJob{Name: "a"})

	j := s.claim("b")
	s.Require().NoError(s.store.Bury(ctx, b, j.Attempts, "upstream said NO"))

	all, err := s.store.List(ctx, store.Filter{})
	s.Require().NoError(err)
	s.Len(all, 3)
	s.Greater(all[0].ID, all[1].ID, "default sort is newest first")

	dead, err := s.store.List(ctx, store.Filter{State: model.StateDead})
	s.Require().NoError(err)
	s.Require().Len(dead, 1)
	s.Equal(b, dead[0].ID)

	byErr, err := s.store.List(ctx, store.Filter{ErrorContains: "said no"})
	s.Require().NoError(err)
	s.Len(byErr, 1)

	named, err := s.store.List(ctx, store.Filter{Name: "a", Sort: store.SortIDAsc, Limit: 1, IncludeArgs: true})
	s.Require().NoError(err)
	s.Require().Len(named, 1)
	s.Equal(a, named[0].ID)
	s.JSONEq(`{"n":1}`, string(named[0].Args))

	page2, err := s.store.List(ctx, store.Filter{Name: "a", Sort: store.SortIDAsc, Limit: 1, Offset: 1})
	s.Require().NoError(err)
	s.Require().Len(page2, 1)
	s.NotEqual(a, page2[0].ID)
	s.JSONEq(`{}`, string(page2[0].Args))

	_, err = s.store.List(ctx, store.Filter{Sort: "sideways"})
	s.Error(err)
}

func (s *StoreSuite) TestListErrorContainsIsLiteral() {
	ctx := context.Background()
	for _, msg := range []string{"key a_b missing", "key axb missing", "disk 100% full", "disk 1000 full"} {
		id := s.insert(model.NewJob{Name: "a"})
		j := s.claim()
		s.Require().NoError(s.store.Bury(ctx, id, j.Attempts, msg))
	}

	tests := []struct {
		needle string
		want   string
	}{
		{"A_B", "key a_b missing"},
		{"100%", "disk 100% full"},
		{"  0% F  ", "disk 100% full"},
	}
	for _, tt := range tests {
		got, err := s.store.List(ctx, store.Filter{ErrorContains: tt.needle})
		s.Require().NoError(err)
		s.Require().Len(got, 1, "needle %q", tt.needle)
		s.Equal(tt.want, got[0].LastError())
	}
}

func (s *StoreSuite) TestPrune() {
	ctx := context.Background()
	done := s.insert(model.NewJob{Name: "a"})
	j := s.claim()
	s.Require().NoError(s.store.Complete(ctx, done, j.Attempts))
	pending := s.insert(model.NewJob{Name: "a", StartAfter: time.Now().Add(time.Hour)})
	time.Sleep(20 * time.Millisecond)

	n, err := s.store.Prune(ctx, time.Hour, 0, 0)
	s.Require().NoError(err)
	s.Zero(n)

	n, err = s.store.Prune(ctx, time.Millisecond, 10, 1)
	s.Require().NoError(err)
	s.EqualValues(1, n)

	_, err = s.store.Get(ctx, done)
	s.ErrorIs(err, store.ErrNotFound)
	s.get(pending)
}

func (s *StoreSuite) TestConcurrentClaimsAreExclusive() {
	const jobs, claimers = 40, 8
	for range jobs {
		s.insert(model.NewJob{Name: "a"})
	}

	var (
		mu   sync.Mutex
		seen = map[int64]int{}
		wg   sync.WaitGroup
	)
	for range claimers {
		wg.Go(func() {
			for {
				j, err := s.store.Claim(context.Background(), nil)
				if err != nil {
					s.T().Errorf("claim: %v", err)
					return
				}
				if j == nil {
					return
				}
				mu.Lock()
				seen[j.ID]++
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	s.Len(seen, jobs)
	for id, n := range seen {
		s.Equal(1, n, "job %d claimed %d times", id, n)
	}
}

func (s *StoreSuite) TestPing() {
	s.NoError(s.store.Ping(context.Background()))
}

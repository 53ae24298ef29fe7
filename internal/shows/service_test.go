package shows

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tixbridge/internal/catalog"
	"tixbridge/internal/shared/apperr"
	"tixbridge/pkg/logger"
)

// fakeCatalog answers city-scoped and general searches separately
type fakeCatalog struct {
	mu         sync.Mutex
	city       []catalog.Entry
	general    []catalog.Entry
	cityErr    error
	generalErr error
	cityDelay  time.Duration
	entry      *catalog.Entry
	getErr     error
	queries    []catalog.Query
}

func (f *fakeCatalog) Search(ctx context.Context, q catalog.Query) ([]catalog.Entry, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()

	if q.City != "" {
		if f.cityDelay > 0 {
			time.Sleep(f.cityDelay)
		}
		return f.city, f.cityErr
	}
	return f.general, f.generalErr
}

func (f *fakeCatalog) Get(ctx context.Context, id string) (*catalog.Entry, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.entry, nil
}

func entry(id, title string, count int, lowest float64) catalog.Entry {
	return catalog.Entry{
		ID:    catalog.EntryID(id),
		Title: title,
		Stats: &catalog.Stats{ListingCount: catalog.IntPtr(count), LowestPrice: catalog.FloatPtr(lowest)},
	}
}

func newTestService(client catalog.Client, policy Policy) *service {
	svc := NewService(client, policy, ServiceConfig{EventType: "concert", PageSize: 25, AllPageSize: 100}, logger.Discard()).(*service)
	svc.now = func() time.Time { return time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC) }
	return svc
}

func ids(shows []Show) []string {
	out := make([]string, len(shows))
	for i, s := range shows {
		out[i] = s.ID
	}
	return out
}

func TestListShows_FetchAllDeduplicatesCityFirst(t *testing.T) {
	client := &fakeCatalog{
		city: []catalog.Entry{
			entry("1", "City One", 5, 10),
			entry("2", "City Two", 5, 20),
		},
		general: []catalog.Entry{
			entry("2", "General Two", 99, 99),
			entry("3", "General Three", 5, 30),
			entry("1", "General One", 99, 99),
		},
		// the city call finishes last; ordering must not depend on it
		cityDelay: 20 * time.Millisecond,
	}
	svc := newTestService(client, strict)

	list, err := svc.ListShows(context.Background(), ListQuery{Location: "Austin", FetchAll: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2", "3"}, ids(list.Shows))
	assert.Equal(t, 3, list.Count)
	assert.Equal(t, "City Two", list.Shows[1].Title)
	assert.Equal(t, 20.0, list.Shows[1].Price)
	assert.Equal(t, time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC), list.GeneratedAt)

	require.Len(t, client.queries, 2)
	for _, q := range client.queries {
		assert.Equal(t, 100, q.PerPage)
		assert.Equal(t, "concert", q.Type)
	}
}

func TestListShows_GeneralFailureKeepsCityEntries(t *testing.T) {
	client := &fakeCatalog{
		city:       []catalog.Entry{entry("1", "A", 1, 1), entry("2", "B", 1, 1), entry("3", "C", 1, 1)},
		generalErr: apperr.Upstream("catalog.Search", "request failed", errors.New("timeout")),
	}
	svc := newTestService(client, strict)

	list, err := svc.ListShows(context.Background(), ListQuery{Location: "Austin", FetchAll: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids(list.Shows))
}

func TestListShows_BothFailIsEmptyNotError(t *testing.T) {
	upstream := apperr.Upstream("catalog.Search", "request failed", errors.New("timeout"))
	client := &fakeCatalog{cityErr: upstream, generalErr: upstream}
	svc := newTestService(client, strict)

	list, err := svc.ListShows(context.Background(), ListQuery{Location: "Austin", FetchAll: true})
	require.NoError(t, err)
	assert.Empty(t, list.Shows)
	assert.NotNil(t, list.Shows)
	assert.Equal(t, 0, list.Count)
}

func TestListShows_ConfigurationErrorPropagates(t *testing.T) {
	client := &fakeCatalog{generalErr: apperr.Configuration("catalog.Search", "catalog client id is not configured")}
	svc := newTestService(client, strict)

	_, err := svc.ListShows(context.Background(), ListQuery{FetchAll: true})
	assert.Equal(t, apperr.KindConfiguration, apperr.KindOf(err))
}

func TestListShows_FetchAllWithoutLocationSkipsCityQuery(t *testing.T) {
	client := &fakeCatalog{general: []catalog.Entry{entry("5", "G", 1, 1)}}
	svc := newTestService(client, strict)

	list, err := svc.ListShows(context.Background(), ListQuery{FetchAll: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"5"}, ids(list.Shows))
	require.Len(t, client.queries, 1)
	assert.Empty(t, client.queries[0].City)
}

func TestListShows_SingleCityQuery(t *testing.T) {
	client := &fakeCatalog{city: []catalog.Entry{entry("1", "A", 1, 1), entry("2", "B", 1, 1)}}
	svc := newTestService(client, strict)

	list, err := svc.ListShows(context.Background(), ListQuery{Location: " Austin "})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Count)
	require.Len(t, client.queries, 1)
	assert.Equal(t, "Austin", client.queries[0].City)
	assert.Equal(t, 25, client.queries[0].PerPage)
	assert.Equal(t, time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC), client.queries[0].DateFrom)
}

func TestListShows_ValidityGateRejectsBeforeDedup(t *testing.T) {
	// the invalid city copy of "2" must not shadow the valid general copy
	client := &fakeCatalog{
		city: []catalog.Entry{
			entry("1", "City One", 5, 10),
			{ID: "2", Title: "No Data"},
		},
		general: []catalog.Entry{
			entry("2", "General Two", 4, 15),
			{ID: "3", Title: "Also No Data"},
		},
	}
	gated := Policy{Availability: AvailabilityStrict, ValidityGate: true}
	svc := newTestService(client, gated)

	list, err := svc.ListShows(context.Background(), ListQuery{Location: "Austin", FetchAll: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids(list.Shows))
	assert.Equal(t, "General Two", list.Shows[1].Title)
}

func TestListShows_PermissivePolicyAppliesToAll(t *testing.T) {
	client := &fakeCatalog{general: []catalog.Entry{{ID: "9", Title: "Unpriced"}}}
	permissive := Policy{Availability: AvailabilityPermissive, PermissiveDefaultSeats: 100}
	svc := newTestService(client, permissive)

	list, err := svc.ListShows(context.Background(), ListQuery{FetchAll: true})
	require.NoError(t, err)
	require.Len(t, list.Shows, 1)
	assert.True(t, list.Shows[0].IsAvailable)
	assert.Equal(t, 100, list.Shows[0].AvailableSeats)
}

func TestListShows_DefaultLocation(t *testing.T) {
	client := &fakeCatalog{}
	svc := NewService(client, strict, ServiceConfig{DefaultLocation: "Denver"}, logger.Discard())

	_, err := svc.ListShows(context.Background(), ListQuery{})
	require.NoError(t, err)
	require.Len(t, client.queries, 1)
	assert.Equal(t, "Denver", client.queries[0].City)
}

func TestGetShow(t *testing.T) {
	e := entry("42", "Jazz Night", 10, 25)
	svc := newTestService(&fakeCatalog{entry: &e}, strict)

	show, err := svc.GetShow(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "42", show.ID)
	assert.Equal(t, 25.0, show.Price)

	svc = newTestService(&fakeCatalog{getErr: apperr.NotFound("catalog.Get", "event 42 not found")}, strict)
	_, err = svc.GetShow(context.Background(), "42")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tixbridge/internal/shared/apperr"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewHTTPClient(Config{
		BaseURL:       srv.URL,
		ClientID:      "client-123",
		ClientSecret:  "secret-xyz",
		ListTimeout:   time.Second,
		LookupTimeout: 200 * time.Millisecond,
	}, srv.Client())
	return client, srv
}

func TestSearch_SendsQueryAndDecodesEntries(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "client-123", q.Get("client_id"))
		assert.Equal(t, "secret-xyz", q.Get("client_secret"))
		assert.Equal(t, "Austin", q.Get("venue.city"))
		assert.Equal(t, "concert", q.Get("type"))
		assert.Equal(t, "25", q.Get("per_page"))
		assert.Equal(t, "2026-10-14T00:00:00", q.Get("datetime_utc.gte"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"events":[
			{"id":42,"title":"Jazz Night","venue":{"name":"Blue Room","city":"Austin","state":"TX"},
			 "performers":[{"name":"Trio","primary":true}],
			 "stats":{"listing_count":10,"lowest_price":25,"average_price":null}},
			{"id":"43","short_title":"Folk"}
		],"meta":{"total":2}}`))
	})

	entries, err := client.Search(context.Background(), Query{
		City:     "Austin",
		Type:     "concert",
		PerPage:  25,
		Page:     1,
		DateFrom: time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, EntryID("42"), entries[0].ID)
	assert.Equal(t, 10, entries[0].Stats.Count())
	assert.Equal(t, 25.0, entries[0].Stats.Lowest())
	assert.Nil(t, entries[0].Stats.AveragePrice)
	assert.Equal(t, EntryID("43"), entries[1].ID)
	assert.Nil(t, entries[1].Stats)
	assert.Equal(t, 0, entries[1].Stats.Count())
}

func TestSearch_ServerErrorIsUpstreamUnavailable(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"message":"backend down"}`))
	})

	_, err := client.Search(context.Background(), Query{PerPage: 10, Page: 1})
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstreamUnavailable, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "backend down")
}

func TestSearch_TimeoutIsUpstreamUnavailableAndRedacted(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(3 * time.Second):
		}
	})

	_, err := client.Search(context.Background(), Query{PerPage: 10, Page: 1})
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstreamUnavailable, apperr.KindOf(err))
	assert.NotContains(t, err.Error(), "secret-xyz")
	assert.NotContains(t, err.Error(), "client-123")
}

func TestSearch_MissingClientIDFailsBeforeRequest(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	client := NewHTTPClient(Config{BaseURL: srv.URL}, srv.Client())

	_, err := client.Search(context.Background(), Query{PerPage: 10})
	assert.Equal(t, apperr.KindConfiguration, apperr.KindOf(err))

	_, err = client.Get(context.Background(), "42")
	assert.Equal(t, apperr.KindConfiguration, apperr.KindOf(err))
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestGet_NotFoundIsDistinct(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events/999", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":"error","message":"Not found"}`))
	})

	_, err := client.Get(context.Background(), "999")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestGet_UsesShortLookupTimeout(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	start := time.Now()
	_, err := client.Get(context.Background(), "42")
	assert.Equal(t, apperr.KindUpstreamUnavailable, apperr.KindOf(err))
	assert.Less(t, time.Since(start), time.Second)
}

func TestGet_DecodesEntry(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":    42,
			"title": "Jazz Night",
			"stats": map[string]any{"listing_count": 10, "lowest_price": 25},
		})
	})

	entry, err := client.Get(context.Background(), " 42 ")
	require.NoError(t, err)
	assert.Equal(t, "42", entry.ID.String())
	assert.Equal(t, "Jazz Night", entry.Title)
}

func TestGet_EmptyIDIsInvalidRequest(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := client.Get(context.Background(), "   ")
	assert.Equal(t, apperr.KindInvalidRequest, apperr.KindOf(err))
}

func TestEntryID_Unmarshal(t *testing.T) {
	var e struct {
		ID EntryID `json:"id"`
	}
	require.NoError(t, json.NewDecoder(strings.NewReader(`{"id": 5781234}`)).Decode(&e))
	assert.Equal(t, EntryID("5781234"), e.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"abc-1"}`), &e))
	assert.Equal(t, EntryID("abc-1"), e.ID)

	assert.Error(t, json.Unmarshal([]byte(`{"id":true}`), &e))
}

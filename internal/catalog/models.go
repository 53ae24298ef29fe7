package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// EntryID is the upstream identity of a listing. The catalog API sends it as a
// JSON number, some mirrors send it as a string; both decode to the same value.
type EntryID string

func (id *EntryID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = EntryID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("entry id: %w", err)
	}
	*id = EntryID(n.String())
	return nil
}

func (id EntryID) String() string {
	return string(id)
}

// Entry is one raw catalog listing, read-only
type Entry struct {
	ID            EntryID     `json:"id"`
	Title         string      `json:"title"`
	ShortTitle    string      `json:"short_title"`
	DatetimeLocal string      `json:"datetime_local"`
	DatetimeUTC   string      `json:"datetime_utc"`
	URL           string      `json:"url"`
	Venue         Venue       `json:"venue"`
	Performers    []Performer `json:"performers"`
	Stats         *Stats      `json:"stats"`
}

type Venue struct {
	Name  string `json:"name"`
	City  string `json:"city"`
	State string `json:"state"`
}

type Performer struct {
	Name    string `json:"name"`
	Image   string `json:"image"`
	Primary bool   `json:"primary"`
}

// Stats fields are independently optional; the upstream sends null for
// listings without inventory data.
type Stats struct {
	ListingCount *int     `json:"listing_count"`
	LowestPrice  *float64 `json:"lowest_price"`
	AveragePrice *float64 `json:"average_price"`
	HighestPrice *float64 `json:"highest_price"`
}

// Count returns the listing count, zero when absent
func (s *Stats) Count() int {
	if s == nil || s.ListingCount == nil {
		return 0
	}
	return *s.ListingCount
}

func (s *Stats) Lowest() float64 {
	if s == nil || s.LowestPrice == nil {
		return 0
	}
	return *s.LowestPrice
}

func (s *Stats) Average() float64 {
	if s == nil || s.AveragePrice == nil {
		return 0
	}
	return *s.AveragePrice
}

// Query describes one GET /events call
type Query struct {
	City     string
	Type     string
	PerPage  int
	Page     int
	DateFrom time.Time
}

// Params renders the query without credentials, for logging
func (q Query) Params() map[string]string {
	params := map[string]string{
		"per_page": strconv.Itoa(q.PerPage),
		"page":     strconv.Itoa(q.Page),
	}
	if q.City != "" {
		params["venue.city"] = q.City
	}
	if q.Type != "" {
		params["type"] = q.Type
	}
	if !q.DateFrom.IsZero() {
		params["datetime_utc.gte"] = q.DateFrom.UTC().Format(upstreamTimeLayout)
	}
	return params
}

type searchResponse struct {
	Events []Entry `json:"events"`
	Meta   struct {
		Total   int `json:"total"`
		Page    int `json:"page"`
		PerPage int `json:"per_page"`
	} `json:"meta"`
}

type upstreamError struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

const upstreamTimeLayout = "2006-01-02T15:04:05"

// IntPtr and FloatPtr build optional stats values
func IntPtr(v int) *int { return &v }

func FloatPtr(v float64) *float64 { return &v }

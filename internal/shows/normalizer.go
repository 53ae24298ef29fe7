package shows

import (
	"strings"
	"time"

	"tixbridge/internal/catalog"
)

const (
	displayDateLayout = "Mon, Jan 2, 2006"
	displayTimeLayout = "3:04 PM"
)

var upstreamLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// Normalize converts a catalog entry into a Show. It never fails: missing
// fields degrade to the documented fallbacks.
func Normalize(entry catalog.Entry, policy Policy) Show {
	pricing := DerivePricing(entry.Stats, policy)
	performer := pickPerformer(entry.Performers)
	date, clock := formatSchedule(entry)

	id := strings.TrimSpace(entry.ID.String())
	if id == "" {
		id = "unknown"
	}

	return Show{
		ID:             id,
		Title:          firstNonEmpty(FallbackTitle, entry.Title, entry.ShortTitle),
		Artist:         firstNonEmpty(FallbackArtist, performer.Name),
		Date:           date,
		Time:           clock,
		Venue:          firstNonEmpty(FallbackVenue, entry.Venue.Name),
		Location:       formatLocation(entry.Venue),
		AvailableSeats: pricing.AvailableSeats,
		Price:          pricing.Price,
		Sections: []Section{{
			ID:             GeneralAdmissionID,
			Name:           GeneralAdmissionName,
			Price:          pricing.Price,
			AvailableSeats: pricing.AvailableSeats,
		}},
		ImageURL:    performer.Image,
		SourceURL:   entry.URL,
		IsAvailable: pricing.IsAvailable,
	}
}

// pickPerformer returns the first primary performer, else the first one,
// else an empty placeholder.
func pickPerformer(performers []catalog.Performer) catalog.Performer {
	for _, p := range performers {
		if p.Primary {
			return p
		}
	}
	if len(performers) > 0 {
		return performers[0]
	}
	return catalog.Performer{}
}

func formatSchedule(entry catalog.Entry) (string, string) {
	for _, raw := range []string{entry.DatetimeLocal, entry.DatetimeUTC} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		for _, layout := range upstreamLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.Format(displayDateLayout), t.Format(displayTimeLayout)
			}
		}
	}
	return FallbackDate, FallbackDate
}

func formatLocation(v catalog.Venue) string {
	city := strings.TrimSpace(v.City)
	state := strings.TrimSpace(v.State)
	switch {
	case city != "" && state != "":
		return city + ", " + state
	case city != "":
		return city
	default:
		return state
	}
}

func firstNonEmpty(fallback string, values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return fallback
}

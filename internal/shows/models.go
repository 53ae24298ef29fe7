package shows

import "time"

const (
	FallbackTitle  = "Untitled Event"
	FallbackArtist = "Various Artists"
	FallbackVenue  = "Unknown Venue"
	FallbackDate   = "TBA"

	GeneralAdmissionID   = "general"
	GeneralAdmissionName = "General Admission"
)

// Show is the public view of one catalog listing
type Show struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Artist         string    `json:"artist"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	Venue          string    `json:"venue"`
	Location       string    `json:"location"`
	AvailableSeats int       `json:"available_seats"`
	Price          float64   `json:"price"`
	Sections       []Section `json:"sections"`
	ImageURL       string    `json:"image_url,omitempty"`
	SourceURL      string    `json:"source_url,omitempty"`
	IsAvailable    bool      `json:"is_available"`
}

// Section mirrors the show's single general admission tier
type Section struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	AvailableSeats int     `json:"available_seats"`
}

// ListQuery selects which upstream calls an aggregation issues
type ListQuery struct {
	Location string `form:"location"`
	FetchAll bool   `form:"fetchAll"`
}

// ShowList is the aggregation result
type ShowList struct {
	Shows       []Show    `json:"shows"`
	Count       int       `json:"count"`
	GeneratedAt time.Time `json:"generated_at"`
}

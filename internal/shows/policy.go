package shows

import (
	"math"

	"tixbridge/internal/catalog"
	"tixbridge/internal/shared/config"
)

type AvailabilityPolicy string

const (
	// AvailabilityStrict: a show is available only with listings and a price
	AvailabilityStrict AvailabilityPolicy = "strict"
	// AvailabilityPermissive: every show is available
	AvailabilityPermissive AvailabilityPolicy = "permissive"
)

// Policy is chosen once per deployment and shared by every component
// that turns catalog entries into shows.
type Policy struct {
	Availability           AvailabilityPolicy
	ValidityGate           bool
	PermissiveDefaultSeats int
}

// Pricing is the derived price/availability of one entry
type Pricing struct {
	Price          float64
	AvailableSeats int
	IsAvailable    bool
}

func PolicyFromConfig(cfg config.PolicyConfig) Policy {
	p := Policy{
		Availability:           AvailabilityPolicy(cfg.Availability),
		ValidityGate:           cfg.ValidityGate,
		PermissiveDefaultSeats: cfg.PermissiveDefaultSeats,
	}
	if p.Availability != AvailabilityPermissive {
		p.Availability = AvailabilityStrict
	}
	if p.PermissiveDefaultSeats < 0 {
		p.PermissiveDefaultSeats = 0
	}
	return p
}

// DerivePricing is the only place price and availability are computed.
func DerivePricing(stats *catalog.Stats, p Policy) Pricing {
	price := 0.0
	switch {
	case stats.Lowest() > 0:
		price = stats.Lowest()
	case stats.Average() > 0:
		price = stats.Average()
	}
	price = math.Round(price)

	count := stats.Count()
	if count < 0 {
		count = 0
	}

	if p.Availability == AvailabilityPermissive {
		seats := count
		if seats == 0 {
			seats = p.PermissiveDefaultSeats
		}
		return Pricing{Price: price, AvailableSeats: seats, IsAvailable: true}
	}

	return Pricing{
		Price:          price,
		AvailableSeats: count,
		IsAvailable:    count > 0 && price > 0,
	}
}

// Admit reports whether an entry passes the validity gate. With the gate off
// every entry is admitted.
func (p Policy) Admit(entry catalog.Entry) bool {
	if !p.ValidityGate {
		return true
	}
	pricing := DerivePricing(entry.Stats, Policy{Availability: AvailabilityStrict})
	return pricing.Price > 0 || pricing.AvailableSeats > 0
}

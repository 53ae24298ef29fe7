package reservations

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// IDGenerator synthesizes reservation and seat identities
type IDGenerator interface {
	ReservationID() (string, error)
	SeatID() (string, error)
}

const (
	idAlphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	idRandomLength = 12
)

type randomIDGenerator struct {
	now func() time.Time
}

// NewIDGenerator returns ids shaped PREFIX-<base36 unix millis>-<12 random symbols>
func NewIDGenerator() IDGenerator {
	return &randomIDGenerator{now: time.Now}
}

func (g *randomIDGenerator) ReservationID() (string, error) {
	return g.generate("RES")
}

func (g *randomIDGenerator) SeatID() (string, error) {
	return g.generate("SEAT")
}

func (g *randomIDGenerator) generate(prefix string) (string, error) {
	timestamp := strings.ToUpper(strconv.FormatInt(g.now().UnixMilli(), 36))

	randomPart := make([]byte, idRandomLength)
	alphabetSize := big.NewInt(int64(len(idAlphabet)))
	for i := range randomPart {
		num, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("failed to generate %s id: %w", strings.ToLower(prefix), err)
		}
		randomPart[i] = idAlphabet[num.Int64()]
	}

	return prefix + "-" + timestamp + "-" + string(randomPart), nil
}

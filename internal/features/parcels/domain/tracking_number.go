package domain

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"time"
)

// crockford is Crockford's base32 alphabet: no I, L, O or U.
const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

const trackingPrefix = "PX"

// TrackingNumberGenerator produces numbers of the form PX-YYYYMMDD-XXXXXXXX where
// the suffix carries 40 random bits.
type TrackingNumberGenerator struct {
	now    func() time.Time
	random io.Reader
}

// NewTrackingNumberGenerator creates a generator backed by crypto/rand.
func NewTrackingNumberGenerator() *TrackingNumberGenerator {
	return &TrackingNumberGenerator{now: time.Now, random: rand.Reader}
}

// Next returns a fresh tracking number.
func (g *TrackingNumberGenerator) Next() (string, error) {
	var buf [5]byte
	if _, err := io.ReadFull(g.random, buf[:]); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	bits := uint64(buf[0])<<32 | uint64(buf[1])<<24 | uint64(buf[2])<<16 | uint64(buf[3])<<8 | uint64(buf[4])
	var suffix [8]byte
	for i := len(suffix) - 1; i >= 0; i-- {
		suffix[i] = crockford[bits&31]
		bits >>= 5
	}

	return fmt.Sprintf("%s-%s-%s", trackingPrefix, g.now().UTC().Format("20060102"), suffix[:]), nil
}

// NormalizeTrackingNumber canonicalizes user input for lookups.
func NormalizeTrackingNumber(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

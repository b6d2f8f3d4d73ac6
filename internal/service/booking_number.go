package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

// ErrBookingNumberExhausted is returned when no free booking number was
// found within the attempt limit.
var ErrBookingNumberExhausted = errors.New("could not allocate a unique booking number")

const (
	bookingNumberMin      = 10000000
	bookingNumberSpan     = 90000000
	bookingNumberAttempts = 64
)

// NumberGenerator draws random 8-digit booking numbers.
type NumberGenerator struct {
	rand     io.Reader
	attempts int
}

// NewNumberGenerator returns a generator backed by crypto/rand.
func NewNumberGenerator() *NumberGenerator {
	return &NumberGenerator{rand: rand.Reader, attempts: bookingNumberAttempts}
}

// Next returns a number for which exists reports false.  exists runs
// inside the create transaction; the unique index on the column catches
// anything that slips past it.
func (g *NumberGenerator) Next(ctx context.Context, exists func(context.Context, string) (bool, error)) (string, error) {
	for i := 0; i < g.attempts; i++ {
		n, err := rand.Int(g.rand, big.NewInt(bookingNumberSpan))
		if err != nil {
			return "", fmt.Errorf("booking number: %w", err)
		}
		candidate := fmt.Sprintf("%08d", bookingNumberMin+n.Int64())
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("booking number lookup: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrBookingNumberExhausted
}

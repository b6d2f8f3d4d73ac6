package service

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var eightDigits = regexp.MustCompile(`^[1-9][0-9]{7}$`)

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func TestNumberGeneratorFormat(t *testing.T) {
	g := NewNumberGenerator()
	for i := 0; i < 50; i++ {
		n, err := g.Next(context.Background(), func(context.Context, string) (bool, error) { return false, nil })
		require.NoError(t, err)
		assert.Regexp(t, eightDigits, n)
	}
}

func TestNumberGeneratorRetriesCollisions(t *testing.T) {
	g := NewNumberGenerator()
	calls := 0
	n, err := g.Next(context.Background(), func(context.Context, string) (bool, error) {
		calls++
		return calls < 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, n, 8)
}

func TestNumberGeneratorGivesUp(t *testing.T) {
	g := &NumberGenerator{rand: zeroReader{}, attempts: 5}
	calls := 0
	_, err := g.Next(context.Background(), func(_ context.Context, n string) (bool, error) {
		calls++
		assert.Equal(t, "10000000", n)
		return true, nil
	})
	assert.ErrorIs(t, err, ErrBookingNumberExhausted)
	assert.Equal(t, 5, calls)
}

func TestNumberGeneratorPropagatesErrors(t *testing.T) {
	boom := errors.New("db down")
	g := NewNumberGenerator()
	_, err := g.Next(context.Background(), func(context.Context, string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)

	g = &NumberGenerator{rand: bytes.NewReader(nil), attempts: 3}
	_, err = g.Next(context.Background(), func(context.Context, string) (bool, error) { return false, nil })
	assert.Error(t, err)
}

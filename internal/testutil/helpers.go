package testutil

import (
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// DefaultSeed is for tests that need some fixed stream, not a particular one.
const DefaultSeed = 12345

// NewTestRNG returns a stream that repeats across runs.
func NewTestRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func NopLogger() zerolog.Logger { return zerolog.Nop() }

// AssertPanic fails t unless f panics.
func AssertPanic(t *testing.T, f func(), msgAndArgs ...interface{}) bool {
	t.Helper()
	return assert.Panics(t, f, msgAndArgs...)
}

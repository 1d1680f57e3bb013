package utilities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewID_UniqueAndPositive(t *testing.T) {
	seen := make(map[int64]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		assert.Positive(t, id)
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
}

func TestNewKSUID(t *testing.T) {
	a := NewKSUID()
	b := NewKSUID()
	assert.Len(t, a, 27)
	assert.NotEqual(t, a, b)
}

package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinDistance(t *testing.T) {
	assert.Equal(t, 0, LevenshteinDistance("kitten", "kitten"))
	assert.Equal(t, 3, LevenshteinDistance("kitten", "sitting"))
	assert.Equal(t, 5, LevenshteinDistance("", "abcde"))
	assert.Equal(t, 5, LevenshteinDistance("abcde", ""))
}

func TestFuzzySimilarity(t *testing.T) {
	assert.Equal(t, float32(1.0), FuzzySimilarity("same", "same"))
	assert.Equal(t, float32(1.0), FuzzySimilarity("", ""))

	sim := FuzzySimilarity("kitten", "sitting")
	assert.InDelta(t, float32(1.0-3.0/7.0), sim, 0.0001)
	assert.True(t, sim < 0.6)
}

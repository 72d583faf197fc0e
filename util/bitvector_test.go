package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitVectorSetClearCount(t *testing.T) {
	bv := NewBitVector(17)
	assert.Equal(t, 0, bv.Count())

	assert.True(t, bv.Set(0))
	assert.True(t, bv.Set(8))
	assert.True(t, bv.Set(16))
	assert.False(t, bv.Set(8))
	assert.Equal(t, 3, bv.Count())

	assert.True(t, bv.Get(0))
	assert.True(t, bv.Get(8))
	assert.False(t, bv.Get(1))

	assert.True(t, bv.Clear(8))
	assert.False(t, bv.Clear(8))
	assert.Equal(t, 2, bv.Count())
}

func TestBitVectorLSBFirstLayout(t *testing.T) {
	bv := NewBitVector(16)
	bv.Set(0)
	bv.Set(1)
	assert.Equal(t, byte(0b00000011), bv.Bytes()[0])
}

func TestLoadBitVectorRecountsLazily(t *testing.T) {
	bv := LoadBitVector([]byte{0b00000101}, 8)
	assert.Equal(t, 2, bv.Count())
	assert.True(t, bv.Get(0))
	assert.True(t, bv.Get(2))
	assert.False(t, bv.Get(1))
}

func TestBitVectorClone(t *testing.T) {
	bv := NewBitVector(8)
	bv.Set(3)
	cp := bv.Clone()
	cp.Set(4)
	assert.False(t, bv.Get(4))
	assert.True(t, cp.Get(4))
	assert.True(t, cp.Get(3))
}

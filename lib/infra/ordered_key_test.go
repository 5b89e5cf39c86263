package infra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderedKeyCompare(t *testing.T) {
	assert.Equal(t, int64(0), OrderedKeyCompare(3, 3))
	assert.Equal(t, int64(-1), OrderedKeyCompare(2, 3))
	assert.Equal(t, int64(1), OrderedKeyCompare(4, 3))
	assert.Equal(t, int64(-1), OrderedKeyCompare("abc", "abd"))
	assert.Equal(t, int64(1), OrderedKeyCompare(1.1, 1.0))
}

func TestReverseComparator(t *testing.T) {
	desc := ReverseComparator[int](OrderedKeyCompare[int])
	assert.Equal(t, int64(0), desc(3, 3))
	assert.Equal(t, int64(1), desc(2, 3))
	assert.Equal(t, int64(-1), desc(4, 3))
}

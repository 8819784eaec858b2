package direngine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectAll(it *ExtIterator) []string {
	var out []string
	for {
		n, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, n)
	}
	return out
}

func TestExtIteratorReverse(t *testing.T) {
	names := []string{"b", "d", "a", "c"}
	isDir := []bool{false, false, false, false}
	it := NewExtIterator(names, isDir, "", "r")
	assert.Equal(t, []string{"d", "c", "b", "a"}, collectAll(it))
}

func TestExtIteratorForwardDefault(t *testing.T) {
	names := []string{"b", "d", "a", "c"}
	isDir := []bool{false, false, false, false}
	it := NewExtIterator(names, isDir, "", "")
	assert.Equal(t, []string{"a", "b", "c", "d"}, collectAll(it))
}

func TestExtIteratorExcludeDirsAndFiles(t *testing.T) {
	names := []string{"afile", "bdir"}
	isDir := []bool{false, true}
	it := NewExtIterator(names, isDir, "", "d")
	assert.Equal(t, []string{"afile"}, collectAll(it))

	it2 := NewExtIterator(append([]string{}, names...), append([]bool{}, isDir...), "", "f")
	assert.Equal(t, []string{"bdir"}, collectAll(it2))
}

func TestExtIteratorCaseTransforms(t *testing.T) {
	names := []string{"hello world.txt"}
	isDir := []bool{false}

	it := NewExtIterator(append([]string{}, names...), append([]bool{}, isDir...), "", "u")
	assert.Equal(t, []string{"HELLO WORLD.TXT"}, collectAll(it))

	it2 := NewExtIterator(append([]string{}, names...), append([]bool{}, isDir...), "", "l")
	assert.Equal(t, []string{"hello world.txt"}, collectAll(it2))

	it3 := NewExtIterator(append([]string{}, names...), append([]bool{}, isDir...), "", "c")
	assert.Equal(t, []string{"Hello World.txt"}, collectAll(it3))
}

func TestExtIteratorTerminatesAtVisitedEqualsTotal(t *testing.T) {
	names := []string{"a", "b", "c"}
	isDir := []bool{false, false, false}
	it := NewExtIterator(names, isDir, "", "s7")
	out := collectAll(it)
	require.Len(t, out, 3)
	assert.True(t, it.Done())
	_, ok := it.Next()
	assert.False(t, ok)
}

func TestExtIteratorShuffleDeterministicForSameSeed(t *testing.T) {
	names1 := []string{"a", "b", "c", "d", "e"}
	isDir1 := []bool{false, false, false, false, false}
	it1 := NewExtIterator(append([]string{}, names1...), append([]bool{}, isDir1...), "", "s42")
	out1 := collectAll(it1)

	it2 := NewExtIterator(append([]string{}, names1...), append([]bool{}, isDir1...), "", "s42")
	out2 := collectAll(it2)

	assert.Equal(t, out1, out2)
	assert.ElementsMatch(t, names1, out1)
}

func TestExtIteratorWildcardFilter(t *testing.T) {
	names := []string{"one.txt", "two.bin", "three.txt"}
	isDir := []bool{false, false, false}
	it := NewExtIterator(names, isDir, "*.txt", "")
	assert.Equal(t, []string{"one.txt", "three.txt"}, collectAll(it))
}

func TestExtIteratorTellSeekRoundTrip(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e"}
	isDir := []bool{false, false, false, false, false}
	it := NewExtIterator(names, isDir, "", "")

	_, _ = it.Next()
	_, _ = it.Next()
	pos := it.Tell()

	third, ok := it.Next()
	require.True(t, ok)

	it.Seek(pos)
	again, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, third, again)
}

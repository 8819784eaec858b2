package direngine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraverseProducesRootRelativePaths(t *testing.T) {
	l := &fakeLister{entries: map[string][]StatInfo{
		"/root":        {{Name: "sub", IsDir: true}, {Name: "top.txt"}},
		"/root/sub":    {{Name: "nested.txt"}},
	}}

	list, err := Traverse(l, "/root", "", 0, DirsortNone, 0, "")
	require.NoError(t, err)
	names := namesOf(list.Entries())
	assert.ElementsMatch(t, []string{"sub", "top.txt", "sub/nested.txt"}, names)
}

func TestTraverseRespectsMaxResults(t *testing.T) {
	l := &fakeLister{entries: map[string][]StatInfo{
		"/root":     {{Name: "a"}, {Name: "sub", IsDir: true}},
		"/root/sub": {{Name: "b"}, {Name: "c"}},
	}}
	list, err := Traverse(l, "/root", "", 0, DirsortNone, 2, "")
	require.NoError(t, err)
	assert.Equal(t, 2, list.Len())
}

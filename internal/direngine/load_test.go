package direngine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	entries map[string][]StatInfo
}

func (f *fakeLister) ListDir(hostPath string) ([]StatInfo, error) {
	return f.entries[hostPath], nil
}

func TestLoadSortSizeDescendingFoldersFirst(t *testing.T) {
	l := &fakeLister{entries: map[string][]StatInfo{
		"/d": {
			{Name: "b.txt", Size: 10, ModTime: time.Unix(100, 0), ChangeTime: time.Unix(100, 0)},
			{Name: "A", IsDir: true},
			{Name: "c.txt", Size: 5, ModTime: time.Unix(200, 0), ChangeTime: time.Unix(200, 0)},
		},
	}}

	list, err := Load(l, "/d", 0, DirsortSize|DirsortDescending, 0, "")
	require.NoError(t, err)
	require.Equal(t, 3, list.Len())
	names := namesOf(list.Entries())
	assert.Equal(t, []string{"A", "b.txt", "c.txt"}, names)
	assert.True(t, list.Entries()[0].IsDir())
}

func TestLoadMaxResults(t *testing.T) {
	l := &fakeLister{entries: map[string][]StatInfo{
		"/d": {
			{Name: "a"}, {Name: "b"}, {Name: "c"},
		},
	}}
	list, err := Load(l, "/d", 0, DirsortNone, 2, "")
	require.NoError(t, err)
	assert.Equal(t, 2, list.Len())
}

func TestLoadSkipsHiddenAndSpecialByDefault(t *testing.T) {
	l := &fakeLister{entries: map[string][]StatInfo{
		"/d": {
			{Name: ".hidden", IsHidden: true},
			{Name: "dev0", IsSpecial: true},
			{Name: "visible"},
		},
	}}
	list, err := Load(l, "/d", 0, DirsortNone, 0, "")
	require.NoError(t, err)
	require.Equal(t, 1, list.Len())
	assert.Equal(t, "visible", list.Entries()[0].Name)
}

func TestLoadNoSkipHiddenFlag(t *testing.T) {
	l := &fakeLister{entries: map[string][]StatInfo{
		"/d": {{Name: ".hidden", IsHidden: true}},
	}}
	list, err := Load(l, "/d", DiroptNoSkipHidden, DirsortNone, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 1, list.Len())
}

func TestLoadPatternAppliesToFilesNotDirsByDefault(t *testing.T) {
	l := &fakeLister{entries: map[string][]StatInfo{
		"/d": {
			{Name: "readme.txt"},
			{Name: "main.go"},
			{Name: "subdir", IsDir: true},
		},
	}}
	list, err := Load(l, "/d", 0, DirsortNone, 0, "*.go")
	require.NoError(t, err)
	names := namesOf(list.Entries())
	assert.ElementsMatch(t, []string{"main.go", "subdir"}, names)
}

func TestCursorTellSeekRoundTrip(t *testing.T) {
	list := NewEntryList([]Entry{{Name: "a"}, {Name: "b"}, {Name: "c"}})
	_, _ = list.Next()
	pos := list.Tell()
	e2, ok := list.Next()
	require.True(t, ok)
	assert.Equal(t, "b", e2.Name)

	list.Seek(pos)
	e2Again, ok := list.Next()
	require.True(t, ok)
	assert.Equal(t, e2, e2Again)
}

func TestBatchNeverExceedsNAndReportsEOF(t *testing.T) {
	list := NewEntryList([]Entry{{Name: "a"}, {Name: "b"}, {Name: "c"}})
	batch, start, eof := list.Batch(2)
	assert.Equal(t, 0, start)
	assert.Len(t, batch, 2)
	assert.False(t, eof)

	batch, start, eof = list.Batch(2)
	assert.Equal(t, 2, start)
	assert.Len(t, batch, 1)
	assert.True(t, eof)

	batch, _, eof = list.Batch(2)
	assert.Empty(t, batch)
	assert.True(t, eof)
}

func namesOf(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

package session

import (
	"testing"
	"time"

	"github.com/FujiNetWIFI/tnfsd/internal/handles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMountAssignsNonzeroUniqueID(t *testing.T) {
	m := NewManager(DefaultOptions(), nil)
	s1, err := m.Mount("1.2.3.4", "1.2.3.4:9000", "", 0x0102, Credentials{})
	require.NoError(t, err)
	assert.NotZero(t, s1.ID)

	s2, err := m.Mount("1.2.3.4", "1.2.3.4:9001", "", 0x0102, Credentials{})
	require.NoError(t, err)
	assert.NotEqual(t, s1.ID, s2.ID)
}

func TestFindAfterMount(t *testing.T) {
	m := NewManager(DefaultOptions(), nil)
	s, err := m.Mount("1.2.3.4", "1.2.3.4:9000", "", 0x0102, Credentials{})
	require.NoError(t, err)

	found, ok := m.Find(s.ID)
	require.True(t, ok)
	assert.Same(t, s, found)
}

func TestUnmountRemovesSession(t *testing.T) {
	m := NewManager(DefaultOptions(), nil)
	s, err := m.Mount("1.2.3.4", "1.2.3.4:9000", "", 0x0102, Credentials{})
	require.NoError(t, err)

	m.Unmount(s.ID)
	_, ok := m.Find(s.ID)
	assert.False(t, ok)
}

func TestMountFailsWhenGlobalCapReached(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxSessions = 1
	opts.MaxSessionsPerIP = 10
	m := NewManager(opts, nil)

	_, err := m.Mount("1.1.1.1", "1.1.1.1:1", "", 0, Credentials{})
	require.NoError(t, err)

	_, err = m.Mount("2.2.2.2", "2.2.2.2:1", "", 0, Credentials{})
	assert.ErrorIs(t, err, ErrSessionTableFull)
}

func TestMountFailsWhenPerIPCapReached(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxSessions = 10
	opts.MaxSessionsPerIP = 1
	m := NewManager(opts, nil)

	_, err := m.Mount("1.1.1.1", "1.1.1.1:1", "", 0, Credentials{})
	require.NoError(t, err)

	_, err = m.Mount("1.1.1.1", "1.1.1.1:2", "", 0, Credentials{})
	assert.ErrorIs(t, err, ErrSessionTableFull)
}

func TestRetransmissionCacheReturnsIdenticalReply(t *testing.T) {
	m := NewManager(DefaultOptions(), nil)
	s, err := m.Mount("1.1.1.1", "1.1.1.1:1", "", 0, Credentials{})
	require.NoError(t, err)

	s.CacheReply(7, 0x26, []byte{0x00})
	reply, ok := s.CachedReply(7, 0x26)
	require.True(t, ok)
	assert.Equal(t, []byte{0x00}, reply)

	_, ok = s.CachedReply(8, 0x26)
	assert.False(t, ok)
}

func TestSessionExpiredHonorsTTLAndDisable(t *testing.T) {
	s := New(1, "peer", "", 0, Credentials{}, 16, 8, time.Minute, time.Now().Add(-time.Hour))
	assert.True(t, s.Expired(time.Now(), time.Minute))
	assert.False(t, s.Expired(time.Now(), 0))
}

func TestShutdownClosesAllSessions(t *testing.T) {
	var closedCount int
	m := NewManager(DefaultOptions(), func(h *handles.FileHandle) { closedCount++ })
	_, err := m.Mount("1.1.1.1", "1.1.1.1:1", "", 0, Credentials{})
	require.NoError(t, err)
	_, err = m.Mount("2.2.2.2", "2.2.2.2:1", "", 0, Credentials{})
	require.NoError(t, err)

	m.Shutdown()
	assert.Equal(t, 0, m.Count())
}

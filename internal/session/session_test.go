package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/FujiNetWIFI/tnfsd/internal/handles"
)

func TestTryLockFailsWhileLockHeldBySameFlow(t *testing.T) {
	s := New(1, "peer", "", 0, Credentials{}, 16, 8, time.Minute, time.Now())
	s.Lock()
	assert.False(t, s.TryLock())
	s.Unlock()
	assert.True(t, s.TryLock())
	s.Unlock()
}

func TestCloseLockedRunsWithoutReacquiringLock(t *testing.T) {
	s := New(1, "peer", "", 0, Credentials{}, 16, 8, time.Minute, time.Now())

	s.Lock()
	s.CloseLocked(func(_ *handles.FileHandle) {})
	s.Unlock()

	assert.True(t, s.TryLock())
	s.Unlock()
}

package runner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignalManager_StopCancels(t *testing.T) {
	sm := NewSignalManager(context.Background())
	assert.NoError(t, sm.Context().Err())

	sm.Stop()
	assert.ErrorIs(t, sm.Context().Err(), context.Canceled)
}

func TestSignalManager_FollowsParent(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	sm := NewSignalManager(parent)
	defer sm.Stop()

	cancel()
	<-sm.Context().Done()
	assert.ErrorIs(t, sm.Context().Err(), context.Canceled)
}

package entity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexOwl/jtechdigital-ha/internal/jtech"
)

func TestRemote_IsOn(t *testing.T) {
	env := newTestEnv(t)

	assert.True(t, NewRemote(env.coordinator, 1, env.logger).IsOn())
	assert.False(t, NewRemote(env.coordinator, 3, env.logger).IsOn())

	env.mock.SetSystemStatus(&jtech.SystemStatus{Power: false})
	require.NoError(t, env.coordinator.Refresh(context.Background()))
	assert.False(t, NewRemote(env.coordinator, 1, env.logger).IsOn())
}

func TestRemote_Keys(t *testing.T) {
	env := newTestEnv(t)
	remote := NewRemote(env.coordinator, 1, env.logger)

	keys := remote.Keys()
	assert.Len(t, keys, len(remoteKeys))
	assert.Contains(t, keys, "play")
	assert.Contains(t, keys, "volume_up")
}

func TestRemote_SendCommand(t *testing.T) {
	env := newTestEnv(t)
	remote := NewRemote(env.coordinator, 1, env.logger)

	require.NoError(t, remote.SendCommand(context.Background(), []string{"play", "select"}, 1))

	calls := env.mock.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "send_cec_source", calls[0].Name)
	assert.Equal(t, 1, calls[0].Source)
	assert.Equal(t, jtech.CECSourcePlay, calls[0].Command)
	assert.Equal(t, jtech.CECSourceSelect, calls[1].Command)
}

func TestRemote_SendCommandRepeats(t *testing.T) {
	env := newTestEnv(t)
	remote := NewRemote(env.coordinator, 2, env.logger)

	require.NoError(t, remote.SendCommand(context.Background(), []string{"volume_up"}, 3))

	calls := env.mock.Calls()
	require.Len(t, calls, 3)
	for _, call := range calls {
		assert.Equal(t, "send_cec_source", call.Name)
		// Output 2 is routed to the second source.
		assert.Equal(t, 2, call.Source)
		assert.Equal(t, jtech.CECSourceVolumeUp, call.Command)
	}
}

func TestRemote_SendCommandUnknown(t *testing.T) {
	env := newTestEnv(t)
	remote := NewRemote(env.coordinator, 1, env.logger)

	err := remote.SendCommand(context.Background(), []string{"warp"}, 1)
	require.Error(t, err)
	assert.Empty(t, env.mock.Calls())
}

func TestRemote_SendCommandUnavailableOutput(t *testing.T) {
	env := newTestEnv(t)
	remote := NewRemote(env.coordinator, 9, env.logger)

	err := remote.SendCommand(context.Background(), []string{"play"}, 1)
	require.Error(t, err)
	assert.Empty(t, env.mock.Calls())
}

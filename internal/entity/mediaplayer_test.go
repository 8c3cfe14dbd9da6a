package entity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AlexOwl/jtechdigital-ha/internal/clock"
	"github.com/AlexOwl/jtechdigital-ha/internal/jtech"
	"github.com/AlexOwl/jtechdigital-ha/internal/matrix"
)

type testEnv struct {
	coordinator *matrix.Coordinator
	mock        *jtech.MockClient
	clk         *clock.Mock
	logger      *zap.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	clk := clock.NewMock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	mock := jtech.NewMockClient()
	coordinator := matrix.New(mock, matrix.Config{Username: "Admin", Password: "admin"}, logger, clk)

	require.NoError(t, coordinator.Refresh(context.Background()))
	mock.ClearCalls()

	return &testEnv{coordinator: coordinator, mock: mock, clk: clk, logger: logger}
}

func (e *testEnv) player(output int, opts Options) *MediaPlayer {
	return NewMediaPlayer(e.coordinator, output, opts, e.logger, e.clk)
}

func (e *testEnv) callNames() []string {
	names := make([]string, 0)
	for _, call := range e.mock.Calls() {
		names = append(names, call.Name)
	}
	return names
}

func TestMediaPlayer_State(t *testing.T) {
	env := newTestEnv(t)
	opts := DefaultOptions()

	// Output 1 is connected and enabled, routed to the active source.
	assert.Equal(t, StatePlaying, env.player(1, opts).State())

	// Output 2 is live but its source reports no signal.
	assert.Equal(t, StateOn, env.player(2, opts).State())

	// Beyond the fetched output list.
	assert.Equal(t, StateUnavailable, env.player(3, opts).State())
}

func TestMediaPlayer_StateOffWhenPathDown(t *testing.T) {
	env := newTestEnv(t)

	env.mock.SetOutputStatus(&jtech.OutputStatus{
		Power:               true,
		OutputNames:         []string{"Output 1", "Output 2"},
		OutputCATNames:      []string{"CAT 1", "CAT 2"},
		SelectedSources:     []int{0, 1},
		SelectedScalers:     []int{0, 0},
		EnabledOutputs:      []bool{false, true},
		EnabledCATOutputs:   []bool{false, false},
		ConnectedOutputs:    []bool{true, true},
		ConnectedCATOutputs: []bool{false, false},
	})
	require.NoError(t, env.coordinator.Refresh(context.Background()))

	assert.Equal(t, StateOff, env.player(1, DefaultOptions()).State())

	// With no stream toggle configured the output follows device power.
	noToggles := Options{CECVolumeControl: VolumeControlNone}
	assert.Equal(t, StatePlaying, env.player(1, noToggles).State())
}

func TestMediaPlayer_StateOffWhenPowerOff(t *testing.T) {
	env := newTestEnv(t)

	env.mock.SetSystemStatus(&jtech.SystemStatus{Power: false})
	require.NoError(t, env.coordinator.Refresh(context.Background()))

	assert.Equal(t, StateOff, env.player(1, DefaultOptions()).State())
}

func TestMediaPlayer_Sources(t *testing.T) {
	env := newTestEnv(t)
	player := env.player(1, DefaultOptions())

	assert.Equal(t, []string{"Source 1", "Source 2"}, player.SourceList())

	name, ok := player.Source()
	require.True(t, ok)
	assert.Equal(t, "Source 1", name)
}

func TestMediaPlayer_SelectSource(t *testing.T) {
	env := newTestEnv(t)
	player := env.player(1, DefaultOptions())

	require.NoError(t, player.SelectSource(context.Background(), "Source 2"))

	calls := env.mock.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "set_video_source", calls[0].Name)
	assert.Equal(t, 1, calls[0].Output)
	assert.Equal(t, 2, calls[0].Source)
}

func TestMediaPlayer_SelectSourceUnknown(t *testing.T) {
	env := newTestEnv(t)
	player := env.player(1, DefaultOptions())

	err := player.SelectSource(context.Background(), "Nope")
	require.Error(t, err)
	assert.Empty(t, env.mock.Calls())
}

func TestMediaPlayer_SelectSourceSchedulesRefresh(t *testing.T) {
	env := newTestEnv(t)
	player := env.player(1, DefaultOptions())

	var notified int
	env.coordinator.Subscribe(func() { notified++ })

	require.NoError(t, player.SelectSource(context.Background(), "Source 2"))
	assert.Equal(t, 0, notified)

	env.clk.Advance(matrix.DefaultRefreshDebounce)
	assert.Equal(t, 1, notified)
}

func TestMediaPlayer_TurnOnSequence(t *testing.T) {
	env := newTestEnv(t)
	opts := Options{
		HDMIStreamToggle: true,
		CATStreamToggle:  true,
		CECSourceToggle:  true,
		CECOutputToggle:  true,
		CECVolumeControl: VolumeControlNone,
	}
	player := env.player(1, opts)

	require.NoError(t, player.TurnOn(context.Background()))

	assert.Equal(t, []string{
		"set_output_stream",
		"set_output_cat_stream",
		"send_cec_source",
		"send_cec_output",
		"send_cec_output",
	}, env.callNames())

	calls := env.mock.Calls()
	assert.True(t, calls[0].On)
	assert.Equal(t, jtech.CECSourcePowerOn, calls[2].Command)
	// CEC goes to the source routed to this output, 1-based.
	assert.Equal(t, 1, calls[2].Source)
	assert.Equal(t, jtech.CECOutputPowerOn, calls[3].Command)
	assert.Equal(t, jtech.CECOutputActiveSource, calls[4].Command)
}

func TestMediaPlayer_TurnOffSequence(t *testing.T) {
	env := newTestEnv(t)
	opts := Options{
		HDMIStreamToggle: true,
		CATStreamToggle:  true,
		CECSourceToggle:  true,
		CECOutputToggle:  true,
		CECVolumeControl: VolumeControlNone,
	}
	player := env.player(1, opts)

	require.NoError(t, player.TurnOff(context.Background()))

	assert.Equal(t, []string{
		"send_cec_output",
		"send_cec_source",
		"set_output_stream",
		"set_output_cat_stream",
	}, env.callNames())

	calls := env.mock.Calls()
	assert.Equal(t, jtech.CECOutputPowerOff, calls[0].Command)
	assert.Equal(t, jtech.CECSourcePowerOff, calls[1].Command)
	assert.False(t, calls[2].On)
	assert.False(t, calls[3].On)
}

func TestMediaPlayer_TurnOnStreamPathsOnly(t *testing.T) {
	env := newTestEnv(t)
	opts := Options{HDMIStreamToggle: true, CECVolumeControl: VolumeControlNone}
	player := env.player(2, opts)

	require.NoError(t, player.TurnOn(context.Background()))
	assert.Equal(t, []string{"set_output_stream"}, env.callNames())
}

func TestMediaPlayer_Volume(t *testing.T) {
	ctx := context.Background()

	t.Run("source target", func(t *testing.T) {
		env := newTestEnv(t)
		opts := DefaultOptions()
		opts.CECVolumeControl = VolumeControlSource
		player := env.player(1, opts)

		require.NoError(t, player.VolumeUp(ctx))
		require.NoError(t, player.VolumeDown(ctx))
		require.NoError(t, player.MuteVolume(ctx))

		calls := env.mock.Calls()
		require.Len(t, calls, 3)
		assert.Equal(t, "send_cec_source", calls[0].Name)
		assert.Equal(t, jtech.CECSourceVolumeUp, calls[0].Command)
		assert.Equal(t, jtech.CECSourceVolumeDown, calls[1].Command)
		assert.Equal(t, jtech.CECSourceMute, calls[2].Command)
	})

	t.Run("output target", func(t *testing.T) {
		env := newTestEnv(t)
		opts := DefaultOptions()
		opts.CECVolumeControl = VolumeControlOutput
		player := env.player(1, opts)

		require.NoError(t, player.VolumeUp(ctx))
		calls := env.mock.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, "send_cec_output", calls[0].Name)
		assert.Equal(t, jtech.CECOutputVolumeUp, calls[0].Command)
	})

	t.Run("no target", func(t *testing.T) {
		env := newTestEnv(t)
		player := env.player(1, DefaultOptions())

		require.NoError(t, player.VolumeUp(ctx))
		assert.Empty(t, env.mock.Calls())
	})
}

func TestMediaPlayer_Transport(t *testing.T) {
	env := newTestEnv(t)
	player := env.player(1, DefaultOptions())
	ctx := context.Background()

	require.NoError(t, player.Play(ctx))
	require.NoError(t, player.Pause(ctx))
	require.NoError(t, player.Stop(ctx))
	require.NoError(t, player.NextTrack(ctx))
	require.NoError(t, player.PreviousTrack(ctx))

	calls := env.mock.Calls()
	require.Len(t, calls, 5)
	assert.Equal(t, jtech.CECSourcePlay, calls[0].Command)
	assert.Equal(t, jtech.CECSourcePause, calls[1].Command)
	assert.Equal(t, jtech.CECSourceStop, calls[2].Command)
	assert.Equal(t, jtech.CECSourceNext, calls[3].Command)
	assert.Equal(t, jtech.CECSourcePrevious, calls[4].Command)
}

func TestMasterPlayer(t *testing.T) {
	env := newTestEnv(t)
	master := NewMasterPlayer(env.coordinator, env.logger)
	ctx := context.Background()

	assert.Equal(t, StateOn, master.State())

	require.NoError(t, master.TurnOff(ctx))
	require.NoError(t, master.TurnOn(ctx))

	calls := env.mock.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "set_power", calls[0].Name)
	assert.False(t, calls[0].On)
	assert.True(t, calls[1].On)
}

func TestMasterPlayer_UnavailableBeforeFirstCycle(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	clk := clock.NewMock(time.Unix(0, 0))
	mock := jtech.NewMockClient()
	coordinator := matrix.New(mock, matrix.Config{}, logger, clk)

	master := NewMasterPlayer(coordinator, logger)
	assert.Equal(t, StateUnavailable, master.State())
}

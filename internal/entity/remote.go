package entity

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/AlexOwl/jtechdigital-ha/internal/jtech"
	"github.com/AlexOwl/jtechdigital-ha/internal/matrix"
)

// remoteKeys maps key names to the CEC command for the routed source.
var remoteKeys = map[string]int{
	"power_on":     jtech.CECSourcePowerOn,
	"power_off":    jtech.CECSourcePowerOff,
	"up":           jtech.CECSourceUp,
	"left":         jtech.CECSourceLeft,
	"select":       jtech.CECSourceSelect,
	"right":        jtech.CECSourceRight,
	"menu":         jtech.CECSourceMenu,
	"down":         jtech.CECSourceDown,
	"back":         jtech.CECSourceBack,
	"previous":     jtech.CECSourcePrevious,
	"play":         jtech.CECSourcePlay,
	"next":         jtech.CECSourceNext,
	"rewind":       jtech.CECSourceRewind,
	"pause":        jtech.CECSourcePause,
	"fast_forward": jtech.CECSourceFastForward,
	"stop":         jtech.CECSourceStop,
	"mute":         jtech.CECSourceMute,
	"volume_down":  jtech.CECSourceVolumeDown,
	"volume_up":    jtech.CECSourceVolumeUp,
}

// Remote forwards named key presses as CEC commands to the source routed to
// one output.
type Remote struct {
	coordinator *matrix.Coordinator
	output      int // 1-based
	logger      *zap.Logger
}

// NewRemote creates the remote entity for a 1-based output number.
func NewRemote(coordinator *matrix.Coordinator, output int, logger *zap.Logger) *Remote {
	return &Remote{
		coordinator: coordinator,
		output:      output,
		logger:      logger.Named(fmt.Sprintf("remote%d", output)),
	}
}

// IsOn reports whether either stream path of the output is live while the
// matrix is powered.
func (r *Remote) IsOn() bool {
	info, ok := r.coordinator.Output(r.output)
	if !ok || !r.coordinator.Status().Power {
		return false
	}
	return (info.Connected && info.Enabled) || (info.CATConnected && info.CATEnabled)
}

// Keys lists the supported key names.
func (r *Remote) Keys() []string {
	keys := make([]string, 0, len(remoteKeys))
	for k := range remoteKeys {
		keys = append(keys, k)
	}
	return keys
}

// SendCommand sends each named key repeats times to the routed source, then
// schedules a refresh.
func (r *Remote) SendCommand(ctx context.Context, commands []string, repeats int) error {
	defer r.coordinator.RequestRefresh()

	if repeats < 1 {
		repeats = 1
	}

	info, ok := r.coordinator.Output(r.output)
	if !ok {
		return fmt.Errorf("output %d not available", r.output)
	}

	for _, name := range commands {
		code, ok := remoteKeys[name]
		if !ok {
			return fmt.Errorf("unknown command %q", name)
		}
		for i := 0; i < repeats; i++ {
			if _, err := r.coordinator.SendCECSource(ctx, info.Source+1, code); err != nil {
				r.logger.Error("Command error",
					zap.String("command", name),
					zap.Error(err))
				return err
			}
		}
	}
	return nil
}

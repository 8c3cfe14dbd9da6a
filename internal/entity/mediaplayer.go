// Package entity exposes the coordinator's normalized model as controllable
// entities: one media player per matrix output, a master power player, and a
// CEC remote per output. Entities read the coordinator snapshot, issue
// coordinator commands, and explicitly request a refresh afterward.
package entity

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/AlexOwl/jtechdigital-ha/internal/clock"
	"github.com/AlexOwl/jtechdigital-ha/internal/jtech"
	"github.com/AlexOwl/jtechdigital-ha/internal/matrix"
)

// PlayerState is the derived state of a media player entity.
type PlayerState string

const (
	StateUnavailable PlayerState = "unavailable"
	StateOff         PlayerState = "off"
	StateOn          PlayerState = "on"
	StatePlaying     PlayerState = "playing"
)

// MediaPlayer represents one matrix output. The coordinator is injected; the
// player holds no state of its own.
type MediaPlayer struct {
	coordinator *matrix.Coordinator
	output      int // 1-based
	opts        Options
	logger      *zap.Logger
	clk         clock.Clock
}

// NewMediaPlayer creates the media player for a 1-based output number.
func NewMediaPlayer(coordinator *matrix.Coordinator, output int, opts Options, logger *zap.Logger, clk clock.Clock) *MediaPlayer {
	return &MediaPlayer{
		coordinator: coordinator,
		output:      output,
		opts:        opts,
		logger:      logger.Named(fmt.Sprintf("output%d", output)),
		clk:         clk,
	}
}

// Output returns the 1-based output number this player controls.
func (p *MediaPlayer) Output() int {
	return p.output
}

// Name returns the output's display name.
func (p *MediaPlayer) Name() string {
	info, ok := p.coordinator.Output(p.output)
	if !ok {
		return fmt.Sprintf("Output %d", p.output)
	}
	return info.Name
}

// State derives the player state from the snapshot. The output counts as on
// when any configured stream path is both connected and enabled; it is
// playing when additionally the routed source reports a signal.
func (p *MediaPlayer) State() PlayerState {
	info, ok := p.coordinator.Output(p.output)
	if !ok {
		return StateUnavailable
	}
	if !p.coordinator.Status().Power {
		return StateOff
	}
	if !p.pathOn(info) {
		return StateOff
	}
	if src, ok := p.sourceInfo(info); ok && src.Active {
		return StatePlaying
	}
	return StateOn
}

// pathOn applies the stream-toggle options to the output's link state. With
// no toggle configured the output follows device power alone.
func (p *MediaPlayer) pathOn(info matrix.OutputInfo) bool {
	if !p.opts.HDMIStreamToggle && !p.opts.CATStreamToggle {
		return true
	}
	if p.opts.HDMIStreamToggle && info.Connected && info.Enabled {
		return true
	}
	if p.opts.CATStreamToggle && info.CATConnected && info.CATEnabled {
		return true
	}
	return false
}

func (p *MediaPlayer) sourceInfo(info matrix.OutputInfo) (matrix.SourceInfo, bool) {
	sources := p.coordinator.Sources()
	if info.Source < 0 || info.Source >= len(sources) {
		return matrix.SourceInfo{}, false
	}
	return sources[info.Source], true
}

// SourceList returns the names of all input sources.
func (p *MediaPlayer) SourceList() []string {
	sources := p.coordinator.Sources()
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.Name
	}
	return names
}

// Source returns the name of the currently routed source.
func (p *MediaPlayer) Source() (string, bool) {
	info, ok := p.coordinator.Output(p.output)
	if !ok {
		return "", false
	}
	src, ok := p.sourceInfo(info)
	if !ok {
		return "", false
	}
	return src.Name, true
}

// SelectSource routes the named source to this output and schedules a
// refresh.
func (p *MediaPlayer) SelectSource(ctx context.Context, name string) error {
	defer p.coordinator.RequestRefresh()

	for i, src := range p.coordinator.Sources() {
		if src.Name == name {
			ok, err := p.coordinator.SelectSource(ctx, p.output, i+1)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("device refused source switch to %q", name)
			}
			return nil
		}
	}
	return fmt.Errorf("unknown source %q", name)
}

// TurnOn enables the configured stream paths and optionally walks the CEC
// power-on sequence, then schedules a refresh. Command failures are logged
// and the refresh still runs so state resyncs.
func (p *MediaPlayer) TurnOn(ctx context.Context) error {
	defer p.coordinator.RequestRefresh()

	var firstErr error
	record := func(what string, _ bool, err error) {
		if err != nil {
			p.logger.Error("Command error", zap.String("command", what), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if p.opts.HDMIStreamToggle {
		ok, err := p.coordinator.EnableOutput(ctx, p.output)
		record("enable_output", ok, err)
	}
	if p.opts.CATStreamToggle {
		ok, err := p.coordinator.EnableCATOutput(ctx, p.output)
		record("enable_cat_output", ok, err)
	}

	cec := p.opts.CECSourceToggle || p.opts.CECOutputToggle
	if cec && (p.opts.HDMIStreamToggle || p.opts.CATStreamToggle) {
		p.wait(ctx, p.opts.CECDelayPower)
	}
	if p.opts.CECSourceToggle {
		ok, err := p.sendCECSource(ctx, jtech.CECSourcePowerOn)
		record("cec_source_power_on", ok, err)
	}
	if p.opts.CECOutputToggle {
		ok, err := p.coordinator.SendCECOutput(ctx, p.output, jtech.CECOutputPowerOn)
		record("cec_output_power_on", ok, err)

		p.wait(ctx, p.opts.CECDelaySource)
		ok, err = p.coordinator.SendCECOutput(ctx, p.output, jtech.CECOutputActiveSource)
		record("cec_output_active_source", ok, err)
	}
	return firstErr
}

// TurnOff walks the CEC power-off sequence first so sinks still see the
// stream, then disables the configured paths and schedules a refresh.
func (p *MediaPlayer) TurnOff(ctx context.Context) error {
	defer p.coordinator.RequestRefresh()

	var firstErr error
	record := func(what string, _ bool, err error) {
		if err != nil {
			p.logger.Error("Command error", zap.String("command", what), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if p.opts.CECOutputToggle {
		ok, err := p.coordinator.SendCECOutput(ctx, p.output, jtech.CECOutputPowerOff)
		record("cec_output_power_off", ok, err)
	}
	if p.opts.CECSourceToggle {
		ok, err := p.sendCECSource(ctx, jtech.CECSourcePowerOff)
		record("cec_source_power_off", ok, err)
	}
	if p.opts.CECSourceToggle || p.opts.CECOutputToggle {
		p.wait(ctx, p.opts.CECDelayPower)
	}

	if p.opts.HDMIStreamToggle {
		ok, err := p.coordinator.DisableOutput(ctx, p.output)
		record("disable_output", ok, err)
	}
	if p.opts.CATStreamToggle {
		ok, err := p.coordinator.DisableCATOutput(ctx, p.output)
		record("disable_cat_output", ok, err)
	}
	return firstErr
}

// VolumeUp sends the CEC volume-up command to the configured target.
func (p *MediaPlayer) VolumeUp(ctx context.Context) error {
	return p.sendVolume(ctx, jtech.CECOutputVolumeUp, jtech.CECSourceVolumeUp)
}

// VolumeDown sends the CEC volume-down command to the configured target.
func (p *MediaPlayer) VolumeDown(ctx context.Context) error {
	return p.sendVolume(ctx, jtech.CECOutputVolumeDown, jtech.CECSourceVolumeDown)
}

// MuteVolume sends the CEC mute command to the configured target.
func (p *MediaPlayer) MuteVolume(ctx context.Context) error {
	return p.sendVolume(ctx, jtech.CECOutputMute, jtech.CECSourceMute)
}

func (p *MediaPlayer) sendVolume(ctx context.Context, outputCommand, sourceCommand int) error {
	defer p.coordinator.RequestRefresh()

	switch p.opts.CECVolumeControl {
	case VolumeControlOutput:
		_, err := p.coordinator.SendCECOutput(ctx, p.output, outputCommand)
		return err
	case VolumeControlSource:
		_, err := p.sendCECSource(ctx, sourceCommand)
		return err
	default:
		return nil
	}
}

// Play sends the CEC play command to the routed source.
func (p *MediaPlayer) Play(ctx context.Context) error {
	return p.transport(ctx, jtech.CECSourcePlay)
}

// Pause sends the CEC pause command to the routed source.
func (p *MediaPlayer) Pause(ctx context.Context) error {
	return p.transport(ctx, jtech.CECSourcePause)
}

// Stop sends the CEC stop command to the routed source.
func (p *MediaPlayer) Stop(ctx context.Context) error {
	return p.transport(ctx, jtech.CECSourceStop)
}

// NextTrack sends the CEC next-track command to the routed source.
func (p *MediaPlayer) NextTrack(ctx context.Context) error {
	return p.transport(ctx, jtech.CECSourceNext)
}

// PreviousTrack sends the CEC previous-track command to the routed source.
func (p *MediaPlayer) PreviousTrack(ctx context.Context) error {
	return p.transport(ctx, jtech.CECSourcePrevious)
}

func (p *MediaPlayer) transport(ctx context.Context, command int) error {
	defer p.coordinator.RequestRefresh()
	_, err := p.sendCECSource(ctx, command)
	return err
}

// sendCECSource addresses the source currently routed to this output. The
// snapshot value is translated to the device's 1-based source numbering.
func (p *MediaPlayer) sendCECSource(ctx context.Context, command int) (bool, error) {
	info, ok := p.coordinator.Output(p.output)
	if !ok {
		return false, fmt.Errorf("output %d not available", p.output)
	}
	return p.coordinator.SendCECSource(ctx, info.Source+1, command)
}

func (p *MediaPlayer) wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-p.clk.After(d):
	}
}

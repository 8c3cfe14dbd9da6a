package entity

import "time"

// Volume control targets for CEC volume commands.
const (
	VolumeControlNone   = "none"
	VolumeControlSource = "source"
	VolumeControlOutput = "output"
)

// Options selects which output paths an entity controls and how CEC commands
// are sequenced around power changes.
type Options struct {
	// HDMIStreamToggle and CATStreamToggle choose which stream paths
	// TurnOn/TurnOff operate on and which paths count toward the on state.
	HDMIStreamToggle bool
	CATStreamToggle  bool

	// CECSourceToggle and CECOutputToggle send CEC power commands to the
	// routed source and the attached sink alongside stream changes.
	CECSourceToggle bool
	CECOutputToggle bool

	// CECDelayPower is the pause between enabling streams and sending CEC
	// power commands; CECDelaySource the pause before the active-source
	// announcement.
	CECDelayPower  time.Duration
	CECDelaySource time.Duration

	// CECVolumeControl routes volume commands: "source", "output" or "none".
	CECVolumeControl string
}

// DefaultOptions mirrors the device's factory behavior: both stream paths
// controlled, no CEC sequencing.
func DefaultOptions() Options {
	return Options{
		HDMIStreamToggle: true,
		CATStreamToggle:  true,
		CECVolumeControl: VolumeControlNone,
	}
}

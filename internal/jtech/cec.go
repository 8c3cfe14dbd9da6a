package jtech

// CEC command codes accepted by the matrix. Output commands address the sink
// device (TV/monitor) behind an output; source commands address the player
// behind an input.
const (
	CECOutputPowerOn      = 0
	CECOutputPowerOff     = 1
	CECOutputMute         = 2
	CECOutputVolumeDown   = 3
	CECOutputVolumeUp     = 4
	CECOutputActiveSource = 5
)

const (
	CECSourcePowerOn     = 1
	CECSourcePowerOff    = 2
	CECSourceUp          = 3
	CECSourceLeft        = 4
	CECSourceSelect      = 5
	CECSourceRight       = 6
	CECSourceMenu        = 7
	CECSourceDown        = 8
	CECSourceBack        = 9
	CECSourcePrevious    = 10
	CECSourcePlay        = 11
	CECSourceNext        = 12
	CECSourceRewind      = 13
	CECSourcePause       = 14
	CECSourceFastForward = 15
	CECSourceStop        = 16
	CECSourceMute        = 17
	CECSourceVolumeDown  = 18
	CECSourceVolumeUp    = 19
)

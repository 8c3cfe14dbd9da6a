package jtech

// DeviceStatus is the device's top-level status record.
type DeviceStatus struct {
	Power      bool   `json:"power"`
	Model      string `json:"model"`
	Version    string `json:"version"`
	Hostname   string `json:"hostname"`
	MACAddress string `json:"macaddress"`
}

// SourceStatus describes every input source in one record. The per-source
// slices are index-aligned with SourceNames.
type SourceStatus struct {
	Power         bool     `json:"power"`
	SourceNames   []string `json:"source_names"`
	ActiveSources []bool   `json:"active_sources"`
	EDIDIndexes   []int    `json:"edid_indexes"`
}

// OutputStatus describes every output in one record. The per-output slices
// are index-aligned with OutputNames. SelectedSources holds the routing table
// as reported by the device.
type OutputStatus struct {
	Power               bool     `json:"power"`
	OutputNames         []string `json:"output_names"`
	OutputCATNames      []string `json:"output_cat_names"`
	SelectedSources     []int    `json:"selected_sources"`
	SelectedScalers     []int    `json:"selected_output_scalers"`
	EnabledOutputs      []bool   `json:"enabled_outputs"`
	EnabledCATOutputs   []bool   `json:"enabled_cat_outputs"`
	ConnectedOutputs    []bool   `json:"connected_outputs"`
	ConnectedCATOutputs []bool   `json:"connected_cat_outputs"`
}

// CECStatus lists which sources and outputs are the active CEC control
// targets. Membership in the slices marks a selected index.
type CECStatus struct {
	SelectedSources []int    `json:"selected_cec_sources"`
	SelectedOutputs []int    `json:"selected_cec_outputs"`
	SourceNames     []string `json:"source_names"`
	OutputNames     []string `json:"output_names"`
}

// NetworkInfo is the device's network configuration record.
type NetworkInfo struct {
	Power      bool   `json:"power"`
	Model      string `json:"model"`
	Hostname   string `json:"hostname"`
	IPAddress  string `json:"ipaddress"`
	Subnet     string `json:"subnet"`
	Gateway    string `json:"gateway"`
	MACAddress string `json:"macaddress"`
	DHCP       bool   `json:"dhcp"`
	TelnetPort int    `json:"telnetport"`
	TCPPort    int    `json:"tcpport"`
}

// SystemStatus is the device's system configuration record.
type SystemStatus struct {
	Power         bool   `json:"power"`
	BaudrateIndex int    `json:"baudrate_index"`
	Beep          bool   `json:"beep"`
	Lock          bool   `json:"lock"`
	Mode          int    `json:"mode"`
	Version       string `json:"version"`
}

// WebDetails carries the device's web UI metadata.
type WebDetails struct {
	Title string `json:"title"`
}

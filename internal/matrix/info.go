package matrix

// OutputInfo is the normalized per-output record rebuilt on every poll cycle.
// Source carries the routing value the device reported for this output; it is
// compared directly against source slice indices when deriving
// SourceInfo.Outputs.
type OutputInfo struct {
	Source       int    `json:"source"`
	Name         string `json:"name"`
	CATName      string `json:"cat_name"`
	Connected    bool   `json:"connected"`
	CATConnected bool   `json:"cat_connected"`
	Enabled      bool   `json:"enabled"`
	CATEnabled   bool   `json:"cat_enabled"`
	Scaler       int    `json:"scaler"`
	CECSelected  bool   `json:"cec_selected"`
}

// SourceInfo is the normalized per-source record rebuilt on every poll cycle.
// Outputs holds the indices of outputs currently routed from this source; it
// is derived from the output list, never reported by the device directly.
type SourceInfo struct {
	Outputs     []int  `json:"outputs"`
	Name        string `json:"name"`
	Active      bool   `json:"active"`
	EDIDIndex   int    `json:"edid_index"`
	CECSelected bool   `json:"cec_selected"`
}

// Status is the combined scalar record merged from every successful fetch of
// a cycle. Fields whose owning fetch failed keep their previous value.
type Status struct {
	Power         bool   `json:"power"`
	Model         string `json:"model"`
	Version       string `json:"version"`
	Hostname      string `json:"hostname"`
	IPAddress     string `json:"ipaddress"`
	Subnet        string `json:"subnet"`
	Gateway       string `json:"gateway"`
	MACAddress    string `json:"macaddress"`
	DHCP          bool   `json:"dhcp"`
	TelnetPort    int    `json:"telnetport"`
	TCPPort       int    `json:"tcpport"`
	BaudrateIndex int    `json:"baudrate_index"`
	Beep          bool   `json:"beep"`
	Lock          bool   `json:"lock"`
	Mode          int    `json:"mode"`
	Title         string `json:"title"`
}

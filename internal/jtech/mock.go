package jtech

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Endpoint names accepted by MockClient.SetEndpointError.
const (
	EndpointStatus     = "status"
	EndpointSource     = "source"
	EndpointOutput     = "output"
	EndpointCEC        = "cec"
	EndpointNetwork    = "network"
	EndpointSystem     = "system"
	EndpointWebDetails = "web_details"
)

// CommandCall records one mutation issued through the mock for assertions.
type CommandCall struct {
	Name    string
	Output  int
	Source  int
	On      bool
	Command int
	Time    time.Time
}

// MockClient implements Client for tests. Tests seed status records, inject
// per-endpoint errors, and inspect recorded command calls.
type MockClient struct {
	mu sync.Mutex

	connected   bool
	connectErr  error
	sourceCount int
	outputCount int

	status       *DeviceStatus
	sourceStatus *SourceStatus
	outputStatus *OutputStatus
	cecStatus    *CECStatus
	network      *NetworkInfo
	system       *SystemStatus
	webDetails   *WebDetails

	endpointErrs map[string]error

	commandResult bool
	commandErr    error
	calls         []CommandCall
}

var _ Client = (*MockClient)(nil)

// NewMockClient creates a mock with a 2x2 matrix fixture and successful
// commands. Tests override whatever they need.
func NewMockClient() *MockClient {
	return &MockClient{
		sourceCount: 2,
		outputCount: 2,
		status: &DeviceStatus{
			Power:      true,
			Model:      "JTECH-MOCK",
			Version:    "1.0.0",
			Hostname:   "matrix",
			MACAddress: "00:11:22:33:44:55",
		},
		sourceStatus: &SourceStatus{
			Power:         true,
			SourceNames:   []string{"Source 1", "Source 2"},
			ActiveSources: []bool{true, false},
			EDIDIndexes:   []int{0, 0},
		},
		outputStatus: &OutputStatus{
			Power:               true,
			OutputNames:         []string{"Output 1", "Output 2"},
			OutputCATNames:      []string{"CAT 1", "CAT 2"},
			SelectedSources:     []int{0, 1},
			SelectedScalers:     []int{0, 0},
			EnabledOutputs:      []bool{true, true},
			EnabledCATOutputs:   []bool{true, true},
			ConnectedOutputs:    []bool{true, true},
			ConnectedCATOutputs: []bool{false, false},
		},
		cecStatus: &CECStatus{
			SelectedSources: []int{},
			SelectedOutputs: []int{},
		},
		network: &NetworkInfo{
			Power:     true,
			Hostname:  "matrix",
			IPAddress: "192.168.1.50",
		},
		system: &SystemStatus{
			Power:   true,
			Version: "1.0.0",
		},
		webDetails:    &WebDetails{Title: "HDMI Matrix"},
		endpointErrs:  make(map[string]error),
		commandResult: true,
	}
}

// SetConnectError makes the next Connect calls fail with err.
func (m *MockClient) SetConnectError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectErr = err
}

// SetEndpointError makes the named status fetch fail with err; nil clears it.
func (m *MockClient) SetEndpointError(endpoint string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.endpointErrs, endpoint)
		return
	}
	m.endpointErrs[endpoint] = err
}

// SetCommandResult fixes the outcome of every subsequent command call.
func (m *MockClient) SetCommandResult(ok bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commandResult = ok
	m.commandErr = err
}

// SetCounts overrides the advertised matrix dimensions.
func (m *MockClient) SetCounts(sources, outputs int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sourceCount = sources
	m.outputCount = outputs
}

func (m *MockClient) SetStatus(s *DeviceStatus)        { m.mu.Lock(); m.status = s; m.mu.Unlock() }
func (m *MockClient) SetSourceStatus(s *SourceStatus)  { m.mu.Lock(); m.sourceStatus = s; m.mu.Unlock() }
func (m *MockClient) SetOutputStatus(s *OutputStatus)  { m.mu.Lock(); m.outputStatus = s; m.mu.Unlock() }
func (m *MockClient) SetCECStatus(s *CECStatus)        { m.mu.Lock(); m.cecStatus = s; m.mu.Unlock() }
func (m *MockClient) SetNetwork(n *NetworkInfo)        { m.mu.Lock(); m.network = n; m.mu.Unlock() }
func (m *MockClient) SetSystemStatus(s *SystemStatus)  { m.mu.Lock(); m.system = s; m.mu.Unlock() }
func (m *MockClient) SetWebDetails(d *WebDetails)      { m.mu.Lock(); m.webDetails = d; m.mu.Unlock() }

// Calls returns a copy of the recorded command calls.
func (m *MockClient) Calls() []CommandCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CommandCall(nil), m.calls...)
}

// ClearCalls drops the recorded command calls.
func (m *MockClient) ClearCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// Connect succeeds unless SetConnectError was called.
func (m *MockClient) Connect(ctx context.Context, user, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.connectErr != nil {
		m.connected = false
		return m.connectErr
	}
	m.connected = true
	m.calls = append(m.calls, CommandCall{Name: "connect", Time: time.Now()})
	return nil
}

func (m *MockClient) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
}

func (m *MockClient) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *MockClient) SourceCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sourceCount
}

func (m *MockClient) OutputCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outputCount
}

func (m *MockClient) ValidateOutput(output int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if output < 1 || output > m.outputCount {
		return fmt.Errorf("%w: %d", ErrInvalidOutput, output)
	}
	return nil
}

func (m *MockClient) ValidateSource(source int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if source < 1 || source > m.sourceCount {
		return fmt.Errorf("%w: %d", ErrInvalidSource, source)
	}
	return nil
}

func (m *MockClient) GetStatus(ctx context.Context) (*DeviceStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.endpointErrs[EndpointStatus]; err != nil {
		return nil, err
	}
	return m.status, nil
}

func (m *MockClient) GetSourceStatus(ctx context.Context) (*SourceStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.endpointErrs[EndpointSource]; err != nil {
		return nil, err
	}
	return m.sourceStatus, nil
}

func (m *MockClient) GetOutputStatus(ctx context.Context) (*OutputStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.endpointErrs[EndpointOutput]; err != nil {
		return nil, err
	}
	return m.outputStatus, nil
}

func (m *MockClient) GetCECStatus(ctx context.Context) (*CECStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.endpointErrs[EndpointCEC]; err != nil {
		return nil, err
	}
	return m.cecStatus, nil
}

func (m *MockClient) GetNetwork(ctx context.Context) (*NetworkInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.endpointErrs[EndpointNetwork]; err != nil {
		return nil, err
	}
	return m.network, nil
}

func (m *MockClient) GetSystemStatus(ctx context.Context) (*SystemStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.endpointErrs[EndpointSystem]; err != nil {
		return nil, err
	}
	return m.system, nil
}

func (m *MockClient) GetWebDetails(ctx context.Context) (*WebDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.endpointErrs[EndpointWebDetails]; err != nil {
		return nil, err
	}
	return m.webDetails, nil
}

func (m *MockClient) record(call CommandCall) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.commandErr != nil {
		return false, m.commandErr
	}
	call.Time = time.Now()
	m.calls = append(m.calls, call)
	return m.commandResult, nil
}

func (m *MockClient) SetPower(ctx context.Context, on bool) (bool, error) {
	return m.record(CommandCall{Name: "set_power", On: on})
}

func (m *MockClient) SetOutputStream(ctx context.Context, output int, on bool) (bool, error) {
	if err := m.ValidateOutput(output); err != nil {
		return false, err
	}
	return m.record(CommandCall{Name: "set_output_stream", Output: output, On: on})
}

func (m *MockClient) SetOutputCATStream(ctx context.Context, output int, on bool) (bool, error) {
	if err := m.ValidateOutput(output); err != nil {
		return false, err
	}
	return m.record(CommandCall{Name: "set_output_cat_stream", Output: output, On: on})
}

func (m *MockClient) SetVideoSource(ctx context.Context, output, source int) (bool, error) {
	if err := m.ValidateOutput(output); err != nil {
		return false, err
	}
	if err := m.ValidateSource(source); err != nil {
		return false, err
	}
	return m.record(CommandCall{Name: "set_video_source", Output: output, Source: source})
}

func (m *MockClient) SendCECOutput(ctx context.Context, output, command int) (bool, error) {
	if err := m.ValidateOutput(output); err != nil {
		return false, err
	}
	return m.record(CommandCall{Name: "send_cec_output", Output: output, Command: command})
}

func (m *MockClient) SendCECSource(ctx context.Context, source, command int) (bool, error) {
	if err := m.ValidateSource(source); err != nil {
		return false, err
	}
	return m.record(CommandCall{Name: "send_cec_source", Source: source, Command: command})
}

func (m *MockClient) Reboot(ctx context.Context) (bool, error) {
	return m.record(CommandCall{Name: "reboot"})
}

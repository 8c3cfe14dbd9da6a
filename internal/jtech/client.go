// Package jtech talks to a J-Tech Digital HDMI matrix over its JSON CGI
// endpoint. One client owns one authenticated HTTP session; the device tracks
// the session through cookies, so the client carries a permissive cookie jar.
package jtech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	instrPath      = "/cgi-bin/instr"
	requestTimeout = 10 * time.Second
)

// Client defines the device operations the coordinator depends on.
type Client interface {
	Connect(ctx context.Context, user, password string) error
	Disconnect()
	Connected() bool
	SourceCount() int
	OutputCount() int

	GetStatus(ctx context.Context) (*DeviceStatus, error)
	GetSourceStatus(ctx context.Context) (*SourceStatus, error)
	GetOutputStatus(ctx context.Context) (*OutputStatus, error)
	GetCECStatus(ctx context.Context) (*CECStatus, error)
	GetNetwork(ctx context.Context) (*NetworkInfo, error)
	GetSystemStatus(ctx context.Context) (*SystemStatus, error)
	GetWebDetails(ctx context.Context) (*WebDetails, error)

	SetPower(ctx context.Context, on bool) (bool, error)
	SetOutputStream(ctx context.Context, output int, on bool) (bool, error)
	SetOutputCATStream(ctx context.Context, output int, on bool) (bool, error)
	SetVideoSource(ctx context.Context, output, source int) (bool, error)
	SendCECOutput(ctx context.Context, output, command int) (bool, error)
	SendCECSource(ctx context.Context, source, command int) (bool, error)
	Reboot(ctx context.Context) (bool, error)

	ValidateOutput(output int) error
	ValidateSource(source int) error
}

// HTTPClient implements Client against a real device.
type HTTPClient struct {
	host   string
	httpc  *http.Client
	logger *zap.Logger

	mu          sync.RWMutex
	connected   bool
	sourceCount int
	outputCount int
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the device at host (name or IP).
func NewHTTPClient(host string, logger *zap.Logger) *HTTPClient {
	// The matrix sets session cookies on a bare IP host, which the default
	// jar accepts; no public suffix list wanted here.
	jar, _ := cookiejar.New(nil)

	return &HTTPClient{
		host: host,
		httpc: &http.Client{
			Jar:     jar,
			Timeout: requestTimeout,
		},
		logger: logger,
	}
}

type loginRequest struct {
	Comhead  string `json:"comhead"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type loginReply struct {
	Result      int `json:"result"`
	SourceCount int `json:"source_count"`
	OutputCount int `json:"output_count"`
}

type commandReply struct {
	Result int `json:"result"`
}

// Connect authenticates against the device. It fails with ErrAuth on bad
// credentials and ErrConnection/ErrTimeout on network failure.
func (c *HTTPClient) Connect(ctx context.Context, user, password string) error {
	var reply loginReply
	err := c.post(ctx, loginRequest{Comhead: "login", User: user, Password: password}, &reply)
	if err != nil {
		return err
	}
	if reply.Result != 1 {
		return fmt.Errorf("%w: device rejected login for %q", ErrAuth, user)
	}

	c.mu.Lock()
	c.connected = true
	c.sourceCount = reply.SourceCount
	c.outputCount = reply.OutputCount
	c.mu.Unlock()

	c.logger.Info("Connected to HDMI matrix",
		zap.String("host", c.host),
		zap.Int("sources", reply.SourceCount),
		zap.Int("outputs", reply.OutputCount))
	return nil
}

// Disconnect drops the session state. The device expires the cookie on its own.
func (c *HTTPClient) Disconnect() {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
}

func (c *HTTPClient) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *HTTPClient) SourceCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sourceCount
}

func (c *HTTPClient) OutputCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.outputCount
}

// ValidateOutput checks a 1-based output number against the device size.
func (c *HTTPClient) ValidateOutput(output int) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if output < 1 || (c.outputCount > 0 && output > c.outputCount) {
		return fmt.Errorf("%w: %d", ErrInvalidOutput, output)
	}
	return nil
}

// ValidateSource checks a 1-based source number against the device size.
func (c *HTTPClient) ValidateSource(source int) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if source < 1 || (c.sourceCount > 0 && source > c.sourceCount) {
		return fmt.Errorf("%w: %d", ErrInvalidSource, source)
	}
	return nil
}

type comheadRequest struct {
	Comhead string `json:"comhead"`
}

func (c *HTTPClient) GetStatus(ctx context.Context) (*DeviceStatus, error) {
	var status DeviceStatus
	if err := c.post(ctx, comheadRequest{"get status"}, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *HTTPClient) GetSourceStatus(ctx context.Context) (*SourceStatus, error) {
	var status SourceStatus
	if err := c.post(ctx, comheadRequest{"get source status"}, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *HTTPClient) GetOutputStatus(ctx context.Context) (*OutputStatus, error) {
	var status OutputStatus
	if err := c.post(ctx, comheadRequest{"get output status"}, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *HTTPClient) GetCECStatus(ctx context.Context) (*CECStatus, error) {
	var status CECStatus
	if err := c.post(ctx, comheadRequest{"get cec status"}, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *HTTPClient) GetNetwork(ctx context.Context) (*NetworkInfo, error) {
	var info NetworkInfo
	if err := c.post(ctx, comheadRequest{"get network"}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *HTTPClient) GetSystemStatus(ctx context.Context) (*SystemStatus, error) {
	var status SystemStatus
	if err := c.post(ctx, comheadRequest{"get system status"}, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *HTTPClient) GetWebDetails(ctx context.Context) (*WebDetails, error) {
	var details WebDetails
	if err := c.post(ctx, comheadRequest{"get web details"}, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

type setPowerRequest struct {
	Comhead string `json:"comhead"`
	Power   int    `json:"power"`
}

func (c *HTTPClient) SetPower(ctx context.Context, on bool) (bool, error) {
	return c.command(ctx, setPowerRequest{Comhead: "set poweronoff", Power: boolToInt(on)})
}

type setStreamRequest struct {
	Comhead string `json:"comhead"`
	Output  int    `json:"output"`
	Enabled int    `json:"enabled"`
}

func (c *HTTPClient) SetOutputStream(ctx context.Context, output int, on bool) (bool, error) {
	if err := c.ValidateOutput(output); err != nil {
		return false, err
	}
	return c.command(ctx, setStreamRequest{Comhead: "set output stream", Output: output, Enabled: boolToInt(on)})
}

func (c *HTTPClient) SetOutputCATStream(ctx context.Context, output int, on bool) (bool, error) {
	if err := c.ValidateOutput(output); err != nil {
		return false, err
	}
	return c.command(ctx, setStreamRequest{Comhead: "set output cat stream", Output: output, Enabled: boolToInt(on)})
}

type videoSwitchRequest struct {
	Comhead string `json:"comhead"`
	Output  int    `json:"output"`
	Source  int    `json:"source"`
}

func (c *HTTPClient) SetVideoSource(ctx context.Context, output, source int) (bool, error) {
	if err := c.ValidateOutput(output); err != nil {
		return false, err
	}
	if err := c.ValidateSource(source); err != nil {
		return false, err
	}
	return c.command(ctx, videoSwitchRequest{Comhead: "video switch", Output: output, Source: source})
}

type cecOutputRequest struct {
	Comhead string `json:"comhead"`
	Output  int    `json:"output"`
	Command int    `json:"command"`
}

func (c *HTTPClient) SendCECOutput(ctx context.Context, output, command int) (bool, error) {
	if err := c.ValidateOutput(output); err != nil {
		return false, err
	}
	return c.command(ctx, cecOutputRequest{Comhead: "cec output", Output: output, Command: command})
}

type cecSourceRequest struct {
	Comhead string `json:"comhead"`
	Source  int    `json:"source"`
	Command int    `json:"command"`
}

func (c *HTTPClient) SendCECSource(ctx context.Context, source, command int) (bool, error) {
	if err := c.ValidateSource(source); err != nil {
		return false, err
	}
	return c.command(ctx, cecSourceRequest{Comhead: "cec source", Source: source, Command: command})
}

func (c *HTTPClient) Reboot(ctx context.Context) (bool, error) {
	return c.command(ctx, comheadRequest{"reboot"})
}

// command posts a mutation and reports the device's success flag.
func (c *HTTPClient) command(ctx context.Context, payload any) (bool, error) {
	var reply commandReply
	if err := c.post(ctx, payload, &reply); err != nil {
		return false, err
	}
	return reply.Result == 1, nil
}

// post sends one instruction to the CGI endpoint and decodes the reply into
// out. Transport failures are classified into the package sentinels.
func (c *HTTPClient) post(ctx context.Context, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("http://%s%s", c.host, instrPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: HTTP %d", ErrAuth, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: HTTP %d", ErrNotSupported, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: HTTP %d", ErrConnection, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode reply: %v", ErrConnection, err)
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

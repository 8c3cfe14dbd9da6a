// Package matrix owns the polling coordinator for a J-Tech Digital HDMI
// matrix: it maintains one authenticated session, refreshes a normalized
// snapshot on a fixed interval or on demand, and passes commands through to
// the device client.
package matrix

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/AlexOwl/jtechdigital-ha/internal/clock"
	"github.com/AlexOwl/jtechdigital-ha/internal/jtech"
)

const (
	// DefaultScanInterval drives background polling.
	DefaultScanInterval = 10 * time.Second

	// DefaultRefreshDebounce is the quiet window that coalesces bursts of
	// on-demand refresh requests into a single trailing fetch.
	DefaultRefreshDebounce = time.Second
)

// Config carries the coordinator's credentials and timing knobs.
type Config struct {
	Username        string
	Password        string
	ScanInterval    time.Duration
	RefreshDebounce time.Duration
}

// Snapshot is the fully-formed data published at the end of a poll cycle.
// Readers always see a complete snapshot; it is replaced as a unit, never
// mutated in place.
type Snapshot struct {
	Outputs     []OutputInfo
	Sources     []SourceInfo
	Status      Status
	Connected   bool
	LastUpdated time.Time
}

// fetchResults captures the individual outcome of the status fan-out. A
// failed endpoint leaves its field nil; one endpoint failing never blocks a
// refresh.
type fetchResults struct {
	status  *jtech.DeviceStatus
	source  *jtech.SourceStatus
	output  *jtech.OutputStatus
	cec     *jtech.CECStatus
	network *jtech.NetworkInfo
	system  *jtech.SystemStatus
	web     *jtech.WebDetails
}

// Coordinator reconciles device status into DTO lists for the entity layer.
type Coordinator struct {
	client    jtech.Client
	cfg       Config
	logger    *zap.Logger
	clk       clock.Clock
	debouncer *Debouncer

	// refreshMu serializes poll cycles; the timer loop and the debounced
	// refresh may otherwise overlap.
	refreshMu sync.Mutex

	mu       sync.RWMutex
	snapshot Snapshot

	subsMu      sync.Mutex
	subscribers map[int]func()
	nextSubID   int
}

// New creates a coordinator around an existing device client. The client is
// injected so entities and tests never reach through ambient state.
func New(client jtech.Client, cfg Config, logger *zap.Logger, clk clock.Clock) *Coordinator {
	if cfg.ScanInterval <= 0 {
		cfg.ScanInterval = DefaultScanInterval
	}
	if cfg.RefreshDebounce <= 0 {
		cfg.RefreshDebounce = DefaultRefreshDebounce
	}

	c := &Coordinator{
		client:      client,
		cfg:         cfg,
		logger:      logger,
		clk:         clk,
		subscribers: make(map[int]func()),
	}
	c.debouncer = NewDebouncer(clk, cfg.RefreshDebounce, func() {
		if err := c.Refresh(context.Background()); err != nil {
			c.logger.Warn("Debounced refresh failed", zap.Error(err))
		}
	})
	return c
}

// Run performs a first refresh and then polls on the scan interval until ctx
// is canceled.
func (c *Coordinator) Run(ctx context.Context) {
	if err := c.Refresh(ctx); err != nil {
		c.logger.Error("Initial refresh failed", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			c.debouncer.Cancel()
			return
		case <-c.clk.After(c.cfg.ScanInterval):
			if err := c.Refresh(ctx); err != nil {
				c.logger.Warn("Scheduled refresh failed", zap.Error(err))
			}
		}
	}
}

// RequestRefresh asks for an on-demand refresh. Bursts of requests collapse
// into a single fetch after the debounce window.
func (c *Coordinator) RequestRefresh() {
	c.debouncer.Request()
}

// Refresh runs one full poll cycle: ensure the session, fan out the status
// fetches, reconcile, publish. A connection-level failure is a "device off"
// determination and completes the cycle without error; only authentication
// failure and unclassified errors surface.
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if err := c.ensureConnected(ctx); err != nil {
		if errors.Is(err, jtech.ErrConnection) || errors.Is(err, jtech.ErrTimeout) {
			c.publishOffline()
			c.logger.Debug("Refresh skipped, device is off", zap.Error(err))
			return nil
		}
		if errors.Is(err, jtech.ErrAuth) {
			return fmt.Errorf("%w: %v", ErrAuthenticationRequired, err)
		}
		return fmt.Errorf("%w: %v", ErrUpdateFailed, err)
	}

	res := c.fetchAll(ctx)
	c.publish(c.reconcile(res))
	return nil
}

// ensureConnected establishes the device session when none exists. Any
// failure flips the connected flag so the next cycle retries the full
// connect sequence.
func (c *Coordinator) ensureConnected(ctx context.Context) error {
	c.mu.RLock()
	connected := c.snapshot.Connected
	c.mu.RUnlock()
	if connected {
		return nil
	}

	if err := c.client.Connect(ctx, c.cfg.Username, c.cfg.Password); err != nil {
		c.mu.Lock()
		c.snapshot.Connected = false
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.snapshot.Connected = true
	c.mu.Unlock()
	return nil
}

// fetchAll starts every status fetch together and waits for all of them to
// settle. Failures become nil results; no fetch cancels another.
func (c *Coordinator) fetchAll(ctx context.Context) *fetchResults {
	res := &fetchResults{}

	var wg sync.WaitGroup
	fetch := func(name string, f func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f(); err != nil {
				c.logger.Debug("Status fetch failed",
					zap.String("endpoint", name),
					zap.Error(err))
			}
		}()
	}

	fetch(jtech.EndpointStatus, func() (err error) {
		res.status, err = c.client.GetStatus(ctx)
		return
	})
	fetch(jtech.EndpointSource, func() (err error) {
		res.source, err = c.client.GetSourceStatus(ctx)
		return
	})
	fetch(jtech.EndpointOutput, func() (err error) {
		res.output, err = c.client.GetOutputStatus(ctx)
		return
	})
	fetch(jtech.EndpointCEC, func() (err error) {
		res.cec, err = c.client.GetCECStatus(ctx)
		return
	})
	fetch(jtech.EndpointNetwork, func() (err error) {
		res.network, err = c.client.GetNetwork(ctx)
		return
	})
	fetch(jtech.EndpointSystem, func() (err error) {
		res.system, err = c.client.GetSystemStatus(ctx)
		return
	})
	fetch(jtech.EndpointWebDetails, func() (err error) {
		res.web, err = c.client.GetWebDetails(ctx)
		return
	})

	wg.Wait()
	return res
}

// reconcile builds the next snapshot from the fetch results and the previous
// snapshot. Output and source lists are rebuilt wholesale when their status
// arrived and keep their previous value otherwise.
func (c *Coordinator) reconcile(res *fetchResults) Snapshot {
	c.mu.RLock()
	prev := c.snapshot
	c.mu.RUnlock()

	next := Snapshot{
		Status:      prev.Status,
		Connected:   prev.Connected,
		LastUpdated: c.clk.Now(),
	}

	next.Outputs = buildOutputs(res)
	if next.Outputs == nil {
		next.Outputs = prev.Outputs
	}
	next.Sources = buildSources(res, next.Outputs)
	if next.Sources == nil {
		next.Sources = prev.Sources
	}

	mergeStatus(&next.Status, res)
	return next
}

// buildOutputs zips the output-status arrays with the CEC selected-output
// set. Returns nil when output status or its name array is absent.
func buildOutputs(res *fetchResults) []OutputInfo {
	out := res.output
	if out == nil || len(out.OutputNames) == 0 {
		return nil
	}

	var cecSelected []int
	if res.cec != nil {
		cecSelected = res.cec.SelectedOutputs
	}

	outputs := make([]OutputInfo, len(out.OutputNames))
	for i, name := range out.OutputNames {
		outputs[i] = OutputInfo{
			Source:       intAt(out.SelectedSources, i),
			Name:         name,
			CATName:      strAt(out.OutputCATNames, i),
			Connected:    boolAt(out.ConnectedOutputs, i),
			CATConnected: boolAt(out.ConnectedCATOutputs, i),
			Enabled:      boolAt(out.EnabledOutputs, i),
			CATEnabled:   boolAt(out.EnabledCATOutputs, i),
			Scaler:       intAt(out.SelectedScalers, i),
			CECSelected:  containsInt(cecSelected, i),
		}
	}
	return outputs
}

// buildSources zips the source-status arrays with the CEC selected-source
// set and derives the inverse routing map over the output list of this
// cycle: source s owns exactly the outputs whose Source equals s. Returns
// nil when source status or its name array is absent.
func buildSources(res *fetchResults, outputs []OutputInfo) []SourceInfo {
	src := res.source
	if src == nil || len(src.SourceNames) == 0 {
		return nil
	}

	var cecSelected []int
	if res.cec != nil {
		cecSelected = res.cec.SelectedSources
	}

	sources := make([]SourceInfo, len(src.SourceNames))
	for i, name := range src.SourceNames {
		routed := []int{}
		for o, info := range outputs {
			if info.Source == i {
				routed = append(routed, o)
			}
		}
		sources[i] = SourceInfo{
			Outputs:     routed,
			Name:        name,
			Active:      boolAt(src.ActiveSources, i),
			EDIDIndex:   intAt(src.EDIDIndexes, i),
			CECSelected: containsInt(cecSelected, i),
		}
	}
	return sources
}

// mergeStatus folds the scalar fields of every successful fetch into st.
// Power is reported redundantly; the merge order fixes the precedence as
// device status, then output, source, network, system status — the last
// successful fetch in that order wins.
func mergeStatus(st *Status, res *fetchResults) {
	if res.status != nil {
		st.Power = res.status.Power
		if res.status.Model != "" {
			st.Model = res.status.Model
		}
		if res.status.Version != "" {
			st.Version = res.status.Version
		}
		if res.status.Hostname != "" {
			st.Hostname = res.status.Hostname
		}
		if res.status.MACAddress != "" {
			st.MACAddress = res.status.MACAddress
		}
	}
	if res.output != nil {
		st.Power = res.output.Power
	}
	if res.source != nil {
		st.Power = res.source.Power
	}
	if res.network != nil {
		st.Power = res.network.Power
		st.Hostname = res.network.Hostname
		st.IPAddress = res.network.IPAddress
		st.Subnet = res.network.Subnet
		st.Gateway = res.network.Gateway
		st.MACAddress = res.network.MACAddress
		st.DHCP = res.network.DHCP
		st.TelnetPort = res.network.TelnetPort
		st.TCPPort = res.network.TCPPort
		if res.network.Model != "" {
			st.Model = res.network.Model
		}
	}
	if res.system != nil {
		st.Power = res.system.Power
		st.BaudrateIndex = res.system.BaudrateIndex
		st.Beep = res.system.Beep
		st.Lock = res.system.Lock
		st.Mode = res.system.Mode
		if res.system.Version != "" {
			st.Version = res.system.Version
		}
	}
	if res.web != nil {
		st.Title = res.web.Title
	}
}

// publish replaces the snapshot as a unit and notifies observers.
func (c *Coordinator) publish(next Snapshot) {
	c.mu.Lock()
	c.snapshot = next
	c.mu.Unlock()

	c.notify()
}

// publishOffline records the "device off" determination: power and connected
// both false, everything else keeps its previous value.
func (c *Coordinator) publishOffline() {
	c.mu.Lock()
	next := c.snapshot
	next.Status.Power = false
	next.Connected = false
	next.LastUpdated = c.clk.Now()
	c.snapshot = next
	c.mu.Unlock()

	c.notify()
}

func (c *Coordinator) notify() {
	c.subsMu.Lock()
	handlers := make([]func(), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		handlers = append(handlers, fn)
	}
	c.subsMu.Unlock()

	for _, fn := range handlers {
		fn()
	}
}

// Subscribe registers fn to run after every snapshot publish. The returned
// function removes the subscription.
func (c *Coordinator) Subscribe(fn func()) func() {
	c.subsMu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.subsMu.Unlock()

	return func() {
		c.subsMu.Lock()
		delete(c.subscribers, id)
		c.subsMu.Unlock()
	}
}

// GetSnapshot returns the current snapshot.
func (c *Coordinator) GetSnapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Outputs returns the current output list.
func (c *Coordinator) Outputs() []OutputInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot.Outputs
}

// Sources returns the current source list.
func (c *Coordinator) Sources() []SourceInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot.Sources
}

// Status returns the combined scalar status.
func (c *Coordinator) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot.Status
}

// Connected reports whether a device session is established.
func (c *Coordinator) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot.Connected
}

// LastUpdated reports when the last cycle completed; zero before the first.
func (c *Coordinator) LastUpdated() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot.LastUpdated
}

// Output returns the record for a 1-based output number.
func (c *Coordinator) Output(output int) (OutputInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if output < 1 || output > len(c.snapshot.Outputs) {
		return OutputInfo{}, false
	}
	return c.snapshot.Outputs[output-1], true
}

// Source returns the record for a 1-based source number.
func (c *Coordinator) Source(source int) (SourceInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if source < 1 || source > len(c.snapshot.Sources) {
		return SourceInfo{}, false
	}
	return c.snapshot.Sources[source-1], true
}

// Command passthroughs. Each is a single device call returning the device's
// success flag; the caller decides when to RequestRefresh.

func (c *Coordinator) EnableOutput(ctx context.Context, output int) (bool, error) {
	return c.client.SetOutputStream(ctx, output, true)
}

func (c *Coordinator) DisableOutput(ctx context.Context, output int) (bool, error) {
	return c.client.SetOutputStream(ctx, output, false)
}

func (c *Coordinator) EnableCATOutput(ctx context.Context, output int) (bool, error) {
	return c.client.SetOutputCATStream(ctx, output, true)
}

func (c *Coordinator) DisableCATOutput(ctx context.Context, output int) (bool, error) {
	return c.client.SetOutputCATStream(ctx, output, false)
}

func (c *Coordinator) SelectSource(ctx context.Context, output, source int) (bool, error) {
	return c.client.SetVideoSource(ctx, output, source)
}

func (c *Coordinator) SendCECOutput(ctx context.Context, output, command int) (bool, error) {
	return c.client.SendCECOutput(ctx, output, command)
}

func (c *Coordinator) SendCECSource(ctx context.Context, source, command int) (bool, error) {
	return c.client.SendCECSource(ctx, source, command)
}

func (c *Coordinator) PowerOn(ctx context.Context) (bool, error) {
	return c.client.SetPower(ctx, true)
}

func (c *Coordinator) PowerOff(ctx context.Context) (bool, error) {
	return c.client.SetPower(ctx, false)
}

func (c *Coordinator) RebootDevice(ctx context.Context) (bool, error) {
	return c.client.Reboot(ctx)
}

func intAt(s []int, i int) int {
	if i < len(s) {
		return s[i]
	}
	return 0
}

func strAt(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}
	return ""
}

func boolAt(s []bool, i int) bool {
	return i < len(s) && s[i]
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

package dashboard

import (
	"context"
	"fmt"
	"sync"

	"plant_monitor/internal/logger"
	"plant_monitor/internal/telemetry"
)

// ErrInvalidWindow is returned by SelectWindow for lookbacks outside telemetry.Windows.
var ErrInvalidWindow = fmt.Errorf("%w: unsupported window", telemetry.ErrInvalidArgument)

// Loader produces the series of a plant for a lookback in days.
// *telemetry.Pipeline satisfies it.
type Loader interface {
	Run(ctx context.Context, plantID string, windowDays int) (telemetry.ChartSeries, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, plantID string, windowDays int) (telemetry.ChartSeries, error)

func (f LoaderFunc) Run(ctx context.Context, plantID string, windowDays int) (telemetry.ChartSeries, error) {
	return f(ctx, plantID, windowDays)
}

// Options tunes a Controller.
type Options struct {
	WindowDays int // initial window; telemetry.DefaultWindow when zero or unsupported
	Log        *logger.Logger
}

// Controller owns one FetchState cell. Every selection change moves it to
// loading and starts a fetch; a result is committed only if it was issued for
// the selection that is still current.
type Controller struct {
	loader Loader
	log    *logger.Logger
	parent context.Context

	mu      sync.Mutex
	key     key
	seq     uint64
	state   FetchState
	cancel  context.CancelFunc
	closed  bool
	changed chan struct{}

	wg sync.WaitGroup
}

// New builds an idle controller. In-flight fetches are bound to ctx.
func New(ctx context.Context, loader Loader, opts Options) *Controller {
	days := opts.WindowDays
	if !telemetry.ValidWindow(days) {
		days = telemetry.DefaultWindow
	}
	k := key{windowDays: days}
	return &Controller{
		loader:  loader,
		log:     opts.Log,
		parent:  ctx,
		key:     k,
		state:   idleState(k),
		changed: make(chan struct{}, 1),
	}
}

// SelectPlant switches the dashboard to plantID. Selecting the current plant
// is a no-op; an empty id returns the controller to idle.
func (c *Controller) SelectPlant(plantID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || plantID == c.key.plantID {
		return
	}
	c.key.plantID = plantID
	c.restartLocked()
}

// SelectWindow switches the lookback. Selecting the current window is a no-op.
func (c *Controller) SelectWindow(days int) error {
	if !telemetry.ValidWindow(days) {
		return fmt.Errorf("%w: %d days", ErrInvalidWindow, days)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || days == c.key.windowDays {
		return nil
	}
	c.key.windowDays = days
	c.restartLocked()
	return nil
}

// CurrentState returns a snapshot of the state cell.
func (c *Controller) CurrentState() FetchState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Changed signals after every state transition. Notifications coalesce, so a
// reader should always re-read CurrentState.
func (c *Controller) Changed() <-chan struct{} {
	return c.changed
}

// Close cancels any in-flight fetch and waits for it to return. Later
// selections are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		c.seq++
		if c.cancel != nil {
			c.cancel()
			c.cancel = nil
		}
	}
	c.mu.Unlock()
	c.wg.Wait()
}

// restartLocked supersedes the pending request and issues a new one for the
// current key. c.mu must be held.
func (c *Controller) restartLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.seq++

	if c.key.plantID == "" {
		c.state = idleState(c.key)
		c.notify()
		return
	}

	c.state = loadingState(c.key)
	c.notify()

	ctx, cancel := context.WithCancel(c.parent)
	c.cancel = cancel
	c.wg.Add(1)
	go c.load(ctx, c.seq, c.key)
}

func (c *Controller) load(ctx context.Context, seq uint64, k key) {
	defer c.wg.Done()
	series, err := c.loader.Run(ctx, k.plantID, k.windowDays)
	c.commit(seq, k, series, err)
}

func (c *Controller) commit(seq uint64, k key, series telemetry.ChartSeries, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq || k != c.key {
		if c.log != nil {
			c.log.Debugw("dashboard_stale_response_dropped",
				"plant_id", k.plantID, "window_days", k.windowDays, "seq", seq, "current_seq", c.seq)
		}
		return
	}

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state = Resolve(k.plantID, k.windowDays, series, err)
	if err != nil && c.log != nil {
		c.log.Errorw("telemetry_fetch_failed",
			"plant_id", k.plantID, "window_days", k.windowDays, "kind", c.state.Reason, "err", err)
	}
	c.notify()
}

func (c *Controller) notify() {
	select {
	case c.changed <- struct{}{}:
	default:
	}
}

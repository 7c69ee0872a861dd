package dashboard

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"plant_monitor/internal/backend"
	"plant_monitor/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wait blocks until every issued fetch has returned.
func (c *Controller) wait() {
	c.wg.Wait()
}

func f(v float64) *float64 { return &v }

func seriesOf(labels ...string) telemetry.ChartSeries {
	s := telemetry.ChartSeries{Labels: labels}
	for i := range labels {
		s.Temperature = append(s.Temperature, f(float64(20+i)))
		s.Humidity = append(s.Humidity, f(float64(50+i)))
	}
	return s
}

type result struct {
	series telemetry.ChartSeries
	err    error
}

type pendingCall struct {
	plantID string
	days    int
	release chan result
}

// gatedLoader parks every call until the test releases it. It ignores context
// cancellation so that late results really reach the controller.
type gatedLoader struct {
	calls chan *pendingCall
}

func newGatedLoader() *gatedLoader {
	return &gatedLoader{calls: make(chan *pendingCall, 16)}
}

func (g *gatedLoader) Run(_ context.Context, plantID string, days int) (telemetry.ChartSeries, error) {
	pc := &pendingCall{plantID: plantID, days: days, release: make(chan result, 1)}
	g.calls <- pc
	r := <-pc.release
	return r.series, r.err
}

func (g *gatedLoader) next(t *testing.T) *pendingCall {
	t.Helper()
	select {
	case pc := <-g.calls:
		return pc
	case <-time.After(2 * time.Second):
		t.Fatal("loader was not called")
		return nil
	}
}

type countingLoader struct {
	mu    sync.Mutex
	calls []key
}

func (l *countingLoader) Run(_ context.Context, plantID string, days int) (telemetry.ChartSeries, error) {
	l.mu.Lock()
	l.calls = append(l.calls, key{plantID, days})
	l.mu.Unlock()
	return seriesOf("01/03"), nil
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls)
}

func TestNew_StartsIdleWithDefaultWindow(t *testing.T) {
	t.Parallel()

	c := New(context.Background(), &countingLoader{}, Options{WindowDays: 7})
	defer c.Close()

	st := c.CurrentState()
	assert.Equal(t, StatusIdle, st.Status)
	assert.Equal(t, telemetry.DefaultWindow, st.WindowDays)
	assert.Nil(t, st.Series)
}

func TestSelectPlant_LoadsSeries(t *testing.T) {
	t.Parallel()

	g := newGatedLoader()
	c := New(context.Background(), g, Options{})
	defer c.Close()

	c.SelectPlant("7")
	assert.Equal(t, StatusLoading, c.CurrentState().Status)
	assert.Nil(t, c.CurrentState().Series)

	pc := g.next(t)
	assert.Equal(t, "7", pc.plantID)
	assert.Equal(t, 3, pc.days)
	pc.release <- result{series: seriesOf("08/03", "09/03")}
	c.wait()

	st := c.CurrentState()
	require.Equal(t, StatusLoaded, st.Status)
	require.NotNil(t, st.Series)
	assert.Equal(t, 2, st.Series.Len())
	assert.Equal(t, "7", st.PlantID)
}

func TestSelectors_SameValueIsNoop(t *testing.T) {
	t.Parallel()

	l := &countingLoader{}
	c := New(context.Background(), l, Options{})
	defer c.Close()

	c.SelectPlant("1")
	c.wait()
	require.Equal(t, 1, l.count())

	c.SelectPlant("1")
	require.NoError(t, c.SelectWindow(telemetry.DefaultWindow))
	c.wait()
	assert.Equal(t, 1, l.count())
	assert.Equal(t, StatusLoaded, c.CurrentState().Status)

	require.NoError(t, c.SelectWindow(10))
	c.wait()
	assert.Equal(t, 2, l.count())
	assert.Equal(t, []key{{"1", 3}, {"1", 10}}, l.calls)
}

func TestSelectWindow_RejectsUnsupported(t *testing.T) {
	t.Parallel()

	l := &countingLoader{}
	c := New(context.Background(), l, Options{})
	defer c.Close()
	c.SelectPlant("1")
	c.wait()

	for _, days := range []int{0, -3, 4, 31} {
		err := c.SelectWindow(days)
		assert.ErrorIs(t, err, ErrInvalidWindow)
		assert.ErrorIs(t, err, telemetry.ErrInvalidArgument)
	}
	assert.Equal(t, 1, l.count())
	assert.Equal(t, 3, c.CurrentState().WindowDays)
}

func TestSelectWindow_WithoutPlantStaysIdle(t *testing.T) {
	t.Parallel()

	l := &countingLoader{}
	c := New(context.Background(), l, Options{})
	defer c.Close()

	require.NoError(t, c.SelectWindow(30))
	assert.Equal(t, StatusIdle, c.CurrentState().Status)
	assert.Equal(t, 30, c.CurrentState().WindowDays)
	assert.Zero(t, l.count())

	c.SelectPlant("2")
	c.wait()
	assert.Equal(t, []key{{"2", 30}}, l.calls)
}

func TestSelectPlant_EmptyReturnsToIdle(t *testing.T) {
	t.Parallel()

	g := newGatedLoader()
	c := New(context.Background(), g, Options{})
	defer c.Close()

	c.SelectPlant("1")
	pc := g.next(t)
	c.SelectPlant("")
	assert.Equal(t, StatusIdle, c.CurrentState().Status)

	pc.release <- result{series: seriesOf("01/03")}
	c.wait()
	assert.Equal(t, StatusIdle, c.CurrentState().Status)
}

func TestStaleResponseSuppression(t *testing.T) {
	t.Parallel()

	for _, order := range []string{"stale first", "stale last"} {
		order := order
		t.Run(order, func(t *testing.T) {
			t.Parallel()

			g := newGatedLoader()
			c := New(context.Background(), g, Options{})
			defer c.Close()

			c.SelectPlant("1")
			first := g.next(t)
			require.NoError(t, c.SelectWindow(5))
			second := g.next(t)
			assert.Equal(t, StatusLoading, c.CurrentState().Status)

			stale := result{series: seriesOf("a", "b", "c")}
			fresh := result{series: seriesOf("x")}
			if order == "stale first" {
				first.release <- stale
				second.release <- fresh
			} else {
				second.release <- fresh
				first.release <- stale
			}
			c.wait()

			st := c.CurrentState()
			require.Equal(t, StatusLoaded, st.Status)
			assert.Equal(t, 5, st.WindowDays)
			assert.Equal(t, []string{"x"}, st.Series.Labels)
		})
	}
}

func TestStaleResponseSuppression_PlantSwitchBack(t *testing.T) {
	t.Parallel()

	// 1 -> 2 -> 1 issues three requests; only the third may commit even
	// though the first carries the same key.
	g := newGatedLoader()
	c := New(context.Background(), g, Options{})
	defer c.Close()

	c.SelectPlant("1")
	a := g.next(t)
	c.SelectPlant("2")
	b := g.next(t)
	c.SelectPlant("1")
	cc := g.next(t)

	cc.release <- result{series: seriesOf("c")}
	a.release <- result{err: errors.New("boom")}
	b.release <- result{series: seriesOf("b")}
	c.wait()
	st := c.CurrentState()
	require.Equal(t, StatusLoaded, st.Status)
	assert.Equal(t, "1", st.PlantID)
	assert.Equal(t, []string{"c"}, st.Series.Labels)
}

func TestFailure_DiscardsPriorSeries(t *testing.T) {
	t.Parallel()

	var fail atomic.Bool
	loader := LoaderFunc(func(ctx context.Context, plantID string, days int) (telemetry.ChartSeries, error) {
		if fail.Load() {
			return telemetry.ChartSeries{}, &telemetry.FetchError{Kind: telemetry.KindNetworkOrServer, Op: "GET x", StatusCode: 500}
		}
		return seriesOf("01/03"), nil
	})
	c := New(context.Background(), loader, Options{})
	defer c.Close()

	c.SelectPlant("1")
	c.wait()
	require.Equal(t, StatusLoaded, c.CurrentState().Status)

	fail.Store(true)
	require.NoError(t, c.SelectWindow(10))
	c.wait()

	st := c.CurrentState()
	assert.Equal(t, StatusFailed, st.Status)
	assert.Equal(t, telemetry.KindNetworkOrServer, st.Reason)
	assert.Equal(t, MessageFailed, st.Message)
	assert.Nil(t, st.Series)
}

func TestSelect_CancelsSupersededRequest(t *testing.T) {
	t.Parallel()

	cancelled := make(chan struct{})
	loader := LoaderFunc(func(ctx context.Context, plantID string, days int) (telemetry.ChartSeries, error) {
		if plantID == "slow" {
			<-ctx.Done()
			close(cancelled)
			return telemetry.ChartSeries{}, ctx.Err()
		}
		return seriesOf("01/03"), nil
	})
	c := New(context.Background(), loader, Options{})
	defer c.Close()

	c.SelectPlant("slow")
	c.SelectPlant("fast")

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("superseded request was not cancelled")
	}
	c.wait()
	assert.Equal(t, StatusLoaded, c.CurrentState().Status)
	assert.Equal(t, "fast", c.CurrentState().PlantID)
}

func TestClose_IgnoresLateResultsAndSelections(t *testing.T) {
	t.Parallel()

	g := newGatedLoader()
	c := New(context.Background(), g, Options{})

	c.SelectPlant("1")
	pc := g.next(t)

	done := make(chan struct{})
	go func() {
		c.Close()
		close(done)
	}()
	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.closed
	}, 2*time.Second, 5*time.Millisecond)
	pc.release <- result{series: seriesOf("late")}
	<-done

	assert.Equal(t, StatusLoading, c.CurrentState().Status)
	c.SelectPlant("2")
	assert.Equal(t, "1", c.CurrentState().PlantID)
}

func TestChanged_Notifies(t *testing.T) {
	t.Parallel()

	l := &countingLoader{}
	c := New(context.Background(), l, Options{})
	defer c.Close()

	c.SelectPlant("1")
	deadline := time.After(2 * time.Second)
	for c.CurrentState().Status != StatusLoaded {
		select {
		case <-c.Changed():
		case <-deadline:
			t.Fatal("no notification for loaded state")
		}
	}
}

// End-to-end scenarios through the real pipeline and HTTP client.

func newBackend(t *testing.T, h http.HandlerFunc) *telemetry.Pipeline {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	client, err := backend.NewClient(backend.Config{BaseURL: srv.URL}, nil)
	require.NoError(t, err)
	now := func() time.Time { return time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC) }
	return telemetry.NewPipeline(client, telemetry.Transformer{Location: time.UTC}, now)
}

func TestScenario_ThreeEntriesLoaded(t *testing.T) {
	t.Parallel()

	p := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2025-03-07", r.URL.Query().Get("start_date"))
		assert.Equal(t, "2025-03-10", r.URL.Query().Get("end_date"))
		_, _ = io.WriteString(w, `{"data":[
			{"temperatura":21.0,"umidade":61,"created_at":"2025-03-08T12:00:00Z"},
			{"temperatura":22.0,"umidade":60,"created_at":"2025-03-09T12:00:00Z"},
			{"temperatura":23.0,"umidade":59,"created_at":"2025-03-10T12:00:00Z"}
		]}`)
	})
	c := New(context.Background(), p, Options{})
	defer c.Close()

	c.SelectPlant("1")
	require.NoError(t, c.SelectWindow(3))
	c.wait()

	st := c.CurrentState()
	require.Equal(t, StatusLoaded, st.Status)
	assert.Equal(t, 3, st.Series.Len())
	assert.Equal(t, []string{"08/03", "09/03", "10/03"}, st.Series.Labels)
}

func TestScenario_NullDataIsEmpty(t *testing.T) {
	t.Parallel()

	p := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data": null}`)
	})
	c := New(context.Background(), p, Options{})
	defer c.Close()

	c.SelectPlant("1")
	c.wait()

	st := c.CurrentState()
	assert.Equal(t, StatusEmpty, st.Status)
	assert.Equal(t, MessageEmpty, st.Message)
	assert.Empty(t, st.Reason)
}

func TestScenario_ServerErrorIsFailed(t *testing.T) {
	t.Parallel()

	p := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	c := New(context.Background(), p, Options{})
	defer c.Close()

	c.SelectPlant("1")
	c.wait()

	st := c.CurrentState()
	assert.Equal(t, StatusFailed, st.Status)
	assert.Equal(t, telemetry.KindNetworkOrServer, st.Reason)
	assert.NotEmpty(t, st.Message)
	assert.Nil(t, st.Series)
}

func TestResolve(t *testing.T) {
	t.Parallel()

	assert.Equal(t, StatusLoaded, Resolve("1", 3, seriesOf("a"), nil).Status)
	assert.Equal(t, StatusEmpty, Resolve("1", 3, telemetry.ChartSeries{}, nil).Status)

	st := Resolve("1", 3, seriesOf("a"), telemetry.ErrInvalidArgument)
	assert.Equal(t, StatusFailed, st.Status)
	assert.Equal(t, telemetry.KindInvalidArgument, st.Reason)
	assert.Nil(t, st.Series)
	assert.True(t, st.Terminal())
	assert.False(t, loadingState(key{"1", 3}).Terminal())
}

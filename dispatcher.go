package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/panjf2000/ants/v2"

	"github.com/Tap30/analytics-go/adapters"
	"github.com/Tap30/analytics-go/observability"
)

const defaultWorkers = 4

// DispatcherConfig configures a Dispatcher. Zero values select defaults.
type DispatcherConfig struct {
	// Workers bounds how many adapters are called concurrently by Send.
	Workers       int
	LoggerAdapter LoggerAdapter
	Metrics       observability.MetricsRecorder
	Spans         observability.SpanManager
}

// Result is the outcome of one adapter's CreateEvent call.
type Result struct {
	Adapter  string
	Sent     bool
	Err      error
	Duration time.Duration
}

// Outcome classifies the result the same way metrics do.
func (r Result) Outcome() observability.Outcome {
	return classify(r.Sent, r.Err)
}

// Dispatcher fans one event out to every registered adapter. Each adapter
// is called independently; there is no ordering between backends and one
// backend's failure does not affect the others.
type Dispatcher struct {
	adapters      cmap.ConcurrentMap[string, Adapter]
	props         *PropsManager
	pool          *ants.Pool
	loggerAdapter LoggerAdapter
	metrics       observability.MetricsRecorder
	spans         observability.SpanManager
	closed        atomic.Bool
}

// NewDispatcher creates a dispatcher with its own worker pool.
func NewDispatcher(config DispatcherConfig) (*Dispatcher, error) {
	if config.Workers <= 0 {
		config.Workers = defaultWorkers
	}
	if config.LoggerAdapter == nil {
		config.LoggerAdapter = adapters.NewPrintLoggerAdapter(adapters.LogLevelWarn)
	}
	if config.Metrics == nil {
		config.Metrics = observability.NoopMetrics{}
	}
	if config.Spans == nil {
		config.Spans = observability.NoopSpanManager{}
	}

	pool, err := ants.NewPool(config.Workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}

	return &Dispatcher{
		adapters:      cmap.New[Adapter](),
		props:         NewPropsManager(),
		pool:          pool,
		loggerAdapter: config.LoggerAdapter,
		metrics:       config.Metrics,
		spans:         config.Spans,
	}, nil
}

// Register adds an adapter under its Name.
func (d *Dispatcher) Register(adapter Adapter) error {
	name := adapter.Name()
	if name == "" {
		return errors.New("analytics: adapter name cannot be empty")
	}
	if !d.adapters.SetIfAbsent(name, adapter) {
		return fmt.Errorf("%w: %s", ErrDuplicateAdapter, name)
	}
	d.loggerAdapter.Debug("Registered adapter %s", name)
	return nil
}

// Remove unregisters the named adapter. Unknown names are ignored.
func (d *Dispatcher) Remove(name string) {
	d.adapters.Remove(name)
}

// Adapter returns the named adapter.
func (d *Dispatcher) Adapter(name string) (Adapter, bool) {
	return d.adapters.Get(name)
}

// Names returns the registered adapter names in sorted order.
func (d *Dispatcher) Names() []string {
	names := d.adapters.Keys()
	sort.Strings(names)
	return names
}

// SetProp sets a prop attached to every event sent from now on.
func (d *Dispatcher) SetProp(key string, value any) error {
	return d.props.Set(key, value)
}

// Props returns a copy of the global props.
func (d *Dispatcher) Props() map[string]any {
	return d.props.GetAll()
}

// Send delivers event to every registered adapter and waits for all of them.
// Results are sorted by adapter name. The caller's event is not modified.
func (d *Dispatcher) Send(ctx context.Context, event *Event) []Result {
	names := d.Names()
	results := make([]Result, len(names))
	if len(names) == 0 {
		d.loggerAdapter.Warn("Send called with no adapters registered")
		return results
	}

	prepared := d.props.Apply(event)

	var wg sync.WaitGroup
	for i, name := range names {
		adapter, ok := d.adapters.Get(name)
		if !ok {
			results[i] = Result{Adapter: name, Err: fmt.Errorf("%w: %s", ErrUnknownAdapter, name)}
			continue
		}
		if d.closed.Load() {
			results[i] = Result{Adapter: name, Err: ErrDispatcherClosed}
			continue
		}

		wg.Add(1)
		err := d.pool.Submit(func() {
			defer wg.Done()
			results[i] = d.send(ctx, adapter, prepared)
		})
		if err != nil {
			wg.Done()
			results[i] = Result{Adapter: name, Err: fmt.Errorf("%w: %v", ErrDispatcherClosed, err)}
		}
	}
	wg.Wait()

	return results
}

// SendTo delivers event to a single adapter on the calling goroutine.
func (d *Dispatcher) SendTo(ctx context.Context, name string, event *Event) Result {
	if d.closed.Load() {
		return Result{Adapter: name, Err: ErrDispatcherClosed}
	}
	adapter, ok := d.adapters.Get(name)
	if !ok {
		return Result{Adapter: name, Err: fmt.Errorf("%w: %s", ErrUnknownAdapter, name)}
	}
	return d.send(ctx, adapter, d.props.Apply(event))
}

func (d *Dispatcher) send(ctx context.Context, adapter Adapter, event *Event) (result Result) {
	name := adapter.Name()
	result.Adapter = name

	ctx, span := d.spans.StartSendSpan(ctx, name, event.Type())
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			result.Sent = false
			result.Err = fmt.Errorf("analytics: %s panicked: %v", name, r)
		}
		result.Duration = time.Since(start)

		outcome := result.Outcome()
		d.spans.EndSpan(span, outcome, result.Err)
		d.metrics.RecordSend(ctx, name, outcome, result.Duration)
		d.logResult(result, outcome)
	}()

	d.loggerAdapter.Debug("Sending %q event to %s", event.Type(), name)
	result.Sent, result.Err = adapter.CreateEvent(ctx, event)
	return result
}

func (d *Dispatcher) logResult(result Result, outcome observability.Outcome) {
	switch outcome {
	case observability.OutcomeSent:
		d.loggerAdapter.Debug("Sent event to %s in %v", result.Adapter, result.Duration)
	case observability.OutcomeDisabled:
		d.loggerAdapter.Debug("Skipped %s: adapter disabled", result.Adapter)
	case observability.OutcomeInvalid:
		d.loggerAdapter.Warn("Dropped event for %s: %v", result.Adapter, result.Err)
	default:
		d.loggerAdapter.Error("Failed to send event to %s: %v", result.Adapter, result.Err)
	}
}

// Close releases the worker pool. Sends after Close fail with ErrDispatcherClosed.
func (d *Dispatcher) Close() {
	if d.closed.Swap(true) {
		return
	}
	d.pool.Release()
}

func classify(sent bool, err error) observability.Outcome {
	switch {
	case err == nil && sent:
		return observability.OutcomeSent
	case err == nil:
		return observability.OutcomeDisabled
	case errors.Is(err, ErrInvalidEvent):
		return observability.OutcomeInvalid
	default:
		return observability.OutcomeFailed
	}
}

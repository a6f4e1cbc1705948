// Command analytics sends one event to every backend configured in a file
// and prints what each backend did with it.
//
//	analytics -config analytics.yaml -type signup -name trial -prop email=a@b.c -prop seats=3
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	analytics "github.com/Tap30/analytics-go"
	"github.com/Tap30/analytics-go/backends"
	"github.com/Tap30/analytics-go/config"
)

const (
	exitCodeFailure = 1
	exitCodeUsage   = 2
)

var version = "dev"

// propsFlag collects repeatable -prop key=value flags. Values that parse as
// JSON scalars keep their type; anything else is a string.
type propsFlag map[string]any

func (p propsFlag) String() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

func (p propsFlag) Set(s string) error {
	key, raw, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		value = raw
	}
	switch value.(type) {
	case map[string]any, []any:
		value = raw
	}
	p[key] = value
	return nil
}

func run() int {
	var (
		configPath string
		eventType  string
		eventName  string
		eventURL   string
		eventValue float64
		exporter   string
		validate   bool
		showInfo   bool
		props      = propsFlag{}
	)

	flag.StringVar(&configPath, "config", "analytics.yaml", "path to YAML, TOML or JSON config file")
	flag.StringVar(&eventType, "type", "", "event type")
	flag.StringVar(&eventName, "name", "", "event name")
	flag.StringVar(&eventURL, "url", "", "event URL")
	flag.Float64Var(&eventValue, "value", 0, "event value")
	flag.Var(props, "prop", "event prop as key=value (repeatable)")
	flag.StringVar(&exporter, "metrics", "", "metrics exporter: none, otel or prometheus (overrides config)")
	flag.BoolVar(&validate, "validate", false, "ask backends that support it whether the event is valid instead of sending it")
	flag.BoolVar(&showInfo, "version", false, "show build information")
	flag.Parse()

	if showInfo {
		fmt.Printf("analytics version=%s\n", version)
		return 0
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitCodeUsage
	}
	if exporter != "" {
		cfg.Metrics.Exporter = strings.ToLower(exporter)
	}

	logger, err := cfg.Log.Logger(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitCodeUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	telemetry, err := newTelemetry(cfg.Metrics.Exporter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitCodeUsage
	}
	defer telemetry.shutdown(context.Background())

	built, err := backends.FromConfig(*cfg, backends.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitCodeUsage
	}

	event := analytics.NewEvent().
		SetType(eventType).
		SetName(eventName).
		SetURL(eventURL).
		SetValue(eventValue).
		SetProps(props)

	if validate {
		return runValidate(ctx, os.Stdout, built, event)
	}

	dispatcher, err := analytics.NewDispatcher(analytics.DispatcherConfig{
		Workers:       cfg.Dispatcher.Workers,
		LoggerAdapter: logger,
		Metrics:       telemetry.metrics,
		Spans:         telemetry.spans,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitCodeFailure
	}
	defer dispatcher.Close()

	for _, a := range built {
		if err := dispatcher.Register(a); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return exitCodeFailure
		}
	}

	results := dispatcher.Send(ctx, event)
	failed := printResults(os.Stdout, results)

	if err := telemetry.report(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}

	if failed {
		return exitCodeFailure
	}
	return 0
}

func printResults(w io.Writer, results []analytics.Result) bool {
	failed := false
	for _, r := range results {
		line := fmt.Sprintf("%-16s %-9s %s", r.Adapter, r.Outcome(), r.Duration.Round(time.Millisecond))
		if r.Err != nil {
			failed = true
			line += "  " + r.Err.Error()
		}
		fmt.Fprintln(w, line)
	}
	return failed
}

func runValidate(ctx context.Context, w io.Writer, adapters []analytics.Adapter, event *analytics.Event) int {
	code := 0
	for _, a := range adapters {
		v, ok := a.(analytics.Validator)
		if !ok {
			fmt.Fprintf(w, "%-16s unsupported\n", a.Name())
			continue
		}
		valid, err := v.Validate(ctx, event)
		switch {
		case err != nil:
			code = exitCodeFailure
			if errors.Is(err, analytics.ErrInvalidEvent) {
				fmt.Fprintf(w, "%-16s invalid   %v\n", a.Name(), err)
			} else {
				fmt.Fprintf(w, "%-16s failed    %v\n", a.Name(), err)
			}
		case !a.Enabled():
			fmt.Fprintf(w, "%-16s disabled\n", a.Name())
		default:
			fmt.Fprintf(w, "%-16s valid=%t\n", a.Name(), valid)
		}
	}
	return code
}

func main() {
	os.Exit(run())
}

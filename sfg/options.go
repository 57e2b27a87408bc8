package sfg

import (
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"github.com/dshills/sfg/emit"
)

// Option is a functional option for configuring a Graph at construction.
//
// Functional options keep New's signature stable as configuration grows:
//
//	g, err := sfg.New(bank,
//	    sfg.WithEmitter(emit.NewLogEmitter(os.Stderr, true)),
//	    sfg.WithFusionWindow(64),
//	)
type Option func(*config) error

// config collects options before they are applied to a Graph.
type config struct {
	emitter       emit.Emitter
	metrics       *PrometheusMetrics
	tracer        trace.Tracer
	fusionWindow  int
	listgenFilter bool
	liveStates    StateSet
	bank          Bank
}

func defaultConfig() *config {
	return &config{
		emitter:       emit.NewNullEmitter(),
		listgenFilter: true,
	}
}

// WithEmitter routes graph-lifecycle events (insert_tasks, fuse_range,
// fuse_nodes, optimize_listgen, demote_activation, optimize_dead_store,
// extract_to_execute) to emitter. Defaults to emit.NullEmitter.
func WithEmitter(emitter emit.Emitter) Option {
	return func(cfg *config) error {
		cfg.emitter = emitter
		return nil
	}
}

// WithMetrics attaches Prometheus instrumentation. Defaults to disabled.
//
//	registry := prometheus.NewRegistry()
//	metrics := sfg.NewPrometheusMetrics(registry)
//	g, err := sfg.New(bank, sfg.WithMetrics(metrics))
func WithMetrics(metrics *PrometheusMetrics) Option {
	return func(cfg *config) error {
		cfg.metrics = metrics
		return nil
	}
}

// WithTracer emits one OpenTelemetry span per optimization pass via the
// given tracer, e.g. otel.Tracer("sfg").
func WithTracer(tracer trace.Tracer) Option {
	return func(cfg *config) error {
		cfg.tracer = tracer
		return nil
	}
}

// WithFusionWindow bounds fuse()'s pending-suffix scan to at most n nodes
// per pass, trading fusion opportunities across long pending windows for a
// bounded transitive-closure bitset. 0 (the default) means unbounded.
func WithFusionWindow(n int) Option {
	return func(cfg *config) error {
		cfg.fusionWindow = n
		return nil
	}
}

// WithListgenFilter enables or disables list-regeneration deduplication in
// InsertTasks (insert_tasks's filter_listgen argument). Defaults to true.
func WithListgenFilter(enabled bool) Option {
	return func(cfg *config) error {
		cfg.listgenFilter = enabled
		return nil
	}
}

// WithLiveStates declares the set of states the post-SFG execution engine
// observes, for optimize_dead_store's liveness check. States absent from
// this set and from every remaining reader are eligible for deletion.
func WithLiveStates(states StateSet) Option {
	return func(cfg *config) error {
		cfg.liveStates = states
		return nil
	}
}

// WithIRBank overrides the Bank passed to New, e.g. to swap in a
// DurableBank-wrapped bank assembled after the plain bank was already in
// hand. Applied after New's own bank argument, so the last WithIRBank in
// the option list wins.
func WithIRBank(bank Bank) Option {
	return func(cfg *config) error {
		if bank == nil {
			return fmt.Errorf("sfg: WithIRBank: bank must not be nil")
		}
		cfg.bank = bank
		return nil
	}
}

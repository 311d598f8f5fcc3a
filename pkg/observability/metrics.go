package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/atidraw/pkg/domain"
)

// unknownToolLabel replaces the name of calls to unregistered tools, keeping label cardinality bounded.
const unknownToolLabel = "_unknown"

// Metrics records dispatch counters and latencies.
type Metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

// NewMetrics creates the dispatch collectors and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atidraw_tool_calls_total",
				Help: "Total number of tool calls by outcome",
			},
			[]string{"tool", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "atidraw_tool_duration_seconds",
				Help:    "Duration of tool calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "atidraw_tool_calls_in_flight",
				Help: "Number of tool calls currently executing",
			},
		),
	}

	for _, c := range []prometheus.Collector{m.calls, m.duration, m.inFlight} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns dispatcher hooks that feed the collectors.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnToolCall: func(ctx context.Context, e *domain.ToolEvent) {
			m.inFlight.Inc()
		},
		OnToolReturn: func(ctx context.Context, e *domain.ToolEvent) {
			m.inFlight.Dec()

			tool := e.ToolName
			if e.Kind == domain.KindUnknownTool || e.Kind == domain.KindBadRequest {
				tool = unknownToolLabel
			}
			m.calls.WithLabelValues(tool, outcome(e)).Inc()
			m.duration.WithLabelValues(tool).Observe(e.Duration.Seconds())
		},
	}
}

func outcome(e *domain.ToolEvent) string {
	if e.Success {
		return "success"
	}
	return string(e.Kind)
}

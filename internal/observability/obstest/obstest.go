// Package obstest provides recording implementations of the observability ports for tests.
package obstest

import (
	"sort"
	"strings"
	"sync"

	"github.com/Zhima-Mochi/garmentshop/internal/observability"
)

// Entry is one captured log line.
type Entry struct {
	Level  string
	Msg    string
	Fields map[string]any
}

type sink struct {
	mu      sync.Mutex
	entries []Entry
}

// Logger records every entry written through it or any logger derived via With.
type Logger struct {
	sink   *sink
	fields []observability.Field
}

func NewLogger() *Logger { return &Logger{sink: &sink{}} }

func (l *Logger) With(fields ...observability.Field) observability.Logger {
	merged := append(append([]observability.Field(nil), l.fields...), fields...)
	return &Logger{sink: l.sink, fields: merged}
}

func (l *Logger) Debug(msg string, fields ...observability.Field) { l.write("debug", msg, fields) }
func (l *Logger) Info(msg string, fields ...observability.Field)  { l.write("info", msg, fields) }
func (l *Logger) Warn(msg string, fields ...observability.Field)  { l.write("warn", msg, fields) }
func (l *Logger) Error(msg string, fields ...observability.Field) { l.write("error", msg, fields) }

func (l *Logger) write(level, msg string, fields []observability.Field) {
	e := Entry{Level: level, Msg: msg, Fields: make(map[string]any, len(l.fields)+len(fields))}
	for _, f := range l.fields {
		e.Fields[f.Key] = f.Value
	}
	for _, f := range fields {
		e.Fields[f.Key] = f.Value
	}
	l.sink.mu.Lock()
	l.sink.entries = append(l.sink.entries, e)
	l.sink.mu.Unlock()
}

// Entries returns a copy of everything logged so far.
func (l *Logger) Entries() []Entry {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return append([]Entry(nil), l.sink.entries...)
}

// Messages returns the messages logged so far, in order.
func (l *Logger) Messages() []string {
	entries := l.Entries()
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Msg)
	}
	return out
}

// Metrics records counter and histogram samples keyed by metric and label set.
type Metrics struct {
	mu     sync.Mutex
	values map[string]float64
	counts map[string]int
}

func NewMetrics() *Metrics {
	return &Metrics{values: map[string]float64{}, counts: map[string]int{}}
}

func (m *Metrics) Counter(name observability.MetricKey) observability.Counter {
	return recorder{m: m, name: name}
}

func (m *Metrics) Histogram(name observability.MetricKey) observability.Histogram {
	return recorder{m: m, name: name}
}

// Value returns the accumulated counter value for name and the exact label set.
func (m *Metrics) Value(name observability.MetricKey, labels ...observability.Label) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key(name, labels)]
}

// Observations returns how many histogram samples were recorded for name and labels.
func (m *Metrics) Observations(name observability.MetricKey, labels ...observability.Label) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[key(name, labels)]
}

type recorder struct {
	m    *Metrics
	name observability.MetricKey
}

func (r recorder) Add(delta float64, labels ...observability.Label) {
	r.m.mu.Lock()
	r.m.values[key(r.name, labels)] += delta
	r.m.mu.Unlock()
}

func (r recorder) Observe(value float64, labels ...observability.Label) {
	r.m.mu.Lock()
	k := key(r.name, labels)
	r.m.values[k] += value
	r.m.counts[k]++
	r.m.mu.Unlock()
}

func key(name observability.MetricKey, labels []observability.Label) string {
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		parts = append(parts, l.Key+"="+l.Value)
	}
	sort.Strings(parts)
	return string(name) + "{" + strings.Join(parts, ",") + "}"
}

// Telemetry is an Observability backed by the recorders above and a no-op tracer.
type Telemetry struct {
	Log *Logger
	Met *Metrics
}

func New() *Telemetry { return &Telemetry{Log: NewLogger(), Met: NewMetrics()} }

func (t *Telemetry) Tracer() observability.Tracer   { return observability.NopTracer() }
func (t *Telemetry) Logger() observability.Logger   { return t.Log }
func (t *Telemetry) Metrics() observability.Metrics { return t.Met }

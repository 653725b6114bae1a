// Package metrics keeps process counters, gauges and summaries on a private
// Prometheus registry. Families are created on first use; the label names of
// a family are fixed by its first observation.
package metrics

import (
	"bytes"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

type registry struct {
	reg       *prometheus.Registry
	counters  map[string]*prometheus.CounterVec
	gauges    map[string]*prometheus.GaugeVec
	summaries map[string]*prometheus.SummaryVec
}

var (
	mu  sync.Mutex
	cur = newRegistry()
)

func newRegistry() *registry {
	return &registry{
		reg:       prometheus.NewRegistry(),
		counters:  map[string]*prometheus.CounterVec{},
		gauges:    map[string]*prometheus.GaugeVec{},
		summaries: map[string]*prometheus.SummaryVec{},
	}
}

func labelNames(labels map[string]string) []string {
	names := make([]string, 0, len(labels))
	for k := range labels {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func counter(name string, labels map[string]string) prometheus.Counter {
	mu.Lock()
	defer mu.Unlock()
	v, ok := cur.counters[name]
	if !ok {
		v = prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: name}, labelNames(labels))
		if err := cur.reg.Register(v); err != nil {
			return nil
		}
		cur.counters[name] = v
	}
	c, err := v.GetMetricWith(labels)
	if err != nil {
		return nil
	}
	return c
}

func gauge(name string, labels map[string]string) prometheus.Gauge {
	mu.Lock()
	defer mu.Unlock()
	v, ok := cur.gauges[name]
	if !ok {
		v = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: name}, labelNames(labels))
		if err := cur.reg.Register(v); err != nil {
			return nil
		}
		cur.gauges[name] = v
	}
	g, err := v.GetMetricWith(labels)
	if err != nil {
		return nil
	}
	return g
}

func summary(name string, labels map[string]string) prometheus.Observer {
	mu.Lock()
	defer mu.Unlock()
	v, ok := cur.summaries[name]
	if !ok {
		v = prometheus.NewSummaryVec(prometheus.SummaryOpts{Name: name, Help: name}, labelNames(labels))
		if err := cur.reg.Register(v); err != nil {
			return nil
		}
		cur.summaries[name] = v
	}
	o, err := v.GetMetricWith(labels)
	if err != nil {
		return nil
	}
	return o
}

// Inc adds one to counter name{labels}. Observations whose label names do not
// match the family are dropped.
func Inc(name string, labels map[string]string) { Add(name, labels, 1) }

// Add adds v (>= 0) to counter name{labels}.
func Add(name string, labels map[string]string, v float64) {
	if v < 0 {
		return
	}
	if c := counter(name, labels); c != nil {
		c.Add(v)
	}
}

// AddGauge adds delta to gauge name{labels}.
func AddGauge(name string, labels map[string]string, delta float64) {
	if g := gauge(name, labels); g != nil {
		g.Add(delta)
	}
}

// SetGauge sets gauge name{labels} to v.
func SetGauge(name string, labels map[string]string, v float64) {
	if g := gauge(name, labels); g != nil {
		g.Set(v)
	}
}

// ObserveSummary records v in summary name{labels}.
func ObserveSummary(name string, labels map[string]string, v float64) {
	if o := summary(name, labels); o != nil {
		o.Observe(v)
	}
}

// Reset drops every family. Intended for tests.
func Reset() {
	mu.Lock()
	cur = newRegistry()
	mu.Unlock()
}

// Gatherer exposes the live registry, e.g. for promhttp.
func Gatherer() prometheus.Gatherer {
	mu.Lock()
	defer mu.Unlock()
	return cur.reg
}

// DumpProm renders all families in the Prometheus text format.
func DumpProm() string {
	mfs, err := Gatherer().Gather()
	if err != nil {
		return ""
	}
	var buf bytes.Buffer
	for _, mf := range mfs {
		writeFamily(&buf, mf)
	}
	return buf.String()
}

func writeFamily(buf *bytes.Buffer, mf *dto.MetricFamily) {
	_, _ = expfmt.MetricFamilyToText(buf, mf)
}

package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/sprig/pkg/operator"
)

// Source is anything that owns an operator schedule, typically a *chain.Chain.
type Source interface {
	ID() string
	State() uint64
	Schedule() *operator.Schedule
}

// Collector implements prometheus.Collector over a set of chains.
type Collector struct {
	mu      sync.RWMutex
	sources []Source

	state      *prometheus.Desc
	accepted   *prometheus.Desc
	rejected   *prometheus.Desc
	infeasible *prometheus.Desc
	acceptance *prometheus.Desc
	weight     *prometheus.Desc
	tuning     *prometheus.Desc
	adaptation *prometheus.Desc
}

// NewCollector creates a collector whose metric names start with namespace.
func NewCollector(namespace string) *Collector {
	labels := []string{"chain", "operator"}
	desc := func(name, help string, labels []string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil)
	}
	return &Collector{
		state:      desc("chain_state", "Number of completed steps of a chain", []string{"chain"}),
		accepted:   desc("operator_accepted_total", "Accepted proposals per operator", labels),
		rejected:   desc("operator_rejected_total", "Rejected proposals per operator, infeasible ones included", labels),
		infeasible: desc("operator_infeasible_total", "Proposals rejected by the operator itself", labels),
		acceptance: desc("operator_acceptance_ratio", "Fraction of proposals accepted", labels),
		weight:     desc("operator_weight", "Selection weight of the operator", labels),
		tuning:     desc("operator_tuning", "Current value of the tuning parameter", append(labels, "parameter")),
		adaptation: desc("operator_adaptations", "Outcomes recorded by the adaptive controller", labels),
	}
}

// Add registers chains with the collector.
func (c *Collector) Add(sources ...Source) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources = append(c.sources, sources...)
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.state, c.accepted, c.rejected, c.infeasible,
		c.acceptance, c.weight, c.tuning, c.adaptation,
	} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, src := range c.sources {
		id := src.ID()
		ch <- prometheus.MustNewConstMetric(c.state, prometheus.GaugeValue, float64(src.State()), id)

		s := src.Schedule()
		for i, op := range s.Operators() {
			name := op.Name()
			st := op.Stats()
			ch <- prometheus.MustNewConstMetric(c.accepted, prometheus.CounterValue, float64(st.Accepted()), id, name)
			ch <- prometheus.MustNewConstMetric(c.rejected, prometheus.CounterValue, float64(st.Rejected()), id, name)
			ch <- prometheus.MustNewConstMetric(c.infeasible, prometheus.CounterValue, float64(st.Infeasible()), id, name)
			ch <- prometheus.MustNewConstMetric(c.acceptance, prometheus.GaugeValue, st.AcceptanceRate(), id, name)
			ch <- prometheus.MustNewConstMetric(c.weight, prometheus.GaugeValue, s.Weight(i), id, name)
			if t, ok := op.(operator.Tunable); ok {
				ch <- prometheus.MustNewConstMetric(c.tuning, prometheus.GaugeValue, t.RawParameter(), id, name, t.AdaptableParameterName())
			}
			if a, ok := op.(operator.AdaptiveOperator); ok {
				ch <- prometheus.MustNewConstMetric(c.adaptation, prometheus.GaugeValue, float64(a.AdaptationCount()), id, name)
			}
		}
	}
}

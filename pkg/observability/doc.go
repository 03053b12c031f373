/*
Package observability exposes the operator counters and tuning of running
chains as Prometheus metrics.

A Collector reads the live schedules on every scrape, so nothing has to be
pushed from the hot path of a chain:

	c := observability.NewCollector("sprig")
	c.Add(ch)
	prometheus.MustRegister(c)
*/
package observability

package metrics

import "github.com/prometheus/client_golang/prometheus"

// DBPoolStatFunc reports pgx pool counters without tying this package to
// pgxpool.
type DBPoolStatFunc func() (total, idle, acquired int32)

// dbPoolCollector exposes the connection pool as three gauges. Values are
// read from the pool at scrape time; nothing is cached here.
type dbPoolCollector struct {
	stat  DBPoolStatFunc
	descs [3]*prometheus.Desc
}

// NewDBPoolCollector creates a collector over the given stat source.
func NewDBPoolCollector(stat DBPoolStatFunc) prometheus.Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc("portal_db_pool_"+name, help, nil, nil)
	}
	return &dbPoolCollector{
		stat: stat,
		descs: [3]*prometheus.Desc{
			desc("total_conns", "Connections currently open by the portal's pgx pool."),
			desc("idle_conns", "Open connections waiting for work."),
			desc("acquired_conns", "Connections checked out by in-flight queries."),
		},
	}
}

func (c *dbPoolCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.descs {
		ch <- d
	}
}

func (c *dbPoolCollector) Collect(ch chan<- prometheus.Metric) {
	total, idle, acquired := c.stat()
	for i, v := range [3]int32{total, idle, acquired} {
		ch <- prometheus.MustNewConstMetric(c.descs[i], prometheus.GaugeValue, float64(v))
	}
}

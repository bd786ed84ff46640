/*
Package observability exports Prometheus metrics for stepwise machines.

Metrics plugs into a machine twice: its lifecycle hooks count and time every
Apply call by outcome, and it can be added as an extra signal publisher to
count the signals a machine emits.

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	m, _ := stepwise.New(obj, cfg,
		stepwise.WithLifecycleHooks(metrics.Hooks()),
		stepwise.WithPublisher(metrics),
	)
*/
package observability

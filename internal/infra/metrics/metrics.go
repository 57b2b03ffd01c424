package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TasksCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medcart_tasks_completed_total",
		Help: "External tasks reported complete, per topic.",
	}, []string{"topic"})

	TasksFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medcart_tasks_failed_total",
		Help: "External tasks reported failed, per topic.",
	}, []string{"topic"})

	PollErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medcart_poll_errors_total",
		Help: "fetchAndLock errors, per topic.",
	}, []string{"topic"})

	WorkflowEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "medcart_workflow_events_total",
		Help: "Workflow events accepted on the notifications endpoint.",
	})

	Reservations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "medcart_reservations_total",
		Help: "Cart item reservations committed.",
	})

	Releases = promauto.NewCounter(prometheus.CounterOpts{
		Name: "medcart_releases_total",
		Help: "Cart item releases committed (incl. cascade deletes).",
	})
)

package queue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var tasksProcessed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "conference",
		Subsystem: "tasks",
		Name:      "processed_total",
		Help:      "Tasks consumed from the task queue by outcome.",
	},
	[]string{"task", "result"},
)

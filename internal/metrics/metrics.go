// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScansClassified counts completed scan frames by barcode type.
	ScansClassified = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ovenlog_scans_classified_total",
		Help: "Completed scan frames by classification.",
	}, []string{"type"})

	// CheckIns counts oven events opened.
	CheckIns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ovenlog_checkins_total",
		Help: "Traks checked into boxes.",
	})

	// CheckOuts counts oven events closed.
	CheckOuts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ovenlog_checkouts_total",
		Help: "Traks checked out of boxes.",
	})

	// NotificationsSent counts bake-complete push notifications delivered.
	NotificationsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ovenlog_notifications_sent_total",
		Help: "Bake-complete push notifications sent.",
	})
)

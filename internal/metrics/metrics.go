package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BookingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healsync",
		Subsystem: "scheduling",
		Name:      "bookings_total",
		Help:      "Booking attempts by outcome (booked, conflict, no_doctor, rejected, error).",
	}, []string{"outcome"})

	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healsync",
		Subsystem: "scheduling",
		Name:      "status_transitions_total",
		Help:      "Appointment status transitions by target status.",
	}, []string{"status"})

	NotificationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healsync",
		Subsystem: "notify",
		Name:      "failures_total",
		Help:      "Notification deliveries that failed, by event kind. Deliveries are best-effort; this counter and the log line are the only trace.",
	}, []string{"kind"})

	RemindersSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "healsync",
		Subsystem: "notify",
		Name:      "reminders_sent_total",
		Help:      "Appointment reminders delivered by the worker.",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	connections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "maitred",
			Name:      "connections_total",
			Help:      "Accepted client connections.",
		},
	)

	commands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "maitred",
			Name:      "commands_total",
			Help:      "Dispatched protocol commands by command line.",
		},
		[]string{"command"},
	)

	reservationOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "maitred",
			Name:      "reservation_outcomes_total",
			Help:      "Reservation attempts by outcome string.",
		},
		[]string{"outcome"},
	)

	adminChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "maitred",
			Name:      "admin_changes_total",
			Help:      "Admin closing-hours changes by result.",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(connections, commands, reservationOutcomes, adminChanges)
	})
}

// IncConnection counts an accepted connection.
func IncConnection() {
	connections.Inc()
}

// IncCommand counts a dispatched command line.
func IncCommand(command string) {
	commands.WithLabelValues(command).Inc()
}

// IncReservationOutcome counts a reservation attempt result.
func IncReservationOutcome(outcome string) {
	reservationOutcomes.WithLabelValues(outcome).Inc()
}

// IncAdminChange counts a schedule change result.
func IncAdminChange(result string) {
	adminChanges.WithLabelValues(result).Inc()
}

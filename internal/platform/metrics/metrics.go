package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	RegistrationsTotal prometheus.Counter
	CasesCreatedTotal  prometheus.Counter
	StatusUpdatesTotal prometheus.Counter
	GrantsTotal        *prometheus.CounterVec
	AuditEventsTotal   *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RegistrationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "caseledger_registrations_total",
			Help: "Total number of registrants admitted to the registry",
		}),
		CasesCreatedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "caseledger_cases_created_total",
			Help: "Total number of cases created",
		}),
		StatusUpdatesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "caseledger_case_status_updates_total",
			Help: "Total number of committed case status transitions",
		}),
		GrantsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "caseledger_access_grant_changes_total",
			Help: "Total number of access grant changes by action",
		}, []string{"action"}),
		AuditEventsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "caseledger_audit_events_total",
			Help: "Total number of audit events emitted by action",
		}, []string{"action"}),
	}
}

func (m *Metrics) IncrementRegistrations() {
	if m != nil {
		m.RegistrationsTotal.Inc()
	}
}

func (m *Metrics) IncrementCasesCreated() {
	if m != nil {
		m.CasesCreatedTotal.Inc()
	}
}

func (m *Metrics) IncrementStatusUpdates() {
	if m != nil {
		m.StatusUpdatesTotal.Inc()
	}
}

func (m *Metrics) IncrementGrantChanges(action string) {
	if m != nil {
		m.GrantsTotal.WithLabelValues(action).Inc()
	}
}

func (m *Metrics) IncrementAuditEvents(action string) {
	if m != nil {
		m.AuditEventsTotal.WithLabelValues(action).Inc()
	}
}

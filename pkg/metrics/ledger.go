package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics contadores del ledger de stock. Un valor nil es válido y no registra nada.
type LedgerMetrics struct {
	events    *prometheus.CounterVec
	replays   prometheus.Counter
	conflicts *prometheus.CounterVec
	transfers *prometheus.CounterVec
}

// NewLedgerMetrics registra las métricas en reg. Con reg nil devuelve un recolector inerte.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_events_total",
		Help: "Eventos de stock persistidos por tipo.",
	}, []string{"type"})
	replays := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stock_event_replays_total",
		Help: "Solicitudes resueltas devolviendo un evento existente por clave de idempotencia.",
	})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_ledger_conflicts_total",
		Help: "Conflictos del ledger por tipo (concurrency, idempotency, insufficient).",
	}, []string{"kind"})
	transfers := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_transfers_total",
		Help: "Transiciones de traslados por estado resultante.",
	}, []string{"status"})
	reg.MustRegister(events, replays, conflicts, transfers)
	return &LedgerMetrics{
		events:    events,
		replays:   replays,
		conflicts: conflicts,
		transfers: transfers,
	}
}

// IncEvent cuenta un evento persistido.
func (m *LedgerMetrics) IncEvent(eventType string) {
	if m == nil || m.events == nil {
		return
	}
	m.events.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncReplay cuenta una respuesta idempotente.
func (m *LedgerMetrics) IncReplay() {
	if m == nil || m.replays == nil {
		return
	}
	m.replays.Inc()
}

// IncConflict cuenta un conflicto del tipo indicado.
func (m *LedgerMetrics) IncConflict(kind string) {
	if m == nil || m.conflicts == nil {
		return
	}
	m.conflicts.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncTransfer cuenta una transición de traslado.
func (m *LedgerMetrics) IncTransfer(status string) {
	if m == nil || m.transfers == nil {
		return
	}
	m.transfers.WithLabelValues(normalizeLabel(status)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

/*
Package metrics provides Prometheus instrumentation for the roaming core.

All collectors are package-level and registered in init(). The daemon
exposes them via Handler() on /metrics.

# Metric Groups

Hierarchy:
  - wwcp_evses_total: gauge of EVSEs per operator
  - wwcp_status_transitions_total: status transitions by entity kind
  - wwcp_bus_messages_total: bus messages by kind

Sessions:
  - wwcp_reservations_total, wwcp_remote_starts_total,
    wwcp_remote_stops_total: call outcomes

Provider:
  - wwcp_provider_queue_length: current queue lengths
  - wwcp_provider_flush_cycles_total, wwcp_provider_flush_duration_seconds
  - wwcp_upstream_pushes_total: upstream calls by operation and result

# Usage

	timer := metrics.NewTimer()
	defer func() {
		timer.ObserveDuration(metrics.FlushDuration)
		metrics.FlushCyclesTotal.WithLabelValues(providerID).Inc()
	}()
*/
package metrics

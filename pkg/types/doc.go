/*
Package types defines the shared domain types of the WWCP roaming core.

All identifiers are opaque, totally-ordered strings and immutable for the
lifetime of the entity they name. Status enums are string-typed so that the
zero value doubles as "unspecified", which the status schedules rely on for
their well-defined empty baseline.

# Core Types

Identifiers:
  - NetworkID, OperatorID, PoolID, StationID, EVSEID
  - ProviderID, ReservationID, SessionID

Status enums (one admin + one operational enum per entity kind):
  - StationAdminStatus / StationStatus
  - EVSEAdminStatus / EVSEStatus
  - PoolAdminStatus

Value types:
  - Timestamped[T]: a (instant, value) pair, the unit of status schedules
  - Address, GeoCoordinate, OpeningTimes, Accessibility
  - AuthToken, EMAID

Domain entities owned by an EVSE:
  - Reservation: time-bounded hold, capped at MaxReservationDuration
  - ChargingSession: ongoing charging episode
  - ChargeDetailRecord: post-session billing document

Result types:

Every public long-running operation returns a structured result value
(ReservationResult, RemoteStartResult, RemoteStopResult, ...) carrying a
per-operation outcome enum plus optional message, session or record.
Validation failures inside mutators use the Err* sentinel errors instead.

# Usage

	res := station.Reserve(ctx, station.ReserveParams{
		EVSEID:   types.EVSEID("DE*GEF*E123456*1"),
		Duration: 15 * time.Minute,
	})
	if res.Type != types.ReservationSuccess {
		log.Warn().Str("outcome", string(res.Type)).Msg("reservation failed")
	}

# Integration Points

This package integrates with:

  - pkg/status: Timestamped[T] entries and change events
  - pkg/evse, pkg/station: entity state and operation results
  - pkg/provider, pkg/upstream: push payloads and acknowledgements
*/
package types

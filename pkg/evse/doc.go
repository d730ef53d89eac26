/*
Package evse implements the leaf unit of the charging hierarchy: a single
Electric Vehicle Supply Equipment capable of charging one vehicle.

An EVSE owns two status schedules (operational and admin), at most one
reservation and at most one charging session. All mutations publish a
single message on the roaming network's bus; the owning station registers
additional listeners on the schedules for its own status aggregation.

# Operations

  - Reserve: place a time-bounded hold; at most one active reservation,
    capped at types.MaxReservationDuration
  - CancelReservation: votable; any voting subscriber may veto
  - RemoteStart: begin a session; a live reservation held by a different
    identification blocks the start with outcome "reserved"
  - RemoteStop: end the session and produce the charge detail record

Admin gating: when the admin status is neither operational nor
internal-use, every operation returns an out-of-service result without
touching state.

# Usage

	e := evse.New(evse.Config{
		ID:        types.EVSEID("DE*GEF*E123456*1"),
		StationID: stationID,
		Broker:    broker,
	})
	e.SetAdminStatus(types.EVSEAdminOperational)
	e.SetStatus(types.EVSEStatusAvailable)

	res := e.Reserve(ctx, evse.ReserveParams{Duration: 10 * time.Minute})
*/
package evse

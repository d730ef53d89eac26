package types

import (
	"github.com/google/uuid"
)

// NetworkID identifies a roaming network
type NetworkID string

// OperatorID identifies a charging station operator
type OperatorID string

// PoolID identifies a charging pool
type PoolID string

// StationID identifies a charging station
type StationID string

// EVSEID identifies a single EVSE
type EVSEID string

// ProviderID identifies a roaming provider
type ProviderID string

// ReservationID identifies a reservation
type ReservationID string

// SessionID identifies a charging session
type SessionID string

// NewReservationID generates a random reservation ID
func NewReservationID() ReservationID {
	return ReservationID("rsv-" + uuid.New().String())
}

// NewSessionID generates a random session ID
func NewSessionID() SessionID {
	return SessionID("ses-" + uuid.New().String())
}

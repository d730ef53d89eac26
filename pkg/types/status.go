package types

import "time"

// Timestamped pairs a value with the instant it became valid.
// Ordering is by timestamp first, then by value where needed.
type Timestamped[T any] struct {
	Timestamp time.Time
	Value     T
}

// NewTimestamped creates a Timestamped value stamped with the given instant
func NewTimestamped[T any](ts time.Time, value T) Timestamped[T] {
	return Timestamped[T]{Timestamp: ts, Value: value}
}

// StationAdminStatus is the operator-set lifecycle flag of a station
type StationAdminStatus string

const (
	StationAdminUnspecified  StationAdminStatus = ""
	StationAdminPlanned      StationAdminStatus = "planned"
	StationAdminInDeployment StationAdminStatus = "in-deployment"
	StationAdminInternalUse  StationAdminStatus = "internal-use"
	StationAdminOperational  StationAdminStatus = "operational"
	StationAdminOutOfService StationAdminStatus = "out-of-service"
)

// ExposesOperationalStatus reports whether the admin status lets the
// underlying operational status show through. For every other admin state
// the station status is masked to out-of-service.
func (s StationAdminStatus) ExposesOperationalStatus() bool {
	return s == StationAdminOperational || s == StationAdminInternalUse
}

// StationStatus is the aggregated operational status of a station
type StationStatus string

const (
	StationStatusUnspecified  StationStatus = ""
	StationStatusAvailable    StationStatus = "available"
	StationStatusPartial      StationStatus = "partial-available"
	StationStatusOccupied     StationStatus = "occupied"
	StationStatusFaulted      StationStatus = "faulted"
	StationStatusOutOfService StationStatus = "out-of-service"
)

// EVSEAdminStatus is the operator-set lifecycle flag of an EVSE
type EVSEAdminStatus string

const (
	EVSEAdminUnspecified  EVSEAdminStatus = ""
	EVSEAdminPlanned      EVSEAdminStatus = "planned"
	EVSEAdminInternalUse  EVSEAdminStatus = "internal-use"
	EVSEAdminOperational  EVSEAdminStatus = "operational"
	EVSEAdminOutOfService EVSEAdminStatus = "out-of-service"
)

// ExposesOperationalStatus reports whether the EVSE admin status lets the
// operational status show through
func (s EVSEAdminStatus) ExposesOperationalStatus() bool {
	return s == EVSEAdminOperational || s == EVSEAdminInternalUse
}

// EVSEStatus is the operational status of a single EVSE
type EVSEStatus string

const (
	EVSEStatusUnspecified  EVSEStatus = ""
	EVSEStatusAvailable    EVSEStatus = "available"
	EVSEStatusReserved     EVSEStatus = "reserved"
	EVSEStatusOccupied     EVSEStatus = "occupied"
	EVSEStatusFaulted      EVSEStatus = "faulted"
	EVSEStatusOutOfService EVSEStatus = "out-of-service"
)

// PoolAdminStatus is the operator-set lifecycle flag of a charging pool
type PoolAdminStatus string

const (
	PoolAdminUnspecified  PoolAdminStatus = ""
	PoolAdminPlanned      PoolAdminStatus = "planned"
	PoolAdminOperational  PoolAdminStatus = "operational"
	PoolAdminOutOfService PoolAdminStatus = "out-of-service"
)

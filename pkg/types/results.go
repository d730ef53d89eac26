package types

import (
	"errors"
	"time"
)

// Validation errors raised by entity mutators
var (
	ErrEVSEAlreadyExists    = errors.New("evse already exists in station")
	ErrStationAlreadyExists = errors.New("station already exists in pool")
	ErrPoolAlreadyExists    = errors.New("pool already exists in operator")
	ErrNilConfigurator      = errors.New("configurator must not be nil")
	ErrAdditionVetoed       = errors.New("addition vetoed by subscriber")
	ErrRemovalVetoed        = errors.New("removal vetoed by subscriber")
)

// ReservationResultType classifies the outcome of a reserve call
type ReservationResultType string

const (
	ReservationSuccess          ReservationResultType = "success"
	ReservationUnknownEVSE      ReservationResultType = "unknown-evse"
	ReservationAlreadyReserved  ReservationResultType = "already-reserved"
	ReservationAlreadyInUse     ReservationResultType = "already-in-use"
	ReservationInvalidDuration  ReservationResultType = "invalid-duration"
	ReservationOutOfService     ReservationResultType = "out-of-service"
	ReservationNoEVSEsAvailable ReservationResultType = "no-evses-available"
	ReservationTimeout          ReservationResultType = "timeout"
	ReservationError            ReservationResultType = "error"
)

// ReservationResult is the structured outcome of a reserve call
type ReservationResult struct {
	Type        ReservationResultType
	Reservation *Reservation
	Message     string
	Runtime     time.Duration
}

// CancelReservationResultType classifies the outcome of a cancellation
type CancelReservationResultType string

const (
	CancelReservationSuccess          CancelReservationResultType = "success"
	CancelReservationUnknownID        CancelReservationResultType = "unknown-reservation-id"
	CancelReservationOutOfService     CancelReservationResultType = "out-of-service"
	CancelReservationNoEVSEsAvailable CancelReservationResultType = "no-evses-available"
	CancelReservationError            CancelReservationResultType = "error"
)

// CancelReservationResult is the structured outcome of a cancellation
type CancelReservationResult struct {
	Type          CancelReservationResultType
	ReservationID ReservationID
	Message       string
}

// ReservationCancelReason states why a reservation ended
type ReservationCancelReason string

const (
	CancelReasonUser    ReservationCancelReason = "user"
	CancelReasonExpired ReservationCancelReason = "expired"
	CancelReasonAborted ReservationCancelReason = "aborted"
	CancelReasonCharged ReservationCancelReason = "charging-started"
)

// RemoteStartResultType classifies the outcome of a remote start
type RemoteStartResultType string

const (
	RemoteStartSuccess      RemoteStartResultType = "success"
	RemoteStartUnknownEVSE  RemoteStartResultType = "unknown-evse"
	RemoteStartAlreadyInUse RemoteStartResultType = "already-in-use"
	RemoteStartReserved     RemoteStartResultType = "reserved"
	RemoteStartOutOfService RemoteStartResultType = "out-of-service"
	RemoteStartTimeout      RemoteStartResultType = "timeout"
	RemoteStartError        RemoteStartResultType = "error"
)

// RemoteStartResult is the structured outcome of a remote start
type RemoteStartResult struct {
	Type    RemoteStartResultType
	Session *ChargingSession
	Message string
	Runtime time.Duration
}

// RemoteStopResultType classifies the outcome of a remote stop
type RemoteStopResultType string

const (
	RemoteStopSuccess          RemoteStopResultType = "success"
	RemoteStopUnknownEVSE      RemoteStopResultType = "unknown-evse"
	RemoteStopInvalidSessionID RemoteStopResultType = "invalid-session-id"
	RemoteStopOutOfService     RemoteStopResultType = "out-of-service"
	RemoteStopTimeout          RemoteStopResultType = "timeout"
	RemoteStopError            RemoteStopResultType = "error"
)

// RemoteStopResult is the structured outcome of a remote stop
type RemoteStopResult struct {
	Type    RemoteStopResultType
	Record  *ChargeDetailRecord
	Message string
	Runtime time.Duration
}

// AuthStartResultType classifies the outcome of an authorize-start
type AuthStartResultType string

const (
	AuthStartAuthorized    AuthStartResultType = "authorized"
	AuthStartNotAuthorized AuthStartResultType = "not-authorized"
	AuthStartBlocked       AuthStartResultType = "blocked"
	AuthStartError         AuthStartResultType = "error"
)

// AuthStartResult is the structured outcome of an authorize-start
type AuthStartResult struct {
	Type       AuthStartResultType
	SessionID  SessionID
	ProviderID ProviderID
	Message    string
}

// AuthStopResultType classifies the outcome of an authorize-stop
type AuthStopResultType string

const (
	AuthStopAuthorized     AuthStopResultType = "authorized"
	AuthStopNotAuthorized  AuthStopResultType = "not-authorized"
	AuthStopInvalidSession AuthStopResultType = "invalid-session-id"
	AuthStopError          AuthStopResultType = "error"
)

// AuthStopResult is the structured outcome of an authorize-stop
type AuthStopResult struct {
	Type       AuthStopResultType
	SessionID  SessionID
	ProviderID ProviderID
	Message    string
}

// SendCDRResultType classifies the outcome of forwarding a charge detail record
type SendCDRResultType string

const (
	SendCDRForwarded SendCDRResultType = "forwarded"
	SendCDRRejected  SendCDRResultType = "rejected"
	SendCDRError     SendCDRResultType = "error"
)

// SendCDRResult is the structured outcome of forwarding a charge detail record
type SendCDRResult struct {
	Type    SendCDRResultType
	Message string
}

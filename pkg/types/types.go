package types

import (
	"time"
)

// MaxReservationDuration is the longest hold a reservation may request.
// Requests above it are rejected at the EVSE layer.
const MaxReservationDuration = 30 * time.Minute

// Address is a postal address of a pool, station or entrance
type Address struct {
	Street      string
	HouseNumber string
	PostalCode  string
	City        string
	Country     string
}

// IsEmpty reports whether the address carries no information
func (a *Address) IsEmpty() bool {
	return a == nil || (a.Street == "" && a.HouseNumber == "" &&
		a.PostalCode == "" && a.City == "" && a.Country == "")
}

// GeoCoordinate is a WGS84 latitude/longitude pair
type GeoCoordinate struct {
	Latitude  float64
	Longitude float64
}

// IsValid reports whether the coordinate points somewhere on the planet.
// The zero value (0,0) is treated as unset.
func (g GeoCoordinate) IsValid() bool {
	if g.Latitude == 0 && g.Longitude == 0 {
		return false
	}
	return g.Latitude >= -90 && g.Latitude <= 90 &&
		g.Longitude >= -180 && g.Longitude <= 180
}

// OpeningTimes describes when a site is accessible
type OpeningTimes struct {
	Open24Hours bool
	Text        string
}

// IsEmpty reports whether no opening information is set
func (o OpeningTimes) IsEmpty() bool {
	return !o.Open24Hours && o.Text == ""
}

// AuthMode is a supported authentication mechanism (e.g. "nfc", "remote")
type AuthMode string

// PaymentOption is a supported payment mechanism (e.g. "contract", "direct")
type PaymentOption string

// Accessibility describes who may access a charging site
type Accessibility string

const (
	AccessibilityUnspecified  Accessibility = ""
	AccessibilityFreePublic   Accessibility = "free-publicly-accessible"
	AccessibilityRestricted   Accessibility = "restricted-access"
	AccessibilityPayingPublic Accessibility = "paying-publicly-accessible"
	AccessibilityTestStation  Accessibility = "test-station"
)

// AuthToken is an RFID/contract token presented for authorization
type AuthToken string

// EMAID is an e-mobility account identifier of a driver contract
type EMAID string

// Reservation is a time-bounded hold on charging capacity.
// At most one reservation exists per EVSE.
type Reservation struct {
	ID         ReservationID
	EVSEID     EVSEID
	StationID  StationID
	ProviderID ProviderID
	EMAID      EMAID
	ProductID  string
	StartTime  time.Time
	Duration   time.Duration
	AuthTokens []AuthToken
	EMAIDs     []EMAID
	PINs       []string
	CreatedAt  time.Time
}

// EndTime returns the instant the reservation expires
func (r *Reservation) EndTime() time.Time {
	return r.StartTime.Add(r.Duration)
}

// IsExpired reports whether the reservation has run out at the given instant
func (r *Reservation) IsExpired(now time.Time) bool {
	return now.After(r.EndTime())
}

// ChargingSession is the stateful record of an ongoing charging episode
type ChargingSession struct {
	ID            SessionID
	EVSEID        EVSEID
	StationID     StationID
	ReservationID ReservationID
	ProviderID    ProviderID
	EMAID         EMAID
	ProductID     string
	StartedAt     time.Time
	MeterStart    float64
}

// ChargeDetailRecord is the post-session billing document
type ChargeDetailRecord struct {
	SessionID      SessionID
	EVSEID         EVSEID
	StationID      StationID
	ProviderID     ProviderID
	EMAID          EMAID
	SessionStart   time.Time
	SessionEnd     time.Time
	MeterStart     float64
	MeterEnd       float64
	ConsumedEnergy float64
}

// Acknowledgement is the generic reply of an upstream bulk operation
type Acknowledgement struct {
	OK      bool
	Message string
}

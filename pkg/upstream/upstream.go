package upstream

import (
	"context"
	"time"

	"github.com/evroam/wwcp/pkg/types"
)

// Action tells the roaming partner how to apply a pushed batch
type Action string

const (
	ActionFullLoad Action = "fullLoad"
	ActionInsert   Action = "insert"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
)

// EVSEDataRecord is the static description of one EVSE as pushed to a
// roaming partner. Attribute values are resolved through the station's
// pool fallback before the record is built.
type EVSEDataRecord struct {
	ID            types.EVSEID
	StationID     types.StationID
	OperatorID    types.OperatorID
	StationName   string
	Description   string
	Address       *types.Address
	GeoLocation   types.GeoCoordinate
	MaxPowerKW    float64
	AuthModes     []types.AuthMode
	Accessibility types.Accessibility
	HotlinePhone  string
}

// EVSEStatusRecord is one status delta as pushed to a roaming partner
type EVSEStatusRecord struct {
	ID        types.EVSEID
	Status    types.EVSEStatus
	Timestamp time.Time
}

// AuthorizeStartRequest asks the partner to authorize a charging start
type AuthorizeStartRequest struct {
	OperatorID types.OperatorID
	AuthToken  types.AuthToken
	EVSEID     types.EVSEID
	StationID  types.StationID
	ProductID  string
	SessionID  types.SessionID
}

// AuthorizeStopRequest asks the partner to authorize a charging stop
type AuthorizeStopRequest struct {
	OperatorID types.OperatorID
	AuthToken  types.AuthToken
	EVSEID     types.EVSEID
	SessionID  types.SessionID
}

// Service is the abstract upstream roaming service a provider pushes to.
// Wire-level encoding (OICP, OCPP, ...) lives behind this seam.
type Service interface {
	PushEVSEData(ctx context.Context, records []EVSEDataRecord, action Action) (types.Acknowledgement, error)
	PushEVSEStatus(ctx context.Context, records []EVSEStatusRecord, action Action) (types.Acknowledgement, error)
	AuthorizeStart(ctx context.Context, req AuthorizeStartRequest) (types.AuthStartResult, error)
	AuthorizeStop(ctx context.Context, req AuthorizeStopRequest) (types.AuthStopResult, error)
	SendChargeDetailRecord(ctx context.Context, record types.ChargeDetailRecord) (types.SendCDRResult, error)
}

// GroupDataByOperator groups data records by their operator id
func GroupDataByOperator(records []EVSEDataRecord) map[types.OperatorID][]EVSEDataRecord {
	grouped := make(map[types.OperatorID][]EVSEDataRecord)
	for _, r := range records {
		grouped[r.OperatorID] = append(grouped[r.OperatorID], r)
	}
	return grouped
}

package upstream

import (
	"context"

	"github.com/evroam/wwcp/pkg/log"
	"github.com/evroam/wwcp/pkg/types"
)

// LoggingService is a Service that acknowledges everything and logs each
// call. The daemon uses it when no real roaming partner is configured.
type LoggingService struct{}

// NewLoggingService creates a logging upstream stub
func NewLoggingService() *LoggingService {
	return &LoggingService{}
}

func (l *LoggingService) PushEVSEData(ctx context.Context, records []EVSEDataRecord, action Action) (types.Acknowledgement, error) {
	logger := log.WithComponent("upstream")
	for operatorID, group := range GroupDataByOperator(records) {
		logger.Info().
			Str("action", string(action)).
			Str("operator_id", string(operatorID)).
			Int("records", len(group)).
			Msg("push EVSE data")
	}
	return types.Acknowledgement{OK: true}, nil
}

func (l *LoggingService) PushEVSEStatus(ctx context.Context, records []EVSEStatusRecord, action Action) (types.Acknowledgement, error) {
	logger := log.WithComponent("upstream")
	logger.Info().
		Str("action", string(action)).
		Int("records", len(records)).
		Msg("push EVSE status")
	return types.Acknowledgement{OK: true}, nil
}

func (l *LoggingService) AuthorizeStart(ctx context.Context, req AuthorizeStartRequest) (types.AuthStartResult, error) {
	logger := log.WithComponent("upstream")
	logger.Info().
		Str("evse_id", string(req.EVSEID)).
		Msg("authorize start")
	return types.AuthStartResult{Type: types.AuthStartAuthorized, SessionID: req.SessionID}, nil
}

func (l *LoggingService) AuthorizeStop(ctx context.Context, req AuthorizeStopRequest) (types.AuthStopResult, error) {
	logger := log.WithComponent("upstream")
	logger.Info().
		Str("evse_id", string(req.EVSEID)).
		Msg("authorize stop")
	return types.AuthStopResult{Type: types.AuthStopAuthorized, SessionID: req.SessionID}, nil
}

func (l *LoggingService) SendChargeDetailRecord(ctx context.Context, record types.ChargeDetailRecord) (types.SendCDRResult, error) {
	logger := log.WithComponent("upstream")
	logger.Info().
		Str("session_id", string(record.SessionID)).
		Msg("send charge detail record")
	return types.SendCDRResult{Type: types.SendCDRForwarded}, nil
}

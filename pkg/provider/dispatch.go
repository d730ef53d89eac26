package provider

import (
	"context"

	"github.com/evroam/wwcp/pkg/evse"
	"github.com/evroam/wwcp/pkg/types"
	"github.com/evroam/wwcp/pkg/upstream"
)

// Upstream operations: the local side asks the roaming partner.

// AuthorizeStart asks the partner to authorize a charging start
func (p *Provider) AuthorizeStart(ctx context.Context, req upstream.AuthorizeStartRequest) types.AuthStartResult {
	result, err := p.service.AuthorizeStart(ctx, req)
	if err != nil {
		p.logger.Error().Err(err).Str("evse_id", string(req.EVSEID)).Msg("authorize start failed")
		return types.AuthStartResult{Type: types.AuthStartError, Message: err.Error()}
	}
	return result
}

// AuthorizeStop asks the partner to authorize a charging stop
func (p *Provider) AuthorizeStop(ctx context.Context, req upstream.AuthorizeStopRequest) types.AuthStopResult {
	result, err := p.service.AuthorizeStop(ctx, req)
	if err != nil {
		p.logger.Error().Err(err).Str("evse_id", string(req.EVSEID)).Msg("authorize stop failed")
		return types.AuthStopResult{Type: types.AuthStopError, Message: err.Error()}
	}
	return result
}

// SendChargeDetailRecord forwards a finished session's billing record
func (p *Provider) SendChargeDetailRecord(ctx context.Context, record types.ChargeDetailRecord) types.SendCDRResult {
	result, err := p.service.SendChargeDetailRecord(ctx, record)
	if err != nil {
		p.logger.Error().Err(err).Str("session_id", string(record.SessionID)).Msg("send charge detail record failed")
		return types.SendCDRResult{Type: types.SendCDRError, Message: err.Error()}
	}
	return result
}

// Downstream operations: the roaming partner reaches into the local
// network; calls are routed to the station owning the target EVSE.

// Reserve routes a partner-originated reservation into the network
func (p *Provider) Reserve(ctx context.Context, evseID types.EVSEID, params evse.ReserveParams) types.ReservationResult {
	params.ProviderID = p.id
	return p.network.Reserve(ctx, evseID, params)
}

// CancelReservation routes a partner-originated cancellation
func (p *Provider) CancelReservation(ctx context.Context, id types.ReservationID, reason types.ReservationCancelReason) types.CancelReservationResult {
	return p.network.CancelReservation(ctx, id, reason)
}

// RemoteStart routes a partner-originated start into the network
func (p *Provider) RemoteStart(ctx context.Context, evseID types.EVSEID, params evse.StartParams) types.RemoteStartResult {
	params.ProviderID = p.id
	return p.network.RemoteStart(ctx, evseID, params)
}

// RemoteStop routes a partner-originated stop into the network
func (p *Provider) RemoteStop(ctx context.Context, sessionID types.SessionID) types.RemoteStopResult {
	return p.network.RemoteStop(ctx, sessionID)
}

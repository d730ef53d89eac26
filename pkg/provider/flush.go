package provider

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/evroam/wwcp/pkg/evse"
	"github.com/evroam/wwcp/pkg/metrics"
	"github.com/evroam/wwcp/pkg/types"
	"github.com/evroam/wwcp/pkg/upstream"
)

// Flush drains the four queues and pushes their contents upstream. At
// most one flush runs at a time: a tick arriving while a flush is in
// progress is skipped. All upstream calls happen outside the provider
// lock; push failures are logged and the affected batch is dropped.
func (p *Provider) Flush(ctx context.Context) {
	if !p.flushMu.TryLock() {
		// The one-shot timer is spent once its tick lands here. Give it
		// another period, or the queued events wait for a manual flush
		// that may never come.
		p.mu.Lock()
		if p.timerArmed && !p.disableAutoUploads {
			p.timer.Reset(p.serviceCheckEvery)
		}
		p.mu.Unlock()
		return
	}
	defer p.flushMu.Unlock()

	p.mu.Lock()
	if p.toAdd.Cardinality() == 0 &&
		p.dataUpdates.Cardinality() == 0 &&
		p.toRemove.Cardinality() == 0 &&
		len(p.statusChanges) == 0 {
		p.mu.Unlock()
		return
	}

	p.runID++
	runID := p.runID

	toAdd := p.toAdd
	dataUpdates := p.dataUpdates
	toRemove := p.toRemove
	statusChanges := p.statusChanges
	index := p.evseIndex

	// All queues reset together with the index: an EVSE referenced by a
	// later enqueue is re-indexed by that enqueue, so the map never grows
	// beyond one cycle's worth of entries.
	p.toAdd = mapset.NewSet[types.EVSEID]()
	p.dataUpdates = mapset.NewSet[types.EVSEID]()
	p.toRemove = mapset.NewSet[types.EVSEID]()
	p.statusChanges = nil
	p.evseIndex = make(map[types.EVSEID]*evse.EVSE)
	p.disarmLocked()
	p.updateQueueMetricsLocked()
	p.mu.Unlock()

	timer := metrics.NewTimer()
	defer func() {
		timer.ObserveDuration(metrics.FlushDuration)
		metrics.FlushCyclesTotal.WithLabelValues(string(p.id)).Inc()
	}()

	// New EVSEs: the first run is a full load so the partner starts from
	// a clean slate even after a restart.
	if toAdd.Cardinality() > 0 {
		action := upstream.ActionInsert
		if runID == 1 {
			action = upstream.ActionFullLoad
		}
		p.pushData(ctx, p.dataRecords(toAdd, index), action)
	}

	// Data updates for EVSEs that are also brand-new are redundant with
	// their insert.
	if dataUpdates.Cardinality() > 0 {
		remainder := dataUpdates.Difference(toAdd)
		if remainder.Cardinality() > 0 {
			p.pushData(ctx, p.dataRecords(remainder, index), upstream.ActionUpdate)
		}
	}

	if len(statusChanges) > 0 {
		action := upstream.ActionUpdate
		if runID == 1 {
			action = upstream.ActionFullLoad
		}
		records := make([]upstream.EVSEStatusRecord, 0, len(statusChanges))
		for _, sc := range statusChanges {
			records = append(records, upstream.EVSEStatusRecord{
				ID:        sc.EVSEID,
				Status:    sc.New.Value,
				Timestamp: sc.New.Timestamp,
			})
		}
		p.pushStatus(ctx, records, action)
	}

	if toRemove.Cardinality() > 0 {
		p.pushData(ctx, p.dataRecords(toRemove, index), upstream.ActionDelete)
	}
}

// dataRecords builds the upstream payload for a set of queued EVSE ids,
// resolving inherited attributes through the owning station
func (p *Provider) dataRecords(ids mapset.Set[types.EVSEID], index map[types.EVSEID]*evse.EVSE) []upstream.EVSEDataRecord {
	records := make([]upstream.EVSEDataRecord, 0, ids.Cardinality())
	for id := range ids.Iter() {
		e, ok := index[id]
		if !ok {
			records = append(records, upstream.EVSEDataRecord{ID: id})
			continue
		}

		record := upstream.EVSEDataRecord{
			ID:          id,
			StationID:   e.StationID(),
			OperatorID:  e.OperatorID(),
			Description: e.Description(),
			MaxPowerKW:  e.MaxPowerKW(),
		}
		if s := p.stationByID(e.StationID()); s != nil {
			record.StationName = s.Name()
			record.Address = s.Address()
			record.GeoLocation = s.GeoLocation()
			record.AuthModes = s.AuthModes()
			record.Accessibility = s.Accessibility()
			record.HotlinePhone = s.HotlinePhone()
		}
		records = append(records, record)
	}
	return records
}

func (p *Provider) pushData(ctx context.Context, records []upstream.EVSEDataRecord, action upstream.Action) {
	ack, err := p.service.PushEVSEData(ctx, records, action)
	if err != nil {
		metrics.UpstreamPushesTotal.WithLabelValues("push_evse_data", "error").Inc()
		p.logger.Error().Err(err).
			Str("action", string(action)).
			Int("records", len(records)).
			Msg("failed to push EVSE data")
		return
	}
	result := "ok"
	if !ack.OK {
		result = "rejected"
		p.logger.Warn().
			Str("action", string(action)).
			Str("message", ack.Message).
			Msg("EVSE data push rejected")
	}
	metrics.UpstreamPushesTotal.WithLabelValues("push_evse_data", result).Inc()
}

func (p *Provider) pushStatus(ctx context.Context, records []upstream.EVSEStatusRecord, action upstream.Action) {
	ack, err := p.service.PushEVSEStatus(ctx, records, action)
	if err != nil {
		metrics.UpstreamPushesTotal.WithLabelValues("push_evse_status", "error").Inc()
		p.logger.Error().Err(err).
			Str("action", string(action)).
			Int("records", len(records)).
			Msg("failed to push EVSE status")
		return
	}
	result := "ok"
	if !ack.OK {
		result = "rejected"
		p.logger.Warn().
			Str("action", string(action)).
			Str("message", ack.Message).
			Msg("EVSE status push rejected")
	}
	metrics.UpstreamPushesTotal.WithLabelValues("push_evse_status", result).Inc()
}

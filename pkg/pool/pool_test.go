package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/evroam/wwcp/pkg/station"
	"github.com/evroam/wwcp/pkg/types"
)

// TestCreateStation tests station membership including the veto
func TestCreateStation(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		p := New(Config{ID: types.PoolID("P1"), OperatorID: types.OperatorID("OP1")})

		var added *station.ChargingStation
		p.OnStationAddition(func(ev StationAdditionEvent) { added = ev.Station })

		s, err := p.CreateStation(types.StationID("ST1"), func(s *station.ChargingStation) {
			s.SetName("Rathaus")
		})
		assert.NoError(t, err)
		assert.Same(t, s, added)
		assert.True(t, p.ContainsStation(types.StationID("ST1")))
		assert.Equal(t, "Rathaus", s.Name())
	})

	t.Run("duplicate id", func(t *testing.T) {
		p := New(Config{ID: types.PoolID("P1")})
		_, err := p.CreateStation(types.StationID("ST1"), nil)
		assert.NoError(t, err)

		_, err = p.CreateStation(types.StationID("ST1"), nil)
		assert.ErrorIs(t, err, types.ErrStationAlreadyExists)
	})

	t.Run("veto", func(t *testing.T) {
		p := New(Config{ID: types.PoolID("P1")})
		p.OnStationAdditionVoting(func(StationAdditionEvent) bool { return false })

		_, err := p.CreateStation(types.StationID("ST1"), nil)
		assert.ErrorIs(t, err, types.ErrAdditionVetoed)
		assert.False(t, p.ContainsStation(types.StationID("ST1")))
	})
}

// TestPoolAttributesInheritedByStation tests that stations read unset
// attributes through the pool back-reference
func TestPoolAttributesInheritedByStation(t *testing.T) {
	p := New(Config{ID: types.PoolID("P1"), OperatorID: types.OperatorID("OP1")})
	p.SetName("Parkhaus Mitte")
	p.SetAuthModes([]types.AuthMode{"nfc", "remote"})
	p.SetAccessibility(types.AccessibilityPayingPublic)

	s, err := p.CreateStation(types.StationID("ST1"), nil)
	assert.NoError(t, err)

	assert.Equal(t, "Parkhaus Mitte", s.Name())
	assert.Equal(t, []types.AuthMode{"nfc", "remote"}, s.AuthModes())
	assert.Equal(t, types.AccessibilityPayingPublic, s.Accessibility())
	assert.Equal(t, types.OperatorID("OP1"), s.Pool().OperatorID())
}

// TestRemoveStation tests removal and the not-found error
func TestRemoveStation(t *testing.T) {
	p := New(Config{ID: types.PoolID("P1")})
	p.CreateStation(types.StationID("ST1"), nil)

	removed, err := p.RemoveStation(types.StationID("ST1"))
	assert.NoError(t, err)
	assert.Equal(t, types.StationID("ST1"), removed.ID())
	assert.False(t, p.ContainsStation(types.StationID("ST1")))

	_, err = p.RemoveStation(types.StationID("ST1"))
	assert.Error(t, err)
}

package station

import (
	"slices"
	"time"

	"github.com/evroam/wwcp/pkg/events"
	"github.com/evroam/wwcp/pkg/types"
)

// Inheritable attributes fall back to the pool: reading an unset local
// attribute returns the pool's value, writing the pool's current value
// clears the local override, writing an empty value deletes it.

// Name returns the station name, falling back to the pool
func (s *ChargingStation) Name() string {
	s.mu.RLock()
	v := s.name
	s.mu.RUnlock()

	if v != "" {
		return v
	}
	if s.pool != nil {
		return s.pool.Name()
	}
	return ""
}

// SetName sets or clears the local station name
func (s *ChargingStation) SetName(v string) {
	poolValue := ""
	if s.pool != nil {
		poolValue = s.pool.Name()
	}
	s.setStringAttr("name", v, poolValue, &s.name)
}

// Description returns the station description, falling back to the pool
func (s *ChargingStation) Description() string {
	s.mu.RLock()
	v := s.description
	s.mu.RUnlock()

	if v != "" {
		return v
	}
	if s.pool != nil {
		return s.pool.Description()
	}
	return ""
}

// SetDescription sets or clears the local station description
func (s *ChargingStation) SetDescription(v string) {
	poolValue := ""
	if s.pool != nil {
		poolValue = s.pool.Description()
	}
	s.setStringAttr("description", v, poolValue, &s.description)
}

// HotlinePhone returns the hotline number, falling back to the pool
func (s *ChargingStation) HotlinePhone() string {
	s.mu.RLock()
	v := s.hotlinePhone
	s.mu.RUnlock()

	if v != "" {
		return v
	}
	if s.pool != nil {
		return s.pool.HotlinePhone()
	}
	return ""
}

// SetHotlinePhone sets or clears the local hotline number
func (s *ChargingStation) SetHotlinePhone(v string) {
	poolValue := ""
	if s.pool != nil {
		poolValue = s.pool.HotlinePhone()
	}
	s.setStringAttr("hotline_phone", v, poolValue, &s.hotlinePhone)
}

// setStringAttr applies the shared write semantics for string attributes
func (s *ChargingStation) setStringAttr(property, v, poolValue string, field *string) {
	s.mu.Lock()
	old := *field
	switch {
	case v == poolValue || v == "":
		// Writing the pool's value or the empty value deletes the override
		if old == "" {
			s.mu.Unlock()
			return
		}
		*field = ""
	default:
		if old == v {
			s.mu.Unlock()
			return
		}
		*field = v
	}
	new := *field
	s.mu.Unlock()

	s.publishDataChanged(property, old, new)
}

// Address returns the postal address, falling back to the pool
func (s *ChargingStation) Address() *types.Address {
	s.mu.RLock()
	v := s.address
	s.mu.RUnlock()

	if !v.IsEmpty() {
		return v
	}
	if s.pool != nil {
		return s.pool.Address()
	}
	return nil
}

// SetAddress sets or clears the local postal address
func (s *ChargingStation) SetAddress(v *types.Address) {
	var poolValue *types.Address
	if s.pool != nil {
		poolValue = s.pool.Address()
	}
	s.setAddressAttr("address", v, poolValue, &s.address)
}

// EntranceAddress returns the entrance address, falling back to the pool
func (s *ChargingStation) EntranceAddress() *types.Address {
	s.mu.RLock()
	v := s.entrance
	s.mu.RUnlock()

	if !v.IsEmpty() {
		return v
	}
	if s.pool != nil {
		return s.pool.EntranceAddress()
	}
	return nil
}

// SetEntranceAddress sets or clears the local entrance address
func (s *ChargingStation) SetEntranceAddress(v *types.Address) {
	var poolValue *types.Address
	if s.pool != nil {
		poolValue = s.pool.EntranceAddress()
	}
	s.setAddressAttr("entrance_address", v, poolValue, &s.entrance)
}

// ExitAddress returns the exit address, falling back to the pool
func (s *ChargingStation) ExitAddress() *types.Address {
	s.mu.RLock()
	v := s.exit
	s.mu.RUnlock()

	if !v.IsEmpty() {
		return v
	}
	if s.pool != nil {
		return s.pool.ExitAddress()
	}
	return nil
}

// SetExitAddress sets or clears the local exit address
func (s *ChargingStation) SetExitAddress(v *types.Address) {
	var poolValue *types.Address
	if s.pool != nil {
		poolValue = s.pool.ExitAddress()
	}
	s.setAddressAttr("exit_address", v, poolValue, &s.exit)
}

func (s *ChargingStation) setAddressAttr(property string, v, poolValue *types.Address, field **types.Address) {
	s.mu.Lock()
	old := *field
	switch {
	case v.IsEmpty() || addressesEqual(v, poolValue):
		if old == nil {
			s.mu.Unlock()
			return
		}
		*field = nil
	default:
		if addressesEqual(old, v) {
			s.mu.Unlock()
			return
		}
		*field = v
	}
	new := *field
	s.mu.Unlock()

	s.publishDataChanged(property, old, new)
}

func addressesEqual(a, b *types.Address) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// GeoLocation returns the geo coordinate, falling back to the pool
func (s *ChargingStation) GeoLocation() types.GeoCoordinate {
	s.mu.RLock()
	v := s.geoLocation
	s.mu.RUnlock()

	if v.IsValid() {
		return v
	}
	if s.pool != nil {
		return s.pool.GeoLocation()
	}
	return types.GeoCoordinate{}
}

// SetGeoLocation sets or clears the local geo coordinate
func (s *ChargingStation) SetGeoLocation(v types.GeoCoordinate) {
	var poolValue types.GeoCoordinate
	if s.pool != nil {
		poolValue = s.pool.GeoLocation()
	}

	s.mu.Lock()
	old := s.geoLocation
	switch {
	case !v.IsValid() || v == poolValue:
		if !old.IsValid() {
			s.mu.Unlock()
			return
		}
		s.geoLocation = types.GeoCoordinate{}
	default:
		if old == v {
			s.mu.Unlock()
			return
		}
		s.geoLocation = v
	}
	new := s.geoLocation
	s.mu.Unlock()

	s.publishDataChanged("geo_location", old, new)
}

// OpeningTimes returns the opening times, falling back to the pool
func (s *ChargingStation) OpeningTimes() types.OpeningTimes {
	s.mu.RLock()
	v := s.openingTimes
	s.mu.RUnlock()

	if !v.IsEmpty() {
		return v
	}
	if s.pool != nil {
		return s.pool.OpeningTimes()
	}
	return types.OpeningTimes{}
}

// SetOpeningTimes sets or clears the local opening times
func (s *ChargingStation) SetOpeningTimes(v types.OpeningTimes) {
	var poolValue types.OpeningTimes
	if s.pool != nil {
		poolValue = s.pool.OpeningTimes()
	}

	s.mu.Lock()
	old := s.openingTimes
	switch {
	case v.IsEmpty() || v == poolValue:
		if old.IsEmpty() {
			s.mu.Unlock()
			return
		}
		s.openingTimes = types.OpeningTimes{}
	default:
		if old == v {
			s.mu.Unlock()
			return
		}
		s.openingTimes = v
	}
	new := s.openingTimes
	s.mu.Unlock()

	s.publishDataChanged("opening_times", old, new)
}

// AuthModes returns the authentication modes, falling back to the pool
func (s *ChargingStation) AuthModes() []types.AuthMode {
	s.mu.RLock()
	v := s.authModes
	s.mu.RUnlock()

	if len(v) > 0 {
		return v
	}
	if s.pool != nil {
		return s.pool.AuthModes()
	}
	return nil
}

// SetAuthModes sets or clears the local authentication modes
func (s *ChargingStation) SetAuthModes(v []types.AuthMode) {
	var poolValue []types.AuthMode
	if s.pool != nil {
		poolValue = s.pool.AuthModes()
	}

	s.mu.Lock()
	old := s.authModes
	switch {
	case len(v) == 0 || slices.Equal(v, poolValue):
		if len(old) == 0 {
			s.mu.Unlock()
			return
		}
		s.authModes = nil
	default:
		if slices.Equal(old, v) {
			s.mu.Unlock()
			return
		}
		s.authModes = v
	}
	new := s.authModes
	s.mu.Unlock()

	s.publishDataChanged("auth_modes", old, new)
}

// PaymentOptions returns the payment options, falling back to the pool
func (s *ChargingStation) PaymentOptions() []types.PaymentOption {
	s.mu.RLock()
	v := s.paymentOptions
	s.mu.RUnlock()

	if len(v) > 0 {
		return v
	}
	if s.pool != nil {
		return s.pool.PaymentOptions()
	}
	return nil
}

// SetPaymentOptions sets or clears the local payment options
func (s *ChargingStation) SetPaymentOptions(v []types.PaymentOption) {
	var poolValue []types.PaymentOption
	if s.pool != nil {
		poolValue = s.pool.PaymentOptions()
	}

	s.mu.Lock()
	old := s.paymentOptions
	switch {
	case len(v) == 0 || slices.Equal(v, poolValue):
		if len(old) == 0 {
			s.mu.Unlock()
			return
		}
		s.paymentOptions = nil
	default:
		if slices.Equal(old, v) {
			s.mu.Unlock()
			return
		}
		s.paymentOptions = v
	}
	new := s.paymentOptions
	s.mu.Unlock()

	s.publishDataChanged("payment_options", old, new)
}

// Accessibility returns the accessibility class, falling back to the pool
func (s *ChargingStation) Accessibility() types.Accessibility {
	s.mu.RLock()
	v := s.accessibility
	s.mu.RUnlock()

	if v != types.AccessibilityUnspecified {
		return v
	}
	if s.pool != nil {
		return s.pool.Accessibility()
	}
	return types.AccessibilityUnspecified
}

// SetAccessibility sets or clears the local accessibility class
func (s *ChargingStation) SetAccessibility(v types.Accessibility) {
	var poolValue types.Accessibility
	if s.pool != nil {
		poolValue = s.pool.Accessibility()
	}

	s.mu.Lock()
	old := s.accessibility
	switch {
	case v == types.AccessibilityUnspecified || v == poolValue:
		if old == types.AccessibilityUnspecified {
			s.mu.Unlock()
			return
		}
		s.accessibility = types.AccessibilityUnspecified
	default:
		if old == v {
			s.mu.Unlock()
			return
		}
		s.accessibility = v
	}
	new := s.accessibility
	s.mu.Unlock()

	s.publishDataChanged("accessibility", old, new)
}

func (s *ChargingStation) publishDataChanged(property string, old, new any) {
	s.publish(&events.Message{
		Kind:      events.KindDataChanged,
		Timestamp: time.Now(),
		Operator:  s.operatorID(),
		Pool:      s.poolID(),
		Station:   s.id,
		Property:  property,
		Old:       old,
		New:       new,
	})
}

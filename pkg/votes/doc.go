/*
Package votes implements the two-phase voting broadcast used for votable
mutations in the roaming hierarchy.

Adding or removing an EVSE, removing a station and cancelling a reservation
are all votable: before the mutation takes effect, every voting subscriber
is asked and any of them can veto. After a successful mutation, every
notification subscriber is informed unconditionally.

# Usage

	additions := votes.New[station.EVSEAdditionEvent]()
	additions.OnVoting(func(ev station.EVSEAdditionEvent) bool {
		return ev.EVSEID != blockedID // veto a specific id
	})
	additions.OnNotification(func(ev station.EVSEAdditionEvent) {
		log.Info().Str("evse_id", string(ev.EVSEID)).Msg("EVSE added")
	})

	if !additions.SendVoting(ev) {
		return nil, types.ErrAdditionVetoed
	}
	// ...mutate...
	additions.SendNotification(ev)

Both phases run synchronously on the calling goroutine; subscribers must
be non-blocking.
*/
package votes

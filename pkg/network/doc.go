/*
Package network implements the roaming network, the top-level container of
the hierarchy.

The network owns the message bus every entity publishes on, holds the
operators, and routes provider-originated reserve and remote start/stop
calls to the station owning the target EVSE. Back-references inside the
hierarchy are plain non-owning pointers; the network is the only owner of
the operator set.

# Usage

	rn := network.New(types.NetworkID("prod"))
	rn.Start()
	defer rn.Stop()

	op, _ := rn.CreateOperator(types.OperatorID("DE*GEF"), "GraphDefined GmbH")
	p, _ := op.CreatePool(types.PoolID("DE*GEF*P1"), nil)
	st, _ := p.CreateStation(types.StationID("DE*GEF*S1"), nil)
*/
package network

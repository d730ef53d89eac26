/*
Package pool implements the charging pool: a site holding one or more
charging stations.

The pool is the factory for its stations (votable additions) and the
source of the descriptive attributes stations inherit. Pool attributes are
plain values; the fallback logic lives in pkg/station, which reads through
its PoolRef back-reference whenever a local override is absent.

# Usage

	p := pool.New(pool.Config{
		ID:         types.PoolID("DE*GEF*P1"),
		OperatorID: operatorID,
		Broker:     broker,
	})
	p.SetName("Hauptbahnhof Nord")

	st, err := p.CreateStation(types.StationID("DE*GEF*S1"), nil)
*/
package pool

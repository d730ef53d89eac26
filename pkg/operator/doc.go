/*
Package operator implements the charging station operator: the owner of a
set of charging pools and the routing index for roaming providers.

The operator is the factory for pools and answers lookups by station id
and EVSE id across all of them, which the roaming network uses to route
remote start/stop and reserve calls from providers to the correct station.
*/
package operator

/*
Package upstream defines the seam between the roaming core and an external
roaming partner.

Service is the abstract bulk interface the provider pushes through:
EVSE data and status batches with an Action (fullLoad, insert, update,
delete), authorize start/stop, and charge detail record forwarding. Wire
encodings such as OICP or OCPP live behind implementations of this
interface and are out of scope for the core.

LoggingService is a stand-in implementation that acknowledges and logs
every call; the daemon uses it when no partner is configured, and the
provider tests use a recording variant.
*/
package upstream

// Package server exposes climate controllers over HTTP and hosts the
// websocket hub IR bridges connect to.
//
// # Routes
//
//	GET  /api/devices                 all device states
//	GET  /api/devices/{name}          one device state
//	PUT  /api/devices/{name}/state    apply a (partial) request and transmit it
//	POST /api/devices/{name}/preview  encode without transmitting
//	PUT  /api/devices/{name}/power    record the power state of a toggle-power unit
//	GET  /api/models                  supported handset models
//	GET  /ws                          bridge websocket (?device=<name> to filter)
//	GET  /metrics                     Prometheus metrics
//	GET  /healthz                     liveness
//
// # Bridges
//
// A bridge is any websocket client that turns JSON envelopes into IR: an
// ESPHome board, a Raspberry Pi with an IR LED, or a test harness. Each
// envelope carries the carrier frequency and alternating signed microsecond
// timings. Bridges may answer with {"id": ..., "status": "ok"} or
// {"id": ..., "error": ...}; answers are logged only.
//
// The hub is itself a transmit.Sink, so devices configured with the
// "websocket" sink type send through it.
package server

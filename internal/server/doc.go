// Package server exposes a control panel session to browsers and other
// machines on the network.
//
// # Routes
//
//	GET    /api/state             current state (presets, values, lock, link)
//	GET    /api/ports             serial ports on the host
//	POST   /api/select            {"index": 2}
//	POST   /api/navigate          {"direction": -1}
//	POST   /api/values            {"torque": 35, "speed": 60}
//	POST   /api/step              {"parameter": "torque", "delta": 1}
//	POST   /api/button            {"parameter": "speed", "index": 0}
//	POST   /api/lock              {"locked": true}, or empty to toggle
//	POST   /api/presets           add a screw from the live values
//	DELETE /api/presets           delete the selected screw
//	DELETE /api/presets/{index}   delete a screw by position
//	PUT    /api/presets/name      {"name": "M4 housing"}
//	POST   /api/import            multipart "file", or a raw body with ?filename=
//	GET    /api/export?format=csv download (xlsx when format is omitted)
//	POST   /api/connect           {"port": "/dev/ttyUSB0"}, or empty for the configured port
//	POST   /api/disconnect
//	GET    /ws                    state stream
//
// Mutating routes reply with the new state. Lock refusals answer 409,
// rejected values and imports 422, and link failures 501 or 502, each with
// a JSON body holding "error" and an optional "hint".
//
// # WebSocket stream
//
// A client receives the full state on connect and after every change,
// plus "notice", "error" and "rx" (device text) messages:
//
//	{"type": "state", "state": {...}}
//	{"type": "notice", "message": "Imported 3 screws"}
//	{"type": "rx", "port": "/dev/ttyUSB0", "text": "OK"}
//
// # Thread Safety
//
// The session is not safe for concurrent use. Every handler takes the
// server's lock around session calls, and link callbacks re-enter through
// the same lock on their own goroutine.
package server

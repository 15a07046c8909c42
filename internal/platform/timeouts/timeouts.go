// Package timeouts defines shared timeout constants so that the gateway,
// session and entrypoint agree on their bounds.
package timeouts

import "time"

// Request caps the time allowed for a single backend API request.
const Request = 10 * time.Second

// Bootstrap caps the time a session waits for its initial collection loads.
const Bootstrap = 30 * time.Second

// Shutdown limits how long telemetry flushing may take on exit.
const Shutdown = 5 * time.Second

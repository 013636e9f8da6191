// Package lifecycle holds shared constants for component start/stop hooks.
package lifecycle

import "time"

// DefaultTimeout bounds lifecycle operations such as database pings and
// graceful server shutdown.
const DefaultTimeout = 10 * time.Second

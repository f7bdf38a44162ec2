// Package lifecycle holds shared start/stop settings for long-lived components.
package lifecycle

import "time"

// DefaultTimeout bounds connect, ping and shutdown steps run from fx hooks.
const DefaultTimeout = 10 * time.Second

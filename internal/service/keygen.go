package service

import (
	"fmt"
	"sync"
	"time"
)

var (
	keyMu         sync.Mutex
	lastKeyMillis int64
)

// generateTicketID returns an externally visible identifier of the form
// TKT-<millisecond timestamp>. IDs sort by creation order. When two creations
// land in the same millisecond the later one is bumped forward, so collisions
// are impossible within one process.
func generateTicketID(now time.Time) string {
	keyMu.Lock()
	defer keyMu.Unlock()

	millis := now.UnixMilli()
	if millis <= lastKeyMillis {
		millis = lastKeyMillis + 1
	}
	lastKeyMillis = millis
	return fmt.Sprintf("TKT-%d", millis)
}

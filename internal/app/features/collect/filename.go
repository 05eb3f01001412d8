// internal/app/features/collect/filename.go
package collect

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var unsafeRuns = regexp.MustCompile(`[^a-zA-Z0-9]+`)

func sanitizeComponent(s string) string {
	return strings.Trim(unsafeRuns.ReplaceAllString(s, "-"), "-")
}

// screenshotFilename derives the storage key for an uploaded capture:
// "{unix-ms}_{deviceId}_{hostname}_{platform}.png". Hostname and platform
// fall back to username and domain for older agents; when nothing usable
// was sent a random component keeps keys unique.
func screenshotFilename(now time.Time, deviceID, hostname, platform, username, domain string) string {
	if hostname == "" {
		hostname = username
	}
	if platform == "" {
		platform = domain
	}

	parts := []string{fmt.Sprintf("%d", now.UnixMilli())}
	var tagged bool
	for _, c := range []string{deviceID, hostname, platform} {
		if c = sanitizeComponent(c); c != "" {
			parts = append(parts, c)
			tagged = true
		}
	}
	if !tagged {
		parts = append(parts, uuid.NewString())
	}
	return strings.Join(parts, "_") + ".png"
}

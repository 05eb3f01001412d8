// internal/app/features/collect/payload.go
package collect

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/workwatchhq/workwatch/internal/app/system/normalize"
	"github.com/workwatchhq/workwatch/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
)

// incomingEvent is the union of the two payload shapes agents send. Newer
// agents use time/duration/details; older ones use
// timestamp/durationMs/data plus deviceIdHash and reason. The union is
// resolved here and never leaves this package.
type incomingEvent struct {
	Username string `json:"username"`
	Domain   string `json:"domain"`
	Type     string `json:"type"`

	Time     json.RawMessage `json:"time"`
	Duration *int64          `json:"duration"`
	Details  bson.M          `json:"details"`

	Timestamp    json.RawMessage `json:"timestamp"`
	DurationMs   *int64          `json:"durationMs"`
	Data         bson.M          `json:"data"`
	DeviceIDHash string          `json:"deviceIdHash"`
	Reason       string          `json:"reason"`
}

// Issue describes one validation failure in a submitted batch.
type Issue struct {
	Index   int    `json:"index"`
	Field   string `json:"field"`
	Problem string `json:"problem"`
}

func (i Issue) String() string {
	return fmt.Sprintf("events[%d].%s: %s", i.Index, i.Field, i.Problem)
}

// parseTimestamp accepts RFC3339 strings or epoch milliseconds, the two
// encodings seen from deployed agents.
func parseTimestamp(raw json.RawMessage) (time.Time, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return time.Time{}, fmt.Errorf("required")
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return time.Time{}, fmt.Errorf("malformed string")
		}
		t, err := time.Parse(time.RFC3339, str)
		if err != nil {
			return time.Time{}, fmt.Errorf("not RFC3339")
		}
		return t, nil
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("not a timestamp")
	}
	return time.UnixMilli(ms), nil
}

// resolve converts one union-shaped event into the canonical model,
// returning the validation issues instead when it cannot.
func (in incomingEvent) resolve(index int) (models.Event, []Issue) {
	var issues []Issue

	ev := models.Event{
		Username:     normalize.Username(in.Username),
		Domain:       normalize.Domain(in.Domain),
		Type:         strings.TrimSpace(in.Type),
		DeviceIDHash: strings.TrimSpace(in.DeviceIDHash),
		Reason:       strings.TrimSpace(in.Reason),
	}

	if ev.Username == "" {
		issues = append(issues, Issue{Index: index, Field: "username", Problem: "required"})
	}

	raw := in.Time
	field := "time"
	if len(raw) == 0 {
		raw = in.Timestamp
		field = "timestamp"
	}
	ts, err := parseTimestamp(raw)
	if err != nil {
		issues = append(issues, Issue{Index: index, Field: field, Problem: err.Error()})
	} else {
		ev.Timestamp = ts
	}

	duration := in.Duration
	field = "duration"
	if duration == nil {
		duration = in.DurationMs
		field = "durationMs"
	}
	if duration != nil {
		if *duration < 0 {
			issues = append(issues, Issue{Index: index, Field: field, Problem: "must be non-negative"})
		} else {
			ev.DurationMs = *duration
		}
	}

	if in.Details != nil {
		ev.Data = in.Details
	} else if in.Data != nil {
		ev.Data = in.Data
	}

	if len(issues) > 0 {
		return models.Event{}, issues
	}
	return ev, nil
}

// resolveBatch validates the whole batch before anything is written. One
// bad event fails the lot so agents notice malformed payloads.
func resolveBatch(in []incomingEvent) ([]models.Event, []Issue) {
	events := make([]models.Event, 0, len(in))
	var issues []Issue
	for i, raw := range in {
		ev, evIssues := raw.resolve(i)
		if len(evIssues) > 0 {
			issues = append(issues, evIssues...)
			continue
		}
		events = append(events, ev)
	}
	if len(issues) > 0 {
		return nil, issues
	}
	return events, nil
}

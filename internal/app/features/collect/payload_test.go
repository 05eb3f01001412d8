package collect

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveNewShape(t *testing.T) {
	var in incomingEvent
	require.NoError(t, json.Unmarshal([]byte(`{
		"time": "2026-03-02T10:00:00Z",
		"username": "Alice",
		"domain": "Github.com",
		"type": "window_activity",
		"duration": 4200,
		"details": {"title": "pull requests"}
	}`), &in))

	ev, issues := in.resolve(0)
	require.Empty(t, issues)
	assert.Equal(t, "alice", ev.Username)
	assert.Equal(t, "github.com", ev.Domain)
	assert.Equal(t, int64(4200), ev.DurationMs)
	assert.Equal(t, "pull requests", ev.Data["title"])
	assert.Equal(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), ev.Timestamp.UTC())
}

func TestResolveLegacyShape(t *testing.T) {
	var in incomingEvent
	require.NoError(t, json.Unmarshal([]byte(`{
		"timestamp": 1740909600000,
		"username": "bob",
		"deviceIdHash": "abc123",
		"durationMs": 900,
		"reason": "idle",
		"data": {"app": "slack"}
	}`), &in))

	ev, issues := in.resolve(0)
	require.Empty(t, issues)
	assert.Equal(t, "bob", ev.Username)
	assert.Equal(t, "abc123", ev.DeviceIDHash)
	assert.Equal(t, "idle", ev.Reason)
	assert.Equal(t, int64(900), ev.DurationMs)
	assert.Equal(t, "slack", ev.Data["app"])
	assert.Equal(t, int64(1740909600000), ev.Timestamp.UnixMilli())
}

func TestResolveEpochMillisInTimeField(t *testing.T) {
	var in incomingEvent
	require.NoError(t, json.Unmarshal([]byte(`{"time": 1740909600000, "username": "c"}`), &in))

	ev, issues := in.resolve(0)
	require.Empty(t, issues)
	assert.Equal(t, int64(1740909600000), ev.Timestamp.UnixMilli())
}

func TestResolveIssues(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		field   string
	}{
		{"missing username", `{"time": "2026-03-02T10:00:00Z"}`, "username"},
		{"missing timestamps", `{"username": "a"}`, "timestamp"},
		{"bad time string", `{"username": "a", "time": "yesterday"}`, "time"},
		{"negative duration", `{"username": "a", "time": 1, "duration": -5}`, "duration"},
		{"negative legacy duration", `{"username": "a", "timestamp": 1, "durationMs": -1}`, "durationMs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in incomingEvent
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &in))
			_, issues := in.resolve(3)
			require.NotEmpty(t, issues)
			assert.Equal(t, tt.field, issues[0].Field)
			assert.Equal(t, 3, issues[0].Index)
			assert.True(t, strings.HasPrefix(issues[0].String(), "events[3]."))
		})
	}
}

func TestResolveBatchAllOrNothing(t *testing.T) {
	var batch []incomingEvent
	require.NoError(t, json.Unmarshal([]byte(`[
		{"username": "a", "time": "2026-03-02T10:00:00Z"},
		{"time": "2026-03-02T10:01:00Z"},
		{"username": "c", "time": "bogus"}
	]`), &batch))

	events, issues := resolveBatch(batch)
	assert.Nil(t, events, "valid events must not survive a failed batch")
	require.Len(t, issues, 2)
	assert.Equal(t, 1, issues[0].Index)
	assert.Equal(t, 2, issues[1].Index)
}

func TestScreenshotFilename(t *testing.T) {
	now := time.UnixMilli(1740909600000)

	t.Run("full components", func(t *testing.T) {
		got := screenshotFilename(now, "dev 01", "alice-laptop", "win32", "", "")
		assert.Equal(t, "1740909600000_dev-01_alice-laptop_win32.png", got)
	})

	t.Run("fallback to username and domain", func(t *testing.T) {
		got := screenshotFilename(now, "", "", "", "alice", "github.com")
		assert.Equal(t, "1740909600000_alice_github-com.png", got)
	})

	t.Run("nothing usable gets a random component", func(t *testing.T) {
		got := screenshotFilename(now, "", "", "", "", "")
		assert.True(t, strings.HasPrefix(got, "1740909600000_"))
		assert.True(t, strings.HasSuffix(got, ".png"))
		assert.Greater(t, len(got), len("1740909600000_.png"))
	})
}

// Package featureflags evaluates runtime feature toggles from FEATURE_FLAGS.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Known flags.
const (
	// UploadPreviews writes a resized WebP preview next to each accepted upload.
	UploadPreviews = "upload_previews"
	// RealtimeEvents publishes follow, like and comment events to websocket clients.
	RealtimeEvents = "realtime_events"
)

// rule is a parsed flag value: always on, always off, or a percentage rollout.
type rule struct {
	raw     string
	percent int // 0..100; on = 100, off = 0
	rollout bool
}

// Manager evaluates feature flags defined in a key=value list.
// Example: "upload_previews=on,realtime_events=25%"
type Manager struct {
	rules map[string]rule
}

// NewManager creates a feature-flag manager from a comma-separated config string.
// Malformed entries are skipped.
func NewManager(raw string) *Manager {
	rules := make(map[string]rule)

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		if r, ok := parseRule(value); ok {
			rules[key] = r
		}
	}

	return &Manager{rules: rules}
}

func parseRule(value string) (rule, bool) {
	switch value {
	case "on", "true", "1":
		return rule{raw: value, percent: 100}, true
	case "off", "false", "0":
		return rule{raw: value}, true
	}
	pctRaw, isPct := strings.CutSuffix(value, "%")
	if !isPct {
		return rule{}, false
	}
	pct, err := strconv.Atoi(pctRaw)
	if err != nil {
		return rule{}, false
	}
	pct = max(0, min(pct, 100))
	return rule{raw: value, percent: pct, rollout: true}, true
}

// Enabled returns whether a flag is enabled for a given user. Percentage
// rollouts bucket users deterministically and never include anonymous users
// unless the rollout is 100%.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}
	r, ok := m.rules[normalize(name)]
	if !ok {
		return false
	}
	switch {
	case r.percent >= 100:
		return true
	case r.percent <= 0:
		return false
	case userID == 0:
		return false
	}
	return rolloutBucket(name, userID) < r.percent
}

// Raw returns a copy of configured flag values.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.rules))
	for k, r := range m.rules {
		out[k] = r.raw
	}
	return out
}

// Snapshot returns evaluated flag status for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.rules))
	for name := range m.rules {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", normalize(name), userID)
	return int(h.Sum32() % 100)
}

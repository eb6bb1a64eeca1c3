package telemetry

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/grafana/pyroscope-go"
)

// Profiling label keys
const (
	ProfilingLabelController = "controller"
	ProfilingLabelRoute      = "route"
	ProfilingLabelMethod     = "method"
	ProfilingLabelRole       = "staff_role"
	ProfilingLabelOperation  = "operation"
)

// MaxLabelValueLength bounds label values
const MaxLabelValueLength = 128

// HighCardinalityLabels are dropped before labels reach Pyroscope.
var HighCardinalityLabels = map[string]bool{
	"request_id": true,
	"order_id":   true,
	"session_id": true,
	"trace_id":   true,
	"span_id":    true,
	"username":   true,
}

// WithProfilingLabels runs fn with pprof labels attached so Pyroscope can
// slice CPU and allocation profiles by route and role.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := sanitizeLabels(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// sanitizeLabels returns key/value pairs ordered by cleaned key with empty,
// high-cardinality and malformed entries removed and long values truncated.
func sanitizeLabels(labels map[string]string) []string {
	if len(labels) == 0 {
		return nil
	}
	cleaned := make(map[string]string, len(labels))
	for key, value := range labels {
		clean := sanitizeLabelKey(key)
		if clean == "" || value == "" || HighCardinalityLabels[clean] {
			continue
		}
		if len(value) > MaxLabelValueLength {
			value = value[:MaxLabelValueLength]
		}
		cleaned[clean] = value
	}
	keys := slices.Sorted(maps.Keys(cleaned))

	pairs := make([]string, 0, len(keys)*2)
	for _, key := range keys {
		pairs = append(pairs, key, cleaned[key])
	}
	return pairs
}

func sanitizeLabelKey(key string) string {
	key = strings.ToLower(key)
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return -1
	}, key)
}

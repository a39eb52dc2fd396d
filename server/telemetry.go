package server

import (
	"sort"
	"sync"
	"time"

	"github.com/nox-hq/parley/assist"
)

// ProviderTelemetry holds completion metrics collected for one provider.
type ProviderTelemetry struct {
	Provider          string        `json:"provider"`
	TotalDuration     time.Duration `json:"total_duration_ns"`
	InvocationCount   int           `json:"invocation_count"`
	NotConfigured     int           `json:"not_configured_count"`
	BackendFailures   int           `json:"backend_failure_count"`
	PromptTokens      int           `json:"prompt_tokens"`
	CompletionTokens  int           `json:"completion_tokens"`
	LastFailureDetail string        `json:"last_failure_detail,omitempty"`
}

// telemetryCollector accumulates per-provider metrics in a thread-safe
// manner. It lives in the transport layer; the pipeline itself keeps no
// state between calls.
type telemetryCollector struct {
	entries map[string]*ProviderTelemetry
	mu      sync.Mutex
}

func newTelemetryCollector() *telemetryCollector {
	return &telemetryCollector{
		entries: make(map[string]*ProviderTelemetry),
	}
}

// Record adds one completion's outcome to the collector.
func (tc *telemetryCollector) Record(provider string, duration time.Duration, res assist.Result, usage assist.Usage) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	entry, ok := tc.entries[provider]
	if !ok {
		entry = &ProviderTelemetry{Provider: provider}
		tc.entries[provider] = entry
	}

	entry.TotalDuration += duration
	entry.InvocationCount++
	entry.PromptTokens += usage.PromptTokens
	entry.CompletionTokens += usage.CompletionTokens
	if res.Err != nil {
		switch res.Err.Kind {
		case assist.KindNotConfigured:
			entry.NotConfigured++
		default:
			entry.BackendFailures++
		}
		entry.LastFailureDetail = res.Err.Detail
	}
}

// Snapshot returns a copy of all collected telemetry sorted by provider.
func (tc *telemetryCollector) Snapshot() []ProviderTelemetry {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	out := make([]ProviderTelemetry, 0, len(tc.entries))
	for _, entry := range tc.entries {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })
	return out
}

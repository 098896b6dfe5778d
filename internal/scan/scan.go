// Package scan runs mailbox sources and feeds the engine. Scans are
// idempotent re-reads of envelope metadata, meant to be invoked
// periodically or from the watch loop.
package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/openclaw/rolodex/internal/config"
	"github.com/openclaw/rolodex/internal/crm"
	"github.com/openclaw/rolodex/internal/mailbox"
)

// AdapterResult contains the result of scanning a single adapter
type AdapterResult struct {
	AdapterName string `json:"adapter_name"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
	Fetched     int    `json:"fetched"`
	Added       int    `json:"added"`
	Updated     int    `json:"updated"`
	Logged      int    `json:"interactions_logged"`
	Skipped     int    `json:"skipped"`
	Duration    string `json:"duration"`
}

// Result contains the results of scanning all adapters
type Result struct {
	OK       bool            `json:"ok"`
	Message  string          `json:"message,omitempty"`
	Adapters []AdapterResult `json:"adapters,omitempty"`
}

// All runs every enabled adapter.
func All(ctx context.Context, eng *crm.Engine, cfg *config.Config, since time.Time) Result {
	result := Result{OK: true}

	enabled := 0
	for _, adapterCfg := range cfg.Adapters {
		if adapterCfg.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		result.Message = "No adapters enabled"
		return result
	}

	for name, adapterCfg := range cfg.Adapters {
		if !adapterCfg.Enabled {
			continue
		}
		adapterResult := runAdapter(ctx, eng, name, adapterCfg, since)
		result.Adapters = append(result.Adapters, adapterResult)
		if !adapterResult.Success {
			// One adapter failing doesn't stop others, but the overall
			// scan is not OK.
			result.OK = false
		}
	}

	return result
}

// One runs a specific adapter by name.
func One(ctx context.Context, eng *crm.Engine, cfg *config.Config, adapterName string, since time.Time) Result {
	result := Result{OK: true}

	adapterCfg, exists := cfg.Adapters[adapterName]
	if !exists {
		result.OK = false
		result.Message = fmt.Sprintf("Adapter '%s' not configured", adapterName)
		return result
	}
	if !adapterCfg.Enabled {
		result.OK = false
		result.Message = fmt.Sprintf("Adapter '%s' is disabled", adapterName)
		return result
	}

	adapterResult := runAdapter(ctx, eng, adapterName, adapterCfg, since)
	result.Adapters = []AdapterResult{adapterResult}
	if !adapterResult.Success {
		result.OK = false
	}
	return result
}

func runAdapter(ctx context.Context, eng *crm.Engine, name string, cfg config.AdapterConfig, since time.Time) AdapterResult {
	result := AdapterResult{AdapterName: name}
	start := time.Now()

	source, err := mailbox.New(name, cfg)
	if err != nil {
		result.Error = fmt.Sprintf("Failed to create source: %v", err)
		return result
	}

	envelopes, err := source.Fetch(ctx, since)
	if err != nil {
		result.Error = fmt.Sprintf("Fetch failed: %v", err)
		return result
	}
	result.Fetched = len(envelopes)

	stats, err := eng.Ingest(envelopes)
	if err != nil {
		result.Error = fmt.Sprintf("Ingest failed: %v", err)
		return result
	}

	result.Success = true
	result.Added = stats.Added
	result.Updated = stats.Updated
	result.Logged = stats.Logged
	result.Skipped = stats.Skipped
	result.Duration = time.Since(start).String()
	return result
}

// Package mailbox fetches envelope metadata from mail sources. Sources
// only produce records; all normalization and storage happens in the
// crm engine.
package mailbox

import (
	"context"
	"fmt"
	"time"

	"github.com/openclaw/rolodex/internal/config"
	"github.com/openclaw/rolodex/internal/crm"
)

// Source produces envelope records for ingestion.
type Source interface {
	Name() string
	Fetch(ctx context.Context, since time.Time) ([]crm.Envelope, error)
}

// New constructs a source from its adapter config.
func New(name string, cfg config.AdapterConfig) (Source, error) {
	switch cfg.Type {
	case "himalaya":
		return NewHimalayaSource(name, cfg.Options)
	case "imap":
		return NewIMAPSource(name, cfg.Options)
	default:
		return nil, fmt.Errorf("unknown mailbox adapter type: %s", cfg.Type)
	}
}

func getStringOption(opts map[string]interface{}, key, def string) string {
	if v, ok := opts[key].(string); ok && v != "" {
		return v
	}
	return def
}

func getIntOption(opts map[string]interface{}, key string, def int) int {
	switch v := opts[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

package mailbox

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/openclaw/rolodex/internal/crm"
)

// HimalayaSource lists envelopes via the himalaya CLI.
type HimalayaSource struct {
	name    string
	account string
	folder  string
}

// NewHimalayaSource verifies the CLI is installed and builds the source.
func NewHimalayaSource(name string, opts map[string]interface{}) (*HimalayaSource, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("adapter instance name is required for himalaya source")
	}
	if _, err := exec.LookPath("himalaya"); err != nil {
		return nil, fmt.Errorf("himalaya not found in PATH: %w", err)
	}
	return &HimalayaSource{
		name:    name,
		account: getStringOption(opts, "account", ""),
		folder:  getStringOption(opts, "folder", ""),
	}, nil
}

func (h *HimalayaSource) Name() string { return h.name }

type himalayaAddress struct {
	Name string `json:"name"`
	Addr string `json:"addr"`
}

type himalayaEnvelope struct {
	From    himalayaAddress `json:"from"`
	To      himalayaAddress `json:"to"`
	Subject string          `json:"subject"`
	Date    string          `json:"date"`
}

// Fetch runs `himalaya envelope list --output json` with an after-date
// filter and decodes the result.
func (h *HimalayaSource) Fetch(ctx context.Context, since time.Time) ([]crm.Envelope, error) {
	args := []string{"envelope", "list", "--output", "json"}
	if h.account != "" {
		args = append(args, "--account", h.account)
	}
	if h.folder != "" {
		args = append(args, "--folder", h.folder)
	}
	// A zero since means a full-history scan with no date filter.
	if !since.IsZero() {
		args = append(args, fmt.Sprintf("after %s", since.Format("2006-01-02")))
	}

	cmd := exec.CommandContext(ctx, "himalaya", args...)
	b, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("himalaya envelope list failed: %w (output: %s)", err, string(b))
	}

	return h.decode(b)
}

func (h *HimalayaSource) decode(b []byte) ([]crm.Envelope, error) {
	var raw []himalayaEnvelope
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse himalaya json: %w", err)
	}

	envelopes := make([]crm.Envelope, 0, len(raw))
	for _, r := range raw {
		envelopes = append(envelopes, crm.Envelope{
			From:    crm.Address{Name: r.From.Name, Addr: r.From.Addr},
			To:      crm.Address{Name: r.To.Name, Addr: r.To.Addr},
			Subject: r.Subject,
			Date:    r.Date,
			Source:  h.name,
		})
	}
	return envelopes, nil
}

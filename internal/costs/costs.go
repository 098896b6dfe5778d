// Package costs tracks model API usage and estimated spend in the
// shared database.
package costs

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
)

// Pricing is the per-token price of a model. Rates are per million
// tokens when PerMillion is set, per thousand otherwise.
type Pricing struct {
	Input      float64
	Output     float64
	PerMillion bool
}

// pricing is approximate and keyed by substring match; verify against
// the providers before trusting a report.
var pricing = map[string]Pricing{
	"opus":    {Input: 15, Output: 75, PerMillion: true},
	"sonnet":  {Input: 3, Output: 15, PerMillion: true},
	"haiku":   {Input: 0.8, Output: 4, PerMillion: true},
	"minimax": {Input: 0.001, Output: 0.001},
	"kimi":    {Input: 0.001, Output: 0.001},
}

var defaultPricing = Pricing{Input: 0.001, Output: 0.001}

// PricingFor matches a model name against the pricing table.
func PricingFor(model string) Pricing {
	m := strings.ToLower(model)
	for key, p := range pricing {
		if strings.Contains(m, key) {
			return p
		}
	}
	return defaultPricing
}

// EstimateCost returns the estimated dollar cost of one request,
// rounded to six decimal places.
func EstimateCost(model string, inputTokens, outputTokens int) float64 {
	p := PricingFor(model)
	unit := 1000.0
	if p.PerMillion {
		unit = 1_000_000
	}
	cost := float64(inputTokens)/unit*p.Input + float64(outputTokens)/unit*p.Output
	return math.Round(cost*1e6) / 1e6
}

// Log records one API call and returns its estimated cost.
func Log(db *sql.DB, model, provider, taskType string, inputTokens, outputTokens int, sessionKey, notes string) (float64, error) {
	cost := EstimateCost(model, inputTokens, outputTokens)
	_, err := db.Exec(`
		INSERT INTO model_usage (model, provider, task_type, input_tokens, output_tokens, estimated_cost, session_key, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, model, provider, taskType, inputTokens, outputTokens, cost, sessionKey, notes)
	if err != nil {
		return 0, fmt.Errorf("log usage: %w", err)
	}
	return cost, nil
}

// ModelUsage aggregates spend for one model.
type ModelUsage struct {
	Model    string  `json:"model"`
	Provider string  `json:"provider"`
	Input    int64   `json:"input_tokens"`
	Output   int64   `json:"output_tokens"`
	Cost     float64 `json:"cost"`
	Requests int     `json:"requests"`
}

// ProviderUsage aggregates spend for one provider.
type ProviderUsage struct {
	Provider string  `json:"provider"`
	Input    int64   `json:"input_tokens"`
	Output   int64   `json:"output_tokens"`
	Cost     float64 `json:"cost"`
}

// Summary is a period cost report.
type Summary struct {
	Period     string          `json:"period"`
	TotalCost  float64         `json:"total_cost"`
	ByProvider []ProviderUsage `json:"by_provider"`
	ByModel    []ModelUsage    `json:"by_model"`
}

func periodFilter(period string) (string, error) {
	switch period {
	case "day":
		return "WHERE timestamp >= datetime('now', '-1 day')", nil
	case "week":
		return "WHERE timestamp >= datetime('now', '-7 days')", nil
	case "month":
		return "WHERE timestamp >= datetime('now', '-30 days')", nil
	case "all":
		return "", nil
	}
	return "", fmt.Errorf("unknown period %q (day, week, month, all)", period)
}

// Summarize aggregates spend for a period.
func Summarize(db *sql.DB, period string) (*Summary, error) {
	filter, err := periodFilter(period)
	if err != nil {
		return nil, err
	}

	s := &Summary{Period: period}

	var total sql.NullFloat64
	if err := db.QueryRow("SELECT SUM(estimated_cost) FROM model_usage " + filter).Scan(&total); err != nil {
		return nil, fmt.Errorf("total cost: %w", err)
	}
	s.TotalCost = math.Round(total.Float64*1e4) / 1e4

	rows, err := db.Query(`
		SELECT COALESCE(provider, ''), SUM(input_tokens), SUM(output_tokens), SUM(estimated_cost)
		FROM model_usage ` + filter + `
		GROUP BY provider
		ORDER BY SUM(estimated_cost) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("cost by provider: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p ProviderUsage
		if err := rows.Scan(&p.Provider, &p.Input, &p.Output, &p.Cost); err != nil {
			return nil, fmt.Errorf("scan provider usage: %w", err)
		}
		s.ByProvider = append(s.ByProvider, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.Query(`
		SELECT COALESCE(model, ''), COALESCE(provider, ''),
		       SUM(input_tokens), SUM(output_tokens), SUM(estimated_cost), COUNT(*)
		FROM model_usage ` + filter + `
		GROUP BY model
		ORDER BY SUM(estimated_cost) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("cost by model: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m ModelUsage
		if err := rows.Scan(&m.Model, &m.Provider, &m.Input, &m.Output, &m.Cost, &m.Requests); err != nil {
			return nil, fmt.Errorf("scan model usage: %w", err)
		}
		s.ByModel = append(s.ByModel, m)
	}
	return s, rows.Err()
}

package pipeline

import (
	"database/sql"
	"fmt"
)

// Application outcomes are derived from the status column rather than
// kept as separate event logs: screening or later means the company
// responded, interview or later means an interview happened.

// RatesReport holds overall application outcome metrics. Rates are
// percentages; conversion rates are relative to the previous stage.
type RatesReport struct {
	TotalApplications int `json:"total_applications"`
	Responses         int `json:"responses"`
	Interviews        int `json:"interviews"`
	Offers            int `json:"offers"`

	ResponseRate        float64 `json:"response_rate"`
	InterviewRate       float64 `json:"interview_rate"`
	OfferRate           float64 `json:"offer_rate"`
	ResponseToInterview float64 `json:"response_to_interview"`
	InterviewToOffer    float64 `json:"interview_to_offer"`
}

// CompanyRates is the per-company outcome breakdown.
type CompanyRates struct {
	Company     string `json:"company"`
	Applied     int    `json:"applied"`
	Responded   int    `json:"responded"`
	Interviewed int    `json:"interviewed"`
	Offers      int    `json:"offers"`
}

// TrendPoint is one month of application activity.
type TrendPoint struct {
	Period       string  `json:"period"`
	Applications int     `json:"applications"`
	Responses    int     `json:"responses"`
	ResponseRate float64 `json:"response_rate"`
}

func pct(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// Rates computes overall response/interview/offer metrics. Rows still
// in 'discovered' have not been applied to and are excluded.
func Rates(db *sql.DB) (*RatesReport, error) {
	var r RatesReport
	err := db.QueryRow(`
		SELECT
			COUNT(*),
			SUM(CASE WHEN status IN ('screening', 'interview', 'offer', 'rejected') THEN 1 ELSE 0 END),
			SUM(CASE WHEN status IN ('interview', 'offer') THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = 'offer' THEN 1 ELSE 0 END)
		FROM job_pipeline
		WHERE status != 'discovered'
	`).Scan(&r.TotalApplications, &r.Responses, &r.Interviews, &r.Offers)
	if err != nil {
		return nil, fmt.Errorf("query outcome counts: %w", err)
	}

	r.ResponseRate = pct(r.Responses, r.TotalApplications)
	r.InterviewRate = pct(r.Interviews, r.TotalApplications)
	r.OfferRate = pct(r.Offers, r.TotalApplications)
	r.ResponseToInterview = pct(r.Interviews, r.Responses)
	r.InterviewToOffer = pct(r.Offers, r.Interviews)
	return &r, nil
}

// CompanyBreakdown returns per-company outcome counts, most applied-to
// first.
func CompanyBreakdown(db *sql.DB) ([]CompanyRates, error) {
	rows, err := db.Query(`
		SELECT company,
			COUNT(*),
			SUM(CASE WHEN status IN ('screening', 'interview', 'offer', 'rejected') THEN 1 ELSE 0 END),
			SUM(CASE WHEN status IN ('interview', 'offer') THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = 'offer' THEN 1 ELSE 0 END)
		FROM job_pipeline
		WHERE status != 'discovered'
		GROUP BY company
		ORDER BY COUNT(*) DESC, company ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query company breakdown: %w", err)
	}
	defer rows.Close()

	var companies []CompanyRates
	for rows.Next() {
		var c CompanyRates
		if err := rows.Scan(&c.Company, &c.Applied, &c.Responded, &c.Interviewed, &c.Offers); err != nil {
			return nil, fmt.Errorf("scan company breakdown: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// Trend returns monthly application volume and response rate, oldest
// month first. Rows without an applied date are skipped.
func Trend(db *sql.DB) ([]TrendPoint, error) {
	rows, err := db.Query(`
		SELECT substr(applied_date, 1, 7) AS month,
			COUNT(*),
			SUM(CASE WHEN status IN ('screening', 'interview', 'offer', 'rejected') THEN 1 ELSE 0 END)
		FROM job_pipeline
		WHERE status != 'discovered'
		  AND applied_date IS NOT NULL AND applied_date != ''
		GROUP BY month
		ORDER BY month ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query trend: %w", err)
	}
	defer rows.Close()

	var points []TrendPoint
	for rows.Next() {
		var p TrendPoint
		if err := rows.Scan(&p.Period, &p.Applications, &p.Responses); err != nil {
			return nil, fmt.Errorf("scan trend point: %w", err)
		}
		p.ResponseRate = pct(p.Responses, p.Applications)
		points = append(points, p)
	}
	return points, rows.Err()
}

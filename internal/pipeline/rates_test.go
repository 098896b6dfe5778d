package pipeline

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRates(t *testing.T) {
	database := newTestDB(t)

	// 4 applications: 2 responded, 1 of those interviewed, 1 offer.
	seed := []struct {
		company, status string
	}{
		{"Acme", "applied"},
		{"Initech", "screening"},
		{"Globex", "interview"},
		{"Hooli", "offer"},
		{"Umbrella", "discovered"}, // not yet applied, excluded
	}
	for _, s := range seed {
		if _, err := Add(database, s.company, "", s.status, "2026-03-01", "", ""); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	r, err := Rates(database)
	if err != nil {
		t.Fatalf("Rates failed: %v", err)
	}
	if r.TotalApplications != 4 {
		t.Errorf("TotalApplications = %d, want 4 (discovered excluded)", r.TotalApplications)
	}
	if r.Responses != 3 {
		t.Errorf("Responses = %d, want 3", r.Responses)
	}
	if r.Interviews != 2 {
		t.Errorf("Interviews = %d, want 2", r.Interviews)
	}
	if r.Offers != 1 {
		t.Errorf("Offers = %d, want 1", r.Offers)
	}
	if !almostEqual(r.ResponseRate, 75) {
		t.Errorf("ResponseRate = %v, want 75", r.ResponseRate)
	}
	if !almostEqual(r.InterviewRate, 50) {
		t.Errorf("InterviewRate = %v, want 50", r.InterviewRate)
	}
	if !almostEqual(r.OfferRate, 25) {
		t.Errorf("OfferRate = %v, want 25", r.OfferRate)
	}
	if !almostEqual(r.ResponseToInterview, 2.0/3.0*100) {
		t.Errorf("ResponseToInterview = %v, want 66.7", r.ResponseToInterview)
	}
	if !almostEqual(r.InterviewToOffer, 50) {
		t.Errorf("InterviewToOffer = %v, want 50", r.InterviewToOffer)
	}
}

func TestRatesEmptyPipeline(t *testing.T) {
	database := newTestDB(t)

	r, err := Rates(database)
	if err != nil {
		t.Fatalf("Rates failed: %v", err)
	}
	if r.TotalApplications != 0 || r.ResponseRate != 0 || r.InterviewToOffer != 0 {
		t.Errorf("empty pipeline must yield all zeros, got %+v", r)
	}
}

func TestCompanyBreakdown(t *testing.T) {
	database := newTestDB(t)

	seed := []struct {
		company, status string
	}{
		{"Acme", "applied"},
		{"Acme", "interview"},
		{"Initech", "offer"},
	}
	for _, s := range seed {
		if _, err := Add(database, s.company, "", s.status, "2026-03-01", "", ""); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	companies, err := CompanyBreakdown(database)
	if err != nil {
		t.Fatalf("CompanyBreakdown failed: %v", err)
	}
	if len(companies) != 2 {
		t.Fatalf("got %d companies, want 2: %+v", len(companies), companies)
	}
	// Most applied-to first.
	if companies[0].Company != "Acme" || companies[0].Applied != 2 {
		t.Errorf("first company = %+v, want Acme with 2 applications", companies[0])
	}
	if companies[0].Responded != 1 || companies[0].Interviewed != 1 {
		t.Errorf("Acme counts = %+v, want responded 1 interviewed 1", companies[0])
	}
	if companies[1].Company != "Initech" || companies[1].Offers != 1 {
		t.Errorf("second company = %+v, want Initech with 1 offer", companies[1])
	}
}

func TestTrend(t *testing.T) {
	database := newTestDB(t)

	seed := []struct {
		status, applied string
	}{
		{"applied", "2026-01-10"},
		{"screening", "2026-01-20"},
		{"applied", "2026-02-05"},
	}
	for _, s := range seed {
		if _, err := Add(database, "Acme", "", s.status, s.applied, "", ""); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	points, err := Trend(database)
	if err != nil {
		t.Fatalf("Trend failed: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d trend points, want 2: %+v", len(points), points)
	}
	// Oldest month first.
	if points[0].Period != "2026-01" || points[0].Applications != 2 || points[0].Responses != 1 {
		t.Errorf("first point = %+v, want 2026-01 with 2 apps / 1 response", points[0])
	}
	if !almostEqual(points[0].ResponseRate, 50) {
		t.Errorf("first point rate = %v, want 50", points[0].ResponseRate)
	}
	if points[1].Period != "2026-02" || points[1].Applications != 1 {
		t.Errorf("second point = %+v, want 2026-02 with 1 app", points[1])
	}
}

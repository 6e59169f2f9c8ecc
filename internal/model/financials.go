package model

import (
	"fmt"
	"sort"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// PeriodType labels the cadence of a reporting period.
type PeriodType string

const (
	PeriodQuarterly PeriodType = "quarterly"
	PeriodMonthly   PeriodType = "monthly"
	PeriodAnnual    PeriodType = "annual"
)

// PeriodData is one reporting period of metric values.
type PeriodData struct {
	Period     string             `json:"period"` // label, e.g. "2025-Q1"
	PeriodType PeriodType         `json:"period_type"`
	PeriodEnd  string             `json:"period_end"` // YYYY-MM-DD
	Data       map[string]float64 `json:"data"`
}

// FinancialData holds one or many periods, chronologically ordered by
// PeriodEnd. A flat single-period payload loads as one unlabeled period.
type FinancialData struct {
	Periods []PeriodData `json:"periods"`
}

// Current returns the latest period's metrics; unqualified identifiers
// resolve against this map.
func (f *FinancialData) Current() map[string]float64 {
	if f == nil || len(f.Periods) == 0 {
		return nil
	}
	return f.Periods[len(f.Periods)-1].Data
}

// MultiPeriod reports whether more than one period is loaded.
func (f *FinancialData) MultiPeriod() bool {
	return f != nil && len(f.Periods) > 1
}

// Trailing returns the last n periods in chronological order, along with
// the count actually available.
func (f *FinancialData) Trailing(n int) ([]PeriodData, int) {
	if f == nil {
		return nil, 0
	}
	have := len(f.Periods)
	if n < 1 {
		return nil, have
	}
	if n > have {
		return f.Periods, have
	}
	return f.Periods[have-n:], have
}

// ParseFinancials accepts either a flat metric map or a multi-period payload
// and returns a normalized, chronologically sorted FinancialData. The shape
// is sniffed from the raw JSON so callers need not declare it.
func ParseFinancials(raw []byte) (*FinancialData, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("financial data is not valid JSON")
	}
	if gjson.GetBytes(raw, "periods").IsArray() {
		var fd FinancialData
		if err := json.Unmarshal(raw, &fd); err != nil {
			return nil, fmt.Errorf("multi-period financial data: %w", err)
		}
		if len(fd.Periods) == 0 {
			return nil, fmt.Errorf("multi-period financial data has no periods")
		}
		sort.SliceStable(fd.Periods, func(i, j int) bool {
			return fd.Periods[i].PeriodEnd < fd.Periods[j].PeriodEnd
		})
		return &fd, nil
	}

	var flat map[string]float64
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("flat financial data: %w", err)
	}
	return SinglePeriod(flat), nil
}

// SinglePeriod wraps a flat metric map as the implicit current period.
func SinglePeriod(data map[string]float64) *FinancialData {
	return &FinancialData{Periods: []PeriodData{{Period: "current", Data: data}}}
}

package model

import json "github.com/goccy/go-json"

// EvaluateRequest loads one agreement and returns a full status report.
// Program is the parsed agreement in its JSON form; Financials is either a
// flat metric map or a multi-period payload (shape is sniffed).
type EvaluateRequest struct {
	DealID      string          `json:"deal_id,omitempty"`
	Program     []*Statement    `json:"program"`
	Financials  json.RawMessage `json:"financials,omitempty"`
	CurrentDate string          `json:"current_date,omitempty"`
}

// CompareRequest diffs two agreement versions and renders a changelog.
type CompareRequest struct {
	FromProgram   []*Statement `json:"from_program"`
	ToProgram     []*Statement `json:"to_program"`
	FromVersionNo int          `json:"from_version_no"`
	ToVersionNo   int          `json:"to_version_no"`
	Author        string       `json:"author,omitempty"`
	Format        string       `json:"format,omitempty"` // detailed, summary, executive
}

type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

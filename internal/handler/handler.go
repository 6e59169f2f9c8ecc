package handler

import (
	"time"

	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"github.com/wch1125/proviso-core/internal/interp"
	"github.com/wch1125/proviso-core/internal/model"
	"github.com/wch1125/proviso-core/internal/versioning"
)

// StatusReport is the full dashboard snapshot for one loaded agreement.
type StatusReport struct {
	DealID      string                    `json:"deal_id,omitempty"`
	Covenants   []interp.CovenantResult   `json:"covenants"`
	Baskets     []interp.BasketStatus     `json:"baskets"`
	Reserves    []interp.ReserveStatus    `json:"reserves"`
	Phase       interp.PhaseStatus        `json:"phase"`
	Milestones  []interp.MilestoneStatus  `json:"milestones,omitempty"`
	Regulatory  []interp.RegulatoryStatus `json:"regulatory,omitempty"`
	MultiPeriod bool                      `json:"multi_period"`
	History     []interp.PeriodCompliance `json:"history,omitempty"`
}

// CompareResponse is the versioning surface's wire form.
type CompareResponse struct {
	Summary   *versioning.ChangeSummary `json:"summary"`
	Changelog versioning.ChangeLog      `json:"changelog"`
}

// Route dispatches requests. The core is call-response: every handler runs to
// completion without suspension, and each request builds its own interpreter,
// so concurrent requests never contend on ledgers.
func Route(ctx *fasthttp.RequestCtx) {
	start := time.Now()
	switch string(ctx.Path()) {
	case "/evaluate":
		handleEvaluate(ctx)
	case "/compare":
		handleCompare(ctx)
	case "/healthz":
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	default:
		writeError(ctx, fasthttp.StatusNotFound, "no such endpoint")
	}
	logrus.WithFields(logrus.Fields{
		"path":     string(ctx.Path()),
		"status":   ctx.Response.StatusCode(),
		"duration": time.Since(start),
	}).Info("request")
}

func handleEvaluate(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		writeError(ctx, fasthttp.StatusBadRequest, "Method not allowed")
		return
	}

	var req model.EvaluateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Program) == 0 {
		writeError(ctx, fasthttp.StatusBadRequest, "At least one statement is required")
		return
	}

	prog, err := model.NewProgram(req.Program)
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}
	in := interp.New(prog)
	if req.CurrentDate != "" {
		in.SetCurrentDate(req.CurrentDate)
	}
	if len(req.Financials) > 0 {
		if err := in.LoadFinancialsJSON(req.Financials); err != nil {
			writeError(ctx, fasthttp.StatusBadRequest, err.Error())
			return
		}
	}

	report := StatusReport{
		DealID:      req.DealID,
		Covenants:   in.CheckAllCovenants(),
		Baskets:     in.AllBasketStatuses(),
		Reserves:    in.AllReserveStatuses(),
		Phase:       in.CurrentPhase(),
		Milestones:  in.AllMilestoneStatuses(),
		Regulatory:  in.AllRegulatoryStatuses(),
		MultiPeriod: in.HasMultiPeriodData(),
	}
	if report.MultiPeriod {
		report.History = in.GetComplianceHistory()
	}
	writeJSON(ctx, report)
}

func handleCompare(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		writeError(ctx, fasthttp.StatusBadRequest, "Method not allowed")
		return
	}

	var req model.CompareRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	fromProg, err := model.NewProgram(req.FromProgram)
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "from_program: "+err.Error())
		return
	}
	toProg, err := model.NewProgram(req.ToProgram)
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "to_program: "+err.Error())
		return
	}

	sum := versioning.SummarizePrograms(fromProg, toProg,
		req.FromVersionNo, req.ToVersionNo, req.Author, time.Now())
	log, err := versioning.GenerateChangeLog(sum, versioning.ChangeLogOptions{Format: req.Format})
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}
	writeJSON(ctx, CompareResponse{Summary: sum, Changelog: log})
}

func writeJSON(ctx *fasthttp.RequestCtx, v any) {
	ctx.SetContentType("application/json")
	body, err := json.Marshal(v)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, err.Error())
		return
	}
	ctx.SetBody(body)
}

func writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(model.ErrorResponse{Status: status, Message: message})
	ctx.SetBody(body)
}

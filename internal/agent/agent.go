package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"gripulse/internal/dataprocessing"
	apierrors "gripulse/internal/errors"
	"gripulse/internal/infrastructure"
	"gripulse/internal/llm"
	"gripulse/pkg/contracts/domain"
)

const expertSystemPrompt = "You are a sustainability expert. Answer questions about " +
	"GRI-aligned environmental indicators using the provided KPI context. " +
	"Never invent numbers that are not in the context."

// Agent answers one-shot questions about the indicator KPIs. It detects
// the indicator and years from the question, packages the matching KPI
// context for the model, and falls back to a deterministic answer built
// from the same context when the model call fails.
type Agent struct {
	loader  *dataprocessing.Loader
	llm     llm.Completer
	logger  *slog.Logger
	metrics *infrastructure.AppMetrics
}

// NewAgent creates an agent over the loader and completion client.
func NewAgent(loader *dataprocessing.Loader, completer llm.Completer, logger *slog.Logger, metrics *infrastructure.AppMetrics) *Agent {
	return &Agent{
		loader:  loader,
		llm:     completer,
		logger:  logger.With(slog.String("component", "agent")),
		metrics: metrics,
	}
}

// Ask answers a free-form question. Questions with no detectable
// indicator go to the model as general sustainability questions and
// have no fallback.
func (a *Agent) Ask(ctx context.Context, query string) (*domain.AgentAnswer, error) {
	key, ok := DetectIndicator(query)
	if !ok {
		answer, err := a.llm.Complete(ctx, []domain.ChatMessage{
			{Role: domain.RoleSystem, Content: expertSystemPrompt},
			{Role: domain.RoleUser, Content: query},
		})
		if err != nil {
			return nil, err
		}
		a.metrics.RecordAgentQuestion(ctx, false)
		return &domain.AgentAnswer{Answer: answer}, nil
	}

	kpiCtx, err := a.BuildKPIContext(key, ExtractYears(query))
	if err != nil {
		return nil, err
	}

	answer, err := a.llm.Complete(ctx, []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: expertSystemPrompt},
		{Role: domain.RoleUser, Content: contextPrompt(query, kpiCtx)},
	})
	if err != nil {
		a.logger.WarnContext(ctx, "falling back to deterministic answer",
			slog.String("indicator", string(key)),
			slog.String("error", err.Error()))
		a.metrics.RecordAgentQuestion(ctx, true)
		return &domain.AgentAnswer{
			Answer:    fallbackAnswer(kpiCtx, err),
			Indicator: key,
			Years:     kpiCtx.Years,
			Fallback:  true,
		}, nil
	}

	a.metrics.RecordAgentQuestion(ctx, false)
	return &domain.AgentAnswer{
		Answer:    answer,
		Indicator: key,
		Years:     kpiCtx.Years,
	}, nil
}

// BuildKPIContext packages the indicator's KPIs for the requested
// years. An empty request defaults to the latest available year;
// unknown years error with the available ones.
func (a *Agent) BuildKPIContext(key domain.IndicatorKey, requested []int) (*domain.KPIContext, error) {
	ms, err := a.loader.LoadIndicator(key)
	if err != nil {
		return nil, err
	}

	yearly := dataprocessing.ComputeYearlyTotals(ms)
	available := make([]int, len(yearly))
	for i, t := range yearly {
		available[i] = t.Year
	}

	years := requested
	if len(years) == 0 && len(available) > 0 {
		years = []int{available[len(available)-1]}
	}
	valid := intersectYears(years, available)
	if len(valid) == 0 {
		return nil, apierrors.YearNotAvailableError(requested, available)
	}

	meta := domain.Indicators[key]
	unit := domain.Unit(ms)

	kpiCtx := &domain.KPIContext{
		IndicatorKey:  key,
		IndicatorName: meta.KPIName,
		GRICode:       meta.GRICode,
		Unit:          unit,
		Years:         valid,
		Narratives:    make(map[int]string, len(valid)),
	}
	if fc, ok := dataprocessing.ForecastNextYear(yearly); ok {
		kpiCtx.Forecast = &fc
	}

	for _, year := range valid {
		total, ok := dataprocessing.TotalForYear(yearly, year)
		if !ok {
			continue
		}
		kpiCtx.KPIs = append(kpiCtx.KPIs, domain.KPIRecord{
			Year:       year,
			TotalValue: total.Total,
			ChangeAbs:  total.ChangeAbs,
			ChangePct:  total.ChangePct,
			Unit:       unit,
		})
		kpiCtx.Narratives[year] = dataprocessing.BuildIndicatorNarrative(key, ms, year, unit)
	}
	return kpiCtx, nil
}

func contextPrompt(query string, kpiCtx *domain.KPIContext) string {
	encoded, err := json.MarshalIndent(kpiCtx, "", "  ")
	if err != nil {
		encoded = []byte("{}")
	}
	return fmt.Sprintf("Question:\n%s\n\nKPI context (JSON):\n%s", query, encoded)
}

// fallbackAnswer renders the packaged KPIs as plain text, ending with
// the model error that forced the fallback.
func fallbackAnswer(kpiCtx *domain.KPIContext, llmErr error) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Indicator: %s (%s)\n", kpiCtx.IndicatorName, kpiCtx.GRICode)
	fmt.Fprintf(&b, "Unit: %s\n\n", kpiCtx.Unit)

	for _, rec := range kpiCtx.KPIs {
		changeAbs, changePct := "n/a", "n/a"
		if rec.ChangeAbs != nil {
			changeAbs = fmt.Sprintf("%s %s", dataprocessing.FormatNumber(*rec.ChangeAbs), rec.Unit)
		}
		if rec.ChangePct != nil {
			changePct = fmt.Sprintf("%.2f%%", *rec.ChangePct)
		}
		fmt.Fprintf(&b, "Year %d: %s %s (change: %s, %s)\n",
			rec.Year, dataprocessing.FormatNumber(rec.TotalValue), rec.Unit, changeAbs, changePct)
		if narrative, ok := kpiCtx.Narratives[rec.Year]; ok {
			b.WriteString(narrative)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if kpiCtx.Forecast != nil {
		fmt.Fprintf(&b, "Forecast for %d: %s %s\n",
			kpiCtx.Forecast.Year, dataprocessing.FormatNumber(kpiCtx.Forecast.Value), kpiCtx.Unit)
	}

	fmt.Fprintf(&b, "\n[LLM Error: %v]", llmErr)
	return b.String()
}

func intersectYears(requested, available []int) []int {
	set := make(map[int]struct{}, len(available))
	for _, y := range available {
		set[y] = struct{}{}
	}
	var out []int
	for _, y := range requested {
		if _, ok := set[y]; ok {
			out = append(out, y)
		}
	}
	return out
}

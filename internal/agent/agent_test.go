package agent

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gripulse/internal/dataprocessing"
	apierrors "gripulse/internal/errors"
	"gripulse/pkg/contracts/domain"
)

type stubCompleter struct {
	reply string
	err   error
	calls [][]domain.ChatMessage
}

func (s *stubCompleter) Complete(_ context.Context, messages []domain.ChatMessage) (string, error) {
	s.calls = append(s.calls, messages)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *stubCompleter) Configured() bool { return true }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAgent(t *testing.T, completer *stubCompleter) *Agent {
	t.Helper()

	dir := t.TempDir()
	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), "Energy_Consumption")
	rows := [][]interface{}{
		{"Year", "Month", "Value", "Unit"},
		{2022, "Jan", 100.0, "kWh"},
		{2022, "Feb", 120.0, "kWh"},
		{2023, "Jan", 150.0, "kWh"},
	}
	for i, row := range rows {
		for j, val := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Energy_Consumption", cell, val))
		}
	}
	require.NoError(t, f.SaveAs(filepath.Join(dir, "Sustainability_data 2023.xlsx")))

	loader := dataprocessing.NewLoader(dir, filepath.Join(dir, "companies"), discardLogger(), nil)
	return NewAgent(loader, completer, discardLogger(), nil)
}

func TestDetectIndicator(t *testing.T) {
	tests := []struct {
		query string
		want  domain.IndicatorKey
		ok    bool
	}{
		{"How much electricity did we use?", domain.IndicatorEnergy, true},
		{"GRI 302 performance", domain.IndicatorEnergy, true},
		{"water withdrawal in 2023", domain.IndicatorWater, true},
		{"what are our CO2 emissions", domain.IndicatorEmissions, true},
		{"GHG trends", domain.IndicatorEmissions, true},
		{"waste generated last year", domain.IndicatorWaste, true},
		{"what is GRI?", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, ok := DetectIndicator(tt.query)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractYears(t *testing.T) {
	assert.Equal(t, []int{2022, 2023}, ExtractYears("compare 2022 and 2023"))
	assert.Nil(t, ExtractYears("latest trends"))
	assert.Nil(t, ExtractYears("room 20225 is not a year"))
}

func TestAskIndicatorQuestion(t *testing.T) {
	completer := &stubCompleter{reply: "Energy consumption rose in 2023."}
	a := testAgent(t, completer)

	answer, err := a.Ask(context.Background(), "How did our energy use change in 2023?")
	require.NoError(t, err)

	assert.Equal(t, "Energy consumption rose in 2023.", answer.Answer)
	assert.Equal(t, domain.IndicatorEnergy, answer.Indicator)
	assert.Equal(t, []int{2023}, answer.Years)
	assert.False(t, answer.Fallback)

	require.Len(t, completer.calls, 1)
	prompt := completer.calls[0][1].Content
	assert.Contains(t, prompt, "KPI context (JSON)")
	assert.Contains(t, prompt, "Energy Consumption")
}

func TestAskFallsBackOnLLMError(t *testing.T) {
	completer := &stubCompleter{err: errors.New("rate limit reached")}
	a := testAgent(t, completer)

	answer, err := a.Ask(context.Background(), "energy in 2023")
	require.NoError(t, err)

	assert.True(t, answer.Fallback)
	assert.Contains(t, answer.Answer, "Indicator: Energy Consumption (GRI 302)")
	assert.Contains(t, answer.Answer, "Year 2023: 150.00 kWh")
	assert.Contains(t, answer.Answer, "[LLM Error: rate limit reached]")
}

func TestAskGeneralQuestion(t *testing.T) {
	completer := &stubCompleter{reply: "GRI is a reporting framework."}
	a := testAgent(t, completer)

	answer, err := a.Ask(context.Background(), "What is GRI?")
	require.NoError(t, err)
	assert.Equal(t, "GRI is a reporting framework.", answer.Answer)
	assert.Empty(t, answer.Indicator)
	assert.False(t, answer.Fallback)
}

func TestAskDefaultsToLatestYear(t *testing.T) {
	completer := &stubCompleter{reply: "ok"}
	a := testAgent(t, completer)

	answer, err := a.Ask(context.Background(), "tell me about energy")
	require.NoError(t, err)
	assert.Equal(t, []int{2023}, answer.Years)
}

func TestBuildKPIContextUnknownYear(t *testing.T) {
	a := testAgent(t, &stubCompleter{})

	_, err := a.BuildKPIContext(domain.IndicatorEnergy, []int{1999})
	require.Error(t, err)

	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "YEAR_NOT_AVAILABLE", apiErr.ErrorCode)
}

func TestSession(t *testing.T) {
	completer := &stubCompleter{reply: "hello there"}
	s := NewSession(completer)

	reply, err := s.Ask(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello there", reply)

	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, domain.RoleUser, history[0].Role)
	assert.Equal(t, domain.RoleAssistant, history[1].Role)

	// the system prompt leads every completion
	require.NotEmpty(t, completer.calls)
	assert.Equal(t, domain.RoleSystem, completer.calls[0][0].Role)

	s.Reset()
	assert.Empty(t, s.History())
}

func TestSessionDropsUnansweredTurn(t *testing.T) {
	completer := &stubCompleter{err: errors.New("boom")}
	s := NewSession(completer)

	_, err := s.Ask(context.Background(), "hi")
	require.Error(t, err)
	assert.Empty(t, s.History())
}

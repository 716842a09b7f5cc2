package domain

// ChatRole mirrors the chat completion message roles.
type ChatRole string

const (
	RoleSystem    ChatRole = "system"
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn of a chat session.
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// KPIRecord packages one year of an indicator for LLM prompt context and
// for the deterministic fallback answer.
type KPIRecord struct {
	Year       int      `json:"year"`
	TotalValue float64  `json:"total_value"`
	ChangeAbs  *float64 `json:"change_abs"`
	ChangePct  *float64 `json:"change_pct"`
	Unit       string   `json:"unit"`
}

// KPIContext is the structured context handed to the LLM alongside a
// question about a specific indicator.
type KPIContext struct {
	IndicatorKey  IndicatorKey      `json:"indicator_key"`
	IndicatorName string            `json:"indicator_name"`
	GRICode       string            `json:"gri_code"`
	Unit          string            `json:"unit"`
	Years         []int             `json:"years"`
	KPIs          []KPIRecord       `json:"kpis"`
	Narratives    map[int]string    `json:"base_narratives"`
	Forecast      *Forecast         `json:"forecast"`
}

// AgentAnswer is the agent's reply to a one-shot question.
type AgentAnswer struct {
	Answer    string       `json:"answer"`
	Indicator IndicatorKey `json:"indicator,omitempty"`
	Years     []int        `json:"years,omitempty"`
	Fallback  bool         `json:"fallback"`
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gripulse/internal/config"
	"gripulse/internal/mailer"
	"gripulse/pkg/contracts"
)

// HealthService provides health check functionality.
type HealthService struct {
	cfg       *config.Config
	paths     *config.Paths
	llm       interface{ Configured() bool }
	mailer    *mailer.Mailer
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health.
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service with injected dependencies.
func NewHealthService(cfg *config.Config, paths *config.Paths, completer interface{ Configured() bool }, m *mailer.Mailer, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		cfg:       cfg,
		paths:     paths,
		llm:       completer,
		mailer:    m,
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

// HealthCheck returns overall health status.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   contracts.Version,
	}
}

// ReadinessCheck returns readiness status. The data directories must be
// present; the optional LLM and email integrations only report their
// configuration state and never block readiness.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Services:  make(map[string]interface{}),
	}

	status.Services["data"] = hs.checkDataHealth()
	status.Services["llm"] = hs.checkLLMHealth()
	status.Services["email"] = hs.checkEmailHealth()

	if data, ok := status.Services["data"].(ServiceHealth); ok && data.Status != "ready" {
		status.Status = "not_ready"
	}
	return status
}

// LivenessCheck returns liveness status.
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information.
func (hs *HealthService) Version() contracts.VersionInfo {
	return contracts.GetVersionInfo()
}

func (hs *HealthService) checkDataHealth() ServiceHealth {
	if _, err := os.Stat(hs.paths.ExcelDir); os.IsNotExist(err) {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("indicator data directory not found: %s", hs.paths.ExcelDir),
		}
	}
	workbooks, err := filepath.Glob(filepath.Join(hs.paths.ExcelDir, config.ExcelPattern))
	if err != nil || len(workbooks) == 0 {
		return ServiceHealth{
			Status:  "ready",
			Message: "data directory present but no yearly workbooks yet",
		}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d yearly workbooks available", len(workbooks)),
	}
}

func (hs *HealthService) checkLLMHealth() ServiceHealth {
	if hs.llm == nil || !hs.llm.Configured() {
		return ServiceHealth{Status: "unconfigured", Message: "llm api key not set, agent falls back to deterministic answers"}
	}
	return ServiceHealth{Status: "ready"}
}

func (hs *HealthService) checkEmailHealth() ServiceHealth {
	if hs.mailer == nil || !hs.mailer.Configured() {
		return ServiceHealth{Status: "unconfigured", Message: "smtp credentials not set, report email disabled"}
	}
	return ServiceHealth{Status: "ready"}
}

package http

import (
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"gripulse/internal/config"
	apierrors "gripulse/internal/errors"
	"gripulse/internal/middleware"
	"gripulse/internal/services"
	"gripulse/internal/validation"
	api "gripulse/pkg/contracts/api/v1"
)

// AgentHandler serves the chat agent endpoints.
type AgentHandler struct {
	service      *services.AgentService
	validator    *middleware.ValidationMiddleware
	files        *validation.FileValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAgentHandler creates an agent handler.
func NewAgentHandler(service *services.AgentService, validator *middleware.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AgentHandler {
	return &AgentHandler{
		service:      service,
		validator:    validator,
		files:        validation.NewFileValidator(logger, config.MaxUploadSize),
		logger:       logger.With(slog.String("component", "agent_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the agent routes. The WebSocket stream is mounted
// separately by the application router.
func (h *AgentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/ask", h.Ask)
	r.Post("/chat", h.Chat)
	r.Post("/chat/{sessionID}/reset", h.ResetChat)
	r.Get("/chat/{sessionID}/history", h.ChatHistory)

	r.Post("/documents", h.UploadDocument)
	r.Post("/documents/ask", h.AskDocuments)

	return r
}

// Ask handles POST /api/agent/ask
func (h *AgentHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req api.AskRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	answer, err := h.service.Ask(r.Context(), req.Question)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, answer)
}

// Chat handles POST /api/agent/chat
func (h *AgentHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req api.ChatRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.service.Chat(r.Context(), req.SessionID, req.Message)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// ResetChat handles POST /api/agent/chat/{sessionID}/reset
func (h *AgentHandler) ResetChat(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	h.service.ResetChat(sessionID)
	render.JSON(w, r, map[string]interface{}{"status": "reset", "session_id": sessionID})
}

// ChatHistory handles GET /api/agent/chat/{sessionID}/history
func (h *AgentHandler) ChatHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	history, err := h.service.History(sessionID)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError("chat session"))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"session_id": sessionID,
		"history":    history,
	})
}

// UploadDocument handles POST /api/agent/documents. Accepts multipart
// form uploads of PDF reports and KPI workbooks.
func (h *AgentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize)
	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "Invalid multipart upload"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "Missing file field"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	name := filepath.Base(header.Filename)
	kind, err := h.files.ValidateUpload(name, data)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	switch kind {
	case validation.KindPDF:
		preview, err := h.service.UploadPDF(r.Context(), name, data)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		render.JSON(w, r, map[string]interface{}{
			"name":    name,
			"type":    "pdf",
			"preview": preview,
		})
	case validation.KindWorkbook:
		sheets, err := h.service.UploadWorkbook(r.Context(), name, data)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		render.JSON(w, r, map[string]interface{}{
			"name":   name,
			"type":   "workbook",
			"sheets": sheets,
		})
	}
}

// AskDocuments handles POST /api/agent/documents/ask
func (h *AgentHandler) AskDocuments(w http.ResponseWriter, r *http.Request) {
	var req api.AskRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	answer, err := h.service.AskDocuments(r.Context(), req.Question)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"answer": answer})
}

func (h *AgentHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrInvalidRequest)
		return false
	}
	if err := h.validator.ValidateStruct(v); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return false
	}
	return true
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/cfn"

	"subnet-tagger/internal/domain/subnettag"
	"subnet-tagger/pkg/handler"
)

// maxBodyBytes limita o tamanho do evento aceito
const maxBodyBytes = 1 << 20

// Handlers contém os handlers da API
type Handlers struct {
	handler *handler.Handler
	config  *ServerConfig
}

// NewHandlers cria uma nova instância de handlers
func NewHandlers(h *handler.Handler, config *ServerConfig) *Handlers {
	return &Handlers{
		handler: h,
		config:  config,
	}
}

// Health retorna o status de saúde da API
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		Version:   h.config.Version,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	writeJSON(w, http.StatusOK, NewSuccessResponse(resp))
}

// Events recebe um evento de ciclo de vida no mesmo formato do Lambda
func (h *Handlers) Events(w http.ResponseWriter, r *http.Request) {
	event, err := decodeEvent(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, NewErrorResponse("INVALID_REQUEST", err.Error(), ""))
		return
	}

	resp, err := h.handler.Handle(r.Context(), event)
	if err != nil {
		status, code := classifyError(err)
		writeJSON(w, status, NewErrorResponse(code, err.Error(), ""))
		return
	}

	writeJSON(w, http.StatusOK, NewSuccessResponse(resp))
}

// Plan retorna as mudanças que um Update aplicaria, sem aplicá-las
func (h *Handlers) Plan(w http.ResponseWriter, r *http.Request) {
	event, err := decodeEvent(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, NewErrorResponse("INVALID_REQUEST", err.Error(), ""))
		return
	}

	plan, err := h.handler.Plan(r.Context(), event)
	if err != nil {
		status, code := classifyError(err)
		writeJSON(w, status, NewErrorResponse(code, err.Error(), ""))
		return
	}

	writeJSON(w, http.StatusOK, NewSuccessResponse(ToPlanResponse(plan)))
}

// ---- Helper Functions ----

func decodeEvent(w http.ResponseWriter, r *http.Request) (cfn.Event, error) {
	var event cfn.Event
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&event); err != nil {
		return cfn.Event{}, fmt.Errorf("invalid event body: %w", err)
	}
	return event, nil
}

// classifyError separa erros do cliente (evento inválido) de falhas na AWS
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, subnettag.ErrInvalidRequestType):
		return http.StatusBadRequest, "INVALID_REQUEST_TYPE"
	case errors.Is(err, subnettag.ErrMissingSubnets),
		errors.Is(err, subnettag.ErrEmptySubnetID),
		errors.Is(err, subnettag.ErrMissingClusterTag),
		errors.Is(err, subnettag.ErrMalformedProperty):
		return http.StatusBadRequest, "INVALID_PROPERTIES"
	default:
		return http.StatusInternalServerError, "HANDLER_FAILED"
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

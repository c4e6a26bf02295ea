package api

import "subnet-tagger/internal/domain/subnettag"

// ---- Response DTOs ----

// APIResponse é a resposta padrão da API
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError representa um erro da API
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// HealthResponse representa a resposta do health check
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// PlanResponse representa a resposta de um plan
type PlanResponse struct {
	ClusterTag string      `json:"clusterTag"`
	ToAdd      []string    `json:"toAdd"`
	ToRemove   []string    `json:"toRemove"`
	Unchanged  []string    `json:"unchanged"`
	Summary    PlanSummary `json:"summary"`
}

// PlanSummary resume o plano
type PlanSummary struct {
	Add       int `json:"add"`
	Remove    int `json:"remove"`
	Unchanged int `json:"unchanged"`
}

// ---- Converters ----

// NewSuccessResponse cria uma resposta de sucesso
func NewSuccessResponse(data interface{}) APIResponse {
	return APIResponse{Success: true, Data: data}
}

// NewErrorResponse cria uma resposta de erro
func NewErrorResponse(code, message, details string) APIResponse {
	return APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// ToPlanResponse converte o plano de domínio para o DTO
func ToPlanResponse(p *subnettag.Plan) PlanResponse {
	return PlanResponse{
		ClusterTag: p.ClusterTag,
		ToAdd:      nonNil(p.ToAdd),
		ToRemove:   nonNil(p.ToRemove),
		Unchanged:  nonNil(p.Unchanged),
		Summary: PlanSummary{
			Add:       len(p.ToAdd),
			Remove:    len(p.ToRemove),
			Unchanged: len(p.Unchanged),
		},
	}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

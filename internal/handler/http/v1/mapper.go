package v1

import "github.com/shenikar/violation_pipeline/internal/models"

// DTOToRunRequest преобразует DTO в параметры запуска
func DTOToRunRequest(dto CreateRunRequest) models.RunRequest {
	return models.RunRequest{
		InputPath:  dto.InputPath,
		OutputPath: dto.OutputPath,
	}
}

// ModelToRunResponse преобразует доменную модель в DTO для ответа
func ModelToRunResponse(model *models.Run) *RunResponse {
	return &RunResponse{
		ID:          model.ID,
		InputPath:   model.InputPath,
		OutputPath:  model.OutputPath,
		Status:      model.Status,
		Error:       model.Error,
		CleanStats:  model.CleanStats,
		EnrichStats: model.EnrichStats,
		Report:      model.Report,
		StartedAt:   model.StartedAt,
		FinishedAt:  model.FinishedAt,
		DurationMS:  model.FinishedAt.Sub(model.StartedAt).Milliseconds(),
	}
}

// ModelsToRunResponses преобразует слайс моделей в слайс DTO
func ModelsToRunResponses(models []*models.Run) []*RunResponse {
	responses := make([]*RunResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToRunResponse(model)
	}
	return responses
}

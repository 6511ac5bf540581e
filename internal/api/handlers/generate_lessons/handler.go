package generate_lessons

import (
	"context"
	"errors"
	"net/http"

	"github.com/maktab-crm/schedule-service/internal/api/handlers"
	generateLessons "github.com/maktab-crm/schedule-service/internal/usecase/generate_lessons"
)

const (
	msgInvalidTemplateID   = "некорректный ID шаблона"
	msgInvalidQuarterID    = "некорректный ID четверти"
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidDateRange    = "некорректный диапазон дат, ожидается YYYY-MM-DD и startDate <= endDate"
	msgTemplateNotFound    = "шаблон расписания не найден"
	msgTemplateNotActive   = "шаблон расписания не активен"
	msgQuarterNotFound     = "учебная четверть не найдена"
	msgNoSlots             = "в шаблоне нет слотов, генерация невозможна"
	msgCalendarUnavailable = "календарь филиала недоступен, попробуйте позже"
)

type Handler struct {
	useCase GenerateLessonsUseCase
	logger  Logger
}

func NewHandler(useCase GenerateLessonsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/timetables/{timetableId}/generate
//
// Генерация идемпотентна: повторный запуск по тому же диапазону не создает
// дублей, уже существующие занятия считаются пропущенными.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	templateID, err := handlers.PathInt64(r, "timetableId")
	if err != nil {
		h.logger.Warn("POST /timetables/{id}/generate - Invalid template ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTemplateID)
		return
	}

	var req generateLessons.GenerateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /timetables/{id}/generate - Invalid request body: template_id=%d: %v", templateID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.TimetableID = templateID

	result, err := h.useCase.Generate(r.Context(), &req)
	if err != nil {
		h.respondGenerateError(w, "POST /timetables/{id}/generate", templateID, err)
		return
	}

	h.logger.Info("POST /timetables/{id}/generate - Lessons generated: template_id=%d, created=%d, skipped=%d",
		templateID, result.Created, result.Skipped)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleWeek POST /api/v1/timetables/{timetableId}/generate/week
func (h *Handler) HandleWeek(w http.ResponseWriter, r *http.Request) {
	h.handleFixedRange(w, r, "POST /timetables/{id}/generate/week", h.useCase.GenerateWeek)
}

// HandleMonth POST /api/v1/timetables/{timetableId}/generate/month
func (h *Handler) HandleMonth(w http.ResponseWriter, r *http.Request) {
	h.handleFixedRange(w, r, "POST /timetables/{id}/generate/month", h.useCase.GenerateMonth)
}

// HandleQuarter POST /api/v1/timetables/{timetableId}/generate/quarter/{quarterId}
func (h *Handler) HandleQuarter(w http.ResponseWriter, r *http.Request) {
	const route = "POST /timetables/{id}/generate/quarter/{quarterId}"

	templateID, err := handlers.PathInt64(r, "timetableId")
	if err != nil {
		h.logger.Warn("%s - Invalid template ID: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidTemplateID)
		return
	}

	quarterID, err := handlers.PathInt64(r, "quarterId")
	if err != nil {
		h.logger.Warn("%s - Invalid quarter ID: template_id=%d: %v", route, templateID, err)
		handlers.RespondBadRequest(w, msgInvalidQuarterID)
		return
	}

	result, err := h.useCase.GenerateQuarter(r.Context(), templateID, quarterID)
	if err != nil {
		h.respondGenerateError(w, route, templateID, err)
		return
	}

	h.logger.Info("%s - Lessons generated: template_id=%d, quarter_id=%d, created=%d, skipped=%d",
		route, templateID, quarterID, result.Created, result.Skipped)
	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleFixedRange(
	w http.ResponseWriter,
	r *http.Request,
	route string,
	generate func(ctx context.Context, timetableID int64) (*generateLessons.GenerateResponse, error),
) {
	templateID, err := handlers.PathInt64(r, "timetableId")
	if err != nil {
		h.logger.Warn("%s - Invalid template ID: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidTemplateID)
		return
	}

	result, err := generate(r.Context(), templateID)
	if err != nil {
		h.respondGenerateError(w, route, templateID, err)
		return
	}

	h.logger.Info("%s - Lessons generated: template_id=%d, created=%d, skipped=%d",
		route, templateID, result.Created, result.Skipped)
	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) respondGenerateError(w http.ResponseWriter, route string, templateID int64, err error) {
	switch {
	case errors.Is(err, generateLessons.ErrTemplateNotFound):
		h.logger.Warn("%s - Template not found: template_id=%d", route, templateID)
		handlers.RespondNotFound(w, msgTemplateNotFound)

	case errors.Is(err, generateLessons.ErrTemplateNotActive):
		h.logger.Warn("%s - Template not active: template_id=%d", route, templateID)
		handlers.RespondConflict(w, msgTemplateNotActive)

	case errors.Is(err, generateLessons.ErrQuarterNotFound):
		h.logger.Warn("%s - Quarter not found: template_id=%d", route, templateID)
		handlers.RespondNotFound(w, msgQuarterNotFound)

	case errors.Is(err, generateLessons.ErrNoSlots):
		h.logger.Warn("%s - Template has no slots: template_id=%d", route, templateID)
		handlers.RespondConflict(w, msgNoSlots)

	case errors.Is(err, generateLessons.ErrInvalidDateRange):
		h.logger.Warn("%s - Invalid date range: template_id=%d: %v", route, templateID, err)
		handlers.RespondBadRequest(w, msgInvalidDateRange)

	case errors.Is(err, generateLessons.ErrCalendarUnavailable):
		h.logger.Error("%s - Branch calendar unavailable: template_id=%d: %v", route, templateID, err)
		handlers.RespondError(w, http.StatusServiceUnavailable, msgCalendarUnavailable)

	default:
		h.logger.Error("%s - Failed to generate lessons: template_id=%d, error=%v", route, templateID, err)
		handlers.RespondInternalError(w)
	}
}

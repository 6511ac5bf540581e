package get_lessons

import (
	"errors"
	"net/http"

	"github.com/maktab-crm/schedule-service/internal/api/handlers"
	"github.com/maktab-crm/schedule-service/internal/service/lessons"
	"github.com/maktab-crm/schedule-service/internal/service/lessons/models"
)

const (
	msgInvalidLessonID = "некорректный ID занятия"
	msgInvalidFilter   = "некорректные параметры фильтрации"
	msgNotFound        = "занятие не найдено"
)

type Handler struct {
	service LessonService
	logger  Logger
}

func NewHandler(service LessonService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleByID GET /api/v1/lessons/{lessonId}
func (h *Handler) HandleByID(w http.ResponseWriter, r *http.Request) {
	lessonID, err := handlers.PathInt64(r, "lessonId")
	if err != nil {
		h.logger.Warn("GET /lessons/{id} - Invalid lesson ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidLessonID)
		return
	}

	result, err := h.service.GetByID(r.Context(), lessonID)
	if err != nil {
		switch {
		case errors.Is(err, lessons.ErrLessonNotFound):
			h.logger.Warn("GET /lessons/{id} - Lesson not found: lesson_id=%d", lessonID)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /lessons/{id} - Failed to get lesson: lesson_id=%d, error=%v", lessonID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleList GET /api/v1/lessons?classId=&teacherId=&classSubjectId=&dateFrom=&dateTo=&status=&includeCanceled=
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	req, err := listRequestFromQuery(r)
	if err != nil {
		h.logger.Warn("GET /lessons - Invalid filter: %v", err)
		handlers.RespondBadRequest(w, msgInvalidFilter)
		return
	}

	result, err := h.service.List(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, lessons.ErrInvalidInput):
			h.logger.Warn("GET /lessons - Invalid filter: %v", err)
			handlers.RespondBadRequest(w, msgInvalidFilter)

		default:
			h.logger.Error("GET /lessons - Failed to list lessons: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func listRequestFromQuery(r *http.Request) (*models.ListLessonsRequest, error) {
	classID, err := handlers.QueryInt64(r, "classId")
	if err != nil {
		return nil, err
	}
	teacherID, err := handlers.QueryInt64(r, "teacherId")
	if err != nil {
		return nil, err
	}
	classSubjectID, err := handlers.QueryInt64(r, "classSubjectId")
	if err != nil {
		return nil, err
	}

	return &models.ListLessonsRequest{
		ClassID:         classID,
		TeacherID:       teacherID,
		ClassSubjectID:  classSubjectID,
		DateFrom:        handlers.QueryString(r, "dateFrom"),
		DateTo:          handlers.QueryString(r, "dateTo"),
		Status:          handlers.QueryString(r, "status"),
		IncludeCanceled: r.URL.Query().Get("includeCanceled") == "true",
	}, nil
}

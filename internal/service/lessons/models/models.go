package models

import (
	"time"

	"github.com/maktab-crm/schedule-service/internal/domain"
)

// Request модели

// CreateLessonRequest запрос на ручное создание занятия
type CreateLessonRequest struct {
	ClassSubjectID int64  `json:"classSubjectId"`
	Date           string `json:"date"`         // "2025-09-01"
	LessonNumber   int    `json:"lessonNumber"` // 1..15
	StartTime      string `json:"startTime"`    // "08:00"
	EndTime        string `json:"endTime"`      // "08:45"
	RoomID         *int64 `json:"roomId,omitempty"`
	TopicID        *int64 `json:"topicId,omitempty"`
}

// UpdateLessonRequest запрос на обновление занятия
type UpdateLessonRequest struct {
	Date         *string `json:"date,omitempty"`
	LessonNumber *int    `json:"lessonNumber,omitempty"`
	StartTime    *string `json:"startTime,omitempty"`
	EndTime      *string `json:"endTime,omitempty"`
	RoomID       *int64  `json:"roomId,omitempty"`
	TopicID      *int64  `json:"topicId,omitempty"`
	Homework     *string `json:"homework,omitempty"`
	TeacherNotes *string `json:"teacherNotes,omitempty"`
}

// CompleteLessonRequest запрос на отметку занятия проведенным
type CompleteLessonRequest struct {
	TopicID  *int64  `json:"topicId,omitempty"`
	Homework *string `json:"homework,omitempty"`
}

// ListLessonsRequest запрос на получение занятий с фильтрацией
type ListLessonsRequest struct {
	ClassID         *int64  `json:"classId,omitempty"`
	TeacherID       *int64  `json:"teacherId,omitempty"`
	ClassSubjectID  *int64  `json:"classSubjectId,omitempty"`
	DateFrom        *string `json:"dateFrom,omitempty"`
	DateTo          *string `json:"dateTo,omitempty"`
	Status          *string `json:"status,omitempty"`
	IncludeCanceled bool    `json:"includeCanceled,omitempty"`
}

// WeeklyScheduleRequest запрос расписания класса на неделю
type WeeklyScheduleRequest struct {
	ClassID   int64  `json:"classId"`
	WeekStart string `json:"weekStart"` // любая дата недели, нормализуется к понедельнику
}

// CreateTopicRequest запрос на создание темы
type CreateTopicRequest struct {
	SubjectID      int64   `json:"subjectId"`
	QuarterID      *int64  `json:"quarterId,omitempty"`
	Title          string  `json:"title"`
	Description    *string `json:"description,omitempty"`
	Position       int     `json:"position"`
	EstimatedHours float64 `json:"estimatedHours"`
}

// UpdateTopicRequest запрос на обновление темы
type UpdateTopicRequest struct {
	Title          *string  `json:"title,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Position       *int     `json:"position,omitempty"`
	EstimatedHours *float64 `json:"estimatedHours,omitempty"`
}

// Response модели

// LessonResponse ответ с данными занятия
type LessonResponse struct {
	ID             int64  `json:"id"`
	ClassSubjectID int64  `json:"classSubjectId"`
	Date           string `json:"date"`
	LessonNumber   int    `json:"lessonNumber"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	Status         string `json:"status"`

	// Денормализованные данные
	TeacherID   int64   `json:"teacherId"`
	TeacherName string  `json:"teacherName"`
	SubjectID   int64   `json:"subjectId"`
	SubjectName string  `json:"subjectName"`
	ClassID     int64   `json:"classId"`
	ClassName   string  `json:"className"`
	RoomID      *int64  `json:"roomId,omitempty"`
	RoomName    *string `json:"roomName,omitempty"`

	TopicID      *int64  `json:"topicId,omitempty"`
	Homework     *string `json:"homework,omitempty"`
	TeacherNotes *string `json:"teacherNotes,omitempty"`

	IsAutoGenerated bool   `json:"isAutoGenerated"`
	TimetableSlotID *int64 `json:"timetableSlotId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LessonListResponse ответ со списком занятий
type LessonListResponse struct {
	Lessons []LessonResponse `json:"lessons"`
}

// DaySchedule занятия одного дня недели
type DaySchedule struct {
	Date      string           `json:"date"`
	DayOfWeek string           `json:"dayOfWeek"`
	Lessons   []LessonResponse `json:"lessons"`
}

// WeeklyScheduleResponse расписание класса на неделю, по дням
// с понедельника по воскресенье
type WeeklyScheduleResponse struct {
	ClassID   int64         `json:"classId"`
	WeekStart string        `json:"weekStart"`
	WeekEnd   string        `json:"weekEnd"`
	Days      []DaySchedule `json:"days"`
}

// TopicResponse ответ с данными темы
type TopicResponse struct {
	ID             int64   `json:"id"`
	SubjectID      int64   `json:"subjectId"`
	QuarterID      *int64  `json:"quarterId,omitempty"`
	Title          string  `json:"title"`
	Description    *string `json:"description,omitempty"`
	Position       int     `json:"position"`
	EstimatedHours float64 `json:"estimatedHours"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TopicListResponse ответ со списком тем
type TopicListResponse struct {
	Topics []TopicResponse `json:"topics"`
}

// Методы конвертации

// FromDomainLesson конвертирует domain модель в DTO
func FromDomainLesson(l *domain.LessonInstance) *LessonResponse {
	if l == nil {
		return nil
	}

	return &LessonResponse{
		ID:              l.ID,
		ClassSubjectID:  l.ClassSubjectID,
		Date:            l.Date.Format(domain.DateFormat),
		LessonNumber:    l.LessonNumber,
		StartTime:       l.StartTime.String(),
		EndTime:         l.EndTime.String(),
		Status:          string(l.Status),
		TeacherID:       l.TeacherID,
		TeacherName:     l.TeacherName,
		SubjectID:       l.SubjectID,
		SubjectName:     l.SubjectName,
		ClassID:         l.ClassID,
		ClassName:       l.ClassName,
		RoomID:          l.RoomID,
		RoomName:        l.RoomName,
		TopicID:         l.TopicID,
		Homework:        l.Homework,
		TeacherNotes:    l.TeacherNotes,
		IsAutoGenerated: l.IsAutoGenerated,
		TimetableSlotID: l.TimetableSlotID,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

// FromDomainLessonList конвертирует список domain моделей в DTO
func FromDomainLessonList(lessons []domain.LessonInstance) *LessonListResponse {
	resp := &LessonListResponse{
		Lessons: make([]LessonResponse, 0, len(lessons)),
	}

	for i := range lessons {
		if lResp := FromDomainLesson(&lessons[i]); lResp != nil {
			resp.Lessons = append(resp.Lessons, *lResp)
		}
	}

	return resp
}

// FromDomainTopic конвертирует domain модель в DTO
func FromDomainTopic(t *domain.LessonTopic) *TopicResponse {
	if t == nil {
		return nil
	}

	return &TopicResponse{
		ID:             t.ID,
		SubjectID:      t.SubjectID,
		QuarterID:      t.QuarterID,
		Title:          t.Title,
		Description:    t.Description,
		Position:       t.Position,
		EstimatedHours: t.EstimatedHours,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

// FromDomainTopicList конвертирует список domain моделей в DTO
func FromDomainTopicList(topics []domain.LessonTopic) *TopicListResponse {
	resp := &TopicListResponse{
		Topics: make([]TopicResponse, 0, len(topics)),
	}

	for i := range topics {
		if tResp := FromDomainTopic(&topics[i]); tResp != nil {
			resp.Topics = append(resp.Topics, *tResp)
		}
	}

	return resp
}

// ToDomainLessonStatus конвертирует строку в domain.LessonStatus с валидацией
func ToDomainLessonStatus(status string) (domain.LessonStatus, bool) {
	s := domain.LessonStatus(status)
	if !s.IsValid() {
		return "", false
	}
	return s, true
}

package models

import (
	"time"

	"github.com/maktab-crm/schedule-service/internal/domain"
)

// Request модели

// CreateTemplateRequest запрос на создание шаблона расписания
type CreateTemplateRequest struct {
	BranchID       int64   `json:"branchId"`
	AcademicYearID int64   `json:"academicYearId"`
	Name           string  `json:"name"`
	Description    *string `json:"description,omitempty"`
	EffectiveFrom  string  `json:"effectiveFrom"`            // "2025-09-01"
	EffectiveUntil *string `json:"effectiveUntil,omitempty"` // "2026-05-31"
}

// UpdateTemplateRequest запрос на обновление шаблона расписания
type UpdateTemplateRequest struct {
	Name           *string `json:"name,omitempty"`
	Description    *string `json:"description,omitempty"`
	EffectiveFrom  *string `json:"effectiveFrom,omitempty"`
	EffectiveUntil *string `json:"effectiveUntil,omitempty"`
}

// ListTemplatesRequest запрос на получение шаблонов с фильтрацией
type ListTemplatesRequest struct {
	BranchID       *int64 `json:"branchId,omitempty"`
	AcademicYearID *int64 `json:"academicYearId,omitempty"`
	OnlyActive     bool   `json:"onlyActive,omitempty"`
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListTemplatesRequest) ToDomainFilter() domain.TemplateFilter {
	return domain.TemplateFilter{
		BranchID:       r.BranchID,
		AcademicYearID: r.AcademicYearID,
		OnlyActive:     r.OnlyActive,
	}
}

// SlotRequest запрос на создание или обновление слота шаблона
type SlotRequest struct {
	ClassID        int64  `json:"classId"`
	ClassSubjectID int64  `json:"classSubjectId"`
	DayOfWeek      string `json:"dayOfWeek"`    // "monday"
	LessonNumber   int    `json:"lessonNumber"` // 1..15
	StartTime      string `json:"startTime"`    // "08:00"
	EndTime        string `json:"endTime"`      // "08:45"
	RoomID         *int64 `json:"roomId,omitempty"`
}

// BulkCreateSlotsRequest запрос на пакетное создание слотов (всё или ничего)
type BulkCreateSlotsRequest struct {
	Slots []SlotRequest `json:"slots"`
}

// Response модели

// TemplateResponse ответ с данными шаблона расписания
type TemplateResponse struct {
	ID             int64   `json:"id"`
	BranchID       int64   `json:"branchId"`
	AcademicYearID int64   `json:"academicYearId"`
	Name           string  `json:"name"`
	Description    *string `json:"description,omitempty"`
	IsActive       bool    `json:"isActive"`
	EffectiveFrom  string  `json:"effectiveFrom"`
	EffectiveUntil *string `json:"effectiveUntil,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TemplateListResponse ответ со списком шаблонов
type TemplateListResponse struct {
	Templates []TemplateResponse `json:"templates"`
}

// SlotResponse ответ с данными слота шаблона
type SlotResponse struct {
	ID             int64  `json:"id"`
	TimetableID    int64  `json:"timetableId"`
	ClassID        int64  `json:"classId"`
	ClassSubjectID int64  `json:"classSubjectId"`
	DayOfWeek      string `json:"dayOfWeek"`
	LessonNumber   int    `json:"lessonNumber"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`

	// Денормализованные данные
	TeacherID   int64   `json:"teacherId"`
	TeacherName string  `json:"teacherName"`
	SubjectID   int64   `json:"subjectId"`
	SubjectName string  `json:"subjectName"`
	ClassName   string  `json:"className"`
	RoomID      *int64  `json:"roomId,omitempty"`
	RoomName    *string `json:"roomName,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SlotListResponse ответ со списком слотов шаблона
type SlotListResponse struct {
	Slots []SlotResponse `json:"slots"`
}

// DeleteSlotResponse результат удаления слота: сколько будущих
// запланированных занятий зачищено каскадом
type DeleteSlotResponse struct {
	DeletedLessons int64 `json:"deletedLessons"`
}

// ConflictInfo описание одного конфликта расписания
type ConflictInfo struct {
	Type        string `json:"type"` // "teacher" | "room"
	Message     string `json:"message"`
	SlotID      *int64 `json:"slotId,omitempty"`
	LessonID    *int64 `json:"lessonId,omitempty"`
	TeacherName string `json:"teacherName,omitempty"`
	RoomName    string `json:"roomName,omitempty"`
	ClassName   string `json:"className,omitempty"`
	TimeRange   string `json:"timeRange,omitempty"`
}

// ConflictCheckResponse результат проверки слота на конфликты
type ConflictCheckResponse struct {
	HasConflicts bool           `json:"hasConflicts"`
	Conflicts    []ConflictInfo `json:"conflicts"`
}

// Методы конвертации

// FromDomainTemplate конвертирует domain модель в DTO
func FromDomainTemplate(t *domain.TimetableTemplate) *TemplateResponse {
	if t == nil {
		return nil
	}

	resp := &TemplateResponse{
		ID:             t.ID,
		BranchID:       t.BranchID,
		AcademicYearID: t.AcademicYearID,
		Name:           t.Name,
		Description:    t.Description,
		IsActive:       t.IsActive,
		EffectiveFrom:  t.EffectiveFrom.Format(domain.DateFormat),
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}

	if t.EffectiveUntil != nil {
		until := t.EffectiveUntil.Format(domain.DateFormat)
		resp.EffectiveUntil = &until
	}

	return resp
}

// FromDomainTemplateList конвертирует список domain моделей в DTO
func FromDomainTemplateList(templates []*domain.TimetableTemplate) *TemplateListResponse {
	resp := &TemplateListResponse{
		Templates: make([]TemplateResponse, 0, len(templates)),
	}

	for _, t := range templates {
		if tResp := FromDomainTemplate(t); tResp != nil {
			resp.Templates = append(resp.Templates, *tResp)
		}
	}

	return resp
}

// FromDomainSlot конвертирует domain модель в DTO
func FromDomainSlot(s *domain.TimetableSlot) *SlotResponse {
	if s == nil {
		return nil
	}

	return &SlotResponse{
		ID:             s.ID,
		TimetableID:    s.TimetableID,
		ClassID:        s.ClassID,
		ClassSubjectID: s.ClassSubjectID,
		DayOfWeek:      string(s.DayOfWeek),
		LessonNumber:   s.LessonNumber,
		StartTime:      s.StartTime.String(),
		EndTime:        s.EndTime.String(),
		TeacherID:      s.TeacherID,
		TeacherName:    s.TeacherName,
		SubjectID:      s.SubjectID,
		SubjectName:    s.SubjectName,
		ClassName:      s.ClassName,
		RoomID:         s.RoomID,
		RoomName:       s.RoomName,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

// FromDomainSlotList конвертирует список domain моделей в DTO
func FromDomainSlotList(slots []domain.TimetableSlot) *SlotListResponse {
	resp := &SlotListResponse{
		Slots: make([]SlotResponse, 0, len(slots)),
	}

	for i := range slots {
		if sResp := FromDomainSlot(&slots[i]); sResp != nil {
			resp.Slots = append(resp.Slots, *sResp)
		}
	}

	return resp
}

// FromDomainConflicts конвертирует найденные конфликты в DTO
func FromDomainConflicts(conflicts []domain.Conflict) *ConflictCheckResponse {
	resp := &ConflictCheckResponse{
		HasConflicts: len(conflicts) > 0,
		Conflicts:    make([]ConflictInfo, 0, len(conflicts)),
	}

	for _, c := range conflicts {
		resp.Conflicts = append(resp.Conflicts, ConflictInfo{
			Type:        string(c.Type),
			Message:     c.Message,
			SlotID:      c.SlotID,
			LessonID:    c.LessonID,
			TeacherName: c.Details.TeacherName,
			RoomName:    c.Details.RoomName,
			ClassName:   c.Details.ClassName,
			TimeRange:   c.Details.TimeRange,
		})
	}

	return resp
}

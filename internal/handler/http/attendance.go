package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	Process(w http.ResponseWriter, r *http.Request)
	RecalculateDay(w http.ResponseWriter, r *http.Request)
	RecalculateMonth(w http.ResponseWriter, r *http.Request)
	GetDaily(w http.ResponseWriter, r *http.Request)
	ManualEdit(w http.ResponseWriter, r *http.Request)
	ReviewOvertime(w http.ResponseWriter, r *http.Request)
	ReviewRelaxation(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// Process implements AttendanceHandler.
func (h *attendanceHandlerImpl) Process(w http.ResponseWriter, r *http.Request) {
	summary, err := h.attendanceService.RunIncremental(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Punch processing completed", summary)
}

// RecalculateDay implements AttendanceHandler.
func (h *attendanceHandlerImpl) RecalculateDay(w http.ResponseWriter, r *http.Request) {
	var req attendance.RecalculateDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.attendanceService.RecalculateDay(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Day recalculated", result)
}

// RecalculateMonth implements AttendanceHandler.
func (h *attendanceHandlerImpl) RecalculateMonth(w http.ResponseWriter, r *http.Request) {
	var req attendance.RecalculateMonthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	summary, err := h.attendanceService.RecalculateMonth(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Month recalculated", summary)
}

// GetDaily implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetDaily(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	date := chi.URLParam(r, "date")

	result, err := h.attendanceService.GetDailyAttendance(r.Context(), employeeID, date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ManualEdit implements AttendanceHandler.
func (h *attendanceHandlerImpl) ManualEdit(w http.ResponseWriter, r *http.Request) {
	var req attendance.ManualEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.attendanceService.ApplyManualEdit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	slog.Info("Manual attendance edit applied",
		"employee_id", req.EmployeeID,
		"date", req.Date,
		"editor_id", reviewerID(r))
	response.SuccessWithMessage(w, "Attendance updated", result)
}

// ReviewOvertime implements AttendanceHandler.
func (h *attendanceHandlerImpl) ReviewOvertime(w http.ResponseWriter, r *http.Request) {
	var req attendance.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ReviewerID = reviewerID(r)

	result, err := h.attendanceService.ReviewOvertime(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Overtime reviewed", result)
}

// ReviewRelaxation implements AttendanceHandler.
func (h *attendanceHandlerImpl) ReviewRelaxation(w http.ResponseWriter, r *http.Request) {
	var req attendance.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ReviewerID = reviewerID(r)

	result, err := h.attendanceService.ReviewRelaxation(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Relaxation reviewed", result)
}

func reviewerID(r *http.Request) string {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	return claims.UserID
}

package http

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/suchimauz/dental-clinic-scheduler/internal/config"
	"github.com/suchimauz/dental-clinic-scheduler/internal/core/domain"
	"github.com/suchimauz/dental-clinic-scheduler/internal/core/json_types"
	"github.com/suchimauz/dental-clinic-scheduler/internal/core/ports/in"
	"github.com/suchimauz/dental-clinic-scheduler/internal/utils"
)

type SchedulerController struct {
	useCase  in.SchedulerUseCase
	cfg      *config.Config
	location *time.Location
}

func NewSchedulerController(useCase in.SchedulerUseCase, cfg *config.Config) *SchedulerController {
	location, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		location = time.UTC
	}

	return &SchedulerController{
		useCase:  useCase,
		cfg:      cfg,
		location: location,
	}
}

func (c *SchedulerController) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	api.Use(c.basicAuth())
	{
		api.POST("/appointments", c.proposeAppointment)
		api.GET("/appointments/:appointmentId", c.getAppointment)
		api.POST("/appointments/:appointmentId/reschedule", c.rescheduleAppointment)
		api.POST("/appointments/:appointmentId/confirm", c.confirmAppointment)
		api.POST("/appointments/:appointmentId/cancel", c.cancelAppointment)
		api.POST("/appointments/:appointmentId/complete", c.completeAppointment)
		api.GET("/doctors/:doctorId/slots", c.queryAvailableSlots)
		api.GET("/doctors/:doctorId/appointments", c.listDoctorAppointments)
		api.GET("/patients/:patientId/appointments", c.listPatientAppointments)
	}
}

type ProposeAppointmentRequest struct {
	DoctorID        uuid.UUID            `json:"doctorId" binding:"required"`
	PatientID       uuid.UUID            `json:"patientId" binding:"required"`
	Date            json_types.Date      `json:"date" binding:"required"`
	Time            json_types.ClockTime `json:"time" binding:"required"`
	DurationMinutes int                  `json:"durationMinutes" binding:"required,min=1"`
	Treatment       string               `json:"treatment" binding:"required"`
	CostAmount      int64                `json:"costAmount" binding:"min=0"`
	CostCurrency    string               `json:"costCurrency" binding:"required"`
}

type RescheduleAppointmentRequest struct {
	Date json_types.Date      `json:"date" binding:"required"`
	Time json_types.ClockTime `json:"time" binding:"required"`
}

type AppointmentResponse struct {
	ID              uuid.UUID    `json:"id"`
	PatientID       uuid.UUID    `json:"patientId"`
	DoctorID        uuid.UUID    `json:"doctorId"`
	StartTime       string       `json:"startTime"`
	DurationMinutes int          `json:"durationMinutes"`
	Treatment       string       `json:"treatment"`
	Cost            domain.Money `json:"cost"`
	Status          string       `json:"status"`
}

func appointmentResponse(a *domain.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:              a.ID,
		PatientID:       a.PatientID,
		DoctorID:        a.DoctorID,
		StartTime:       a.Time.Value.Format(time.RFC3339),
		DurationMinutes: a.Duration.Minutes,
		Treatment:       string(a.Treatment),
		Cost:            a.Cost,
		Status:          string(a.Status),
	}
}

// appointmentTime собирает дату и время дня в таймзоне клиники.
func (c *SchedulerController) appointmentTime(date json_types.Date, clock json_types.ClockTime) domain.AppointmentTime {
	d := date.Date
	value := time.Date(d.Year(), d.Month(), d.Day(), clock.Time.Hour(), clock.Time.Minute(), 0, 0, c.location)
	return domain.AppointmentTime{Value: value}
}

func (c *SchedulerController) proposeAppointment(ctx *gin.Context) {
	var req ProposeAppointmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	treatment, err := domain.ParseTreatmentType(req.Treatment)
	if err != nil {
		c.renderError(ctx, err)
		return
	}

	appointment, err := c.useCase.ProposeAppointment(ctx.Request.Context(), in.ProposeAppointmentCommand{
		DoctorID:  req.DoctorID,
		PatientID: req.PatientID,
		Time:      c.appointmentTime(req.Date, req.Time),
		Duration:  domain.Duration{Minutes: req.DurationMinutes},
		Treatment: treatment,
		Cost:      domain.Money{Amount: req.CostAmount, Currency: req.CostCurrency},
	})
	if err != nil {
		c.renderError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, appointmentResponse(appointment))
}

func (c *SchedulerController) getAppointment(ctx *gin.Context) {
	appointmentID, err := uuid.Parse(ctx.Param("appointmentId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID format"})
		return
	}

	appointment, err := c.useCase.GetAppointment(ctx.Request.Context(), appointmentID)
	if err != nil {
		c.renderError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, appointmentResponse(appointment))
}

func (c *SchedulerController) rescheduleAppointment(ctx *gin.Context) {
	appointmentID, err := uuid.Parse(ctx.Param("appointmentId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID format"})
		return
	}

	var req RescheduleAppointmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	appointment, err := c.useCase.RescheduleAppointment(ctx.Request.Context(), appointmentID, c.appointmentTime(req.Date, req.Time))
	if err != nil {
		c.renderError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, appointmentResponse(appointment))
}

func (c *SchedulerController) confirmAppointment(ctx *gin.Context) {
	c.applyTransition(ctx, c.useCase.ConfirmAppointment)
}

func (c *SchedulerController) cancelAppointment(ctx *gin.Context) {
	c.applyTransition(ctx, c.useCase.CancelAppointment)
}

func (c *SchedulerController) completeAppointment(ctx *gin.Context) {
	c.applyTransition(ctx, c.useCase.CompleteAppointment)
}

func (c *SchedulerController) applyTransition(ctx *gin.Context, op func(ctx context.Context, id uuid.UUID) (*domain.Appointment, error)) {
	appointmentID, err := uuid.Parse(ctx.Param("appointmentId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID format"})
		return
	}

	appointment, err := op(ctx.Request.Context(), appointmentID)
	if err != nil {
		c.renderError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, appointmentResponse(appointment))
}

func (c *SchedulerController) queryAvailableSlots(ctx *gin.Context) {
	doctorID, err := uuid.Parse(ctx.Param("doctorId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid doctor ID format"})
		return
	}

	date, err := utils.ParseDate(ctx.Query("date"), c.location)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format"})
		return
	}

	durationMinutes, err := strconv.Atoi(ctx.DefaultQuery("durationMinutes", strconv.Itoa(c.cfg.Clinic.SlotGranularityMinutes)))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid duration format"})
		return
	}

	slots, err := c.useCase.QueryAvailableSlots(ctx.Request.Context(), doctorID, date, domain.Duration{Minutes: durationMinutes})
	if err != nil {
		c.renderError(ctx, err)
		return
	}

	times := make([]string, 0, len(slots))
	for _, slot := range slots {
		times = append(times, slot.Value.Format(time.RFC3339))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"doctorId": doctorID,
		"date":     date.Format("2006-01-02"),
		"slots":    times,
	})
}

func (c *SchedulerController) listDoctorAppointments(ctx *gin.Context) {
	doctorID, err := uuid.Parse(ctx.Param("doctorId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid doctor ID format"})
		return
	}

	appointments, err := c.useCase.ListDoctorAppointments(ctx.Request.Context(), doctorID)
	if err != nil {
		c.renderError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, appointmentListResponse(appointments))
}

func (c *SchedulerController) listPatientAppointments(ctx *gin.Context) {
	patientID, err := uuid.Parse(ctx.Param("patientId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid patient ID format"})
		return
	}

	appointments, err := c.useCase.ListPatientAppointments(ctx.Request.Context(), patientID)
	if err != nil {
		c.renderError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, appointmentListResponse(appointments))
}

func appointmentListResponse(appointments []domain.Appointment) []AppointmentResponse {
	result := make([]AppointmentResponse, 0, len(appointments))
	for i := range appointments {
		result = append(result, appointmentResponse(&appointments[i]))
	}
	return result
}

// renderError отображает вид доменной ошибки на HTTP-статус.
func (c *SchedulerController) renderError(ctx *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch domain.KindOf(err) {
	case domain.ErrInvalidArgument:
		status = http.StatusBadRequest
	case domain.ErrNotFound:
		status = http.StatusNotFound
	case domain.ErrSlotConflict, domain.ErrInvalidStateTransition:
		status = http.StatusConflict
	case domain.ErrPolicyViolation:
		status = http.StatusUnprocessableEntity
	case domain.ErrBusy:
		status = http.StatusServiceUnavailable
	}

	ctx.JSON(status, gin.H{"error": err.Error()})
}

func (c *SchedulerController) basicAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		username, password, hasAuth := ctx.Request.BasicAuth()
		if !hasAuth {
			ctx.Header("WWW-Authenticate", "Basic realm=Authorization Required")
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		for _, client := range c.cfg.Auth.BasicClients {
			if subtle.ConstantTimeCompare([]byte(username), []byte(client.Username)) == 1 &&
				subtle.ConstantTimeCompare([]byte(password), []byte(client.Password)) == 1 {
				ctx.Next()
				return
			}
		}

		ctx.Header("WWW-Authenticate", "Basic realm=Authorization Required")
		ctx.AbortWithStatus(http.StatusUnauthorized)
	}
}

package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/intisuite/aula-api/internal/models"
	appErrors "github.com/intisuite/aula-api/pkg/errors"
)

// registrationLead is how long before class start registration opens.
const registrationLead = 10 * time.Minute

// MessageType classifies a window status for UI rendering.
type MessageType string

const (
	MessageInfo    MessageType = "info"
	MessageSuccess MessageType = "success"
	MessageError   MessageType = "error"
)

// TimeWindow describes the registration-eligible window for a class session.
type TimeWindow struct {
	RegistrationStartTime time.Time   `json:"registration_start_time"`
	RegistrationEndTime   time.Time   `json:"registration_end_time"`
	ClassStartTime        time.Time   `json:"class_start_time"`
	ClassEndTime          time.Time   `json:"class_end_time"`
	IsWithinValidPeriod   bool        `json:"is_within_valid_period"`
	StatusMessage         string      `json:"status_message"`
	MessageType           MessageType `json:"message_type"`
}

// TimeWindowCalculator computes registration windows from session wall-clock
// bounds. It performs no I/O.
type TimeWindowCalculator struct {
	clock     Clock
	defaultTZ string
}

// NewTimeWindowCalculator builds a calculator. An empty defaultTimezone means UTC.
func NewTimeWindowCalculator(clock Clock, defaultTimezone string) *TimeWindowCalculator {
	if clock == nil {
		clock = SystemClock
	}
	if defaultTimezone == "" {
		defaultTimezone = "UTC"
	}
	return &TimeWindowCalculator{clock: clock, defaultTZ: defaultTimezone}
}

// Window computes the registration window for a session in the given IANA
// timezone (falls back to the configured default).
func (c *TimeWindowCalculator) Window(session *models.ClassSession, timezone string) (*TimeWindow, error) {
	if timezone == "" {
		timezone = c.defaultTZ
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("zona horaria inválida: %s", timezone))
	}

	classStart, err := combine(session.SessionDate, session.StartTime, loc)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "hora de inicio de clase inválida")
	}
	classEnd, err := combine(session.SessionDate, session.EndTime, loc)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "hora de fin de clase inválida")
	}

	year, month, day := session.SessionDate.Date()
	registrationStart := classStart.Add(-registrationLead)
	// Registration never rolls past midnight: it closes at the end of the
	// session's calendar day no matter when the class ends.
	registrationEnd := time.Date(year, month, day, 23, 59, 59, int(999*time.Millisecond), loc)

	now := c.clock().In(loc)
	sameDay := now.Year() == year && now.Month() == month && now.Day() == day
	within := !now.Before(registrationStart) && !now.After(registrationEnd) && sameDay

	window := &TimeWindow{
		RegistrationStartTime: registrationStart,
		RegistrationEndTime:   registrationEnd,
		ClassStartTime:        classStart,
		ClassEndTime:          classEnd,
		IsWithinValidPeriod:   within,
	}

	switch {
	case now.Before(registrationStart):
		window.StatusMessage = "El registro de asistencia aún no está habilitado"
		window.MessageType = MessageInfo
	case now.Before(classStart):
		window.StatusMessage = "Registro habilitado, la clase aún no comienza"
		window.MessageType = MessageSuccess
	case now.Before(classEnd):
		window.StatusMessage = "Clase en curso, registro habilitado"
		window.MessageType = MessageSuccess
	case !now.After(registrationEnd):
		window.StatusMessage = "La clase finalizó, el registro sigue habilitado hasta el fin del día"
		window.MessageType = MessageSuccess
	default:
		window.StatusMessage = "El registro de asistencia está cerrado"
		window.MessageType = MessageError
	}

	return window, nil
}

// Validate rejects registrations outside the allowed window with distinct
// errors for too-early, too-late and wrong-day submissions.
func (c *TimeWindowCalculator) Validate(session *models.ClassSession, timezone string) error {
	if timezone == "" {
		timezone = c.defaultTZ
	}
	window, err := c.Window(session, timezone)
	if err != nil {
		return err
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("zona horaria inválida: %s", timezone))
	}
	now := c.clock().In(loc)

	if now.Before(window.RegistrationStartTime) {
		return appErrors.Clone(appErrors.ErrValidation, "el registro de asistencia se habilita 10 minutos antes del inicio de la clase")
	}
	if now.After(window.RegistrationEndTime) {
		return appErrors.Clone(appErrors.ErrValidation, "el registro de asistencia para esta clase está cerrado")
	}

	year, month, day := session.SessionDate.Date()
	if now.Year() != year || now.Month() != month || now.Day() != day {
		return appErrors.Clone(appErrors.ErrValidation, "la asistencia solo puede registrarse el día de la clase")
	}

	return nil
}

// combine builds an instant from a calendar date and a wall-clock HH:MM[:SS]
// string interpreted in loc.
func combine(date time.Time, wallClock string, loc *time.Location) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(wallClock), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return time.Time{}, fmt.Errorf("invalid wall-clock value %q", wallClock)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return time.Time{}, fmt.Errorf("invalid hour in %q", wallClock)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("invalid minute in %q", wallClock)
	}
	second := 0
	if len(parts) == 3 {
		second, err = strconv.Atoi(parts[2])
		if err != nil || second < 0 || second > 59 {
			return time.Time{}, fmt.Errorf("invalid second in %q", wallClock)
		}
	}
	year, month, day := date.Date()
	return time.Date(year, month, day, hour, minute, second, 0, loc), nil
}

package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"dental-clinic-server/internal/apperrors"
	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/repository"
)

const (
	SourceActive  = "active"
	SourceHistory = "history"
)

const calendarTimeLayout = "2006-01-02T15:04:05"

// PhoneMatch is one record found by LookupByPhone. Exactly one of
// Appointment and History is set, according to Source.
type PhoneMatch struct {
	Source        string                     `json:"_source"`
	SortTimestamp time.Time                  `json:"sort_timestamp"`
	Appointment   *models.Appointment        `json:"appointment,omitempty"`
	History       *models.AppointmentHistory `json:"history,omitempty"`
}

// CalendarQuery selects the calendar window. Both dates are inclusive.
type CalendarQuery struct {
	StartDate string
	EndDate   string
	DoctorID  string
}

// CalendarEntry is a live appointment projected onto the calendar.
type CalendarEntry struct {
	models.Appointment
	ServiceName     string `json:"service_name"`
	DoctorName      string `json:"doctor_name"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	DurationMinutes int    `json:"duration_minutes"`
}

// HistoryQuery filters the archive. Phone matches any digit substring.
type HistoryQuery struct {
	Phone     string
	StartDate string
	EndDate   string
	DoctorID  string
}

// QueryService is the read side over live and archived appointments.
type QueryService struct {
	store repository.Store
}

func NewQueryService(store repository.Store) *QueryService {
	return &QueryService{store: store}
}

// LookupByPhone finds live and archived appointments whose normalized phone
// starts with the normalized query, newest first.
func (s *QueryService) LookupByPhone(ctx context.Context, phone string) ([]PhoneMatch, error) {
	query := NormalizePhone(phone)
	matches := []PhoneMatch{}
	if query == "" {
		return matches, nil
	}

	appointments, err := s.store.ListAppointments(ctx, repository.AppointmentFilter{})
	if err != nil {
		return nil, err
	}
	for i := range appointments {
		a := &appointments[i]
		if !phonePrefixMatch(a.Phone, query) {
			continue
		}
		matches = append(matches, PhoneMatch{
			Source:        SourceActive,
			SortTimestamp: a.CreatedAt,
			Appointment:   a,
		})
	}

	history, err := s.store.ListHistory(ctx, repository.HistoryFilter{})
	if err != nil {
		return nil, err
	}
	for i := range history {
		h := &history[i]
		if !phonePrefixMatch(h.Phone, query) {
			continue
		}
		matches = append(matches, PhoneMatch{
			Source:        SourceHistory,
			SortTimestamp: h.Timestamp,
			History:       h,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].SortTimestamp.After(matches[j].SortTimestamp)
	})
	return matches, nil
}

func phonePrefixMatch(phone, digits string) bool {
	normalized := NormalizePhone(phone)
	return normalized != "" && strings.HasPrefix(normalized, digits)
}

// Calendar projects live, non-rejected appointments in the window onto
// start/end times. Duration comes from the service, else one hour.
func (s *QueryService) Calendar(ctx context.Context, q CalendarQuery) ([]CalendarEntry, error) {
	start, err := normalizeDate("start_date", q.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := normalizeDate("end_date", q.EndDate)
	if err != nil {
		return nil, err
	}
	if start > end {
		return nil, apperrors.NewValidationError("start_date must not be after end_date")
	}

	appointments, err := s.store.ListAppointments(ctx, repository.AppointmentFilter{
		ExcludeStatus: models.StatusRejected,
		DoctorID:      strings.TrimSpace(q.DoctorID),
		StartDate:     start,
		EndDate:       end,
	})
	if err != nil {
		return nil, err
	}

	entries := make([]CalendarEntry, 0, len(appointments))
	for _, a := range appointments {
		begin, err := slotStart(a.AppointmentDate, a.AppointmentTime)
		if err != nil {
			log.Warn().Err(err).Str("appointment_id", a.ID).Msg("skipping appointment with malformed slot")
			continue
		}
		duration := a.Service.Duration()

		entry := CalendarEntry{
			Appointment:     a,
			StartTime:       begin.Format(calendarTimeLayout),
			EndTime:         begin.Add(duration).Format(calendarTimeLayout),
			DurationMinutes: int(duration / time.Minute),
		}
		if a.Service != nil {
			entry.ServiceName = a.Service.Name
		}
		if a.Doctor != nil {
			entry.DoctorName = a.Doctor.Name
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].StartTime < entries[j].StartTime
	})
	return entries, nil
}

// ListHistory returns archived appointments, newest first. Filtering by
// doctor leaves out rejected entries.
func (s *QueryService) ListHistory(ctx context.Context, q HistoryQuery) ([]models.AppointmentHistory, error) {
	filter := repository.HistoryFilter{DoctorID: strings.TrimSpace(q.DoctorID)}
	filter.ExcludeRejected = filter.DoctorID != ""

	var err error
	if strings.TrimSpace(q.StartDate) != "" {
		if filter.StartDate, err = normalizeDate("start_date", q.StartDate); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(q.EndDate) != "" {
		if filter.EndDate, err = normalizeDate("end_date", q.EndDate); err != nil {
			return nil, err
		}
	}

	entries, err := s.store.ListHistory(ctx, filter)
	if err != nil {
		return nil, err
	}

	digits := NormalizePhone(q.Phone)
	if digits == "" {
		return entries, nil
	}
	filtered := make([]models.AppointmentHistory, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(NormalizePhone(e.Phone), digits) {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

func (s *QueryService) GetHistory(ctx context.Context, id string) (*models.AppointmentHistory, error) {
	return s.store.GetHistory(ctx, id)
}

// MarkVisited flags an archived appointment as attended. Repeated calls
// leave the entry unchanged.
func (s *QueryService) MarkVisited(ctx context.Context, id string) (*models.AppointmentHistory, error) {
	return s.store.MarkHistoryVisited(ctx, id)
}

package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/availability"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	if d.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	if d.Department == "" {
		return fmt.Errorf("department is required")
	}
	if err := validateWeekly(d.WeeklySchedule); err != nil {
		return err
	}
	d.IsActive = true
	return s.repo.Create(ctx, d)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateDoctor(ctx context.Context, d *Doctor) error {
	if d.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	return s.repo.Update(ctx, d)
}

func (s *Service) DeactivateDoctor(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context, department string, limit, offset int) ([]*Doctor, int, error) {
	return s.repo.List(ctx, department, limit, offset)
}

// Profile loads the schedule snapshot for one doctor. It satisfies the
// order service's doctor source.
func (s *Service) Profile(ctx context.Context, id uuid.UUID) (*availability.Profile, string, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	p := d.Profile()
	return &p, d.FullName, nil
}

// Availability resolves the working shifts for one doctor and date.
func (s *Service) Availability(ctx context.Context, id uuid.UUID, date time.Time) (*DayAvailability, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("date is required")
	}
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &DayAvailability{
		DoctorID: d.ID,
		Date:     date.Format("2006-01-02"),
		Shifts:   availability.Resolve(d.Profile(), date),
	}, nil
}

// -- Schedule maintenance --

func (s *Service) SetWeeklySchedule(ctx context.Context, id uuid.UUID, weekly []availability.DayTemplate, fees availability.ConsultationFees) (*Doctor, error) {
	if err := validateWeekly(weekly); err != nil {
		return nil, err
	}
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d.WeeklySchedule = weekly
	d.Fees = fees
	if err := s.repo.UpdateSchedule(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) AddLeave(ctx context.Context, id uuid.UUID, leave availability.LeavePeriod) (*Doctor, error) {
	if leave.StartDate.IsZero() || leave.EndDate.IsZero() {
		return nil, fmt.Errorf("start_date and end_date are required")
	}
	if leave.EndDate.Before(leave.StartDate) {
		return nil, fmt.Errorf("end_date is before start_date")
	}
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Leaves = append(d.Leaves, leave)
	if err := s.repo.UpdateSchedule(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) AddDailyOverride(ctx context.Context, id uuid.UUID, ov availability.DailyOverride) (*Doctor, error) {
	if ov.Date.IsZero() {
		return nil, fmt.Errorf("date is required")
	}
	if !ov.IsCancelled && ov.DelayMinutes <= 0 {
		return nil, fmt.Errorf("override must cancel or delay")
	}
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d.DailyOverrides = append(d.DailyOverrides, ov)
	if err := s.repo.UpdateSchedule(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) AddSpecialShift(ctx context.Context, id uuid.UUID, sp availability.SpecialShift) (*Doctor, error) {
	if sp.Date.IsZero() {
		return nil, fmt.Errorf("date is required")
	}
	if sp.ShiftName == "" {
		return nil, fmt.Errorf("shift_name is required")
	}
	if err := validateShiftTimes(sp.StartTime, sp.EndTime); err != nil {
		return nil, err
	}
	if sp.Status == "" {
		sp.Status = availability.SpecialShiftScheduled
	}
	if sp.Status != availability.SpecialShiftScheduled && sp.Status != availability.SpecialShiftCancelled {
		return nil, fmt.Errorf("invalid special shift status: %s", sp.Status)
	}
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d.SpecialShifts = append(d.SpecialShifts, sp)
	if err := s.repo.UpdateSchedule(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func validateWeekly(weekly []availability.DayTemplate) error {
	for _, day := range weekly {
		if day.DayOfWeek < 0 || day.DayOfWeek > 6 {
			return fmt.Errorf("invalid day_of_week: %d", day.DayOfWeek)
		}
		for _, sh := range day.Shifts {
			if sh.ShiftName == "" {
				return fmt.Errorf("shift on day %d has no name", day.DayOfWeek)
			}
			if err := validateShiftTimes(sh.StartTime, sh.EndTime); err != nil {
				return fmt.Errorf("shift %s: %w", sh.ShiftName, err)
			}
		}
	}
	return nil
}

func validateShiftTimes(start, end string) error {
	st, err := time.Parse("15:04", start)
	if err != nil {
		return fmt.Errorf("invalid start_time: %s", start)
	}
	et, err := time.Parse("15:04", end)
	if err != nil {
		return fmt.Errorf("invalid end_time: %s", end)
	}
	if !et.After(st) {
		return fmt.Errorf("end_time %s is not after start_time %s", end, start)
	}
	return nil
}

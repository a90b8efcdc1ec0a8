package doctor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/availability"
)

type mockRepo struct {
	doctors map[uuid.UUID]*Doctor
}

func newMockRepo() *mockRepo {
	return &mockRepo{doctors: make(map[uuid.UUID]*Doctor)}
}

func (m *mockRepo) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	m.doctors[d.ID] = d
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *d
	return &cp, nil
}

func (m *mockRepo) Update(ctx context.Context, d *Doctor) error {
	if _, ok := m.doctors[d.ID]; !ok {
		return errors.New("not found")
	}
	m.doctors[d.ID] = d
	return nil
}

func (m *mockRepo) UpdateSchedule(ctx context.Context, d *Doctor) error {
	return m.Update(ctx, d)
}

func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.doctors, id)
	return nil
}

func (m *mockRepo) List(ctx context.Context, department string, limit, offset int) ([]*Doctor, int, error) {
	var out []*Doctor
	for _, d := range m.doctors {
		if department == "" || d.Department == department {
			out = append(out, d)
		}
	}
	return out, len(out), nil
}

func seedDoctor(t *testing.T, svc *Service) *Doctor {
	t.Helper()
	d := &Doctor{
		FullName:   "Dr. Rao",
		Department: "General Medicine",
		Fees:       availability.ConsultationFees{NewConsultation: 500, FollowUpConsultation: 300},
		WeeklySchedule: []availability.DayTemplate{{
			DayOfWeek:   int(time.Monday),
			IsAvailable: true,
			Shifts: []availability.Shift{
				{ShiftName: "Morning", StartTime: "09:00", EndTime: "13:00", MaxTokens: 20},
				{ShiftName: "Evening", StartTime: "17:00", EndTime: "21:00", MaxTokens: 15},
			},
		}},
	}
	if err := svc.CreateDoctor(context.Background(), d); err != nil {
		t.Fatalf("CreateDoctor: %v", err)
	}
	return d
}

func TestCreateDoctorValidation(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	cases := []struct {
		name string
		d    Doctor
	}{
		{"missing name", Doctor{Department: "ENT"}},
		{"missing department", Doctor{FullName: "Dr. Rao"}},
		{"bad day of week", Doctor{FullName: "Dr. Rao", Department: "ENT",
			WeeklySchedule: []availability.DayTemplate{{DayOfWeek: 7}}}},
		{"bad shift time", Doctor{FullName: "Dr. Rao", Department: "ENT",
			WeeklySchedule: []availability.DayTemplate{{DayOfWeek: 1, Shifts: []availability.Shift{
				{ShiftName: "Morning", StartTime: "9am", EndTime: "13:00"},
			}}}}},
		{"end before start", Doctor{FullName: "Dr. Rao", Department: "ENT",
			WeeklySchedule: []availability.DayTemplate{{DayOfWeek: 1, Shifts: []availability.Shift{
				{ShiftName: "Morning", StartTime: "13:00", EndTime: "09:00"},
			}}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := tc.d
			if err := svc.CreateDoctor(ctx, &d); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestAvailability(t *testing.T) {
	svc := NewService(newMockRepo())
	d := seedDoctor(t, svc)
	monday := time.Date(2024, time.May, 6, 0, 0, 0, 0, time.UTC)

	day, err := svc.Availability(context.Background(), d.ID, monday)
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if len(day.Shifts) != 2 {
		t.Fatalf("shifts = %d, want 2", len(day.Shifts))
	}
	if day.Date != "2024-05-06" {
		t.Errorf("date = %s, want 2024-05-06", day.Date)
	}

	if _, err := svc.Availability(context.Background(), d.ID, time.Time{}); err == nil {
		t.Error("zero date must be rejected")
	}
	if _, err := svc.Availability(context.Background(), uuid.New(), monday); err == nil {
		t.Error("unknown doctor must be rejected")
	}
}

func TestAddLeaveAffectsAvailability(t *testing.T) {
	svc := NewService(newMockRepo())
	d := seedDoctor(t, svc)
	monday := time.Date(2024, time.May, 6, 0, 0, 0, 0, time.UTC)

	if _, err := svc.AddLeave(context.Background(), d.ID, availability.LeavePeriod{
		StartDate: monday, EndDate: monday, Reason: "conference",
	}); err != nil {
		t.Fatalf("AddLeave: %v", err)
	}

	day, err := svc.Availability(context.Background(), d.ID, monday)
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if len(day.Shifts) != 0 {
		t.Errorf("shifts = %d, want 0 on a leave day", len(day.Shifts))
	}

	if _, err := svc.AddLeave(context.Background(), d.ID, availability.LeavePeriod{
		StartDate: monday, EndDate: monday.AddDate(0, 0, -1),
	}); err == nil {
		t.Error("inverted leave range must be rejected")
	}
}

func TestAddDailyOverrideValidation(t *testing.T) {
	svc := NewService(newMockRepo())
	d := seedDoctor(t, svc)
	monday := time.Date(2024, time.May, 6, 0, 0, 0, 0, time.UTC)

	// Neither a cancellation nor a delay does nothing and is rejected.
	if _, err := svc.AddDailyOverride(context.Background(), d.ID, availability.DailyOverride{
		Date: monday,
	}); err == nil {
		t.Error("no-op override must be rejected")
	}

	if _, err := svc.AddDailyOverride(context.Background(), d.ID, availability.DailyOverride{
		Date: monday, IsCancelled: true, ShiftNames: []string{"Morning"},
	}); err != nil {
		t.Fatalf("AddDailyOverride: %v", err)
	}

	day, err := svc.Availability(context.Background(), d.ID, monday)
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if len(day.Shifts) != 1 || day.Shifts[0].ShiftName != "Evening" {
		t.Errorf("shifts = %+v, want only Evening", day.Shifts)
	}
}

func TestAddSpecialShift(t *testing.T) {
	svc := NewService(newMockRepo())
	d := seedDoctor(t, svc)
	// A Tuesday with no weekly template.
	tuesday := time.Date(2024, time.May, 7, 0, 0, 0, 0, time.UTC)

	if _, err := svc.AddSpecialShift(context.Background(), d.ID, availability.SpecialShift{
		Date: tuesday, ShiftName: "Camp", StartTime: "10:00", EndTime: "14:00", MaxTokens: 30,
	}); err != nil {
		t.Fatalf("AddSpecialShift: %v", err)
	}

	day, err := svc.Availability(context.Background(), d.ID, tuesday)
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if len(day.Shifts) != 1 || day.Shifts[0].ShiftName != "Camp" {
		t.Errorf("shifts = %+v, want the special Camp shift", day.Shifts)
	}

	if _, err := svc.AddSpecialShift(context.Background(), d.ID, availability.SpecialShift{
		Date: tuesday, ShiftName: "Camp", StartTime: "10:00", EndTime: "14:00", Status: "paused",
	}); err == nil {
		t.Error("invalid status must be rejected")
	}
}

func TestProfileSnapshot(t *testing.T) {
	svc := NewService(newMockRepo())
	d := seedDoctor(t, svc)

	p, name, err := svc.Profile(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if name != "Dr. Rao" {
		t.Errorf("name = %s, want Dr. Rao", name)
	}
	if len(p.WeeklySchedule) != 1 {
		t.Errorf("weekly schedule entries = %d, want 1", len(p.WeeklySchedule))
	}
}

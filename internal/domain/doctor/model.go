package doctor

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/availability"
)

// Doctor is a consulting practitioner with an embedded schedule profile.
// The schedule structures live in JSONB columns; the resolver reads them
// as one profile snapshot.
type Doctor struct {
	ID             uuid.UUID                     `db:"id" json:"id"`
	FullName       string                        `db:"full_name" json:"full_name"`
	Department     string                        `db:"department" json:"department"`
	Phone          *string                       `db:"phone" json:"phone,omitempty"`
	Email          *string                       `db:"email" json:"email,omitempty"`
	Fees           availability.ConsultationFees `db:"fees" json:"fees"`
	WeeklySchedule []availability.DayTemplate    `db:"weekly_schedule" json:"weekly_schedule"`
	Leaves         []availability.LeavePeriod    `db:"leaves" json:"leaves,omitempty"`
	DailyOverrides []availability.DailyOverride  `db:"daily_overrides" json:"daily_overrides,omitempty"`
	SpecialShifts  []availability.SpecialShift   `db:"special_shifts" json:"special_shifts,omitempty"`
	IsActive       bool                          `db:"is_active" json:"is_active"`
	CreatedAt      time.Time                     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time                     `db:"updated_at" json:"updated_at"`
}

// Profile assembles the schedule snapshot the resolver consumes.
func (d *Doctor) Profile() availability.Profile {
	return availability.Profile{
		WeeklySchedule: d.WeeklySchedule,
		Leaves:         d.Leaves,
		DailyOverrides: d.DailyOverrides,
		SpecialShifts:  d.SpecialShifts,
	}
}

// DayAvailability is the availability endpoint response for one date.
type DayAvailability struct {
	DoctorID uuid.UUID            `json:"doctor_id"`
	Date     string               `json:"date"`
	Shifts   []availability.Shift `json:"shifts"`
}

package availability

import "time"

// Shift is a named bookable time window with a patient capacity.
// StartTime and EndTime use the "HH:MM" 24h format.
type Shift struct {
	ShiftName   string `json:"shift_name"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	MaxTokens   int    `json:"max_tokens,omitempty"`
	RepeatWeeks []int  `json:"repeat_weeks,omitempty"`
}

// DayTemplate is one weekday entry of the recurring weekly schedule.
type DayTemplate struct {
	DayOfWeek   int     `json:"day_of_week"` // 0=Sunday … 6=Saturday
	IsAvailable bool    `json:"is_available"`
	Shifts      []Shift `json:"shifts,omitempty"`
}

// LeavePeriod marks a date-inclusive range in which a doctor is fully or
// partially unavailable. Empty ShiftNames means full-day leave.
type LeavePeriod struct {
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	ShiftNames []string  `json:"shift_names,omitempty"`
	Reason     string    `json:"reason,omitempty"`
}

// DailyOverride is a one-off cancellation or delay for a specific date.
// Empty ShiftNames with IsCancelled means the whole day is cancelled.
type DailyOverride struct {
	Date         time.Time `json:"date"`
	IsCancelled  bool      `json:"is_cancelled"`
	ShiftNames   []string  `json:"shift_names,omitempty"`
	DelayMinutes int       `json:"delay_minutes,omitempty"`
}

// SpecialShift statuses.
const (
	SpecialShiftScheduled = "scheduled"
	SpecialShiftCancelled = "cancelled"
)

// SpecialShift is an ad-hoc addition, or a name-matched replacement, of
// availability for one specific date.
type SpecialShift struct {
	Date      time.Time `json:"date"`
	ShiftName string    `json:"shift_name"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	MaxTokens int       `json:"max_tokens,omitempty"`
	Status    string    `json:"status"`
}

// ConsultationFees holds the doctor's per-visit pricing.
type ConsultationFees struct {
	NewConsultation      float64 `json:"new_consultation"`
	FollowUpConsultation float64 `json:"follow_up_consultation"`
}

// Profile is the schedule portion of a doctor record, everything Resolve
// needs to compute the effective shifts for a date.
type Profile struct {
	WeeklySchedule []DayTemplate   `json:"weekly_schedule,omitempty"`
	Leaves         []LeavePeriod   `json:"leaves,omitempty"`
	DailyOverrides []DailyOverride `json:"daily_overrides,omitempty"`
	SpecialShifts  []SpecialShift  `json:"special_shifts,omitempty"`
}

package availability

import "time"

// Resolve computes the effective bookable shifts for a doctor on a calendar
// date. It is pure and total: a zero date yields an empty result.
//
// Layering order is fixed and load-bearing:
//
//  1. weekly template for the weekday, filtered by repeat-week membership
//  2. leave period containing the date (full-day or per-shift)
//  3. daily override for the exact date (cancellation, then delay)
//  4. special shifts for the exact date, replacing same-name entries or
//     appending; applied last so a special shift can restore availability
//     on an otherwise cancelled day
//
// The returned order is weekly-template order first, appended specials after.
func Resolve(p Profile, date time.Time) []Shift {
	if date.IsZero() {
		return nil
	}

	day := int(date.Weekday())
	week := weekOfMonth(date)

	shifts := baseShifts(p, day, week)

	if lv, ok := leaveFor(p, date); ok {
		if len(lv.ShiftNames) == 0 {
			shifts = nil
		} else {
			shifts = removeNamed(shifts, lv.ShiftNames)
		}
	}

	if ov, ok := overrideFor(p, date); ok {
		if ov.IsCancelled {
			if len(ov.ShiftNames) == 0 {
				shifts = nil
			} else {
				shifts = removeNamed(shifts, ov.ShiftNames)
			}
		}
		if ov.DelayMinutes > 0 {
			shifts = applyDelay(shifts, ov.ShiftNames, ov.DelayMinutes)
		}
	}

	for _, sp := range p.SpecialShifts {
		if sp.Status == SpecialShiftCancelled || !sameDate(sp.Date, date) {
			continue
		}
		replacement := Shift{
			ShiftName: sp.ShiftName,
			StartTime: sp.StartTime,
			EndTime:   sp.EndTime,
			MaxTokens: sp.MaxTokens,
		}
		replaced := false
		for i := range shifts {
			if shifts[i].ShiftName == sp.ShiftName {
				shifts[i] = replacement
				replaced = true
			}
		}
		if !replaced {
			shifts = append(shifts, replacement)
		}
	}

	return shifts
}

// weekOfMonth returns ceil(dayOfMonth / 7), so the 1st..7th are week 1.
func weekOfMonth(date time.Time) int {
	return (date.Day() + 6) / 7
}

func baseShifts(p Profile, day, week int) []Shift {
	for _, tmpl := range p.WeeklySchedule {
		if tmpl.DayOfWeek != day {
			continue
		}
		if !tmpl.IsAvailable {
			return nil
		}
		var out []Shift
		for _, sh := range tmpl.Shifts {
			if len(sh.RepeatWeeks) == 0 || containsInt(sh.RepeatWeeks, week) {
				out = append(out, sh)
			}
		}
		return out
	}
	return nil
}

// leaveFor returns the first leave period whose inclusive range contains date.
func leaveFor(p Profile, date time.Time) (LeavePeriod, bool) {
	for _, lv := range p.Leaves {
		if !dateBefore(date, lv.StartDate) && !dateBefore(lv.EndDate, date) {
			return lv, true
		}
	}
	return LeavePeriod{}, false
}

func overrideFor(p Profile, date time.Time) (DailyOverride, bool) {
	for _, ov := range p.DailyOverrides {
		if sameDate(ov.Date, date) {
			return ov, true
		}
	}
	return DailyOverride{}, false
}

func removeNamed(shifts []Shift, names []string) []Shift {
	var out []Shift
	for _, sh := range shifts {
		if !containsString(names, sh.ShiftName) {
			out = append(out, sh)
		}
	}
	return out
}

// applyDelay pushes shift start times by the given number of minutes. When
// names is non-empty only the named shifts are delayed. A shift whose delayed
// start reaches its end time is dropped.
func applyDelay(shifts []Shift, names []string, minutes int) []Shift {
	var out []Shift
	for _, sh := range shifts {
		if len(names) > 0 && !containsString(names, sh.ShiftName) {
			out = append(out, sh)
			continue
		}
		delayed, ok := addMinutes(sh.StartTime, minutes)
		if !ok || delayed >= sh.EndTime {
			continue
		}
		sh.StartTime = delayed
		out = append(out, sh)
	}
	return out
}

// addMinutes shifts an "HH:MM" clock value forward. Crossing midnight counts
// as invalid, which drops the shift in applyDelay.
func addMinutes(hm string, minutes int) (string, bool) {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return "", false
	}
	shifted := t.Add(time.Duration(minutes) * time.Minute)
	if shifted.Day() != t.Day() {
		return "", false
	}
	return shifted.Format("15:04"), true
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// dateBefore reports whether a's calendar date is strictly before b's.
func dateBefore(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func containsString(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

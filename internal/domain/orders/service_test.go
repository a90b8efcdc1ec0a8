package orders

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/availability"
	"github.com/clinicdesk/clinicdesk/internal/domain/billing"
	"github.com/clinicdesk/clinicdesk/internal/domain/cart"
)

// =========== Mocks ===========

type mockOrderRepo struct {
	created  []*Order
	items    map[uuid.UUID][]OrderItem
	bookings []*Booking
	err      error
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{items: make(map[uuid.UUID][]OrderItem)}
}

func (m *mockOrderRepo) Create(ctx context.Context, o *Order, items []OrderItem, booking *Booking) error {
	if m.err != nil {
		return m.err
	}
	o.ID = uuid.New()
	m.created = append(m.created, o)
	m.items[o.ID] = items
	if booking != nil {
		booking.OrderID = o.ID
		m.bookings = append(m.bookings, booking)
	}
	return nil
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	for _, o := range m.created {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *mockOrderRepo) GetItems(ctx context.Context, orderID uuid.UUID) ([]*OrderItem, error) {
	var out []*OrderItem
	for i := range m.items[orderID] {
		out = append(out, &m.items[orderID][i])
	}
	return out, nil
}

func (m *mockOrderRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Order, int, error) {
	var out []*Order
	for _, o := range m.created {
		if o.PatientID != nil && *o.PatientID == patientID {
			out = append(out, o)
		}
	}
	return out, len(out), nil
}

func (m *mockOrderRepo) ListBookingsByMonth(ctx context.Context, doctorID uuid.UUID, year int, month time.Month) ([]*Booking, error) {
	var out []*Booking
	for _, b := range m.bookings {
		if b.DoctorID == doctorID && b.Date.Year() == year && b.Date.Month() == month {
			out = append(out, b)
		}
	}
	return out, nil
}

type mockCodeRepo struct {
	codes map[string]*OverrideCode
}

func newMockCodeRepo() *mockCodeRepo {
	return &mockCodeRepo{codes: make(map[string]*OverrideCode)}
}

func (m *mockCodeRepo) Issue(ctx context.Context, c *OverrideCode) error {
	c.ID = uuid.New()
	m.codes[c.Code] = c
	return nil
}

func (m *mockCodeRepo) Consume(ctx context.Context, code string, now time.Time) (*OverrideCode, error) {
	c, ok := m.codes[code]
	if !ok || c.UsedAt != nil || !c.ExpiresAt.After(now) {
		return nil, nil
	}
	used := now
	c.UsedAt = &used
	return c, nil
}

type mockDoctors struct {
	profiles map[uuid.UUID]*availability.Profile
}

func (m *mockDoctors) Profile(ctx context.Context, id uuid.UUID) (*availability.Profile, string, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, "", errors.New("doctor not found")
	}
	return p, "Dr. Rao", nil
}

// =========== Fixtures ===========

var testNow = time.Date(2024, time.May, 6, 10, 0, 0, 0, time.UTC) // a Monday

func newTestService(orders *mockOrderRepo, codes *mockCodeRepo, doctorID uuid.UUID) *Service {
	doctors := &mockDoctors{profiles: map[uuid.UUID]*availability.Profile{
		doctorID: {
			WeeklySchedule: []availability.DayTemplate{{
				DayOfWeek:   int(time.Monday),
				IsAvailable: true,
				Shifts: []availability.Shift{
					{ShiftName: "Morning", StartTime: "09:00", EndTime: "13:00", MaxTokens: 20},
				},
			}},
		},
	}}
	svc := NewService(orders, codes, doctors, billing.DiscountPolicy{StaffLimit: 100})
	svc.now = func() time.Time { return testNow }
	return svc
}

func validDraft(patientID uuid.UUID) *Draft {
	return &Draft{
		PatientID: &patientID,
		Items: []DraftItem{
			{ItemID: uuid.New(), Type: cart.ItemTest, Name: "CBC", Price: 300},
			{ItemID: uuid.New(), Type: cart.ItemTest, Name: "Lipid Profile", Price: 700},
		},
		PaymentMode:  PaymentCash,
		ScheduleDate: testNow,
	}
}

// =========== Tests ===========

func TestCreateOrder(t *testing.T) {
	repo := newMockOrderRepo()
	svc := newTestService(repo, newMockCodeRepo(), uuid.New())
	patientID := uuid.New()

	d := validDraft(patientID)
	d.InitialPayment = 400

	res, err := svc.Create(context.Background(), d, Caller{UserID: "u1", Roles: []string{"receptionist"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.RequiresOverride {
		t.Fatal("expected no override requirement")
	}
	if res.Order.Status != StatusConfirmed {
		t.Errorf("status = %s, want %s", res.Order.Status, StatusConfirmed)
	}
	if res.Order.TotalAmount != 1000 {
		t.Errorf("total = %v, want 1000 (server-side sum)", res.Order.TotalAmount)
	}
	if res.Order.DueAmount != 600 {
		t.Errorf("due = %v, want 600", res.Order.DueAmount)
	}
	if len(repo.created) != 1 {
		t.Fatalf("persisted %d orders, want 1", len(repo.created))
	}
}

func TestCreateOrderValidation(t *testing.T) {
	svc := newTestService(newMockOrderRepo(), newMockCodeRepo(), uuid.New())
	ctx := context.Background()
	caller := Caller{Roles: []string{"receptionist"}}
	patientID := uuid.New()

	t.Run("no patient", func(t *testing.T) {
		d := validDraft(patientID)
		d.PatientID = nil
		if _, err := svc.Create(ctx, d, caller); !errors.Is(err, ErrNoPatient) {
			t.Errorf("err = %v, want ErrNoPatient", err)
		}
	})

	t.Run("walk-in satisfies the patient requirement", func(t *testing.T) {
		d := validDraft(patientID)
		d.PatientID = nil
		d.WalkIn = &WalkInPatient{Name: "Asha", Phone: "9876500000"}
		res, err := svc.Create(ctx, d, caller)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if res.Order.WalkInName == nil || *res.Order.WalkInName != "Asha" {
			t.Error("walk-in name not carried onto the order")
		}
	})

	t.Run("empty items", func(t *testing.T) {
		d := validDraft(patientID)
		d.Items = nil
		if _, err := svc.Create(ctx, d, caller); !errors.Is(err, ErrEmptyOrder) {
			t.Errorf("err = %v, want ErrEmptyOrder", err)
		}
	})

	t.Run("invalid payment mode", func(t *testing.T) {
		d := validDraft(patientID)
		d.PaymentMode = "barter"
		if _, err := svc.Create(ctx, d, caller); !errors.Is(err, ErrInvalidPaymentMode) {
			t.Errorf("err = %v, want ErrInvalidPaymentMode", err)
		}
	})

	t.Run("payment mode defaults to cash", func(t *testing.T) {
		d := validDraft(patientID)
		d.PaymentMode = ""
		res, err := svc.Create(ctx, d, caller)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if res.Order.PaymentMode != PaymentCash {
			t.Errorf("payment mode = %s, want cash", res.Order.PaymentMode)
		}
	})

	t.Run("discount without reason", func(t *testing.T) {
		d := validDraft(patientID)
		d.DiscountAmount = 50
		if _, err := svc.Create(ctx, d, caller); !errors.Is(err, billing.ErrMissingReason) {
			t.Errorf("err = %v, want billing.ErrMissingReason", err)
		}
	})

	t.Run("discount above bill", func(t *testing.T) {
		d := validDraft(patientID)
		d.DiscountAmount = 2000
		d.DiscountReason = "camp"
		if _, err := svc.Create(ctx, d, caller); !errors.Is(err, billing.ErrDiscountExceedsBill) {
			t.Errorf("err = %v, want billing.ErrDiscountExceedsBill", err)
		}
	})
}

func TestCreateOrderAvailabilityRecheck(t *testing.T) {
	doctorID := uuid.New()
	repo := newMockOrderRepo()
	svc := newTestService(repo, newMockCodeRepo(), doctorID)
	ctx := context.Background()
	caller := Caller{Roles: []string{"receptionist"}}
	patientID := uuid.New()

	t.Run("available shift passes and books", func(t *testing.T) {
		d := validDraft(patientID)
		d.Appointment = &DraftAppointment{DoctorID: doctorID, Date: testNow, ShiftName: "Morning"}
		if _, err := svc.Create(ctx, d, caller); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if len(repo.bookings) != 1 {
			t.Fatalf("bookings = %d, want 1", len(repo.bookings))
		}
		if repo.bookings[0].ShiftName != "Morning" {
			t.Errorf("booked shift = %s, want Morning", repo.bookings[0].ShiftName)
		}
	})

	t.Run("shift gone at submission time", func(t *testing.T) {
		d := validDraft(patientID)
		// Tuesday has no template, so resolution yields nothing.
		d.Appointment = &DraftAppointment{DoctorID: doctorID, Date: testNow.AddDate(0, 0, 1), ShiftName: "Morning"}
		_, err := svc.Create(ctx, d, caller)
		if !errors.Is(err, ErrShiftUnavailable) {
			t.Fatalf("err = %v, want ErrShiftUnavailable", err)
		}
	})

	t.Run("unknown doctor fails closed", func(t *testing.T) {
		d := validDraft(patientID)
		d.Appointment = &DraftAppointment{DoctorID: uuid.New(), Date: testNow, ShiftName: "Morning"}
		if _, err := svc.Create(ctx, d, caller); err == nil {
			t.Fatal("expected error for unknown doctor")
		}
	})
}

func TestCreateOrderDiscountOverride(t *testing.T) {
	ctx := context.Background()
	staff := Caller{UserID: "u1", Roles: []string{"receptionist"}}
	patientID := uuid.New()

	overDraft := func() *Draft {
		d := validDraft(patientID)
		d.DiscountAmount = 250 // above the 100 staff limit
		d.DiscountReason = "senior citizen"
		return d
	}

	t.Run("no code pauses the flow", func(t *testing.T) {
		repo := newMockOrderRepo()
		svc := newTestService(repo, newMockCodeRepo(), uuid.New())
		res, err := svc.Create(ctx, overDraft(), staff)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if !res.RequiresOverride {
			t.Fatal("expected RequiresOverride")
		}
		if len(repo.created) != 0 {
			t.Error("order must not be persisted while awaiting override")
		}
	})

	t.Run("manager is exempt", func(t *testing.T) {
		svc := newTestService(newMockOrderRepo(), newMockCodeRepo(), uuid.New())
		res, err := svc.Create(ctx, overDraft(), Caller{UserID: "m1", Roles: []string{"manager"}})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if res.RequiresOverride {
			t.Error("manager should not need an override code")
		}
	})

	t.Run("valid code confirms and is single use", func(t *testing.T) {
		repo := newMockOrderRepo()
		codes := newMockCodeRepo()
		svc := newTestService(repo, codes, uuid.New())
		codes.codes["482910"] = &OverrideCode{Code: "482910", IssuedBy: "m1", ExpiresAt: testNow.Add(time.Hour)}

		d := overDraft()
		d.DiscountOverrideCode = "482910"
		res, err := svc.Create(ctx, d, staff)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if res.RequiresOverride {
			t.Fatal("valid code should authorize the discount")
		}
		if res.Order.NetAmount != 750 {
			t.Errorf("net = %v, want 750", res.Order.NetAmount)
		}

		// Second use of the same code must be rejected.
		d2 := overDraft()
		d2.DiscountOverrideCode = "482910"
		res2, err := svc.Create(ctx, d2, staff)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if !res2.RequiresOverride {
			t.Error("reused code should pause the flow again")
		}
	})

	t.Run("expired code", func(t *testing.T) {
		codes := newMockCodeRepo()
		svc := newTestService(newMockOrderRepo(), codes, uuid.New())
		codes.codes["111222"] = &OverrideCode{Code: "111222", IssuedBy: "m1", ExpiresAt: testNow.Add(-time.Minute)}

		d := overDraft()
		d.DiscountOverrideCode = "111222"
		res, err := svc.Create(ctx, d, staff)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if !res.RequiresOverride {
			t.Fatal("expired code should pause the flow")
		}
		if !strings.Contains(res.Message, "expired") {
			t.Errorf("message = %q, want mention of expiry", res.Message)
		}
	})

	t.Run("code below the discount amount", func(t *testing.T) {
		codes := newMockCodeRepo()
		svc := newTestService(newMockOrderRepo(), codes, uuid.New())
		cap := 200.0
		codes.codes["333444"] = &OverrideCode{Code: "333444", IssuedBy: "m1", MaxAmount: &cap, ExpiresAt: testNow.Add(time.Hour)}

		d := overDraft() // discount 250 > cap 200
		d.DiscountOverrideCode = "333444"
		res, err := svc.Create(ctx, d, staff)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if !res.RequiresOverride {
			t.Fatal("capped code should pause the flow")
		}
	})

	t.Run("short code", func(t *testing.T) {
		svc := newTestService(newMockOrderRepo(), newMockCodeRepo(), uuid.New())
		d := overDraft()
		d.DiscountOverrideCode = "42"
		if _, err := svc.Create(ctx, d, staff); !errors.Is(err, ErrShortOverrideCode) {
			t.Errorf("err = %v, want ErrShortOverrideCode", err)
		}
	})
}

func TestIssueOverrideCode(t *testing.T) {
	codes := newMockCodeRepo()
	svc := newTestService(newMockOrderRepo(), codes, uuid.New())

	c, err := svc.IssueOverrideCode(context.Background(), "m1", 500, 0)
	if err != nil {
		t.Fatalf("IssueOverrideCode: %v", err)
	}
	if len(c.Code) != 6 {
		t.Errorf("code %q, want 6 digits", c.Code)
	}
	if c.MaxAmount == nil || *c.MaxAmount != 500 {
		t.Error("max amount not stored")
	}
	if want := testNow.Add(24 * time.Hour); !c.ExpiresAt.Equal(want) {
		t.Errorf("expires at %v, want default 24h (%v)", c.ExpiresAt, want)
	}

	if _, err := svc.IssueOverrideCode(context.Background(), "", 0, 0); err == nil {
		t.Error("expected error when issuer is missing")
	}
}

func TestMonthlyBookings(t *testing.T) {
	doctorID := uuid.New()
	repo := newMockOrderRepo()
	svc := newTestService(repo, newMockCodeRepo(), doctorID)
	repo.bookings = []*Booking{
		{DoctorID: doctorID, Date: time.Date(2024, time.May, 6, 0, 0, 0, 0, time.UTC), ShiftName: "Morning"},
		{DoctorID: doctorID, Date: time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC), ShiftName: "Morning"},
	}

	got, err := svc.MonthlyBookings(context.Background(), doctorID, 2024, time.May)
	if err != nil {
		t.Fatalf("MonthlyBookings: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("bookings = %d, want 1 (other months excluded)", len(got))
	}

	if _, err := svc.MonthlyBookings(context.Background(), doctorID, 1990, time.May); err == nil {
		t.Error("expected error for out-of-range year")
	}
	if _, err := svc.MonthlyBookings(context.Background(), doctorID, 2024, time.Month(13)); err == nil {
		t.Error("expected error for out-of-range month")
	}
}

package orders

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/availability"
	"github.com/clinicdesk/clinicdesk/internal/domain/billing"
)

// Validation errors for order submission.
var (
	ErrNoPatient          = errors.New("a registered patient or walk-in details are required")
	ErrEmptyOrder         = errors.New("order has no items")
	ErrInvalidPaymentMode = errors.New("invalid payment mode")
	ErrShiftUnavailable   = errors.New("selected shift is not available for the doctor on this date")
	ErrShortOverrideCode  = errors.New("override code must be at least 4 characters")
)

// DoctorSource supplies schedule profiles for the submission-time
// availability re-check.
type DoctorSource interface {
	Profile(ctx context.Context, id uuid.UUID) (*availability.Profile, string, error)
}

// Caller identifies the staff member submitting an order.
type Caller struct {
	UserID string
	Roles  []string
}

type Service struct {
	orders  OrderRepository
	codes   OverrideCodeRepository
	doctors DoctorSource
	policy  billing.DiscountPolicy
	now     func() time.Time
}

func NewService(orders OrderRepository, codes OverrideCodeRepository, doctors DoctorSource, policy billing.DiscountPolicy) *Service {
	return &Service{orders: orders, codes: codes, doctors: doctors, policy: policy, now: time.Now}
}

// Create validates and persists an order draft. A discount above the
// caller's authority without a valid override code yields a CreateResult
// with RequiresOverride set and no error: the caller is expected to retry
// the same draft with a code attached.
func (s *Service) Create(ctx context.Context, d *Draft, caller Caller) (*CreateResult, error) {
	if d.PatientID == nil && (d.WalkIn == nil || d.WalkIn.Name == "" || d.WalkIn.Phone == "") {
		return nil, ErrNoPatient
	}
	if len(d.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if d.PaymentMode == "" {
		d.PaymentMode = PaymentCash
	}
	if !validPaymentModes[d.PaymentMode] {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPaymentMode, d.PaymentMode)
	}
	if d.ScheduleDate.IsZero() {
		return nil, fmt.Errorf("schedule_date is required")
	}

	var total float64
	for _, it := range d.Items {
		total += it.Price
	}
	if err := billing.Validate(total, d.DiscountAmount, d.DiscountReason, d.InitialPayment); err != nil {
		return nil, err
	}

	// Availability conflicts fail closed: the chosen shift is re-resolved
	// against the doctor's schedule at submission time.
	if d.Appointment != nil {
		if err := s.checkAppointment(ctx, d.Appointment); err != nil {
			return nil, err
		}
	}

	if s.policy.RequiresOverride(d.DiscountAmount, caller.Roles) {
		res, authorized, err := s.authorizeDiscount(ctx, d)
		if err != nil || !authorized {
			return res, err
		}
	}

	totals := billing.Compute(total, d.DiscountAmount, d.InitialPayment)
	order := &Order{
		PatientID:      d.PatientID,
		Status:         StatusConfirmed,
		TotalAmount:    totals.Total,
		DiscountAmount: d.DiscountAmount,
		NetAmount:      totals.Net,
		PaidAmount:     d.InitialPayment,
		DueAmount:      totals.Due,
		PaymentMode:    d.PaymentMode,
		ScheduleDate:   d.ScheduleDate,
	}
	if d.WalkIn != nil {
		order.WalkInName = &d.WalkIn.Name
		order.WalkInPhone = &d.WalkIn.Phone
	}
	if d.DiscountReason != "" {
		order.DiscountReason = &d.DiscountReason
	}
	if d.Notes != "" {
		order.Notes = &d.Notes
	}
	if caller.UserID != "" {
		order.CreatedBy = &caller.UserID
	}

	items := make([]OrderItem, 0, len(d.Items))
	for _, it := range d.Items {
		oi := OrderItem{
			ItemID:     it.ItemID,
			Type:       string(it.Type),
			Name:       it.Name,
			Price:      it.Price,
			IsFollowUp: it.IsFollowUp,
		}
		if it.Department != "" {
			oi.Department = &it.Department
		}
		if it.ShiftName != "" {
			oi.ShiftName = &it.ShiftName
		}
		items = append(items, oi)
	}

	var booking *Booking
	if d.Appointment != nil {
		booking = &Booking{
			DoctorID:   d.Appointment.DoctorID,
			Date:       d.Appointment.Date,
			ShiftName:  d.Appointment.ShiftName,
			IsFollowUp: d.Appointment.IsFollowUp,
		}
	}

	if err := s.orders.Create(ctx, order, items, booking); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}

	return &CreateResult{Status: StatusConfirmed, Order: order, Items: items}, nil
}

func (s *Service) checkAppointment(ctx context.Context, a *DraftAppointment) error {
	profile, name, err := s.doctors.Profile(ctx, a.DoctorID)
	if err != nil {
		return fmt.Errorf("load doctor %s: %w", a.DoctorID, err)
	}
	shifts := availability.Resolve(*profile, a.Date)
	for _, sh := range shifts {
		if sh.ShiftName == a.ShiftName {
			return nil
		}
	}
	return fmt.Errorf("%w: %s, %s on %s", ErrShiftUnavailable, name, a.ShiftName, a.Date.Format("2006-01-02"))
}

// authorizeDiscount consumes the draft's override code, if any. It returns
// authorized=false with a RequiresOverride result when the flow should go
// back to the caller for a (new) code.
func (s *Service) authorizeDiscount(ctx context.Context, d *Draft) (*CreateResult, bool, error) {
	if d.DiscountOverrideCode == "" {
		return &CreateResult{
			RequiresOverride: true,
			Message:          "discount exceeds your authority; a manager override code is required",
		}, false, nil
	}
	if !billing.ValidOverrideCodeFormat(d.DiscountOverrideCode) {
		return nil, false, ErrShortOverrideCode
	}

	code, err := s.codes.Consume(ctx, d.DiscountOverrideCode, s.now())
	if err != nil {
		return nil, false, fmt.Errorf("verify override code: %w", err)
	}
	if code == nil {
		return &CreateResult{
			RequiresOverride: true,
			Message:          "override code is invalid, expired or already used",
		}, false, nil
	}
	if code.MaxAmount != nil && d.DiscountAmount > *code.MaxAmount {
		return &CreateResult{
			RequiresOverride: true,
			Message:          fmt.Sprintf("override code authorizes at most %.2f", *code.MaxAmount),
		}, false, nil
	}
	return nil, true, nil
}

// GetOrder fetches an order with its line items.
func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*Order, []*OrderItem, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.orders.GetItems(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return o, items, nil
}

func (s *Service) ListOrdersByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Order, int, error) {
	return s.orders.ListByPatient(ctx, patientID, limit, offset)
}

// MonthlyBookings returns the booking snapshot for one (doctor, year, month)
// triple. Each call is a fresh read; nothing is cached across requests.
func (s *Service) MonthlyBookings(ctx context.Context, doctorID uuid.UUID, year int, month time.Month) ([]*Booking, error) {
	if year < 2000 || month < time.January || month > time.December {
		return nil, fmt.Errorf("invalid year/month: %d/%d", year, month)
	}
	return s.orders.ListBookingsByMonth(ctx, doctorID, year, month)
}

// IssueOverrideCode creates a single-use discount authorization valid for
// the given duration. maxAmount of zero means unlimited.
func (s *Service) IssueOverrideCode(ctx context.Context, issuedBy string, maxAmount float64, validFor time.Duration) (*OverrideCode, error) {
	if issuedBy == "" {
		return nil, fmt.Errorf("issued_by is required")
	}
	if validFor <= 0 {
		validFor = 24 * time.Hour
	}
	code, err := generateCode(6)
	if err != nil {
		return nil, fmt.Errorf("generate override code: %w", err)
	}
	c := &OverrideCode{
		Code:      code,
		IssuedBy:  issuedBy,
		ExpiresAt: s.now().Add(validFor),
	}
	if maxAmount > 0 {
		c.MaxAmount = &maxAmount
	}
	if err := s.codes.Issue(ctx, c); err != nil {
		return nil, fmt.Errorf("store override code: %w", err)
	}
	return c, nil
}

func generateCode(digits int) (string, error) {
	max := big.NewInt(10)
	out := make([]byte, digits)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = byte('0' + n.Int64())
	}
	return string(out), nil
}

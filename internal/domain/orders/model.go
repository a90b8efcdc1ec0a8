package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/cart"
)

// Payment modes accepted at the front desk.
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentUPI      = "upi"
	PaymentCheckout = "checkout" // external gateway step after submission
)

var validPaymentModes = map[string]bool{
	PaymentCash: true, PaymentCard: true, PaymentUPI: true, PaymentCheckout: true,
}

// Order statuses.
const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// DraftItem is one billable line of an order submission.
type DraftItem struct {
	ItemID     uuid.UUID     `json:"item_id"`
	Type       cart.ItemType `json:"type"`
	Name       string        `json:"name"`
	Price      float64       `json:"price"`
	Department string        `json:"department,omitempty"`
	ShiftName  string        `json:"shift_name,omitempty"`
	IsFollowUp bool          `json:"is_follow_up,omitempty"`
}

// DraftAppointment is the consultation booking attached to an order.
type DraftAppointment struct {
	DoctorID   uuid.UUID `json:"doctor_id"`
	Date       time.Time `json:"date"`
	ShiftName  string    `json:"shift_name"`
	IsFollowUp bool      `json:"is_follow_up,omitempty"`
}

// WalkInPatient captures an unregistered patient on the order itself.
type WalkInPatient struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Age    int    `json:"age,omitempty"`
	Gender string `json:"gender,omitempty"`
}

// Draft is the order submission payload.
type Draft struct {
	PatientID            *uuid.UUID        `json:"patient_id,omitempty"`
	WalkIn               *WalkInPatient    `json:"walkin,omitempty"`
	Items                []DraftItem       `json:"items"`
	Appointment          *DraftAppointment `json:"appointment,omitempty"`
	DiscountAmount       float64           `json:"discount_amount"`
	DiscountReason       string            `json:"discount_reason,omitempty"`
	PaymentMode          string            `json:"payment_mode"`
	InitialPayment       float64           `json:"initial_payment,omitempty"`
	DiscountOverrideCode string            `json:"discount_override_code,omitempty"`
	Notes                string            `json:"notes,omitempty"`
	ScheduleDate         time.Time         `json:"schedule_date"`
}

// Order is a persisted, accepted submission.
type Order struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
	WalkInName     *string    `db:"walkin_name" json:"walkin_name,omitempty"`
	WalkInPhone    *string    `db:"walkin_phone" json:"walkin_phone,omitempty"`
	Status         string     `db:"status" json:"status"`
	TotalAmount    float64    `db:"total_amount" json:"total_amount"`
	DiscountAmount float64    `db:"discount_amount" json:"discount_amount"`
	DiscountReason *string    `db:"discount_reason" json:"discount_reason,omitempty"`
	NetAmount      float64    `db:"net_amount" json:"net_amount"`
	PaidAmount     float64    `db:"paid_amount" json:"paid_amount"`
	DueAmount      float64    `db:"due_amount" json:"due_amount"`
	PaymentMode    string     `db:"payment_mode" json:"payment_mode"`
	Notes          *string    `db:"notes" json:"notes,omitempty"`
	ScheduleDate   time.Time  `db:"schedule_date" json:"schedule_date"`
	CreatedBy      *string    `db:"created_by" json:"created_by,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// OrderItem maps to the order_item table.
type OrderItem struct {
	ID         uuid.UUID `db:"id" json:"id"`
	OrderID    uuid.UUID `db:"order_id" json:"order_id"`
	ItemID     uuid.UUID `db:"item_id" json:"item_id"`
	Type       string    `db:"item_type" json:"type"`
	Name       string    `db:"name" json:"name"`
	Price      float64   `db:"price" json:"price"`
	Department *string   `db:"department" json:"department,omitempty"`
	ShiftName  *string   `db:"shift_name" json:"shift_name,omitempty"`
	IsFollowUp bool      `db:"is_follow_up" json:"is_follow_up"`
}

// Booking maps to the booking table; one row per accepted consultation,
// feeding the monthly-bookings snapshot.
type Booking struct {
	ID         uuid.UUID `db:"id" json:"id"`
	OrderID    uuid.UUID `db:"order_id" json:"order_id"`
	DoctorID   uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Date       time.Time `db:"booking_date" json:"date"`
	ShiftName  string    `db:"shift_name" json:"shift_name"`
	IsFollowUp bool      `db:"is_follow_up" json:"is_follow_up"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// OverrideCode is a manager-issued, single-use discount authorization.
type OverrideCode struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Code      string     `db:"code" json:"code"`
	IssuedBy  string     `db:"issued_by" json:"issued_by"`
	MaxAmount *float64   `db:"max_amount" json:"max_amount,omitempty"`
	ExpiresAt time.Time  `db:"expires_at" json:"expires_at"`
	UsedAt    *time.Time `db:"used_at" json:"used_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// CreateResult is the outcome of an order submission. RequiresOverride set
// with no Order means the discount exceeded the caller's authority; this is
// an expected branch, not an error.
type CreateResult struct {
	Status           string      `json:"status"`
	Order            *Order      `json:"order,omitempty"`
	Items            []OrderItem `json:"items,omitempty"`
	RequiresOverride bool        `json:"requires_override,omitempty"`
	Message          string      `json:"message,omitempty"`
}

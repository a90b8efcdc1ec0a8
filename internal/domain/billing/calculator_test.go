package billing

import (
	"errors"
	"testing"
)

func TestComputeBasic(t *testing.T) {
	got := Compute(1000, 300, 0)
	if got.Total != 1000 || got.Net != 700 || got.Due != 700 {
		t.Fatalf("Compute(1000,300,0) = %+v, want total 1000 net 700 due 700", got)
	}
}

func TestComputePartialPayment(t *testing.T) {
	got := Compute(1000, 300, 200)
	if got.Due != 500 {
		t.Fatalf("due = %v, want 500", got.Due)
	}
}

func TestComputeClampsAtZero(t *testing.T) {
	cases := []struct {
		total, discount, paid float64
	}{
		{100, 150, 0},
		{100, 0, 150},
		{0, 0, 0},
		{100, 100, 100},
	}
	for _, tc := range cases {
		got := Compute(tc.total, tc.discount, tc.paid)
		if got.Net < 0 || got.Due < 0 {
			t.Errorf("Compute(%v,%v,%v) = %+v, net/due must never go negative",
				tc.total, tc.discount, tc.paid, got)
		}
	}
}

func TestComputeDueZeroWhenFullyPaid(t *testing.T) {
	for _, paid := range []float64{700, 800, 1000} {
		if got := Compute(1000, 300, paid); got.Due != 0 {
			t.Errorf("paid %v: due = %v, want 0", paid, got.Due)
		}
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name     string
		total    float64
		discount float64
		reason   string
		paid     float64
		wantErr  error
	}{
		{"no discount no payment", 1000, 0, "", 0, nil},
		{"discount with reason", 1000, 300, "Staff", 0, nil},
		{"full payment", 1000, 0, "", 1000, nil},
		{"negative discount", 1000, -1, "", 0, ErrNegativeDiscount},
		{"discount above total", 1000, 1001, "Staff", 0, ErrDiscountExceedsBill},
		{"discount without reason", 1000, 10, "", 0, ErrMissingReason},
		{"negative payment", 1000, 0, "", -5, ErrNegativePayment},
		{"overpayment", 1000, 300, "Staff", 800, ErrOverpayment},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.total, tc.discount, tc.reason, tc.paid)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Validate = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestRequiresOverride(t *testing.T) {
	policy := DiscountPolicy{StaffLimit: 100}
	staff := []string{"receptionist"}
	manager := []string{"manager"}

	if policy.RequiresOverride(0, staff) {
		t.Error("zero discount must not require an override")
	}
	if policy.RequiresOverride(100, staff) {
		t.Error("discount at the staff limit must not require an override")
	}
	if !policy.RequiresOverride(101, staff) {
		t.Error("discount above the staff limit must require an override")
	}
	if policy.RequiresOverride(10000, manager) {
		t.Error("managers never need an override")
	}
}

func TestRequiresOverrideZeroLimit(t *testing.T) {
	policy := DiscountPolicy{}
	if !policy.RequiresOverride(1, []string{"receptionist"}) {
		t.Error("with a zero limit any staff discount requires an override")
	}
}

func TestValidOverrideCodeFormat(t *testing.T) {
	if ValidOverrideCodeFormat("123") {
		t.Error("3-char code must be rejected")
	}
	if !ValidOverrideCodeFormat("1234") {
		t.Error("4-char code must be accepted")
	}
}

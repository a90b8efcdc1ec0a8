package billing

// DiscountPolicy decides when a discount exceeds front-desk authority and
// needs a manager-issued override code.
type DiscountPolicy struct {
	// StaffLimit is the largest absolute discount a non-manager may grant
	// on their own. Zero means every discount needs an override.
	StaffLimit float64
}

// managerRole grants unlimited discount authority.
const managerRole = "manager"

// RequiresOverride reports whether the given discount needs an override code
// for a caller holding the given roles.
func (p DiscountPolicy) RequiresOverride(discount float64, roles []string) bool {
	if discount <= 0 {
		return false
	}
	for _, r := range roles {
		if r == managerRole {
			return false
		}
	}
	return discount > p.StaffLimit
}

// MinOverrideCodeLen is the minimum accepted override code length.
const MinOverrideCodeLen = 4

// ValidOverrideCodeFormat reports whether a code is long enough to submit.
// Whether the code is actually honored is decided server-side.
func ValidOverrideCodeFormat(code string) bool {
	return len(code) >= MinOverrideCodeLen
}

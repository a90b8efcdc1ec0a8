package cart

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/availability"
)

// Common errors returned by the cart.
var (
	ErrUnknownDoctor      = errors.New("doctor not found")
	ErrDoctorUnavailable  = errors.New("doctor has no bookable shift on this date")
	ErrItemNotFound       = errors.New("cart item not found")
	ErrDuplicateCatalogID = errors.New("item already in cart")
)

// ItemType distinguishes the billable line item kinds.
type ItemType string

const (
	ItemTest         ItemType = "test"
	ItemPackage      ItemType = "package"
	ItemConsultation ItemType = "consultation"
)

// CatalogEntry is what the host layer selects from the service catalog.
// DoctorID is set only for consultation entries.
type CatalogEntry struct {
	ID         uuid.UUID `json:"id"`
	Type       ItemType  `json:"type"`
	Name       string    `json:"name"`
	Price      float64   `json:"price"`
	Department string    `json:"department"`
	DoctorID   uuid.UUID `json:"doctor_id,omitempty"`
}

// LineItem is a billable entry held by the cart. For a consultation item
// ShiftName is always a member of AvailableShifts; an item whose available
// set becomes empty is evicted rather than kept.
type LineItem struct {
	ID              uuid.UUID            `json:"id"`
	CatalogID       uuid.UUID            `json:"catalog_id"`
	Type            ItemType             `json:"type"`
	Name            string               `json:"name"`
	Price           float64              `json:"price"`
	Department      string               `json:"department"`
	DoctorID        uuid.UUID            `json:"doctor_id,omitempty"`
	DoctorName      string               `json:"doctor_name,omitempty"`
	ShiftName       string               `json:"shift_name,omitempty"`
	AvailableShifts []availability.Shift `json:"available_shifts,omitempty"`
	IsFollowUp      bool                 `json:"is_follow_up,omitempty"`
	ShiftChanged    bool                 `json:"shift_changed,omitempty"`
}

// DoctorEntry is the cart's view of a doctor record.
type DoctorEntry struct {
	Name    string
	Fees    availability.ConsultationFees
	Profile availability.Profile
}

// DoctorSource supplies doctor records for availability checks.
type DoctorSource interface {
	Lookup(id uuid.UUID) (*DoctorEntry, bool)
}

// ChangeSummary reports what a date change did to the cart. EvictedDoctors
// holds each affected doctor's display name once, for a single batched
// user notice.
type ChangeSummary struct {
	EvictedDoctors []string
	Reassigned     []uuid.UUID
}

// Manager keeps the selected line items consistent with doctor availability
// for the order's current date.
type Manager struct {
	mu      sync.Mutex
	doctors DoctorSource
	date    time.Time
	items   []*LineItem
}

// NewManager creates a cart for the given booking date.
func NewManager(doctors DoctorSource, date time.Time) *Manager {
	return &Manager{doctors: doctors, date: date}
}

// Date returns the cart's current booking date.
func (m *Manager) Date() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.date
}

// AddItem places a catalog entry in the cart. A consultation entry is
// resolved against the doctor's availability for the cart date; if no shift
// is open the add is rejected with ErrDoctorUnavailable and the cart is
// unchanged. The first effective shift becomes the default selection.
func (m *Manager) AddItem(entry CatalogEntry) (*LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, it := range m.items {
		if it.CatalogID == entry.ID {
			return nil, ErrDuplicateCatalogID
		}
	}

	item := &LineItem{
		ID:         uuid.New(),
		CatalogID:  entry.ID,
		Type:       entry.Type,
		Name:       entry.Name,
		Price:      entry.Price,
		Department: entry.Department,
	}

	if entry.Type == ItemConsultation {
		doc, ok := m.doctors.Lookup(entry.DoctorID)
		if !ok {
			return nil, ErrUnknownDoctor
		}
		shifts := availability.Resolve(doc.Profile, m.date)
		if len(shifts) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrDoctorUnavailable, doc.Name)
		}
		item.DoctorID = entry.DoctorID
		item.DoctorName = doc.Name
		item.AvailableShifts = shifts
		item.ShiftName = shifts[0].ShiftName
		item.Price = doc.Fees.NewConsultation
	}

	m.items = append(m.items, item)
	return snapshot(item), nil
}

// RemoveItem drops a line item from the cart.
func (m *Manager) RemoveItem(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, it := range m.items {
		if it.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

// SelectShift changes the chosen shift of a consultation item. The new shift
// must be a member of the item's current available set.
func (m *Manager) SelectShift(id uuid.UUID, shiftName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	it := m.find(id)
	if it == nil {
		return ErrItemNotFound
	}
	for _, sh := range it.AvailableShifts {
		if sh.ShiftName == shiftName {
			it.ShiftName = shiftName
			it.ShiftChanged = false
			return nil
		}
	}
	return fmt.Errorf("shift %q is not available for %s", shiftName, it.DoctorName)
}

// SetFollowUp flips the follow-up flag of a consultation item. The price is
// recomputed only when the flag actually changes.
func (m *Manager) SetFollowUp(id uuid.UUID, followUp bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	it := m.find(id)
	if it == nil {
		return ErrItemNotFound
	}
	if it.Type != ItemConsultation || it.IsFollowUp == followUp {
		return nil
	}
	doc, ok := m.doctors.Lookup(it.DoctorID)
	if !ok {
		return ErrUnknownDoctor
	}
	it.IsFollowUp = followUp
	if followUp {
		it.Price = doc.Fees.FollowUpConsultation
	} else {
		it.Price = doc.Fees.NewConsultation
	}
	return nil
}

// OnDateChange moves the cart to a new booking date and re-validates every
// consultation item against it: items whose doctor has no open shift are
// evicted (names collected for one batched notice), items whose chosen shift
// disappeared are silently reassigned to the first effective shift and
// flagged for UI highlighting, untouched items keep their selection.
func (m *Manager) OnDateChange(newDate time.Time) ChangeSummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.date = newDate

	var summary ChangeSummary
	kept := m.items[:0]
	for _, it := range m.items {
		if it.Type != ItemConsultation {
			kept = append(kept, it)
			continue
		}

		doc, ok := m.doctors.Lookup(it.DoctorID)
		if !ok {
			summary.EvictedDoctors = appendUnique(summary.EvictedDoctors, it.DoctorName)
			continue
		}
		shifts := availability.Resolve(doc.Profile, newDate)
		if len(shifts) == 0 {
			summary.EvictedDoctors = appendUnique(summary.EvictedDoctors, doc.Name)
			continue
		}

		it.AvailableShifts = shifts
		if !hasShift(shifts, it.ShiftName) {
			it.ShiftName = shifts[0].ShiftName
			it.ShiftChanged = true
			summary.Reassigned = append(summary.Reassigned, it.ID)
		} else {
			it.ShiftChanged = false
		}
		kept = append(kept, it)
	}
	m.items = kept
	return summary
}

// Items returns a stable-order copy of the cart contents.
func (m *Manager) Items() []LineItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]LineItem, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, *snapshot(it))
	}
	return out
}

// Total sums the line item prices.
func (m *Manager) Total() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	var total float64
	for _, it := range m.items {
		total += it.Price
	}
	return total
}

// Clear empties the cart, for reuse after a submitted order.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
}

func (m *Manager) find(id uuid.UUID) *LineItem {
	for _, it := range m.items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

func snapshot(it *LineItem) *LineItem {
	cp := *it
	cp.AvailableShifts = append([]availability.Shift(nil), it.AvailableShifts...)
	return &cp
}

func hasShift(shifts []availability.Shift, name string) bool {
	for _, sh := range shifts {
		if sh.ShiftName == name {
			return true
		}
	}
	return false
}

func appendUnique(xs []string, x string) []string {
	for _, v := range xs {
		if v == x {
			return xs
		}
	}
	return append(xs, x)
}

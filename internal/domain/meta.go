package domain

import "time"

// Meta carries the identity and audit fields shared by every entity.
// Embed it as the first field so the persisted JSON keeps id/createdAt/updatedAt
// at the top of each record.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (m *Meta) EntityID() string { return m.ID }

func (m *Meta) SetEntityID(id string) { m.ID = id }

func (m *Meta) CreatedTime() time.Time { return m.CreatedAt }

// StampNew sets both timestamps. Pre-seeded entities keep their original
// timestamps, so callers only stamp when CreatedAt is zero.
func (m *Meta) StampNew(now time.Time) {
	m.CreatedAt = now
	m.UpdatedAt = now
}

// Touch refreshes UpdatedAt. The result is always strictly greater than the
// previous value, even when the wall clock has not advanced between two
// mutations.
func (m *Meta) Touch(now time.Time) {
	if !now.After(m.UpdatedAt) {
		now = m.UpdatedAt.Add(time.Nanosecond)
	}
	m.UpdatedAt = now
}

package models

import "time"

const (
	MembershipStatusActive  = "active"
	MembershipStatusExpired = "expired"
	MembershipStatusPaused  = "paused"
)

type Membership struct {
	ID                ID        `json:"id"`
	UserID            ID        `json:"user_id"`
	PlanID            ID        `json:"plan_id"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	RemainingSessions int       `json:"remaining_sessions"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Usable reports whether the membership can back a booking or a check-in at now.
func (m *Membership) Usable(now time.Time) bool {
	return m.Status == MembershipStatusActive && !m.EndDate.Before(now) && m.RemainingSessions > 0
}

// Lapsed reports whether the end date is already behind now.
func (m *Membership) Lapsed(now time.Time) bool {
	return m.EndDate.Before(now)
}

// MembershipSelection decides which usable membership is charged when a user
// holds more than one.
type MembershipSelection string

const (
	SelectLatestExpiring  MembershipSelection = "latest_expiring"
	SelectSoonestExpiring MembershipSelection = "soonest_expiring"
)

// DefaultMembershipSelection keeps the latest-expiring membership first.
const DefaultMembershipSelection = SelectLatestExpiring

func ParseMembershipSelection(value string) (MembershipSelection, bool) {
	switch MembershipSelection(value) {
	case "":
		return DefaultMembershipSelection, true
	case SelectLatestExpiring, SelectSoonestExpiring:
		return MembershipSelection(value), true
	default:
		return "", false
	}
}

// Prefer reports whether a should be chosen over b under the selection policy.
// Ties on end date fall back to the lower id.
func (s MembershipSelection) Prefer(a, b *Membership) bool {
	if !a.EndDate.Equal(b.EndDate) {
		if s == SelectSoonestExpiring {
			return a.EndDate.Before(b.EndDate)
		}
		return a.EndDate.After(b.EndDate)
	}
	return a.ID < b.ID
}

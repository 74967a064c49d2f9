package models

import "time"

const (
	CheckinMethodQR     = "qr"
	CheckinMethodManual = "manual"

	CheckinStatusSuccess = "success"
)

type Checkin struct {
	ID           ID        `json:"id"`
	UserID       ID        `json:"user_id"`
	BranchID     ID        `json:"branch_id"`
	MembershipID ID        `json:"membership_id"`
	Method       string    `json:"method"`
	Status       string    `json:"status"`
	CheckedAt    time.Time `json:"checked_at"`
}

type CheckinResult struct {
	Checkin           Checkin `json:"checkin"`
	MembershipID      ID      `json:"membership_id"`
	RemainingSessions int     `json:"remaining_sessions"`
}

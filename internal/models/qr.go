package models

// QrPayload is a bearer capability presented at the front desk. It is never stored.
type QrPayload struct {
	UserID    ID     `json:"user_id"`
	Nonce     string `json:"nonce"`
	ExpiresAt int64  `json:"exp"`
	Signature string `json:"sig"`
}

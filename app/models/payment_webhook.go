package models

import "time"

const (
	WebhookReceived  = "received"
	WebhookProcessed = "processed"
	WebhookFailed    = "failed"
	WebhookIgnored   = "ignored"
)

// PaymentWebhook is the append-only audit record of every inbound provider
// callback. A row is written verbatim before any interpretation and then
// mutated exactly once to a terminal status. Rows are never deleted.
type PaymentWebhook struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Provider      string    `gorm:"type:varchar(20);not null;index" json:"provider"`
	Payload       string    `gorm:"type:longtext;not null" json:"payload"`
	EventType     string    `gorm:"type:varchar(100)" json:"event_type"`
	PaymentLinkID *uint     `gorm:"index" json:"payment_link_id,omitempty"`
	Status        string    `gorm:"type:varchar(20);not null;default:'received';index" json:"status"`
	ErrorMessage  string    `gorm:"type:text" json:"error_message,omitempty"`
	SourceIP      string    `gorm:"type:varchar(45)" json:"source_ip,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

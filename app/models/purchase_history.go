package models

import "time"

const (
	PurchasePremiumSubscription = "premium_subscription"
)

const (
	PurchasePending   = "pending"
	PurchaseCompleted = "completed"
	PurchaseFailed    = "failed"
	PurchaseRefunded  = "refunded"
)

// PurchaseHistory is the append-only revenue ledger. One row is written per
// successful activation, webhook-driven or manual, independent of payment
// link state.
type PurchaseHistory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Type        string    `gorm:"type:varchar(50);not null" json:"type"`
	Amount      int       `gorm:"not null" json:"amount"`
	Status      string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	PaymentID   string    `gorm:"type:varchar(255)" json:"payment_id,omitempty"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

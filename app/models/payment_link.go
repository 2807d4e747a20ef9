package models

import "time"

const (
	PaymentProviderTelecomCredit = "telecom_credit"
	PaymentProviderAlphaNote     = "alpha_note"
	PaymentProviderBankTransfer  = "bank_transfer"
	PaymentProviderOther         = "other"
)

const (
	PaymentPlanMonthly = "monthly"
	PaymentPlanYearly  = "yearly"
)

const (
	PaymentLinkPending   = "pending"
	PaymentLinkCompleted = "completed"
	PaymentLinkExpired   = "expired"
	PaymentLinkCancelled = "cancelled"
)

// PaymentLink tracks a single payment attempt handed to an external provider.
// LinkID is the only identifier ever shared with the provider; it is generated
// once and never changes.
type PaymentLink struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	LinkID            string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"link_id"`
	UserID            uint       `gorm:"not null;index:idx_payment_links_user_status,priority:1" json:"user_id"`
	User              *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Provider          string     `gorm:"type:varchar(20);not null;default:'other'" json:"provider"`
	PlanType          string     `gorm:"type:varchar(20);not null;default:'monthly'" json:"plan_type"`
	Amount            int        `gorm:"not null" json:"amount"`
	Status            string     `gorm:"type:varchar(20);not null;default:'pending';index:idx_payment_links_user_status,priority:2" json:"status"`
	Metadata          string     `gorm:"type:text" json:"metadata,omitempty"`
	ExpiresAt         *time.Time `gorm:"type:timestamp;default:null" json:"expires_at,omitempty"`
	CompletedAt       *time.Time `gorm:"type:timestamp;default:null" json:"completed_at,omitempty"`
	ExternalPaymentID string     `gorm:"type:varchar(255)" json:"external_payment_id,omitempty"`
	CreatedAt         time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsValidPaymentProvider reports whether name is a known provider route.
func IsValidPaymentProvider(name string) bool {
	switch name {
	case PaymentProviderTelecomCredit, PaymentProviderAlphaNote, PaymentProviderBankTransfer, PaymentProviderOther:
		return true
	default:
		return false
	}
}

// IsExpired reports whether a pending link has passed its expiry at the given
// instant. Terminal links are never reported as expired.
func (l *PaymentLink) IsExpired(now time.Time) bool {
	return l.Status == PaymentLinkPending && l.ExpiresAt != nil && !l.ExpiresAt.After(now)
}

// IsReusable reports whether this link can be handed out again by the issuer.
func (l *PaymentLink) IsReusable(now time.Time) bool {
	return l.Status == PaymentLinkPending && l.ExpiresAt != nil && l.ExpiresAt.After(now)
}

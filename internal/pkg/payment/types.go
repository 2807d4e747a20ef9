package payment

import "time"

// IssueLinkInput carries the optional parameters of link issuance. Metadata is
// stored verbatim and never interpreted.
type IssueLinkInput struct {
	ReturnURL string            `json:"return_url" validate:"omitempty,url"`
	Metadata  map[string]string `json:"metadata"`
}

// PaymentParams is the provider-agnostic parameter bag the client turns into a
// provider-specific redirect URL. The service never constructs provider URLs.
type PaymentParams struct {
	UserID    string `json:"user_id"`
	OrderID   string `json:"order_id"`
	Amount    string `json:"amount"`
	ReturnURL string `json:"return_url"`
}

// IssuedLink is the result of link issuance or reuse.
type IssuedLink struct {
	LinkID        string        `json:"link_id"`
	OrderID       string        `json:"order_id"`
	Amount        int           `json:"amount"`
	ExpiresAt     time.Time     `json:"expires_at"`
	PaymentParams PaymentParams `json:"payment_params"`
	Reused        bool          `json:"reused"`
}

// WebhookResult is the business outcome of one webhook delivery. Success false
// with a message is an expected outcome (decline, unknown link), not a fault.
type WebhookResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	LinkID  string `json:"link_id,omitempty"`
}

// LinkStatus is the client-facing view of one payment link.
type LinkStatus struct {
	LinkID      string     `json:"link_id"`
	Status      string     `json:"status"`
	Amount      int        `json:"amount"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	IsExpired   bool       `json:"is_expired"`
}

// HistoryEntry is one row of a user's own payment history.
type HistoryEntry struct {
	LinkID      string     `json:"link_id"`
	Amount      int        `json:"amount"`
	Status      string     `json:"status"`
	Provider    string     `json:"provider"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ManualActivationInput is the admin override request.
type ManualActivationInput struct {
	UserID uint   `json:"user_id" validate:"required"`
	Months int    `json:"months" validate:"min=0,max=12"`
	LinkID string `json:"link_id"`
	Notes  string `json:"notes"`
}

// ManualActivationResult reports the effect of an admin override.
type ManualActivationResult struct {
	PremiumExpiresAt time.Time `json:"premium_expires_at"`
	Months           int       `json:"months"`
}

// ListLinksFilter narrows the admin link listing.
type ListLinksFilter struct {
	Status string
	Limit  int
}

package payment

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MikageWorks/UnseiPay/app/models"
	"github.com/MikageWorks/UnseiPay/internal/pkg/env"
	"github.com/MikageWorks/UnseiPay/internal/pkg/notify"
	"github.com/MikageWorks/UnseiPay/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

const (
	// linkTTL governs how long a pending link stays completable/reusable.
	linkTTL = 24 * time.Hour

	defaultHistoryLimit = 10
	maxHistoryLimit     = 50
	defaultAdminLimit   = 50
	maxAdminLimit       = 100
	maxPayloadExcerpt   = 500
)

// Notifier delivers fire-and-forget owner notifications. Failures never reach
// the caller.
type Notifier interface {
	Owner(title, content string)
}

// Locker serializes link issuance per user. A nil Locker or a failed lock
// degrades to the plain check-then-create path.
type Locker interface {
	Lock(name string) (func(), error)
}

// Service implements payment link issuance, webhook reconciliation, the admin
// override path, and the read-side queries.
type Service struct {
	repo     Repository
	notifier Notifier
	locker   Locker
	price    int
}

// NewService creates a payment service with explicit collaborators.
func NewService(repo Repository, notifier Notifier, locker Locker, price int) *Service {
	return &Service{repo: repo, notifier: notifier, locker: locker, price: price}
}

// NewServiceFromDB creates a payment service with the default production wiring.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(
		NewRepository(db),
		notify.NewOwnerNotifier(),
		defaultLocker{},
		env.GetEnvInt("SUBSCRIPTION_PRICE_JPY", 1980),
	)
}

// IssueLink returns the user's reusable pending link or creates a new one.
// Repeated calls without an intervening completion return the same link.
func (s *Service) IssueLink(ctx context.Context, userID uint, in IssueLinkInput) (*IssuedLink, error) {
	repo := s.repo.WithContext(ctx)
	now := time.Now()

	user, err := repo.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.HasActivePremium(now) {
		return nil, ErrAlreadySubscribed
	}

	if s.locker != nil {
		if unlock, lockErr := s.locker.Lock(fmt.Sprintf("payment:issue:%d", userID)); lockErr == nil {
			defer unlock()
		} else {
			log.Warnf("issue lock unavailable for user %d: %v", userID, lockErr)
		}
	}

	existing, err := repo.GetPendingLinkByUser(userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil && existing.IsReusable(now) {
		return s.issuedLink(existing, in.ReturnURL, true), nil
	}

	linkID, err := generateLinkID()
	if err != nil {
		return nil, err
	}
	expiresAt := now.Add(linkTTL)
	link := &models.PaymentLink{
		LinkID:    linkID,
		UserID:    userID,
		Provider:  models.PaymentProviderOther, // updated to the actual provider on completion
		PlanType:  models.PaymentPlanMonthly,
		Amount:    s.price,
		Status:    models.PaymentLinkPending,
		ExpiresAt: &expiresAt,
	}
	if len(in.Metadata) > 0 {
		raw, err := json.Marshal(in.Metadata)
		if err != nil {
			return nil, err
		}
		link.Metadata = string(raw)
	}
	if err := repo.CreateLink(link); err != nil {
		return nil, err
	}

	return s.issuedLink(link, in.ReturnURL, false), nil
}

func (s *Service) issuedLink(link *models.PaymentLink, returnURL string, reused bool) *IssuedLink {
	var expiresAt time.Time
	if link.ExpiresAt != nil {
		expiresAt = *link.ExpiresAt
	}
	return &IssuedLink{
		LinkID:    link.LinkID,
		OrderID:   link.LinkID, // the link ID doubles as the provider order ID
		Amount:    link.Amount,
		ExpiresAt: expiresAt,
		Reused:    reused,
		PaymentParams: PaymentParams{
			UserID:    fmt.Sprintf("%d", link.UserID),
			OrderID:   link.LinkID,
			Amount:    fmt.Sprintf("%d", link.Amount),
			ReturnURL: returnURL,
		},
	}
}

// ProcessWebhook consumes one provider callback. It is safe to call
// concurrently and repeatedly with the same payload: replays of an
// already-completed link are acknowledged as no-ops.
//
// A non-nil error means an unexpected internal failure; the HTTP layer maps it
// to a retry-inducing 500. Business declines come back as a result with
// Success false and a nil error.
func (s *Service) ProcessWebhook(ctx context.Context, provider string, payload map[string]interface{}, rawPayload []byte, sourceIP string) (*WebhookResult, error) {
	repo := s.repo.WithContext(ctx)

	// Log first, unconditionally: the verbatim payload must be durable before
	// any interpretation, even if everything after this line fails.
	entry := &models.PaymentWebhook{
		Provider:  provider,
		Payload:   string(rawPayload),
		EventType: ExtractEventType(payload),
		Status:    models.WebhookReceived,
		SourceIP:  sourceIP,
	}
	if err := repo.CreateWebhookLog(entry); err != nil {
		return nil, err
	}

	result, err := s.reconcile(repo, entry, provider, payload)
	if err != nil {
		if markErr := repo.MarkWebhook(entry.ID, models.WebhookFailed, err.Error()); markErr != nil {
			log.Errorf("failed to record webhook error state for log %d: %v", entry.ID, markErr)
		}
		s.notifyOwner("Webhook processing error", fmt.Sprintf(
			"An error occurred while processing a payment webhook.\nProvider: %s\nError: %s\nPayload: %s",
			provider, err.Error(), excerpt(string(rawPayload), maxPayloadExcerpt)))
		return &WebhookResult{Success: false, Message: err.Error()}, err
	}
	return result, nil
}

func (s *Service) reconcile(repo Repository, entry *models.PaymentWebhook, provider string, payload map[string]interface{}) (*WebhookResult, error) {
	linkID, ok := ExtractLinkID(payload)
	if !ok {
		if err := repo.MarkWebhook(entry.ID, models.WebhookFailed, "No link ID in payload"); err != nil {
			return nil, err
		}
		return &WebhookResult{Success: false, Message: "No link ID in payload"}, nil
	}

	link, err := repo.GetLinkByLinkID(linkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Stale or forged callback; a handled outcome, not a fault.
			if markErr := repo.MarkWebhook(entry.ID, models.WebhookFailed, "Payment link not found"); markErr != nil {
				return nil, markErr
			}
			return &WebhookResult{Success: false, Message: "Payment link not found", LinkID: linkID}, nil
		}
		return nil, err
	}

	if err := repo.AttachWebhookLink(entry.ID, link.ID); err != nil {
		return nil, err
	}

	// Replays of a webhook the system already acted on must be no-ops. The
	// terminal completed status is the single authoritative guard.
	if link.Status == models.PaymentLinkCompleted {
		if err := repo.MarkWebhook(entry.ID, models.WebhookIgnored, "Already processed"); err != nil {
			return nil, err
		}
		return &WebhookResult{Success: true, Message: "Already processed", LinkID: linkID}, nil
	}

	now := time.Now()

	// A pending link past its expiry can no longer be completed. The
	// conditional update below repeats this guard in SQL to keep the window
	// closed under concurrent deliveries.
	if link.IsExpired(now) {
		if err := repo.MarkWebhook(entry.ID, models.WebhookFailed, "Payment link expired"); err != nil {
			return nil, err
		}
		return &WebhookResult{Success: false, Message: "Payment link expired", LinkID: linkID}, nil
	}

	if !IsSuccessOutcome(payload) {
		if _, err := repo.CancelLinkIfPending(linkID, provider); err != nil {
			return nil, err
		}
		if err := repo.MarkWebhook(entry.ID, models.WebhookProcessed, ""); err != nil {
			return nil, err
		}
		return &WebhookResult{Success: false, Message: "Payment failed", LinkID: linkID}, nil
	}

	var (
		user             *models.User
		premiumExpiresAt time.Time
		lostRace         bool
	)
	externalID := ExtractExternalPaymentID(payload)

	err = repo.Transaction(func(tx Repository) error {
		var txErr error
		user, txErr = tx.GetUserByID(link.UserID)
		if txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return txErr
		}

		// The conditional update closes the window between the status check
		// above and the write: only one concurrent delivery wins it.
		won, txErr := tx.CompleteLinkIfPending(linkID, provider, externalID, now)
		if txErr != nil {
			return txErr
		}
		if !won {
			lostRace = true
			return nil
		}

		premiumExpiresAt = nextPremiumExpiry(user.PremiumExpiresAt, now, 1)
		if txErr := tx.UpdateUserPlan(user.ID, models.PlanPremium, premiumExpiresAt); txErr != nil {
			return txErr
		}
		return tx.CreatePurchase(&models.PurchaseHistory{
			UserID:      link.UserID,
			Type:        models.PurchasePremiumSubscription,
			Amount:      link.Amount,
			Status:      models.PurchaseCompleted,
			PaymentID:   externalID,
			Description: fmt.Sprintf("Monthly subscription (%s)", provider),
		})
	})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Data-integrity anomaly: the link exists but its owner is gone.
			if markErr := repo.MarkWebhook(entry.ID, models.WebhookFailed, "User not found"); markErr != nil {
				return nil, markErr
			}
			s.notifyOwner("Webhook anomaly: user missing", fmt.Sprintf(
				"Payment link %s resolved but its owning user %d does not exist.\nProvider: %s",
				linkID, link.UserID, provider))
			return &WebhookResult{Success: false, Message: "User not found", LinkID: linkID}, nil
		}
		return nil, err
	}

	if lostRace {
		if err := repo.MarkWebhook(entry.ID, models.WebhookIgnored, "Already processed"); err != nil {
			return nil, err
		}
		return &WebhookResult{Success: true, Message: "Already processed", LinkID: linkID}, nil
	}

	if err := repo.MarkWebhook(entry.ID, models.WebhookProcessed, ""); err != nil {
		return nil, err
	}

	s.notifyOwner("New subscription payment completed", fmt.Sprintf(
		"User %s started a subscription.\nAmount: JPY %d\nProvider: %s\nLink ID: %s\nValid until: %s",
		userLabel(user), link.Amount, provider, linkID, premiumExpiresAt.Format(time.RFC3339)))

	return &WebhookResult{Success: true, Message: "Plan activated successfully", LinkID: linkID}, nil
}

// ManualActivate is the operator path for out-of-band payment confirmation.
// It shares the expiry arithmetic with webhook activation and deliberately
// never touches the webhook log.
func (s *Service) ManualActivate(ctx context.Context, admin usercontext.UserContext, in ManualActivationInput) (*ManualActivationResult, error) {
	if !admin.IsAdmin {
		return nil, ErrForbidden
	}

	months := in.Months
	if months <= 0 {
		months = 1
	}
	if months > 12 {
		return nil, ErrInvalidMonths
	}

	now := time.Now()
	var premiumExpiresAt time.Time

	err := s.repo.WithContext(ctx).Transaction(func(tx Repository) error {
		user, txErr := tx.GetUserByID(in.UserID)
		if txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return txErr
		}

		premiumExpiresAt = nextPremiumExpiry(user.PremiumExpiresAt, now, months)
		if txErr := tx.UpdateUserPlan(user.ID, models.PlanPremium, premiumExpiresAt); txErr != nil {
			return txErr
		}

		description := fmt.Sprintf("Manual activation (%d months) - admin: %s", months, adminLabel(admin))
		if strings.TrimSpace(in.Notes) != "" {
			description += " - " + strings.TrimSpace(in.Notes)
		}
		if txErr := tx.CreatePurchase(&models.PurchaseHistory{
			UserID:      in.UserID,
			Type:        models.PurchasePremiumSubscription,
			Amount:      s.price * months,
			Status:      models.PurchaseCompleted,
			Description: description,
		}); txErr != nil {
			return txErr
		}

		// Bridge a pending link back into the normal lifecycle so reporting
		// stays consistent with webhook-driven completions.
		if in.LinkID != "" {
			if _, txErr := tx.CompleteUserLinkIfPending(in.LinkID, in.UserID, models.PaymentProviderBankTransfer, now); txErr != nil {
				return txErr
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyOwner("Manual plan activation", fmt.Sprintf(
		"Premium plan manually activated for user %d.\nMonths: %d\nValid until: %s\nAdmin: %s%s",
		in.UserID, months, premiumExpiresAt.Format(time.RFC3339), adminLabel(admin), notesSuffix(in.Notes)))

	return &ManualActivationResult{PremiumExpiresAt: premiumExpiresAt, Months: months}, nil
}

// GetLinkStatus returns the caller's view of one of their own links.
func (s *Service) GetLinkStatus(ctx context.Context, userID uint, linkID string) (*LinkStatus, error) {
	link, err := s.repo.WithContext(ctx).GetLinkByLinkIDAndUser(linkID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return &LinkStatus{
		LinkID:      link.LinkID,
		Status:      link.Status,
		Amount:      link.Amount,
		ExpiresAt:   link.ExpiresAt,
		CompletedAt: link.CompletedAt,
		IsExpired:   link.IsExpired(time.Now()),
	}, nil
}

// GetPaymentHistory lists the caller's own links, newest first.
func (s *Service) GetPaymentHistory(ctx context.Context, userID uint, limit int) ([]HistoryEntry, error) {
	limit = clampLimit(limit, defaultHistoryLimit, maxHistoryLimit)
	links, err := s.repo.WithContext(ctx).ListLinksByUser(userID, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]HistoryEntry, len(links))
	for i, link := range links {
		entries[i] = HistoryEntry{
			LinkID:      link.LinkID,
			Amount:      link.Amount,
			Status:      link.Status,
			Provider:    link.Provider,
			CreatedAt:   link.CreatedAt,
			CompletedAt: link.CompletedAt,
		}
	}
	return entries, nil
}

// CancelPendingLink cancels the caller's own pending link. Only pending links
// may be cancelled.
func (s *Service) CancelPendingLink(ctx context.Context, userID uint, linkID string) error {
	repo := s.repo.WithContext(ctx)
	link, err := repo.GetLinkByLinkIDAndUser(linkID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLinkNotFound
		}
		return err
	}
	if link.Status != models.PaymentLinkPending {
		return ErrNotCancellable
	}
	cancelled, err := repo.CancelLinkIfPending(linkID, "")
	if err != nil {
		return err
	}
	if !cancelled {
		return ErrNotCancellable
	}
	return nil
}

// ListAllLinks is the admin listing with an optional status filter.
func (s *Service) ListAllLinks(ctx context.Context, admin usercontext.UserContext, filter ListLinksFilter) ([]models.PaymentLink, error) {
	if !admin.IsAdmin {
		return nil, ErrForbidden
	}
	filter.Limit = clampLimit(filter.Limit, defaultAdminLimit, maxAdminLimit)
	return s.repo.WithContext(ctx).ListLinks(filter)
}

// ListWebhookLogs is the admin view of the raw webhook audit trail.
func (s *Service) ListWebhookLogs(ctx context.Context, admin usercontext.UserContext, limit int) ([]models.PaymentWebhook, error) {
	if !admin.IsAdmin {
		return nil, ErrForbidden
	}
	return s.repo.WithContext(ctx).ListWebhookLogs(clampLimit(limit, defaultAdminLimit, maxAdminLimit))
}

func (s *Service) notifyOwner(title, content string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Owner(title, content)
}

// nextPremiumExpiry extends a still-valid expiry rather than resetting it, so
// a renewal arriving early adds a full period on top of remaining time.
func nextPremiumExpiry(current *time.Time, now time.Time, months int) time.Time {
	base := now
	if current != nil && current.After(now) {
		base = *current
	}
	return base.AddDate(0, months, 0)
}

// generateLinkID returns a 32-character random hex token.
func generateLinkID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

func excerpt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func userLabel(user *models.User) string {
	if user == nil {
		return "unknown"
	}
	if user.Name != "" {
		return user.Name
	}
	if user.Email != "" {
		return user.Email
	}
	return fmt.Sprintf("%d", user.ID)
}

func adminLabel(admin usercontext.UserContext) string {
	if admin.Username != "" {
		return admin.Username
	}
	return fmt.Sprintf("%d", admin.UserID)
}

func notesSuffix(notes string) string {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return ""
	}
	return "\nNotes: " + notes
}

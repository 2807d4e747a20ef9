package payment

import (
	"context"
	"time"

	"github.com/MikageWorks/UnseiPay/app/models"
	"gorm.io/gorm"
)

// Repository provides the DB operations used by the payment service.
type Repository interface {
	// WithContext returns a repository whose operations are bound to ctx, so
	// request deadlines propagate into the driver.
	WithContext(ctx context.Context) Repository
	// Transaction runs fn against a repository bound to one DB transaction.
	Transaction(fn func(Repository) error) error

	GetUserByID(id uint) (*models.User, error)
	UpdateUserPlan(userID uint, planType string, premiumExpiresAt time.Time) error

	CreateLink(link *models.PaymentLink) error
	GetLinkByLinkID(linkID string) (*models.PaymentLink, error)
	GetLinkByLinkIDAndUser(linkID string, userID uint) (*models.PaymentLink, error)
	GetPendingLinkByUser(userID uint) (*models.PaymentLink, error)
	// CompleteLinkIfPending flips a pending, unexpired link to completed in a
	// single conditional update and reports whether this call won the
	// transition.
	CompleteLinkIfPending(linkID, provider, externalPaymentID string, completedAt time.Time) (bool, error)
	// CompleteUserLinkIfPending is the admin-override variant scoped to the
	// link's owner.
	CompleteUserLinkIfPending(linkID string, userID uint, provider string, completedAt time.Time) (bool, error)
	// CancelLinkIfPending flips a pending link to cancelled; provider is
	// recorded when non-empty (declined webhook), left untouched otherwise.
	CancelLinkIfPending(linkID string, provider string) (bool, error)
	ListLinksByUser(userID uint, limit int) ([]models.PaymentLink, error)
	ListLinks(filter ListLinksFilter) ([]models.PaymentLink, error)

	// CreateWebhookLog inserts the audit row and populates its ID.
	CreateWebhookLog(entry *models.PaymentWebhook) error
	MarkWebhook(id uint, status, errorMessage string) error
	AttachWebhookLink(id uint, paymentLinkID uint) error
	ListWebhookLogs(limit int) ([]models.PaymentWebhook, error)

	CreatePurchase(entry *models.PurchaseHistory) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a payment repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) WithContext(ctx context.Context) Repository {
	return &gormRepository{db: r.db.WithContext(ctx)}
}

func (r *gormRepository) Transaction(fn func(Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}

func (r *gormRepository) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) UpdateUserPlan(userID uint, planType string, premiumExpiresAt time.Time) error {
	return r.db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"plan_type":          planType,
		"premium_expires_at": premiumExpiresAt,
	}).Error
}

func (r *gormRepository) CreateLink(link *models.PaymentLink) error {
	return r.db.Create(link).Error
}

func (r *gormRepository) GetLinkByLinkID(linkID string) (*models.PaymentLink, error) {
	var link models.PaymentLink
	if err := r.db.Where("link_id = ?", linkID).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *gormRepository) GetLinkByLinkIDAndUser(linkID string, userID uint) (*models.PaymentLink, error) {
	var link models.PaymentLink
	if err := r.db.Where("link_id = ? AND user_id = ?", linkID, userID).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *gormRepository) GetPendingLinkByUser(userID uint) (*models.PaymentLink, error) {
	var link models.PaymentLink
	err := r.db.Where("user_id = ? AND status = ?", userID, models.PaymentLinkPending).
		Order("created_at DESC").
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *gormRepository) CompleteLinkIfPending(linkID, provider, externalPaymentID string, completedAt time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":       models.PaymentLinkCompleted,
		"completed_at": completedAt,
		"provider":     provider,
	}
	if externalPaymentID != "" {
		updates["external_payment_id"] = externalPaymentID
	}
	tx := r.db.Model(&models.PaymentLink{}).
		Where("link_id = ? AND status = ? AND (expires_at IS NULL OR expires_at > ?)",
			linkID, models.PaymentLinkPending, completedAt).
		Updates(updates)
	return tx.RowsAffected > 0, tx.Error
}

func (r *gormRepository) CompleteUserLinkIfPending(linkID string, userID uint, provider string, completedAt time.Time) (bool, error) {
	tx := r.db.Model(&models.PaymentLink{}).
		Where("link_id = ? AND user_id = ? AND status = ?", linkID, userID, models.PaymentLinkPending).
		Updates(map[string]interface{}{
			"status":       models.PaymentLinkCompleted,
			"completed_at": completedAt,
			"provider":     provider,
		})
	return tx.RowsAffected > 0, tx.Error
}

func (r *gormRepository) CancelLinkIfPending(linkID string, provider string) (bool, error) {
	updates := map[string]interface{}{
		"status": models.PaymentLinkCancelled,
	}
	if provider != "" {
		updates["provider"] = provider
	}
	tx := r.db.Model(&models.PaymentLink{}).
		Where("link_id = ? AND status = ?", linkID, models.PaymentLinkPending).
		Updates(updates)
	return tx.RowsAffected > 0, tx.Error
}

func (r *gormRepository) ListLinksByUser(userID uint, limit int) ([]models.PaymentLink, error) {
	var links []models.PaymentLink
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&links).Error
	return links, err
}

func (r *gormRepository) ListLinks(filter ListLinksFilter) ([]models.PaymentLink, error) {
	query := r.db.Model(&models.PaymentLink{}).Preload("User")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	var links []models.PaymentLink
	err := query.Order("created_at DESC").Limit(filter.Limit).Find(&links).Error
	return links, err
}

func (r *gormRepository) CreateWebhookLog(entry *models.PaymentWebhook) error {
	return r.db.Create(entry).Error
}

func (r *gormRepository) MarkWebhook(id uint, status, errorMessage string) error {
	return r.db.Model(&models.PaymentWebhook{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":        status,
		"error_message": errorMessage,
	}).Error
}

func (r *gormRepository) AttachWebhookLink(id uint, paymentLinkID uint) error {
	return r.db.Model(&models.PaymentWebhook{}).Where("id = ?", id).
		Update("payment_link_id", paymentLinkID).Error
}

func (r *gormRepository) ListWebhookLogs(limit int) ([]models.PaymentWebhook, error) {
	var logs []models.PaymentWebhook
	err := r.db.Order("created_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

func (r *gormRepository) CreatePurchase(entry *models.PurchaseHistory) error {
	return r.db.Create(entry).Error
}

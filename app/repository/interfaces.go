package repository

import (
	"github.com/MikageWorks/UnseiPay/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	List(offset, limit int) ([]models.User, error)
	ListAdmins() ([]models.User, error)
	Count() (int64, error)
}

// NotificationRepository defines the interface for notification persistence
type NotificationRepository interface {
	Create(notification *models.Notification) error
	GetByUserID(userID uint, offset, limit int) ([]models.Notification, error)
	MarkRead(id uint) error
}

// Repositories holds all repository instances
type Repositories struct {
	User         UserRepository
	Notification NotificationRepository
}

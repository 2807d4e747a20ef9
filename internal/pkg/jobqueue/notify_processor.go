package jobqueue

import (
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/MikageWorks/UnseiPay/app/models"
	"github.com/MikageWorks/UnseiPay/app/repository"
	"github.com/MikageWorks/UnseiPay/internal/pkg/env"
	"github.com/MikageWorks/UnseiPay/internal/pkg/mail"
)

// processNotifyOwnerJob fans an owner notification out to the configured
// owner mailbox and to in-app notifications for every admin user.
func (q *Queue) processNotifyOwnerJob(job *Job) error {
	payload, err := NotifyOwnerPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid notify_owner payload: %w", err)
	}

	if ownerEmail := env.GetEnv("OWNER_EMAIL", ""); ownerEmail != "" {
		if err := mail.SendMail(ownerEmail, payload.Title, mail.PlainTextBody(payload.Content)); err != nil {
			// Mail failure is retryable; leave in-app delivery to the retry too
			return err
		}
	}

	factory := repository.GetGlobalFactory()
	if factory == nil {
		// In-app delivery is best-effort when the repo layer is not wired (tests, tooling)
		return nil
	}

	admins, err := factory.GetUserRepository().ListAdmins()
	if err != nil {
		return err
	}
	notificationRepo := factory.GetNotificationRepository()
	for _, admin := range admins {
		notification := &models.Notification{
			UserID:  admin.ID,
			Type:    models.NotificationTypePayment,
			Title:   payload.Title,
			Content: payload.Content,
		}
		if err := notificationRepo.Create(notification); err != nil {
			log.Errorf("[JobQueue] Failed to create notification for admin %d: %v", admin.ID, err)
		}
	}
	return nil
}

package notify

import (
	"github.com/gofiber/fiber/v2/log"

	"github.com/MikageWorks/UnseiPay/internal/pkg/jobqueue"
)

// OwnerNotifier dispatches owner notifications through the background job
// queue. Delivery is strictly best-effort: enqueue failures are logged and
// swallowed so they can never fail or delay a payment response.
type OwnerNotifier struct{}

// NewOwnerNotifier returns the queue-backed owner notifier.
func NewOwnerNotifier() *OwnerNotifier {
	return &OwnerNotifier{}
}

// Owner enqueues a notification to the site operator.
func (n *OwnerNotifier) Owner(title, content string) {
	payload := jobqueue.NotifyOwnerPayload{Title: title, Content: content}
	if _, err := jobqueue.GetManager().GetQueue().EnqueueJob(jobqueue.JobTypeNotifyOwner, payload.ToMap()); err != nil {
		log.Warnf("owner notification dropped (%s): %v", title, err)
	}
}

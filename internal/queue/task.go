package queue

import "github.com/wrlc/alma-item-checks/internal/domain"

// ItemTask is one webhook event awaiting the check engine. The item record
// travels on the task because Alma owns it; nothing durable exists on our
// side until a check produces a notification.
type ItemTask struct {
	EventID string
	Item    *domain.Item
}

// NotifyTask is the minimal data placed on the notify queue.
// Workers fetch the full Notification from the DB using the ID,
// keeping the queue lightweight and the domain data authoritative.
type NotifyTask struct {
	NotificationID string
	Priority       domain.Priority
}

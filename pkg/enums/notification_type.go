package enums

import "fmt"

// NotificationType categorizes back-office notifications.
type NotificationType string

const (
	NotificationTypeOrder NotificationType = "order"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeOrder,
}

// IsValid reports whether the value matches a known notification type.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw input into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}

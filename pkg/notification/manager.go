package notification

import "fmt"

// NotificationManager pairs a notifier with the registered notice templates
type NotificationManager struct {
	notifier  Notifier
	templates map[NoticeType]NoticeTemplate
}

// NewNotificationManager creates a manager around the given notifier
func NewNotificationManager(notifier Notifier) *NotificationManager {
	return &NotificationManager{
		notifier:  notifier,
		templates: make(map[NoticeType]NoticeTemplate),
	}
}

// RegisterNotice adds or replaces the template for a notice type
func (nm *NotificationManager) RegisterNotice(noticeType NoticeType, template NoticeTemplate) error {
	if noticeType == "" {
		return fmt.Errorf("notice type cannot be empty")
	}
	nm.templates[noticeType] = template
	return nil
}

// Send renders and delivers a notice using its registered template
func (nm *NotificationManager) Send(noticeType NoticeType, notification NotificationData) error {
	template, exists := nm.templates[noticeType]
	if !exists {
		return fmt.Errorf("no template registered for notice type: %s", noticeType)
	}
	return nm.notifier.Send(noticeType, notification, template)
}

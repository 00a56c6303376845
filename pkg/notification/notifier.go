package notification

// NoticeType identifies a kind of notice (e.g. email verification)
type NoticeType string

const (
	NoticeEmailVerification NoticeType = "email_verification"
)

// NotificationData carries the recipient and per-notice template data
type NotificationData struct {
	To   string            // Recipient address
	Data map[string]string // Template data (e.g. "Name", "Link")
}

// NoticeTemplate holds the subject and body templates of a notice
type NoticeTemplate struct {
	Subject string
	Text    string
	Html    string
}

// Notifier sends a rendered notice to a recipient
type Notifier interface {
	Send(noticeType NoticeType, notification NotificationData, template NoticeTemplate) error
}

// Package mail delivers account credential notifications.
package mail

import (
	"context"
	"fmt"

	"github.com/inkwell/backend/internal/models"
)

// Credentials is the login information sent to a newly created account.
type Credentials struct {
	To       string
	Email    string
	Password string
	Role     models.Role
}

// Notifier sends credential notifications. Callers treat a failure as a degraded
// success: the account exists, the message did not go out.
type Notifier interface {
	SendCredentials(ctx context.Context, c Credentials) error
}

// Message is a rendered email.
type Message struct {
	To      string
	Subject string
	Text    string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// CredentialsMessage renders the credentials email for c.
func CredentialsMessage(c Credentials) Message {
	subject := "Your Account Credentials"
	if c.Role == models.RoleBrand {
		subject = "Your Brand Account Credentials"
	}
	text := fmt.Sprintf(`Hello,

Your %s account has been successfully created.

Login Details:
Email: %s
Password: %s

For security reasons, please log in and change your password immediately.

If you did not expect this account, please contact the administrator.
`, accountLabel(c.Role), c.Email, c.Password)
	return Message{To: c.To, Subject: subject, Text: text}
}

func accountLabel(role models.Role) string {
	switch role {
	case models.RoleBrand:
		return "brand"
	case models.RoleAuthor:
		return "author"
	case models.RoleAdmin:
		return "administrator"
	}
	return "user"
}

package mail

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

// CommentPublishedMailer sends the one-time notice a comment author gets when
// a moderator publishes their comment.
type CommentPublishedMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewCommentPublishedMailer(host, port, username, password, from string) *CommentPublishedMailer {
	return &CommentPublishedMailer{
		host:     strings.TrimSpace(host),
		port:     strings.TrimSpace(port),
		username: username,
		password: password,
		from:     strings.TrimSpace(from),
	}
}

func (m *CommentPublishedMailer) SendCommentPublished(ctx context.Context, to, authorName, tourName, tourURL string) error {
	if m == nil {
		return errors.New("mailer not configured")
	}
	if m.host == "" || m.port == "" || m.from == "" {
		return errors.New("mailer missing configuration")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	greeting := "Hello"
	if strings.TrimSpace(authorName) != "" {
		greeting = "Hello " + strings.TrimSpace(authorName)
	}

	subject := "Your comment has been published"
	body := fmt.Sprintf("%s,\n\nYour comment on %q is now public.\n\nSee it here: %s\n", greeting, tourName, tourURL)

	message := strings.Builder{}
	message.WriteString(fmt.Sprintf("From: %s\r\n", m.from))
	message.WriteString(fmt.Sprintf("To: %s\r\n", to))
	message.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	message.WriteString("MIME-Version: 1.0\r\n")
	message.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	message.WriteString("Content-Transfer-Encoding: 7bit\r\n\r\n")
	message.WriteString(body)
	message.WriteString("\r\n")

	addr := net.JoinHostPort(m.host, m.port)
	var auth smtp.Auth
	if m.username != "" || m.password != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(message.String()))
}

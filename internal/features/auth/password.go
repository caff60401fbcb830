package auth

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/devlink-social/devlink/internal/config"
)

// resetTokenTTL is how long a password reset link stays valid
const resetTokenTTL = time.Hour

// HashPassword hashes a plaintext password with bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against its stored hash
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NewResetToken generates an opaque single-use token for password resets
func NewResetToken() string {
	return uuid.NewString()
}

// Mailer delivers transactional mail. The SMTP implementation is used in
// production; tests supply a recording fake.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer sends mail through a plain SMTP relay
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.MailFrom,
	}
}

func (m *SMTPMailer) Send(_ context.Context, to, subject, body string) error {
	msg := []byte("From: " + m.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := m.host + ":" + m.port
	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	return smtp.SendMail(addr, auth, m.from, []string{to}, msg)
}

// resetEmailBody builds the plain-text body for a password reset mail
func resetEmailBody(frontendURL, token string) string {
	return fmt.Sprintf(
		"Someone requested a password reset for your DevLink account.\n\n"+
			"Reset your password here: %s/reset-password?token=%s\n\n"+
			"The link expires in one hour. If you didn't request this, ignore this email.\n",
		frontendURL, token,
	)
}

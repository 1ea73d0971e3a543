package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"consultancy-portal/internal/portal/domain/model"
	"consultancy-portal/internal/portal/domain/repository"
	"consultancy-portal/internal/shared/logger"
)

var _ repository.Notifier = (*SMTPNotifier)(nil)

// SMTPNotifier mails admin notifications with the SMTP credentials from site settings.
type SMTPNotifier struct {
	logger logger.Logger
	now    func() time.Time
}

func NewSMTPNotifier(log logger.Logger) *SMTPNotifier {
	return &SMTPNotifier{logger: log.WithComponent("smtp"), now: time.Now}
}

// Notify sends one plain-text message to cfg.NotifyTo. Port 465 uses implicit TLS;
// otherwise STARTTLS is required when UseTLS is set.
func (n *SMTPNotifier) Notify(ctx context.Context, cfg model.EmailSettings, subject, body, replyTo string) error {
	if !cfg.Configured() {
		return fmt.Errorf("smtp is not configured")
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	tlsConfig := &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	if cfg.Port == 465 {
		conn = tls.Client(conn, tlsConfig)
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if cfg.UseTLS && cfg.Port != 465 {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			return fmt.Errorf("smtp server %s does not offer STARTTLS", cfg.Host)
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if cfg.Username != "" {
		if err := client.Auth(smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := client.Mail(cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := client.Rcpt(cfg.NotifyTo); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(n.message(cfg, subject, body, replyTo)); err != nil {
		w.Close()
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	if err := client.Quit(); err != nil {
		n.logger.WithContext(ctx).Debugf("smtp quit: %v", err)
	}
	n.logger.WithContext(ctx).Infof("notification sent to %s", cfg.NotifyTo)
	return nil
}

func (n *SMTPNotifier) message(cfg model.EmailSettings, subject, body, replyTo string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", cfg.NotifyTo)
	if replyTo = headerSafe(replyTo); replyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", replyTo)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", headerSafe(subject))
	fmt.Fprintf(&b, "Date: %s\r\n", n.now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(body, "\r\n", "\n"), "\n", "\r\n"))
	b.WriteString("\r\n")
	return []byte(b.String())
}

// headerSafe keeps user input from injecting extra headers.
func headerSafe(s string) string {
	return strings.TrimSpace(strings.NewReplacer("\r", " ", "\n", " ").Replace(s))
}

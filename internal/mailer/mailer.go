package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/wneessen/go-mail"
)

// Config holds SMTP credentials and message defaults.
type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	Subject  string `yaml:"subject"`
	Body     string `yaml:"body"`
	Debug    bool   `yaml:"debug"`
}

// ErrNoRecipients is returned when there is nobody to send the report to.
var ErrNoRecipients = errors.New("no recipients given")

// Sender delivers built messages. *mail.Client satisfies it.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Mailer sends attendance reports.
type Mailer struct {
	cfg  Config
	dial func(Config) (Sender, error)
}

// New returns a Mailer that submits through cfg's SMTP server with STARTTLS.
func New(cfg Config) *Mailer {
	return &Mailer{cfg: cfg, dial: newClient}
}

func newClient(cfg Config) (Sender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	if cfg.Debug {
		opts = append(opts, mail.WithDebugLog())
	}
	return mail.NewClient(cfg.Host, opts...)
}

// ParseRecipients splits a comma separated list, dropping blanks.
func ParseRecipients(input string) []string {
	var out []string
	for _, addr := range strings.Split(input, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// BuildMessage assembles the report email with the spreadsheet attached.
func (m *Mailer) BuildMessage(recipients []string, attachment string) (*mail.Msg, error) {
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}
	if _, err := os.Stat(attachment); err != nil {
		return nil, fmt.Errorf("attachment %s: %w", attachment, err)
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", m.cfg.From, err)
	}
	if err := msg.To(recipients...); err != nil {
		return nil, fmt.Errorf("invalid recipients: %w", err)
	}
	msg.Subject(m.cfg.Subject)
	msg.SetBodyString(mail.TypeTextPlain, m.cfg.Body)
	msg.AttachFile(attachment,
		mail.WithFileName(filepath.Base(attachment)),
		mail.WithFileContentType(mail.TypeAppOctetStream),
	)
	return msg, nil
}

// Send builds and delivers the report.
func (m *Mailer) Send(ctx context.Context, recipients []string, attachment string) error {
	msg, err := m.BuildMessage(recipients, attachment)
	if err != nil {
		return err
	}

	client, err := m.dial(m.cfg)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	slog.Debug("sending attendance report", "host", m.cfg.Host, "port", m.cfg.Port, "recipients", len(recipients))
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send attendance email: %w", err)
	}
	return nil
}

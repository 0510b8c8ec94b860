package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"mime"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"chapterevents/internal/domain"
)

// SESConfig holds configuration for AWS SES.
type SESConfig struct {
	Region             string
	AccessKeyID        string
	SecretAccessKey    string
	InsecureSkipVerify bool
}

// MailerConfig holds configuration for creating a mailer.
type MailerConfig struct {
	Provider    string
	FromAddress string
	FromName    string
	SES         SESConfig
}

// NewMailer creates a mailer from config. Provider "ses" uses AWS SES; "noop" or unknown uses a no-op mailer.
func NewMailer(config MailerConfig) (domain.Mailer, error) {
	switch config.Provider {
	case "ses":
		sesConfig := config.SES
		if config.SES.InsecureSkipVerify {
			log.Printf("[MAILER] WARNING: TLS certificate verification is disabled for SES. Use only in development.")
		}
		httpClient := &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: sesConfig.InsecureSkipVerify,
					MinVersion:         tls.VersionTLS12,
				},
			},
		}
		awsCfg := aws.Config{
			Region: sesConfig.Region,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(
					sesConfig.AccessKeyID,
					sesConfig.SecretAccessKey,
					"",
				),
			),
			HTTPClient: httpClient,
		}
		client := ses.NewFromConfig(awsCfg)
		return &sesMailer{
			client:      client,
			fromAddress: config.FromAddress,
			fromName:    config.FromName,
		}, nil
	case "noop":
		return &noopMailer{}, nil
	default:
		log.Printf("[MAILER] Unknown email provider %q, using noop", config.Provider)
		return &noopMailer{}, nil
	}
}

type sesMailer struct {
	client      *ses.Client
	fromAddress string
	fromName    string
}

func (s *sesMailer) source() string {
	if s.fromName != "" {
		return fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)
	}
	return s.fromAddress
}

func (s *sesMailer) Send(to []string, subject, html, text string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(s.source()),
		Destination: &types.Destination{
			ToAddresses: to,
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}
	if html != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(html),
			Charset: aws.String("UTF-8"),
		}
	}
	if text != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(text),
			Charset: aws.String("UTF-8"),
		}
	}
	ctx := context.Background()
	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email via SES: %w", err)
	}
	log.Printf("[MAILER] Email sent via SES. MessageID: %s", aws.ToString(result.MessageId))
	return nil
}

// SendWithICal attaches the iCalendar payload, which requires a raw MIME
// message on SES.
func (s *sesMailer) SendWithICal(to []string, subject, html, text, ical string) error {
	raw := buildMIMEMessage(s.source(), to, subject, html, text, ical)
	ctx := context.Background()
	result, err := s.client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		Source:       aws.String(s.source()),
		Destinations: to,
		RawMessage:   &types.RawMessage{Data: raw},
	})
	if err != nil {
		return fmt.Errorf("failed to send raw email via SES: %w", err)
	}
	log.Printf("[MAILER] Email with calendar attachment sent via SES. MessageID: %s", aws.ToString(result.MessageId))
	return nil
}

// buildMIMEMessage assembles a multipart/mixed message with an alternative
// text/html body part and an invite.ics attachment.
func buildMIMEMessage(from string, to []string, subject, html, text, ical string) []byte {
	const mixedBoundary = "mixed-chapterevents"
	const altBoundary = "alt-chapterevents"

	var b strings.Builder
	write := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\r\n", args...)
	}

	write("From: %s", from)
	write("To: %s", strings.Join(to, ", "))
	write("Subject: %s", mime.QEncoding.Encode("utf-8", subject))
	write("MIME-Version: 1.0")
	write("Content-Type: multipart/mixed; boundary=%q", mixedBoundary)
	write("")

	write("--%s", mixedBoundary)
	write("Content-Type: multipart/alternative; boundary=%q", altBoundary)
	write("")
	if text != "" {
		write("--%s", altBoundary)
		write("Content-Type: text/plain; charset=UTF-8")
		write("")
		write("%s", text)
	}
	if html != "" {
		write("--%s", altBoundary)
		write("Content-Type: text/html; charset=UTF-8")
		write("")
		write("%s", html)
	}
	write("--%s--", altBoundary)
	write("")

	write("--%s", mixedBoundary)
	write("Content-Type: text/calendar; method=PUBLISH; charset=UTF-8")
	write("Content-Disposition: attachment; filename=invite.ics")
	write("")
	write("%s", ical)
	write("--%s--", mixedBoundary)

	return []byte(b.String())
}

type noopMailer struct{}

func (n *noopMailer) Send(to []string, subject, html, text string) error {
	log.Println("[MAILER] Email would be sent (noop)", "to", strings.Join(to, ","), "subject", subject)
	return nil
}

func (n *noopMailer) SendWithICal(to []string, subject, html, text, ical string) error {
	log.Println("[MAILER] Email with calendar attachment would be sent (noop)", "to", strings.Join(to, ","), "subject", subject)
	return nil
}

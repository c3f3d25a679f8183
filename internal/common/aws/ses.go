// internal/common/aws/ses.go
package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

var ErrMissingRecipient = errors.New("email has no recipient")

// SESService is the subset of the SES client used here; tests supply a mock.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Email is one outgoing message. Text falls back to HTML when empty.
type Email struct {
	From    string
	To      string
	Subject string
	HTML    string
	Text    string
}

type Mailer struct {
	client SESService
}

func NewMailer(client SESService) *Mailer {
	return &Mailer{client: client}
}

// NewSESClient loads the default credential chain for region.
func NewSESClient(ctx context.Context, region string) (*ses.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return ses.NewFromConfig(cfg), nil
}

// Send delivers the email and returns the SES message id.
func (m *Mailer) Send(ctx context.Context, email Email) (string, error) {
	if email.To == "" {
		return "", ErrMissingRecipient
	}

	out, err := m.client.SendEmail(ctx, BuildSendEmailInput(email))
	if err != nil {
		return "", fmt.Errorf("ses send to %s: %w", email.To, err)
	}
	return aws.ToString(out.MessageId), nil
}

func BuildSendEmailInput(email Email) *ses.SendEmailInput {
	text := email.Text
	if text == "" {
		text = email.HTML
	}
	return &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{email.To},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(email.Subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(text), Charset: aws.String("UTF-8")},
				Html: &types.Content{Data: aws.String(email.HTML), Charset: aws.String("UTF-8")},
			},
		},
		Source: aws.String(email.From),
	}
}

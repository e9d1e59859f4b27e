package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// sesAPI is the part of the SES v2 client the notifier uses.
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESNotifier envia e-mails via AWS SES v2.
type SESNotifier struct {
	client sesAPI
	sender string
}

// NewSESNotifier loads the default AWS credential chain for region.
func NewSESNotifier(ctx context.Context, region, sender string) (*SESNotifier, error) {
	if region == "" || sender == "" {
		return nil, errors.New("missing AWS_REGION or EMAIL_FROM")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config for SES: %w", err)
	}
	return &SESNotifier{client: sesv2.NewFromConfig(cfg), sender: sender}, nil
}

func (s *SESNotifier) Send(ctx context.Context, msg Message) error {
	if s.client == nil {
		return errors.New("SES client not initialized")
	}

	body := &types.Body{
		Text: &types.Content{Data: aws.String(msg.BodyText), Charset: aws.String("UTF-8")},
	}
	if msg.BodyHTML != "" {
		body.Html = &types.Content{Data: aws.String(msg.BodyHTML), Charset: aws.String("UTF-8")}
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.sender),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Body:    body,
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email via SES: %w", err)
	}
	return nil
}

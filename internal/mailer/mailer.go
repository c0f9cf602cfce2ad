// Package mailer sends templated messages to candidates through the Gmail
// API. Authorization is an explicit capability: callers build an
// Authorizer, walk the user through the authorization-code flow, and only
// then construct a sending Client.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/talentsift/resume-screener/internal/screening"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// ErrNotAuthorized is returned when a send is attempted before the
// authorization flow has completed.
var ErrNotAuthorized = errors.New("mail sending is not authorized")

const gmailUser = "me"

// messageSender posts one raw base64url-encoded MIME message.
type messageSender interface {
	SendRaw(ctx context.Context, raw string) error
}

type gmailSender struct {
	service *gmail.Service
}

func (s *gmailSender) SendRaw(ctx context.Context, raw string) error {
	_, err := s.service.Users.Messages.Send(gmailUser, &gmail.Message{Raw: raw}).Context(ctx).Do()
	return err
}

// Client sends candidate emails over an authorized Gmail service.
type Client struct {
	sender messageSender
	logger *zap.Logger
}

// NewClient builds a sending client from an authorized token.
func NewClient(ctx context.Context, auth *Authorizer, token *oauth2.Token, log *zap.Logger) (*Client, error) {
	if auth == nil || token == nil {
		return nil, ErrNotAuthorized
	}
	if log == nil {
		log = zap.NewNop()
	}

	service, err := gmail.NewService(ctx, option.WithHTTPClient(auth.httpClient(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}

	return &Client{sender: &gmailSender{service: service}, logger: log}, nil
}

// Send delivers one text/plain message to a single recipient.
func (c *Client) Send(ctx context.Context, to, subject, body string) error {
	if c == nil || c.sender == nil {
		return ErrNotAuthorized
	}

	to = strings.TrimSpace(to)
	if to == "" {
		return errors.New("recipient address is required")
	}

	return c.sender.SendRaw(ctx, EncodeMessage(to, subject, body))
}

// Summary reports how a batch send went: Sent out of Attempted, where
// Attempted counts targets that had an email address at all.
type Summary struct {
	Sent      int
	Attempted int
}

// SendBatch sends the message to every record, or only to the good
// matches. Records without an email address are skipped silently; a
// failure for one recipient is logged and does not stop the rest.
func (c *Client) SendBatch(ctx context.Context, records []screening.Record, matchesOnly bool, subject, body string) Summary {
	var summary Summary

	for _, record := range Targets(records, matchesOnly) {
		if record.Contact.Email == "" {
			continue
		}

		summary.Attempted++
		if err := c.Send(ctx, record.Contact.Email, subject, body); err != nil {
			c.logger.Warn("sending email failed",
				zap.String("file", record.File),
				zap.String("recipient", record.Contact.Email),
				zap.Error(err),
			)
			continue
		}

		summary.Sent++
		c.logger.Info("email sent",
			zap.String("file", record.File),
			zap.String("recipient", record.Contact.Email),
		)
	}

	return summary
}

// Targets selects the records to notify: all of them, or only those the
// analysis marked as a match.
func Targets(records []screening.Record, matchesOnly bool) []screening.Record {
	if !matchesOnly {
		return records
	}

	matches := make([]screening.Record, 0, len(records))
	for _, record := range records {
		if record.Analysis.IsMatch {
			matches = append(matches, record)
		}
	}
	return matches
}

package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// ErrSendFailure indicates the SMS provider rejected or failed the send.
var ErrSendFailure = errors.New("sms provider send failed")

// Provider delivers SMS messages to a downstream carrier network.
type Provider interface {
	Send(ctx context.Context, to, body string) (providerMessageID string, err error)
}

// TwilioProvider relays messages through the Twilio Programmable Messaging API.
type TwilioProvider struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioProvider builds a provider authenticated with the account SID and
// auth token.
func NewTwilioProvider(accountSID, authToken, from string) *TwilioProvider {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioProvider{client: client, from: from}
}

// Send submits the message and returns Twilio's message SID.
func (p *TwilioProvider) Send(_ context.Context, to, body string) (string, error) {
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(p.from)
	params.SetBody(body)

	resp, err := p.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSendFailure, err)
	}
	if resp.Sid == nil {
		return "", fmt.Errorf("%w: no message sid returned", ErrSendFailure)
	}
	return *resp.Sid, nil
}

// LoggerProvider is a development stand-in that writes sends to the logger
// instead of a carrier.
type LoggerProvider struct {
	logger *slog.Logger
}

// NewLoggerProvider constructs the logging provider stub.
func NewLoggerProvider(logger *slog.Logger) *LoggerProvider {
	return &LoggerProvider{logger: logger}
}

// Send logs the message and fabricates a message id.
func (p *LoggerProvider) Send(_ context.Context, to, body string) (string, error) {
	id := "local-" + uuid.NewString()
	if p != nil && p.logger != nil {
		p.logger.Info("sms send (logger provider)", "to", to, "body", body, "message_id", id)
	}
	return id, nil
}

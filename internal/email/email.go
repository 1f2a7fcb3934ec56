// Package email is the outbound delivery gateway. A Sender makes exactly one
// attempt per call and reports the outcome as a SendResult instead of an error.
package email

import "context"

// ErrorType classifies a failed delivery attempt.
type ErrorType int

const (
	None ErrorType = iota
	AuthenticationFailed
	SmtpConnectionFailed
	Timeout
	RecipientRejected
	InvalidRecipientAddress
	ConfigurationError
	SmtpSendFailed
	Unknown
)

var errorTypeNames = map[ErrorType]string{
	None:                    "None",
	AuthenticationFailed:    "AuthenticationFailed",
	SmtpConnectionFailed:    "SmtpConnectionFailed",
	Timeout:                 "Timeout",
	RecipientRejected:       "RecipientRejected",
	InvalidRecipientAddress: "InvalidRecipientAddress",
	ConfigurationError:      "ConfigurationError",
	SmtpSendFailed:          "SmtpSendFailed",
	Unknown:                 "Unknown",
}

func (t ErrorType) String() string {
	if name, ok := errorTypeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// SendResult is the outcome of one delivery attempt.
type SendResult struct {
	Success      bool
	ErrorType    ErrorType
	ErrorMessage string
	// ProviderMessage is the server's own reply text when one was received.
	ProviderMessage string
}

// Succeeded returns a successful result.
func Succeeded() SendResult {
	return SendResult{Success: true, ErrorType: None}
}

// Failed returns a failed result of the given type.
func Failed(t ErrorType, message, providerMessage string) SendResult {
	return SendResult{ErrorType: t, ErrorMessage: message, ProviderMessage: providerMessage}
}

// Detail is the most specific message available: the provider reply, else the error message.
func (r SendResult) Detail() string {
	if r.ProviderMessage != "" {
		return r.ProviderMessage
	}
	return r.ErrorMessage
}

// Sender delivers a single HTML message.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) SendResult
}

// RemediationHint maps a failure type to operator advice.
func RemediationHint(t ErrorType) string {
	switch t {
	case AuthenticationFailed:
		return "Check SMTP Username/Password (App Password if using Gmail/Office 365 with MFA) and allow SMTP AUTH."
	case SmtpConnectionFailed:
		return "Verify SMTP Host/Port/TLS and that outbound port 587 is open."
	case Timeout:
		return "SMTP timed out. Try again or check network connectivity/firewall."
	case RecipientRejected:
		return "Recipient address may not exist or is blocked. Verify the email address."
	case InvalidRecipientAddress:
		return "The recipient email format is invalid."
	case ConfigurationError:
		return "SMTP settings (Host/Port/FromAddress) are incomplete."
	case SmtpSendFailed:
		return "SMTP send failed. Check SPF/DKIM/DMARC and mail server policies."
	default:
		return "Unknown error. Check logs and SMTP server status."
	}
}

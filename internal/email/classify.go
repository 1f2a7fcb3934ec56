package email

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/textproto"
	"strings"

	mail "gopkg.in/mail.v2"
)

// Classify turns an SMTP client error into a failed SendResult.
func Classify(err error) SendResult {
	if err == nil {
		return Succeeded()
	}
	msg := err.Error()

	if errors.Is(err, context.DeadlineExceeded) {
		return Failed(Timeout, msg, "")
	}

	cause := err
	var sendErr *mail.SendError
	if errors.As(err, &sendErr) && sendErr.Cause != nil {
		cause = sendErr.Cause
	}

	var protoErr *textproto.Error
	if errors.As(cause, &protoErr) {
		provider := fmt.Sprintf("%d %s", protoErr.Code, protoErr.Msg)
		switch {
		case protoErr.Code == 530 || protoErr.Code == 534 || protoErr.Code == 535:
			return Failed(AuthenticationFailed, msg, provider)
		case protoErr.Code >= 550 && protoErr.Code <= 553:
			return Failed(RecipientRejected, msg, provider)
		default:
			return Failed(SmtpSendFailed, msg, provider)
		}
	}

	var netErr net.Error
	if errors.As(cause, &netErr) {
		if netErr.Timeout() {
			return Failed(Timeout, msg, "")
		}
		return Failed(SmtpConnectionFailed, msg, "")
	}

	if isTLSError(cause) {
		return Failed(SmtpConnectionFailed, msg, "")
	}
	if isAuthMessage(cause.Error()) {
		return Failed(AuthenticationFailed, msg, "")
	}
	if sendErr != nil {
		return Failed(SmtpSendFailed, msg, "")
	}
	return Failed(Unknown, msg, "")
}

// net/smtp's PLAIN auth refuses some setups client-side without a reply code.
func isAuthMessage(s string) bool {
	s = strings.ToLower(s)
	return strings.Contains(s, "unencrypted connection") ||
		strings.Contains(s, "wrong host name") ||
		strings.Contains(s, "authentication") ||
		strings.Contains(s, "auth failed")
}

// Handshake and certificate failures during STARTTLS or implicit TLS.
func isTLSError(err error) bool {
	var (
		verifyErr    *tls.CertificateVerificationError
		recordErr    tls.RecordHeaderError
		authorityErr x509.UnknownAuthorityError
		hostErr      x509.HostnameError
		invalidErr   x509.CertificateInvalidError
	)
	return errors.As(err, &verifyErr) ||
		errors.As(err, &recordErr) ||
		errors.As(err, &authorityErr) ||
		errors.As(err, &hostErr) ||
		errors.As(err, &invalidErr)
}

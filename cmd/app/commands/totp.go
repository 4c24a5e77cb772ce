package commands

import (
	"errors"
	"fmt"
	"io"
	"time"

	totpService "github.com/allisson/teamvault/internal/totp/service"
)

// ErrTOTPSecretNotConfigured is returned when the seed is empty or too short to produce a code.
var ErrTOTPSecretNotConfigured = errors.New("totp secret is empty or too short")

// RunTOTP prints the current one-time code for a base32 seed.
func RunTOTP(writer io.Writer, secret string, now time.Time) error {
	code := totpService.CurrentCode(secret, now)
	if !code.Configured() {
		return ErrTOTPSecretNotConfigured
	}

	_, _ = fmt.Fprintf(writer, "%s (%ds remaining)\n", code.Code, code.SecondsRemaining)
	return nil
}

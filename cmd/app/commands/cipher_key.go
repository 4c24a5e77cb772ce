package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	cryptoService "github.com/allisson/teamvault/internal/crypto/service"
)

// RunCreateCipherKey generates a new process cipher key and prints the environment lines needed to
// use it. With kmsKeyURI set the key is wrapped by the KMS keeper before it is printed.
func RunCreateCipherKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	kmsKeyURI string,
) error {
	logger.Info("generating new cipher key", slog.Bool("kms", kmsKeyURI != ""))

	encoded, err := cryptoService.GenerateCipherKey(ctx, kmsService, kmsKeyURI)
	if err != nil {
		return fmt.Errorf("failed to generate cipher key: %w", err)
	}

	_, _ = fmt.Fprintln(writer, "# Add these environment variables to your .env file")
	_, _ = fmt.Fprintf(writer, "CIPHER_KEY=%s\n", encoded)
	if kmsKeyURI != "" {
		_, _ = fmt.Fprintf(writer, "KMS_KEY_URI=%s\n", kmsKeyURI)
	}

	logger.Info("cipher key generated successfully")
	return nil
}

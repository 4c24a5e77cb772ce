package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	historyUseCase "github.com/allisson/teamvault/internal/history/usecase"
)

type verifyHistoryOutput struct {
	Total   int         `json:"total"`
	Valid   int         `json:"valid"`
	Invalid []uuid.UUID `json:"invalid"`
	Passed  bool        `json:"passed"`
}

// RunVerifyHistory checks the signature of every history entry, or only those of itemID when it
// is not uuid.Nil. It returns an error when any entry fails verification.
func RunVerifyHistory(
	ctx context.Context,
	auditLog historyUseCase.AuditLog,
	logger *slog.Logger,
	writer io.Writer,
	itemID uuid.UUID,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("verifying history signatures", slog.String("item_id", itemID.String()))

	report, err := auditLog.Verify(ctx, itemID)
	if err != nil {
		return fmt.Errorf("failed to verify history: %w", err)
	}

	out := verifyHistoryOutput{
		Total:   report.Total,
		Valid:   report.Valid,
		Invalid: report.Invalid,
		Passed:  len(report.Invalid) == 0,
	}
	if out.Invalid == nil {
		out.Invalid = []uuid.UUID{}
	}

	if format == "json" {
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(out); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
	} else {
		writeVerifyHistoryText(writer, out)
	}

	if !out.Passed {
		logger.Error("history verification failed", slog.Int("invalid", len(out.Invalid)))
		return fmt.Errorf("history verification failed: %d invalid entries", len(out.Invalid))
	}

	logger.Info("history verification passed", slog.Int("total", out.Total))
	return nil
}

func writeVerifyHistoryText(writer io.Writer, out verifyHistoryOutput) {
	_, _ = fmt.Fprintln(writer, "History Verification Report")
	_, _ = fmt.Fprintln(writer, "===========================")
	_, _ = fmt.Fprintf(writer, "Total entries:   %d\n", out.Total)
	_, _ = fmt.Fprintf(writer, "Valid entries:   %d\n", out.Valid)
	_, _ = fmt.Fprintf(writer, "Invalid entries: %d\n", len(out.Invalid))

	if len(out.Invalid) > 0 {
		_, _ = fmt.Fprintln(writer, "\nInvalid entry IDs:")
		for _, id := range out.Invalid {
			_, _ = fmt.Fprintf(writer, "  - %s\n", id)
		}
		_, _ = fmt.Fprintln(writer, "\nStatus: FAILED")
		return
	}

	_, _ = fmt.Fprintln(writer, "\nStatus: PASSED")
}

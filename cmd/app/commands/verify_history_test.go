package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	historyUseCase "github.com/allisson/teamvault/internal/history/usecase"
	historyMocks "github.com/allisson/teamvault/internal/history/usecase/mocks"
)

func TestRunVerifyHistory(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("all-valid-text", func(t *testing.T) {
		auditLog := &historyMocks.MockAuditLog{}
		auditLog.On("Verify", ctx, uuid.Nil).Return(&historyUseCase.VerifyReport{Total: 4, Valid: 4}, nil)

		var out bytes.Buffer
		err := RunVerifyHistory(ctx, auditLog, logger, &out, uuid.Nil, "text")
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Total entries:   4")
		assert.Contains(t, out.String(), "Status: PASSED")
		auditLog.AssertExpectations(t)
	})

	t.Run("invalid-entries-json", func(t *testing.T) {
		itemID := uuid.Must(uuid.NewV7())
		badID := uuid.Must(uuid.NewV7())
		auditLog := &historyMocks.MockAuditLog{}
		auditLog.On("Verify", ctx, itemID).Return(&historyUseCase.VerifyReport{
			Total:   2,
			Valid:   1,
			Invalid: []uuid.UUID{badID},
		}, nil)

		var out bytes.Buffer
		err := RunVerifyHistory(ctx, auditLog, logger, &out, itemID, "json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 invalid entries")

		var decoded verifyHistoryOutput
		require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
		assert.False(t, decoded.Passed)
		assert.Equal(t, []uuid.UUID{badID}, decoded.Invalid)
	})

	t.Run("verify-error", func(t *testing.T) {
		auditLog := &historyMocks.MockAuditLog{}
		auditLog.On("Verify", ctx, uuid.Nil).Return(nil, errors.New("db down"))

		err := RunVerifyHistory(ctx, auditLog, logger, io.Discard, uuid.Nil, "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db down")
	})

	t.Run("invalid-format", func(t *testing.T) {
		err := RunVerifyHistory(ctx, &historyMocks.MockAuditLog{}, logger, io.Discard, uuid.Nil, "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid format")
	})
}

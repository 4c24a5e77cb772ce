package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	historyDomain "github.com/allisson/teamvault/internal/history/domain"
)

// Signer authenticates history entries with HMAC-SHA256 so tampering with stored rows can be
// detected. The key is a dedicated subkey, never the encryption key.
type Signer interface {
	Sign(entry *historyDomain.HistoryEntry) ([]byte, error)
	Verify(entry *historyDomain.HistoryEntry) (bool, error)
}

type hmacSigner struct {
	key []byte
}

// NewSigner creates a Signer over key.
func NewSigner(key []byte) Signer {
	buf := make([]byte, len(key))
	copy(buf, key)
	return &hmacSigner{key: buf}
}

// Sign returns the MAC of the canonical encoding of entry. The Signature field is ignored.
func (s *hmacSigner) Sign(entry *historyDomain.HistoryEntry) ([]byte, error) {
	canonical, err := canonicalize(entry)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha256.New, s.key)
	mac.Write(canonical)
	return mac.Sum(nil), nil
}

// Verify reports whether entry.Signature matches its contents.
func (s *hmacSigner) Verify(entry *historyDomain.HistoryEntry) (bool, error) {
	if len(entry.Signature) == 0 {
		return false, nil
	}

	expected, err := s.Sign(entry)
	if err != nil {
		return false, err
	}
	return hmac.Equal(expected, entry.Signature), nil
}

// canonicalize encodes id || item_id || action || performed_by || changes || created_at with
// length prefixes on the variable fields.
func canonicalize(entry *historyDomain.HistoryEntry) ([]byte, error) {
	buf := make([]byte, 0, 256)

	buf = append(buf, entry.ID[:]...)
	buf = append(buf, entry.ItemID[:]...)
	buf = appendLengthPrefixed(buf, []byte(entry.Action))
	buf = append(buf, entry.PerformedBy[:]...)

	changes := entry.Changes
	if changes == nil {
		changes = []historyDomain.Change{}
	}
	encoded, err := json.Marshal(changes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal changes: %w", err)
	}
	buf = appendLengthPrefixed(buf, encoded)

	buf = binary.BigEndian.AppendUint64(buf, uint64(entry.CreatedAt.UTC().UnixMicro()))

	return buf, nil
}

func appendLengthPrefixed(buf, data []byte) []byte {
	if len(data) > math.MaxUint32 {
		panic("history field exceeds 4GB")
	}
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}

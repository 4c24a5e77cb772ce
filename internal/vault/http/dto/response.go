package dto

import (
	"time"

	accessDomain "github.com/allisson/teamvault/internal/access/domain"
	historyDomain "github.com/allisson/teamvault/internal/history/domain"
	totpDomain "github.com/allisson/teamvault/internal/totp/domain"
	vaultDomain "github.com/allisson/teamvault/internal/vault/domain"
)

// ItemResponse represents a vault item in API responses. Password and totp_secret hold
// plaintext only when revealed is true; otherwise a set secret reads "<redacted>".
type ItemResponse struct {
	ID               string    `json:"id"`
	LoginKind        string    `json:"login_kind"`
	Username         string    `json:"username"`
	Password         string    `json:"password"`
	TOTPSecret       string    `json:"totp_secret"`
	WebsiteURL       string    `json:"website_url"`
	Notes            string    `json:"notes"`
	LinkedAccountRef string    `json:"linked_account_ref"`
	FolderRef        *string   `json:"folder_ref"`
	OwnerID          string    `json:"owner_id"`
	EffectiveLevel   string    `json:"effective_level"`
	Revealed         bool      `json:"revealed"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// MapItemToResponse converts an item view to an API response.
func MapItemToResponse(view *vaultDomain.ItemView) ItemResponse {
	response := ItemResponse{
		ID:               view.ID.String(),
		LoginKind:        string(view.Fields.LoginKind),
		Username:         view.Fields.Username,
		Password:         view.Fields.Password,
		TOTPSecret:       view.Fields.TOTPSecret,
		WebsiteURL:       view.Fields.WebsiteURL,
		Notes:            view.Fields.Notes,
		LinkedAccountRef: view.Fields.LinkedAccountRef,
		OwnerID:          view.OwnerID.String(),
		EffectiveLevel:   string(view.EffectiveLevel),
		Revealed:         view.Revealed,
		CreatedAt:        view.CreatedAt,
		UpdatedAt:        view.UpdatedAt,
	}
	if view.Fields.FolderRef != nil {
		folder := view.Fields.FolderRef.String()
		response.FolderRef = &folder
	}
	return response
}

// ListItemsResponse represents a page of items.
type ListItemsResponse struct {
	Data []ItemResponse `json:"data"`
}

// MapItemsToListResponse converts item views to a list response.
func MapItemsToListResponse(views []*vaultDomain.ItemView) ListItemsResponse {
	data := make([]ItemResponse, 0, len(views))
	for _, view := range views {
		data = append(data, MapItemToResponse(view))
	}
	return ListItemsResponse{Data: data}
}

// TOTPResponse is the current one-time code. Configured is false, and the code empty, when the
// item holds no usable seed.
type TOTPResponse struct {
	Configured       bool   `json:"configured"`
	Code             string `json:"code,omitempty"`
	SecondsRemaining int    `json:"seconds_remaining,omitempty"`
}

// MapCodeToResponse converts a code to an API response.
func MapCodeToResponse(code *totpDomain.Code) TOTPResponse {
	return TOTPResponse{
		Configured:       code.Configured(),
		Code:             code.Code,
		SecondsRemaining: code.SecondsRemaining,
	}
}

// GrantResponse represents an access grant.
type GrantResponse struct {
	ItemID     string    `json:"item_id"`
	TargetType string    `json:"target_type"`
	TargetID   string    `json:"target_id"`
	Level      string    `json:"level"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MapGrantToResponse converts a grant to an API response.
func MapGrantToResponse(grant *accessDomain.Grant) GrantResponse {
	return GrantResponse{
		ItemID:     grant.ItemID.String(),
		TargetType: string(grant.TargetType),
		TargetID:   grant.TargetID.String(),
		Level:      string(grant.Level),
		CreatedAt:  grant.CreatedAt,
		UpdatedAt:  grant.UpdatedAt,
	}
}

// ListGrantsResponse represents every grant on an item.
type ListGrantsResponse struct {
	Data []GrantResponse `json:"data"`
}

// MapGrantsToListResponse converts grants to a list response.
func MapGrantsToListResponse(grants []*accessDomain.Grant) ListGrantsResponse {
	data := make([]GrantResponse, 0, len(grants))
	for _, grant := range grants {
		data = append(data, MapGrantToResponse(grant))
	}
	return ListGrantsResponse{Data: data}
}

// HistoryEntryResponse represents one history entry. The signature is not exposed.
type HistoryEntryResponse struct {
	ID          string                 `json:"id"`
	ItemID      string                 `json:"item_id"`
	Action      string                 `json:"action"`
	PerformedBy string                 `json:"performed_by"`
	Changes     []historyDomain.Change `json:"changes"`
	CreatedAt   time.Time              `json:"created_at"`
}

// ListHistoryResponse represents an item's history, oldest first.
type ListHistoryResponse struct {
	Data []HistoryEntryResponse `json:"data"`
}

// MapHistoryToListResponse converts history entries to a list response.
func MapHistoryToListResponse(entries []*historyDomain.HistoryEntry) ListHistoryResponse {
	data := make([]HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		changes := entry.Changes
		if changes == nil {
			changes = []historyDomain.Change{}
		}
		data = append(data, HistoryEntryResponse{
			ID:          entry.ID.String(),
			ItemID:      entry.ItemID.String(),
			Action:      string(entry.Action),
			PerformedBy: entry.PerformedBy.String(),
			Changes:     changes,
			CreatedAt:   entry.CreatedAt,
		})
	}
	return ListHistoryResponse{Data: data}
}

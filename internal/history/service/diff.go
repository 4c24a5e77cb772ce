// Package service computes field diffs for history entries and signs the entries.
package service

import (
	historyDomain "github.com/allisson/teamvault/internal/history/domain"
)

// Differ produces the ordered change list for an item mutation.
type Differ struct {
	redactUsername bool
}

// NewDiffer creates a Differ. With redactUsername the username is treated like a secret.
func NewDiffer(redactUsername bool) *Differ {
	return &Differ{redactUsername: redactUsername}
}

// Diff compares before and after. A nil before describes creation and a nil after describes
// deletion. Fields are reported in a fixed order and only when they differ.
func (d *Differ) Diff(before, after *historyDomain.ItemState) []historyDomain.Change {
	var empty historyDomain.ItemState
	if before == nil {
		before = &empty
	}
	if after == nil {
		after = &empty
	}

	fields := []struct {
		name     string
		old, new string
		secret   bool
	}{
		{"login_kind", before.LoginKind, after.LoginKind, false},
		{"username", before.Username, after.Username, d.redactUsername},
		{"password", before.Password, after.Password, true},
		{"totp_secret", before.TOTPSecret, after.TOTPSecret, true},
		{"website_url", before.WebsiteURL, after.WebsiteURL, false},
		{"notes", before.Notes, after.Notes, false},
		{"linked_account_ref", before.LinkedAccountRef, after.LinkedAccountRef, false},
		{"folder_ref", before.FolderRef, after.FolderRef, false},
	}

	changes := make([]historyDomain.Change, 0, len(fields))
	for _, f := range fields {
		if f.old == f.new {
			continue
		}

		change := historyDomain.Change{Field: f.name, OldValue: f.old, NewValue: f.new}
		if f.secret {
			change.OldValue = marker(f.old)
			change.NewValue = marker(f.new)
		}
		changes = append(changes, change)
	}

	return changes
}

func marker(value string) string {
	if value == "" {
		return ""
	}
	return historyDomain.RedactedMarker
}

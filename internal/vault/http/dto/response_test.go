package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accessDomain "github.com/allisson/teamvault/internal/access/domain"
	historyDomain "github.com/allisson/teamvault/internal/history/domain"
	totpDomain "github.com/allisson/teamvault/internal/totp/domain"
	vaultDomain "github.com/allisson/teamvault/internal/vault/domain"
)

func TestMapItemToResponse(t *testing.T) {
	folder := uuid.Must(uuid.NewV7())
	view := &vaultDomain.ItemView{
		ID: uuid.Must(uuid.NewV7()),
		Fields: vaultDomain.ItemFields{
			LoginKind: vaultDomain.LoginKindEmailPassword,
			Username:  "a@x.io",
			Password:  historyDomain.RedactedMarker,
			FolderRef: &folder,
		},
		OwnerID:        uuid.Must(uuid.NewV7()),
		EffectiveLevel: accessDomain.LevelRead,
		CreatedAt:      time.Now().UTC(),
	}

	response := MapItemToResponse(view)
	assert.Equal(t, view.ID.String(), response.ID)
	assert.Equal(t, "email_password", response.LoginKind)
	assert.Equal(t, historyDomain.RedactedMarker, response.Password)
	assert.Equal(t, "read", response.EffectiveLevel)
	require.NotNil(t, response.FolderRef)
	assert.Equal(t, folder.String(), *response.FolderRef)

	view.Fields.FolderRef = nil
	list := MapItemsToListResponse([]*vaultDomain.ItemView{view})
	require.Len(t, list.Data, 1)
	assert.Nil(t, list.Data[0].FolderRef)

	body, err := json.Marshal(MapItemsToListResponse(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[]}`, string(body))
}

func TestMapCodeToResponse(t *testing.T) {
	body, err := json.Marshal(MapCodeToResponse(&totpDomain.Code{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"configured":false}`, string(body))

	body, err = json.Marshal(MapCodeToResponse(&totpDomain.Code{Code: "287082", SecondsRemaining: 1}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"configured":true,"code":"287082","seconds_remaining":1}`, string(body))
}

func TestMapHistoryToListResponse(t *testing.T) {
	entry := &historyDomain.HistoryEntry{
		ID:          uuid.Must(uuid.NewV7()),
		ItemID:      uuid.Must(uuid.NewV7()),
		Action:      historyDomain.ActionDeleted,
		PerformedBy: uuid.Must(uuid.NewV7()),
		Signature:   []byte("sig"),
	}

	response := MapHistoryToListResponse([]*historyDomain.HistoryEntry{entry})
	require.Len(t, response.Data, 1)
	assert.Equal(t, "deleted", response.Data[0].Action)
	assert.NotNil(t, response.Data[0].Changes)

	body, err := json.Marshal(response)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "signature")
}

func TestMapGrantsToListResponse(t *testing.T) {
	grant := &accessDomain.Grant{
		ItemID:     uuid.Must(uuid.NewV7()),
		TargetType: accessDomain.TargetGroup,
		TargetID:   uuid.Must(uuid.NewV7()),
		Level:      accessDomain.LevelEdit,
	}

	response := MapGrantsToListResponse([]*accessDomain.Grant{grant})
	require.Len(t, response.Data, 1)
	assert.Equal(t, "group", response.Data[0].TargetType)
	assert.Equal(t, grant.TargetID.String(), response.Data[0].TargetID)
	assert.Equal(t, "edit", response.Data[0].Level)
}

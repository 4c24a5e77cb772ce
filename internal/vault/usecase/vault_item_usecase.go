package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	accessDomain "github.com/allisson/teamvault/internal/access/domain"
	accessService "github.com/allisson/teamvault/internal/access/service"
	authDomain "github.com/allisson/teamvault/internal/auth/domain"
	cryptoService "github.com/allisson/teamvault/internal/crypto/service"
	"github.com/allisson/teamvault/internal/database"
	apperrors "github.com/allisson/teamvault/internal/errors"
	historyDomain "github.com/allisson/teamvault/internal/history/domain"
	historyService "github.com/allisson/teamvault/internal/history/service"
	historyUseCase "github.com/allisson/teamvault/internal/history/usecase"
	totpDomain "github.com/allisson/teamvault/internal/totp/domain"
	totpService "github.com/allisson/teamvault/internal/totp/service"
	vaultDomain "github.com/allisson/teamvault/internal/vault/domain"
)

// Dependencies groups the collaborators of the vault item use case.
type Dependencies struct {
	TxManager database.TxManager
	ItemRepo  VaultItemRepository
	GrantRepo GrantRepository
	GroupRepo GroupRepository
	Cipher    cryptoService.SecretCipher
	TOTP      *totpService.Engine
	Differ    *historyService.Differ
	Resolver  *accessService.Resolver
	AuditLog  historyUseCase.AuditLog
	Logger    *slog.Logger
}

type vaultItemUseCase struct {
	txManager database.TxManager
	itemRepo  VaultItemRepository
	grantRepo GrantRepository
	groupRepo GroupRepository
	cipher    cryptoService.SecretCipher
	totp      *totpService.Engine
	differ    *historyService.Differ
	resolver  *accessService.Resolver
	auditLog  historyUseCase.AuditLog
	logger    *slog.Logger
}

// authorize resolves the caller's level from one snapshot and checks it against allowed.
func (v *vaultItemUseCase) authorize(
	ctx context.Context,
	principal authDomain.Principal,
	itemID uuid.UUID,
	allowed func(accessDomain.Level) bool,
) (*accessDomain.AccessSnapshot, accessDomain.Level, error) {
	snapshot, err := v.grantRepo.GetAccessSnapshot(ctx, itemID, principal.ID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, accessDomain.LevelNone, vaultDomain.ErrItemNotFound
		}
		return nil, accessDomain.LevelNone, err
	}

	level := v.resolver.EffectiveLevel(principal.ID, snapshot)
	if !allowed(level) {
		return nil, level, vaultDomain.ErrItemAccessDenied
	}

	return snapshot, level, nil
}

func (v *vaultItemUseCase) getItem(
	ctx context.Context,
	itemID uuid.UUID,
	forUpdate bool,
) (*vaultDomain.VaultItem, error) {
	get := v.itemRepo.Get
	if forUpdate {
		get = v.itemRepo.GetForUpdate
	}

	item, err := get(ctx, itemID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, vaultDomain.ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

// openField decrypts one stored secret. On failure it logs and returns "" and false.
func (v *vaultItemUseCase) openField(
	ctx context.Context,
	itemID uuid.UUID,
	field, ciphertext string,
) (string, bool) {
	plaintext, err := v.cipher.Decrypt(ciphertext)
	if err != nil {
		v.logger.WarnContext(ctx, "failed to decrypt vault item field",
			slog.String("item_id", itemID.String()),
			slog.String("field", field),
			slog.Any("error", err),
		)
		return "", false
	}
	return plaintext, true
}

// decryptField opens one stored secret. A failure is logged and the field reads as unset.
func (v *vaultItemUseCase) decryptField(ctx context.Context, itemID uuid.UUID, field, ciphertext string) string {
	plaintext, _ := v.openField(ctx, itemID, field, ciphertext)
	return plaintext
}

// unreadableSecrets marks the stored secrets that failed to decrypt and read as "".
type unreadableSecrets struct {
	username   bool
	password   bool
	totpSecret bool
}

// beforeUpdate returns current with every unreadable secret the update supplies replaced by the
// redaction marker. Such a field then always differs from its new value, so it is rewritten and
// shows up in the history entry even when the new value is "".
func (u unreadableSecrets) beforeUpdate(
	current vaultDomain.ItemFields,
	input *vaultDomain.UpdateItemInput,
) vaultDomain.ItemFields {
	before := current
	if u.username && input.Username != nil {
		before.Username = historyDomain.RedactedMarker
	}
	if u.password && input.Password != nil {
		before.Password = historyDomain.RedactedMarker
	}
	if u.totpSecret && input.TOTPSecret != nil {
		before.TOTPSecret = historyDomain.RedactedMarker
	}
	return before
}

func (v *vaultItemUseCase) plainFields(
	ctx context.Context,
	item *vaultDomain.VaultItem,
) (vaultDomain.ItemFields, unreadableSecrets) {
	username, usernameOK := v.openField(ctx, item.ID, "username", item.Username)
	password, passwordOK := v.openField(ctx, item.ID, "password", item.Password)
	totpSecret, totpOK := v.openField(ctx, item.ID, "totp_secret", item.TOTPSecret)

	fields := vaultDomain.ItemFields{
		LoginKind:        item.LoginKind,
		Username:         username,
		Password:         password,
		TOTPSecret:       totpSecret,
		WebsiteURL:       item.WebsiteURL,
		Notes:            item.Notes,
		LinkedAccountRef: item.LinkedAccountRef,
		FolderRef:        item.FolderRef,
	}
	return fields, unreadableSecrets{username: !usernameOK, password: !passwordOK, totpSecret: !totpOK}
}

// encryptChanged re-encrypts only the secrets whose plaintext differs between before and after.
func (v *vaultItemUseCase) encryptChanged(item *vaultDomain.VaultItem, before, after vaultDomain.ItemFields) error {
	secrets := []struct {
		target *string
		before string
		after  string
	}{
		{&item.Username, before.Username, after.Username},
		{&item.Password, before.Password, after.Password},
		{&item.TOTPSecret, before.TOTPSecret, after.TOTPSecret},
	}

	for _, secret := range secrets {
		if secret.before == secret.after {
			continue
		}
		ciphertext, err := v.cipher.Encrypt(secret.after)
		if err != nil {
			return apperrors.Wrap(err, "failed to encrypt vault item field")
		}
		*secret.target = ciphertext
	}

	return nil
}

func newView(
	item *vaultDomain.VaultItem,
	fields vaultDomain.ItemFields,
	level accessDomain.Level,
	reveal bool,
) *vaultDomain.ItemView {
	if !reveal {
		fields = fields.Redacted()
	}
	return &vaultDomain.ItemView{
		ID:             item.ID,
		Fields:         fields,
		OwnerID:        item.OwnerID,
		EffectiveLevel: level,
		Revealed:       reveal,
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
}

// Create stores a new item owned by the caller and records its creation.
func (v *vaultItemUseCase) Create(
	ctx context.Context,
	principal authDomain.Principal,
	input *vaultDomain.CreateItemInput,
) (*vaultDomain.ItemView, error) {
	fields := input.ItemFields
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item := &vaultDomain.VaultItem{
		ID:               uuid.Must(uuid.NewV7()),
		LoginKind:        fields.LoginKind,
		WebsiteURL:       fields.WebsiteURL,
		Notes:            fields.Notes,
		LinkedAccountRef: fields.LinkedAccountRef,
		OwnerID:          principal.ID,
		FolderRef:        fields.FolderRef,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	// Encrypt the secrets before opening the transaction
	if err := v.encryptChanged(item, vaultDomain.ItemFields{}, fields); err != nil {
		return nil, err
	}

	err := v.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := v.itemRepo.Create(ctx, item); err != nil {
			return err
		}

		// Record the created entry with every set field
		changes := v.differ.Diff(nil, fields.State())
		_, err := v.auditLog.Record(ctx, item.ID, historyDomain.ActionCreated, principal.ID, changes)
		return err
	})
	if err != nil {
		return nil, err
	}

	return newView(item, fields, accessDomain.LevelOwner, input.Reveal), nil
}

// Get returns the decrypted item.
func (v *vaultItemUseCase) Get(
	ctx context.Context,
	principal authDomain.Principal,
	itemID uuid.UUID,
) (*vaultDomain.ItemView, error) {
	_, level, err := v.authorize(ctx, principal, itemID, accessService.CanView)
	if err != nil {
		return nil, err
	}

	item, err := v.getItem(ctx, itemID, false)
	if err != nil {
		return nil, err
	}

	fields, _ := v.plainFields(ctx, item)
	return newView(item, fields, level, true), nil
}

// List returns the items the caller owns or reaches through a grant.
func (v *vaultItemUseCase) List(
	ctx context.Context,
	principal authDomain.Principal,
	offset, limit int,
) ([]*vaultDomain.ItemView, error) {
	items, err := v.itemRepo.ListAccessible(ctx, principal.ID, offset, limit)
	if err != nil {
		return nil, err
	}

	views := make([]*vaultDomain.ItemView, 0, len(items))
	for _, item := range items {
		level := accessDomain.LevelOwner
		if item.OwnerID != principal.ID {
			snapshot, err := v.grantRepo.GetAccessSnapshot(ctx, item.ID, principal.ID)
			if err != nil {
				if apperrors.Is(err, apperrors.ErrNotFound) {
					continue
				}
				return nil, err
			}
			level = v.resolver.EffectiveLevel(principal.ID, snapshot)
			if !accessService.CanView(level) {
				continue
			}
		}

		fields := vaultDomain.ItemFields{
			LoginKind:        item.LoginKind,
			Username:         v.decryptField(ctx, item.ID, "username", item.Username),
			Password:         item.Password,
			TOTPSecret:       item.TOTPSecret,
			WebsiteURL:       item.WebsiteURL,
			Notes:            item.Notes,
			LinkedAccountRef: item.LinkedAccountRef,
			FolderRef:        item.FolderRef,
		}
		views = append(views, newView(item, fields, level, false))
	}

	return views, nil
}

// Update merges the supplied fields into the locked item and records one updated entry. A
// request that changes nothing writes nothing.
func (v *vaultItemUseCase) Update(
	ctx context.Context,
	principal authDomain.Principal,
	itemID uuid.UUID,
	input *vaultDomain.UpdateItemInput,
) (*vaultDomain.ItemView, error) {
	var view *vaultDomain.ItemView

	err := v.txManager.WithTx(ctx, func(ctx context.Context) error {
		_, level, err := v.authorize(ctx, principal, itemID, accessService.CanEdit)
		if err != nil {
			return err
		}

		// Lock the row so concurrent updates apply one after the other
		item, err := v.getItem(ctx, itemID, true)
		if err != nil {
			return err
		}

		current, unreadable := v.plainFields(ctx, item)
		next := input.Apply(current)

		// An unreadable username is still stored. It only fails validation when the caller
		// replaces it.
		check := next
		if unreadable.username && input.Username == nil {
			check.Username = historyDomain.RedactedMarker
		}
		if err := check.Validate(); err != nil {
			return err
		}

		before := unreadable.beforeUpdate(current, input)
		changes := v.differ.Diff(before.State(), next.State())

		// Nothing changed, so nothing is written
		if len(changes) == 0 {
			view = newView(item, current, level, false)
			return nil
		}

		// Re-encrypt changed secrets and copy the plain fields onto the locked row
		if err := v.encryptChanged(item, before, next); err != nil {
			return err
		}
		item.LoginKind = next.LoginKind
		item.WebsiteURL = next.WebsiteURL
		item.Notes = next.Notes
		item.LinkedAccountRef = next.LinkedAccountRef
		item.FolderRef = next.FolderRef
		item.UpdatedAt = time.Now().UTC()

		// Persist the item and its history entry in the same transaction
		if err := v.itemRepo.Update(ctx, item); err != nil {
			return err
		}
		if _, err := v.auditLog.Record(ctx, item.ID, historyDomain.ActionUpdated, principal.ID, changes); err != nil {
			return err
		}

		view = newView(item, next, level, false)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

// Delete removes the item and every grant on it. The deleted entry is the item's last history
// record; earlier entries are kept.
func (v *vaultItemUseCase) Delete(ctx context.Context, principal authDomain.Principal, itemID uuid.UUID) error {
	return v.txManager.WithTx(ctx, func(ctx context.Context) error {
		if _, _, err := v.authorize(ctx, principal, itemID, accessService.IsOwner); err != nil {
			if apperrors.Is(err, vaultDomain.ErrItemNotFound) {
				return v.deletedOrMissing(ctx, itemID)
			}
			return err
		}

		if _, err := v.getItem(ctx, itemID, true); err != nil {
			return err
		}

		// The deleted entry is written first so it commits together with the removal
		if _, err := v.auditLog.Record(ctx, itemID, historyDomain.ActionDeleted, principal.ID, nil); err != nil {
			return err
		}

		// Drop every direct and group grant, then the item itself
		if err := v.grantRepo.DeleteByItem(ctx, itemID); err != nil {
			return err
		}
		return v.itemRepo.Delete(ctx, itemID)
	})
}

// deletedOrMissing tells a repeated delete apart from an id that never existed, using the
// history kept after deletion.
func (v *vaultItemUseCase) deletedOrMissing(ctx context.Context, itemID uuid.UUID) error {
	entries, err := v.auditLog.ListByItem(ctx, itemID)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.Action == historyDomain.ActionDeleted {
			return vaultDomain.ErrItemAlreadyDeleted
		}
	}
	return vaultDomain.ErrItemNotFound
}

// CurrentTOTP derives the code for the item's seed at the engine clock.
func (v *vaultItemUseCase) CurrentTOTP(
	ctx context.Context,
	principal authDomain.Principal,
	itemID uuid.UUID,
) (*totpDomain.Code, error) {
	if _, _, err := v.authorize(ctx, principal, itemID, accessService.CanView); err != nil {
		return nil, err
	}

	item, err := v.getItem(ctx, itemID, false)
	if err != nil {
		return nil, err
	}

	code := v.totp.Now(v.decryptField(ctx, item.ID, "totp_secret", item.TOTPSecret))
	return &code, nil
}

// GrantAccess creates or replaces a grant and records the level change.
func (v *vaultItemUseCase) GrantAccess(
	ctx context.Context,
	principal authDomain.Principal,
	itemID uuid.UUID,
	input *vaultDomain.GrantAccessInput,
) (*accessDomain.Grant, error) {
	if !input.Level.IsGrantable() {
		return nil, accessDomain.ErrInvalidLevel
	}

	var grant *accessDomain.Grant

	err := v.txManager.WithTx(ctx, func(ctx context.Context) error {
		snapshot, _, err := v.authorize(ctx, principal, itemID, accessService.IsOwner)
		if err != nil {
			return err
		}

		// Validate the target: never the owner, and groups must exist
		switch input.TargetType {
		case accessDomain.TargetUser:
			if input.TargetID == snapshot.OwnerID {
				return accessDomain.ErrGrantToOwner
			}
		case accessDomain.TargetGroup:
			if _, err := v.groupRepo.Get(ctx, input.TargetID); err != nil {
				if apperrors.Is(err, apperrors.ErrNotFound) {
					return accessDomain.ErrGroupNotFound
				}
				return err
			}
		default:
			return accessDomain.ErrInvalidTargetType
		}

		now := time.Now().UTC()
		oldLevel := ""
		grant = &accessDomain.Grant{
			ItemID:     itemID,
			TargetType: input.TargetType,
			TargetID:   input.TargetID,
			Level:      input.Level,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		// Re-granting the same level is a no-op; a new level keeps the original created_at
		existing, err := v.grantRepo.Get(ctx, itemID, input.TargetType, input.TargetID)
		switch {
		case err == nil:
			if existing.Level == input.Level {
				grant = existing
				return nil
			}
			oldLevel = string(existing.Level)
			grant.CreatedAt = existing.CreatedAt
		case !apperrors.Is(err, apperrors.ErrNotFound):
			return err
		}

		if err := v.grantRepo.Upsert(ctx, grant); err != nil {
			return err
		}

		// Record old and new level under the grant's field name
		changes := []historyDomain.Change{{
			Field:    accessDomain.GrantField(input.TargetType, input.TargetID),
			OldValue: oldLevel,
			NewValue: string(input.Level),
		}}
		_, err = v.auditLog.Record(ctx, itemID, historyDomain.ActionAccessGranted, principal.ID, changes)
		return err
	})
	if err != nil {
		return nil, err
	}

	return grant, nil
}

// RevokeAccess removes a grant and records the level it carried.
func (v *vaultItemUseCase) RevokeAccess(
	ctx context.Context,
	principal authDomain.Principal,
	itemID uuid.UUID,
	targetType accessDomain.TargetType,
	targetID uuid.UUID,
) error {
	return v.txManager.WithTx(ctx, func(ctx context.Context) error {
		if _, _, err := v.authorize(ctx, principal, itemID, accessService.IsOwner); err != nil {
			return err
		}

		existing, err := v.grantRepo.Get(ctx, itemID, targetType, targetID)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				return accessDomain.ErrGrantNotFound
			}
			return err
		}

		if err := v.grantRepo.Delete(ctx, itemID, targetType, targetID); err != nil {
			return err
		}

		// The revoked entry keeps the level that was removed
		changes := []historyDomain.Change{{
			Field:    accessDomain.GrantField(targetType, targetID),
			OldValue: string(existing.Level),
			NewValue: "",
		}}
		_, err = v.auditLog.Record(ctx, itemID, historyDomain.ActionAccessRevoked, principal.ID, changes)
		return err
	})
}

// ListAccess returns every grant on the item.
func (v *vaultItemUseCase) ListAccess(
	ctx context.Context,
	principal authDomain.Principal,
	itemID uuid.UUID,
) ([]*accessDomain.Grant, error) {
	if _, _, err := v.authorize(ctx, principal, itemID, accessService.IsOwner); err != nil {
		return nil, err
	}
	return v.grantRepo.ListByItem(ctx, itemID)
}

// ListHistory returns the item's history oldest first.
func (v *vaultItemUseCase) ListHistory(
	ctx context.Context,
	principal authDomain.Principal,
	itemID uuid.UUID,
) ([]*historyDomain.HistoryEntry, error) {
	if _, _, err := v.authorize(ctx, principal, itemID, accessService.CanView); err != nil {
		return nil, err
	}
	return v.auditLog.ListByItem(ctx, itemID)
}

// NewVaultItemUseCase creates a VaultItemUseCase. Nil Differ, Resolver, TOTP and Logger get
// defaults.
func NewVaultItemUseCase(deps Dependencies) VaultItemUseCase {
	uc := &vaultItemUseCase{
		txManager: deps.TxManager,
		itemRepo:  deps.ItemRepo,
		grantRepo: deps.GrantRepo,
		groupRepo: deps.GroupRepo,
		cipher:    deps.Cipher,
		totp:      deps.TOTP,
		differ:    deps.Differ,
		resolver:  deps.Resolver,
		auditLog:  deps.AuditLog,
		logger:    deps.Logger,
	}
	if uc.totp == nil {
		uc.totp = totpService.NewEngine(nil)
	}
	if uc.differ == nil {
		uc.differ = historyService.NewDiffer(false)
	}
	if uc.resolver == nil {
		uc.resolver = accessService.NewResolver()
	}
	if uc.logger == nil {
		uc.logger = slog.New(slog.DiscardHandler)
	}
	return uc
}

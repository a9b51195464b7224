package uploads

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"cms/db"
	"cms/models"
	"cms/storage"

	"gorm.io/gorm"
)

// Reconciler keeps MediaFile records in step with object-store state. The
// two writes cannot share a transaction, so the ordering rules here are the
// whole design: confirm persists metadata only after the store confirms the
// bytes, delete removes the object before the record.
type Reconciler struct {
	store  storage.ObjectStore
	broker *Broker
}

func NewReconciler(store storage.ObjectStore, broker *Broker) *Reconciler {
	return &Reconciler{store: store, broker: broker}
}

// Confirm is the second phase of an upload: the client reports it finished
// its direct write, and the record is persisted with the size the store
// reports. Confirming an already-persisted key returns the existing record,
// so a retried confirm cannot double-insert.
func (r *Reconciler) Confirm(ctx context.Context, storageKey string) (*models.MediaFile, error) {
	existing, err := models.MediaFileByKey(db.Instance.WithContext(ctx), storageKey)
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	sess, ok := r.broker.Session(storageKey)
	if !ok || sess.State() == SessionAbandoned {
		return nil, ErrGrantExpired
	}

	size, err := r.store.Head(ctx, storageKey)
	if errors.Is(err, storage.ErrObjectMissing) {
		// Nothing arrived before the grant ran out. No record to create.
		sess.advance(SessionAbandoned)
		return nil, ErrNotUploaded
	}
	if err != nil {
		// Store unreachable, not a missing object. Leave the session alone
		// so the client can retry the confirm.
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	sess.advance(SessionObjectWritten)

	file := models.MediaFile{
		CreatedAt:  time.Now().Unix(),
		Name:       sess.FileName,
		StorageKey: storageKey,
		MimeType:   sess.ContentType,
		Size:       size,
		UploaderID: sess.RequesterID,
	}
	if err := db.Instance.WithContext(ctx).Create(&file).Error; err != nil {
		// The object exists, the record does not: an orphaned object the
		// external sweep has to find. Say so loudly.
		log.Printf("PARTIAL FAILURE: orphaned object key=%s size=%d uploader=%d: %v",
			storageKey, size, sess.RequesterID, err)
		return nil, &PartialFailure{Op: "confirm", StorageKey: storageKey, ObjectLive: true, Cause: err}
	}
	sess.advance(SessionMetadataPersisted)
	return &file, nil
}

// BatchResult reports the outcome for one key of a confirm batch.
type BatchResult struct {
	StorageKey string            `json:"storage_key"`
	Status     string            `json:"status"` // "persisted", "failed" or "skipped"
	File       *models.MediaFile `json:"file,omitempty"`
	Message    string            `json:"message,omitempty"`
}

// ConfirmBatch confirms keys in order and stops at the first failure.
// Earlier files stay persisted (their objects were written directly by the
// client; there is nothing safe to roll back) and later keys are never
// attempted, reported as skipped.
func (r *Reconciler) ConfirmBatch(ctx context.Context, storageKeys []string) ([]BatchResult, error) {
	results := make([]BatchResult, 0, len(storageKeys))
	for i, key := range storageKeys {
		file, err := r.Confirm(ctx, key)
		if err != nil {
			results = append(results, BatchResult{StorageKey: key, Status: "failed", Message: err.Error()})
			for _, skipped := range storageKeys[i+1:] {
				results = append(results, BatchResult{StorageKey: skipped, Status: "skipped"})
			}
			return results, err
		}
		results = append(results, BatchResult{StorageKey: key, Status: "persisted", File: file})
	}
	return results, nil
}

// Delete removes the object first, then the record. If the object delete
// fails the record is kept, so the deletion stays visible and retryable. If
// the record delete fails after the object went away, that divergence is
// returned as a PartialFailure, never swallowed.
func (r *Reconciler) Delete(ctx context.Context, actorID uint64, storageKey string) error {
	file, err := models.MediaFileByKey(db.Instance.WithContext(ctx), storageKey)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	err = r.store.Delete(ctx, storageKey)
	if errors.Is(err, storage.ErrObjectMissing) {
		// Dangling record: the object is already gone. Removing the record
		// resolves the divergence rather than creating one.
		log.Printf("delete: object already missing for key=%s, removing dangling record", storageKey)
	} else if err != nil {
		return fmt.Errorf("%w: %v", ErrObjectNotDeleted, err)
	}

	if err := db.Instance.WithContext(ctx).Delete(&models.MediaFile{}, file.ID).Error; err != nil {
		log.Printf("PARTIAL FAILURE: dangling record id=%d key=%s (object removed): %v", file.ID, storageKey, err)
		return &PartialFailure{Op: "delete", StorageKey: storageKey, ObjectLive: false, Cause: err}
	}

	audit := models.AuditEntry{
		CreatedAt: time.Now().Unix(),
		ActorID:   actorID,
		Action:    models.AuditActionMediaDelete,
		Detail:    "storage_key: " + storageKey,
	}
	if err := db.Instance.Create(&audit).Error; err != nil {
		log.Printf("audit write failed for media delete key=%s: %v", storageKey, err)
	}
	return nil
}

package models

import (
	"cms/utils"

	"gorm.io/gorm"
)

// MediaFile is the metadata record for one object in the object store.
// A row exists only after the store confirmed the bytes do; the storage key
// points at at most one live object.
type MediaFile struct {
	ID         uint64 `gorm:"primaryKey" json:"id"`
	CreatedAt  int64  `json:"created_at"`
	Name       string `gorm:"type:varchar(300)" json:"name"`
	StorageKey string `gorm:"type:varchar(300);index:uniq_storage_key,unique;not null" json:"storage_key"`
	MimeType   string `gorm:"type:varchar(100)" json:"mime_type"`
	Size       int64  `json:"size"`
	UploaderID uint64 `gorm:"not null" json:"uploader_id"`
	Uploader   User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
}

func (m *MediaFile) BeforeSave(tx *gorm.DB) (err error) {
	m.Name = utils.SanitizeFileName(m.Name)
	return
}

// MediaFileByKey loads the record for a storage key.
// Returns gorm.ErrRecordNotFound when there is none.
func MediaFileByKey(tx *gorm.DB, storageKey string) (m MediaFile, err error) {
	err = tx.Where("storage_key = ?", storageKey).First(&m).Error
	return
}

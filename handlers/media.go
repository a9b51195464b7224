package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"cms/db"
	"cms/models"
	"cms/storage"
	"cms/uploads"

	"github.com/gin-gonic/gin"
)

type MediaGrantRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

type MediaConfirmRequest struct {
	StorageKeys []string `json:"storageKeys" binding:"required"`
}

type MediaDeleteRequest struct {
	StorageKey string `json:"storageKey" binding:"required"`
}

// MediaGrant issues a short-lived write grant. The client PUTs the bytes to
// write_url itself; this endpoint never sees them.
func MediaGrant(c *gin.Context, user *models.User) {
	var req MediaGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	grant, err := broker.Grant(req.FileName, req.ContentType, user.ID)
	switch {
	case errors.Is(err, uploads.ErrContentType), errors.Is(err, uploads.ErrInvalidFileName):
		c.JSON(http.StatusBadRequest, Response{err.Error()})
	case err != nil:
		log.Printf("grant failed for %q: %v", req.FileName, err)
		c.JSON(http.StatusBadGateway, Response{"could not create upload URL"})
	default:
		c.JSON(http.StatusOK, grant)
	}
}

// MediaConfirm finishes uploads for a batch of granted keys. Fail-fast: the
// first failure stops the batch, earlier files stay persisted, later ones
// are reported as skipped so the client can retry just those.
func MediaConfirm(c *gin.Context, user *models.User) {
	var req MediaConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.StorageKeys) == 0 {
		c.JSON(http.StatusBadRequest, Response{"storageKeys is required"})
		return
	}
	results, err := reconciler.ConfirmBatch(c.Request.Context(), req.StorageKeys)
	if err != nil {
		c.JSON(confirmStatus(err), gin.H{"error": err.Error(), "results": results})
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": "", "results": results})
}

func confirmStatus(err error) int {
	var partial *uploads.PartialFailure
	switch {
	case errors.As(err, &partial):
		return http.StatusInternalServerError
	case errors.Is(err, uploads.ErrGrantExpired), errors.Is(err, uploads.ErrNotUploaded):
		return http.StatusBadRequest
	case errors.Is(err, uploads.ErrUpstream):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// MediaDelete removes the object and then the record. The error body keeps
// the two failure legs apart so the caller knows what is left behind.
func MediaDelete(c *gin.Context, user *models.User) {
	var req MediaDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	if malformedKey(req.StorageKey) {
		c.JSON(http.StatusBadRequest, Response{"malformed storage key"})
		return
	}
	err := reconciler.Delete(c.Request.Context(), user.ID, req.StorageKey)
	var partial *uploads.PartialFailure
	switch {
	case err == nil:
		c.JSON(http.StatusOK, OKResponse)
	case errors.Is(err, uploads.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{"no media record for storage key"})
	case errors.As(err, &partial):
		c.JSON(http.StatusInternalServerError, Response{"metadata not deleted: " + partial.Cause.Error()})
	case errors.Is(err, uploads.ErrObjectNotDeleted):
		c.JSON(http.StatusBadGateway, Response{"object not deleted: " + err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, Response{err.Error()})
	}
}

// MediaList backs the media manager screen.
func MediaList(c *gin.Context, user *models.User) {
	files := []models.MediaFile{}
	query := db.Instance.Order("created_at DESC")
	if err := query.Find(&files).Error; err != nil {
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	type mediaInfo struct {
		models.MediaFile
		PublicURL string `json:"public_url"`
	}
	result := make([]mediaInfo, 0, len(files))
	for _, f := range files {
		result = append(result, mediaInfo{MediaFile: f, PublicURL: objectStore.PublicURL(f.StorageKey)})
	}
	c.JSON(http.StatusOK, result)
}

// MediaDirectUpload is the write target for disk-backed grants. The token
// carries the expiry and is bound to the key and content type, so this
// endpoint enforces grant expiry the way S3 does for presigned PUTs.
// No session auth: the token is the credential.
func MediaDirectUpload(c *gin.Context) {
	disk, ok := objectStore.(*storage.DiskStore)
	if !ok {
		c.JSON(http.StatusNotFound, Response{"direct upload is only available with disk storage"})
		return
	}
	token := c.Param("token")
	key := strings.TrimPrefix(c.Param("key"), "/")
	size, err := disk.WriteDirect(token, key, c.ContentType(), c.Request.Body)
	switch {
	case errors.Is(err, storage.ErrBadWriteToken):
		c.JSON(http.StatusForbidden, Response{"invalid upload token"})
	case errors.Is(err, storage.ErrWriteExpired):
		c.JSON(http.StatusForbidden, Response{"upload grant expired"})
	case err != nil:
		log.Printf("direct write failed for key=%s: %v", key, err)
		c.JSON(http.StatusInternalServerError, Response{"write failed"})
	default:
		c.JSON(http.StatusOK, gin.H{"error": "", "size": size})
	}
}

// MediaFetch serves object bytes for disk-backed deployments without a CDN.
func MediaFetch(c *gin.Context) {
	disk, ok := objectStore.(*storage.DiskStore)
	if !ok {
		c.JSON(http.StatusNotFound, Response{"not available"})
		return
	}
	key := strings.TrimPrefix(c.Param("key"), "/")
	if _, err := disk.Head(c.Request.Context(), key); err != nil {
		c.JSON(http.StatusNotFound, Response{"not found"})
		return
	}
	disk.Serve(key, c.Request, c.Writer)
}

func malformedKey(key string) bool {
	if key == "" || len(key) > 300 {
		return true
	}
	return strings.ContainsAny(key, "/\\") || strings.Contains(key, "..")
}

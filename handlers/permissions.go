package handlers

import (
	"errors"
	"net/http"

	"cms/db"
	"cms/models"
	"cms/rbac"

	"github.com/gin-gonic/gin"
)

type RoleSaveRequest struct {
	RoleID        uint64   `json:"roleID" binding:"required"`
	PermissionIDs []uint64 `json:"permissionIDs"`
}

type RoleInfo struct {
	models.Role
	PermissionIDs []uint64 `json:"permission_ids"`
}

// PermissionList returns the catalog, ordered so the UI can group by module.
func PermissionList(c *gin.Context, user *models.User) {
	permissions := []models.Permission{}
	if err := db.Instance.Order("module, id").Find(&permissions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	c.JSON(http.StatusOK, permissions)
}

// RoleList returns each role with its effective permission set. For the
// reserved role that is always the full catalog.
func RoleList(c *gin.Context, user *models.User) {
	roles := []models.Role{}
	if err := db.Instance.Order("id").Find(&roles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	result := make([]RoleInfo, 0, len(roles))
	for _, role := range roles {
		ids, err := engine.PermissionSet(c.Request.Context(), role.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, DBError2Response)
			return
		}
		result = append(result, RoleInfo{Role: role, PermissionIDs: ids})
	}
	c.JSON(http.StatusOK, result)
}

// RolePermissionsSave replaces a role's whole permission set.
func RolePermissionsSave(c *gin.Context, user *models.User) {
	var req RoleSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	err := engine.ReplaceRolePermissions(c.Request.Context(), user.ID, req.RoleID, req.PermissionIDs)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, OKResponse)
	case errors.Is(err, rbac.ErrInvalidRole), errors.Is(err, rbac.ErrInvalidPermission):
		c.JSON(http.StatusBadRequest, Response{err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, Response{"could not save permissions"})
	}
}

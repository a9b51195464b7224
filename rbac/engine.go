package rbac

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"cms/db"
	"cms/models"

	cmap "github.com/orcaman/concurrent-map/v2"
	"gorm.io/gorm"
)

var (
	ErrInvalidRole        = errors.New("role does not exist or cannot be edited")
	ErrInvalidPermission  = errors.New("permission is not part of the catalog")
	ErrStorageUnavailable = errors.New("role storage unavailable")
)

// Engine answers permission checks and owns the save operation for a role's
// permission set. Checks always read the latest committed associations; saves
// for the same role are serialized so a check never observes a half-replaced
// set.
type Engine struct {
	saveLocks cmap.ConcurrentMap[string, *sync.Mutex]
}

func NewEngine() *Engine {
	return &Engine{
		saveLocks: cmap.New[*sync.Mutex](),
	}
}

// ResolveRole turns a role ID into its tagged ActorRole.
func (e *Engine) ResolveRole(ctx context.Context, roleID uint64) (ActorRole, error) {
	var role models.Role
	err := db.Instance.WithContext(ctx).First(&role, roleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidRole
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if role.Reserved {
		return SuperuserRole{ID: role.ID, Name: role.Name}, nil
	}
	return StandardRole{ID: role.ID, Name: role.Name}, nil
}

// Authorize reports whether the role grants the named permission.
// A SuperuserRole is granted everything without touching the association
// table; a StandardRole is granted exactly what its current rows say.
func (e *Engine) Authorize(ctx context.Context, role ActorRole, permissionName string) (bool, error) {
	switch r := role.(type) {
	case SuperuserRole:
		return true, nil
	case StandardRole:
		var count int64
		err := db.Instance.WithContext(ctx).
			Table("role_permissions").
			Joins("join permissions on permissions.id = role_permissions.permission_id").
			Where("role_permissions.role_id = ? and permissions.name = ?", r.ID, permissionName).
			Count(&count).Error
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		return count > 0, nil
	default:
		return false, ErrInvalidRole
	}
}

// ReplaceRolePermissions swaps the role's entire permission set for
// permissionIDs. All-or-nothing: the delete and the inserts run in one
// transaction, and saves for the same role take a per-role lock so two admins
// cannot interleave. The reserved role is immutable.
func (e *Engine) ReplaceRolePermissions(ctx context.Context, actorID, roleID uint64, permissionIDs []uint64) error {
	mu := e.roleLock(roleID)
	mu.Lock()
	defer mu.Unlock()

	var role models.Role
	err := db.Instance.WithContext(ctx).First(&role, roleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvalidRole
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if role.Reserved {
		return ErrInvalidRole
	}

	ids := dedup(permissionIDs)
	if len(ids) > 0 {
		var count int64
		err = db.Instance.WithContext(ctx).Model(&models.Permission{}).Where("id in ?", ids).Count(&count).Error
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		if count != int64(len(ids)) {
			return ErrInvalidPermission
		}
	}

	err = db.Instance.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		if len(ids) > 0 {
			rows := make([]models.RolePermission, 0, len(ids))
			for _, id := range ids {
				rows = append(rows, models.RolePermission{RoleID: roleID, PermissionID: id})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return tx.Create(&models.AuditEntry{
			CreatedAt: time.Now().Unix(),
			ActorID:   actorID,
			Action:    models.AuditActionReplacePermissions,
			RoleID:    roleID,
			Detail:    "permissions: " + idList(ids),
		}).Error
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// PermissionSet returns the IDs currently associated to the role.
// For the reserved role that is the whole catalog, whatever its rows say.
func (e *Engine) PermissionSet(ctx context.Context, roleID uint64) ([]uint64, error) {
	role, err := e.ResolveRole(ctx, roleID)
	if err != nil {
		return nil, err
	}
	tx := db.Instance.WithContext(ctx)
	ids := []uint64{}
	if _, ok := role.(SuperuserRole); ok {
		err = tx.Model(&models.Permission{}).Order("id").Pluck("id", &ids).Error
	} else {
		err = tx.Model(&models.RolePermission{}).Where("role_id = ?", roleID).Order("permission_id").Pluck("permission_id", &ids).Error
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return ids, nil
}

func (e *Engine) roleLock(roleID uint64) *sync.Mutex {
	key := strconv.FormatUint(roleID, 10)
	return e.saveLocks.Upsert(key, nil, func(exist bool, valueInMap, newValue *sync.Mutex) *sync.Mutex {
		if exist {
			return valueInMap
		}
		return &sync.Mutex{}
	})
}

func dedup(in []uint64) []uint64 {
	seen := make(map[uint64]bool, len(in))
	out := make([]uint64, 0, len(in))
	for _, id := range in {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func idList(ids []uint64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(id, 10)
	}
	return strings.Join(parts, ",")
}

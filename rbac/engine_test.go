package rbac

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"cms/db"
	"cms/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	db.Instance = gdb
	models.Init()
}

func roleByName(t *testing.T, name string) models.Role {
	t.Helper()
	var role models.Role
	if err := db.Instance.Where(models.Role{Name: name}).First(&role).Error; err != nil {
		t.Fatalf("role %q: %v", name, err)
	}
	return role
}

func permissionIDs(t *testing.T, names ...string) []uint64 {
	t.Helper()
	ids := make([]uint64, 0, len(names))
	for _, name := range names {
		var p models.Permission
		if err := db.Instance.Where(models.Permission{Name: name}).First(&p).Error; err != nil {
			t.Fatalf("permission %q: %v", name, err)
		}
		ids = append(ids, p.ID)
	}
	return ids
}

func TestResolveRole(t *testing.T) {
	setupTestDB(t)
	engine := NewEngine()
	ctx := context.Background()

	admin := roleByName(t, models.ReservedRoleName)
	role, err := engine.ResolveRole(ctx, admin.ID)
	if err != nil {
		t.Fatalf("resolve admin: %v", err)
	}
	if _, ok := role.(SuperuserRole); !ok {
		t.Errorf("admin resolved to %T, want SuperuserRole", role)
	}

	staff := roleByName(t, "staff")
	role, err = engine.ResolveRole(ctx, staff.ID)
	if err != nil {
		t.Fatalf("resolve staff: %v", err)
	}
	if _, ok := role.(StandardRole); !ok {
		t.Errorf("staff resolved to %T, want StandardRole", role)
	}

	if _, err = engine.ResolveRole(ctx, 99999); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("unknown role: err = %v, want ErrInvalidRole", err)
	}
}

func TestAuthorizeStandardRole(t *testing.T) {
	setupTestDB(t)
	engine := NewEngine()
	ctx := context.Background()
	staff := roleByName(t, "staff")

	granted := permissionIDs(t, "media.upload", "media.view")
	if err := engine.ReplaceRolePermissions(ctx, 1, staff.ID, granted); err != nil {
		t.Fatalf("replace: %v", err)
	}

	role, err := engine.ResolveRole(ctx, staff.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	tests := []struct {
		permission string
		want       bool
	}{
		{"media.upload", true},
		{"media.view", true},
		{"media.delete", false},
		{"roles.manage", false},
		{"does.not.exist", false},
	}
	for _, tt := range tests {
		got, err := engine.Authorize(ctx, role, tt.permission)
		if err != nil {
			t.Fatalf("authorize %s: %v", tt.permission, err)
		}
		if got != tt.want {
			t.Errorf("Authorize(staff, %q) = %v, want %v", tt.permission, got, tt.want)
		}
	}

	// Read-your-writes: the next save is visible to the next check
	if err := engine.ReplaceRolePermissions(ctx, 1, staff.ID, permissionIDs(t, "media.delete")); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got, _ := engine.Authorize(ctx, role, "media.upload"); got {
		t.Error("media.upload should be revoked after replace")
	}
	if got, _ := engine.Authorize(ctx, role, "media.delete"); !got {
		t.Error("media.delete should be granted after replace")
	}
}

func TestAuthorizeSuperuserBypassesRows(t *testing.T) {
	setupTestDB(t)
	engine := NewEngine()
	ctx := context.Background()
	admin := roleByName(t, models.ReservedRoleName)

	var rows int64
	db.Instance.Model(&models.RolePermission{}).Where("role_id = ?", admin.ID).Count(&rows)
	if rows != 0 {
		t.Fatalf("admin should have no association rows, found %d", rows)
	}

	role, err := engine.ResolveRole(ctx, admin.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	for _, p := range models.Catalog {
		granted, err := engine.Authorize(ctx, role, p.Name)
		if err != nil {
			t.Fatalf("authorize %s: %v", p.Name, err)
		}
		if !granted {
			t.Errorf("admin should be granted %q", p.Name)
		}
	}
}

func TestReplaceRolePermissionsValidation(t *testing.T) {
	setupTestDB(t)
	engine := NewEngine()
	ctx := context.Background()
	admin := roleByName(t, models.ReservedRoleName)
	staff := roleByName(t, "staff")

	if err := engine.ReplaceRolePermissions(ctx, 1, admin.ID, nil); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("reserved role: err = %v, want ErrInvalidRole", err)
	}
	if err := engine.ReplaceRolePermissions(ctx, 1, 99999, nil); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("missing role: err = %v, want ErrInvalidRole", err)
	}
	if err := engine.ReplaceRolePermissions(ctx, 1, staff.ID, []uint64{99999}); !errors.Is(err, ErrInvalidPermission) {
		t.Errorf("unknown permission: err = %v, want ErrInvalidPermission", err)
	}
	// Clearing the whole set is a valid save
	if err := engine.ReplaceRolePermissions(ctx, 1, staff.ID, []uint64{}); err != nil {
		t.Errorf("empty set: %v", err)
	}
}

func TestReplaceRolePermissionsWritesAudit(t *testing.T) {
	setupTestDB(t)
	engine := NewEngine()
	ctx := context.Background()
	staff := roleByName(t, "staff")

	if err := engine.ReplaceRolePermissions(ctx, 42, staff.ID, permissionIDs(t, "media.view")); err != nil {
		t.Fatalf("replace: %v", err)
	}
	var entry models.AuditEntry
	err := db.Instance.Where("action = ? and role_id = ?", models.AuditActionReplacePermissions, staff.ID).First(&entry).Error
	if err != nil {
		t.Fatalf("audit entry missing: %v", err)
	}
	if entry.ActorID != 42 {
		t.Errorf("ActorID = %d, want 42", entry.ActorID)
	}
}

// A concurrent Authorize must observe the old complete set or the new
// complete set, never an empty or partial one.
func TestReplaceRolePermissionsAtomicity(t *testing.T) {
	setupTestDB(t)
	engine := NewEngine()
	ctx := context.Background()
	staff := roleByName(t, "staff")

	setA := permissionIDs(t, "media.view", "media.upload", "media.delete")
	setB := permissionIDs(t, "blog.view", "blog.manage")
	if err := engine.ReplaceRolePermissions(ctx, 1, staff.ID, setA); err != nil {
		t.Fatalf("initial replace: %v", err)
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	var mu sync.Mutex
	badCounts := []int64{}

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				var count int64
				err := db.Instance.Model(&models.RolePermission{}).Where("role_id = ?", staff.ID).Count(&count).Error
				if err != nil {
					continue
				}
				if count != int64(len(setA)) && count != int64(len(setB)) {
					mu.Lock()
					badCounts = append(badCounts, count)
					mu.Unlock()
				}
			}
		}()
	}

	for i := 0; i < 20; i++ {
		set := setA
		if i%2 == 0 {
			set = setB
		}
		if err := engine.ReplaceRolePermissions(ctx, 1, staff.ID, set); err != nil {
			t.Fatalf("replace %d: %v", i, err)
		}
	}
	close(done)
	wg.Wait()

	if len(badCounts) > 0 {
		t.Errorf("observed partial permission sets during replace: %v", badCounts)
	}
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

var (
	TLS_DOMAINS  = ""   // e.g. "example.com,example2.com"
	BIND_ADDRESS = "0.0.0.0:8080"
	DEBUG_MODE   = true
	MYSQL_DSN    = ""       // MySQL will be used if this is set
	SQLITE_FILE  = "cms.db" // SQLite will be used if MYSQL_DSN is not configured

	// Object store. "s3" works with any S3-compatible service (AWS, Cloudflare R2, MinIO).
	// "disk" keeps objects on the local filesystem and serves uploads through this process.
	STORAGE_BACKEND  = "s3"
	S3_ENDPOINT      = "" // e.g. "https://<account-id>.r2.cloudflarestorage.com"
	S3_REGION        = "auto"
	S3_ACCESS_KEY    = ""
	S3_SECRET_KEY    = ""
	S3_BUCKET        = ""
	PUBLIC_BASE_URL  = "" // public read-back URL prefix for uploaded objects
	DISK_STORAGE_DIR = ""

	// Upload policy
	ALLOWED_CONTENT_TYPES = "image/jpeg,image/png,image/gif,image/webp,image/svg+xml,application/pdf,video/mp4"
	UPLOAD_GRANT_TTL      = 60 // seconds a write grant stays valid

	// First-run bootstrap: creates this admin account when the users table is empty
	INITIAL_ADMIN_EMAIL    = ""
	INITIAL_ADMIN_PASSWORD = ""
)

func init() {
	readEnvString("TLS_DOMAINS", &TLS_DOMAINS)
	readEnvString("BIND_ADDRESS", &BIND_ADDRESS)
	readEnvBool("DEBUG_MODE", &DEBUG_MODE)
	readEnvString("MYSQL_DSN", &MYSQL_DSN)
	readEnvString("SQLITE_FILE", &SQLITE_FILE)
	readEnvString("STORAGE_BACKEND", &STORAGE_BACKEND)
	readEnvString("S3_ENDPOINT", &S3_ENDPOINT)
	readEnvString("S3_REGION", &S3_REGION)
	readEnvString("S3_ACCESS_KEY", &S3_ACCESS_KEY)
	readEnvString("S3_SECRET_KEY", &S3_SECRET_KEY)
	readEnvString("S3_BUCKET", &S3_BUCKET)
	readEnvString("PUBLIC_BASE_URL", &PUBLIC_BASE_URL)
	readEnvString("DISK_STORAGE_DIR", &DISK_STORAGE_DIR)
	readEnvString("ALLOWED_CONTENT_TYPES", &ALLOWED_CONTENT_TYPES)
	readEnvInt("UPLOAD_GRANT_TTL", &UPLOAD_GRANT_TTL)
	readEnvString("INITIAL_ADMIN_EMAIL", &INITIAL_ADMIN_EMAIL)
	readEnvString("INITIAL_ADMIN_PASSWORD", &INITIAL_ADMIN_PASSWORD)
}

// Validate checks that everything the object store needs is configured.
// Called once at startup so a missing credential kills the process there,
// not on the first upload request.
func Validate() error {
	missing := []string{}
	switch STORAGE_BACKEND {
	case "s3":
		if S3_ENDPOINT == "" {
			missing = append(missing, "S3_ENDPOINT")
		}
		if S3_ACCESS_KEY == "" {
			missing = append(missing, "S3_ACCESS_KEY")
		}
		if S3_SECRET_KEY == "" {
			missing = append(missing, "S3_SECRET_KEY")
		}
		if S3_BUCKET == "" {
			missing = append(missing, "S3_BUCKET")
		}
		if PUBLIC_BASE_URL == "" {
			missing = append(missing, "PUBLIC_BASE_URL")
		}
	case "disk":
		if DISK_STORAGE_DIR == "" {
			missing = append(missing, "DISK_STORAGE_DIR")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of 's3' or 'disk', got %q", STORAGE_BACKEND)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if UPLOAD_GRANT_TTL <= 0 {
		return fmt.Errorf("UPLOAD_GRANT_TTL must be positive, got %d", UPLOAD_GRANT_TTL)
	}
	if len(AllowedContentTypes()) == 0 {
		return fmt.Errorf("ALLOWED_CONTENT_TYPES must list at least one MIME type")
	}
	return nil
}

// AllowedContentTypes returns the upload content-type allow-list.
func AllowedContentTypes() []string {
	result := []string{}
	for _, t := range strings.Split(ALLOWED_CONTENT_TYPES, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			result = append(result, t)
		}
	}
	return result
}

func readEnvString(name string, value *string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	*value = v
}

func readEnvBool(name string, value *bool) {
	v := strings.ToLower(os.Getenv(name))
	if v == "true" || v == "1" || v == "yes" || v == "on" {
		*value = true
	} else if v == "false" || v == "0" || v == "no" || v == "off" {
		*value = false
	}
}

func readEnvInt(name string, value *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	f, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*value = f
}

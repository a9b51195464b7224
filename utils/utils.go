package utils

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"unicode"
)

// Sha512String hashes and encodes in hex the result
func Sha512String(s string) string {
	hash := sha512.New()
	hash.Write([]byte(s))
	return hex.EncodeToString(hash.Sum(nil))
}

func RandSalt(saltSize int) string {
	b := make([]byte, saltSize)
	_, err := rand.Read(b)
	if err != nil {
		panic(err)
	}
	return base64.StdEncoding.EncodeToString(b)
}

// SanitizeFileName strips everything from a client-supplied file name that
// could leak into a storage key: path separators, control characters and
// anything outside a small safe set. A leading dot is dropped too.
func SanitizeFileName(name string) string {
	var out strings.Builder
	for i, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			out.WriteRune(c)
		case c == '.' && i > 0, c == '-', c == '_':
			out.WriteRune(c)
		case c == '/' || c == '\\' || unicode.IsControl(c):
			// dropped entirely
		default:
			out.WriteRune('_')
		}
	}
	return strings.Trim(out.String(), "._")
}

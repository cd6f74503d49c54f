package imagestore

import (
	"crypto/rand"
	"path/filepath"

	"github.com/google/uuid"
)

const maxExtensionLen = 16

// MintID returns a new image id: 128 random bits in uuid form,
// followed by the extension of filename when it has a usable one.
func MintID(filename string) (string, error) {
	var raw [16]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	token, err := uuid.FromBytes(raw[:])
	if err != nil {
		return "", err
	}
	return token.String() + Extension(filename), nil
}

// Extension returns the dot-prefixed extension of filename, or "" when it is
// missing or not a short alphanumeric suffix.
func Extension(filename string) string {
	ext := filepath.Ext(filepath.Base(filename))
	if len(ext) < 2 || len(ext) > maxExtensionLen+1 {
		return ""
	}
	for _, ch := range ext[1:] {
		if (ch < 'a' || ch > 'z') && (ch < 'A' || ch > 'Z') && (ch < '0' || ch > '9') {
			return ""
		}
	}
	return ext
}

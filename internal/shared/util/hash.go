package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// OwnerKey maps a user ID to the directory segment that holds that user's archived uploads.
func OwnerKey(userID string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(userID)))
	return "u-" + hex.EncodeToString(sum[:16])
}

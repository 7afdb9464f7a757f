// Package fileid derives stable content item IDs from content file paths.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
)

const prefix = "file-"

// ContentID returns the ID of the item read from path when its front matter names none.
// The ID is the slugified file name plus a short hash of the cleaned path, so the
// same path always maps to the same item and equal names in different folders do not collide.
func ContentID(path string) string {
	cleaned := filepath.Clean(path)
	sum := sha256.Sum256([]byte(cleaned))
	name := slug.Make(strings.TrimSuffix(filepath.Base(cleaned), filepath.Ext(cleaned)))
	if name == "" {
		return prefix + hex.EncodeToString(sum[:8])
	}
	return prefix + name + "-" + hex.EncodeToString(sum[:4])
}

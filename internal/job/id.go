package job

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"subnode/internal/textutil"
)

// clock is swapped in tests.
var clock = time.Now

// NewID derives a job identifier from the source file's base name:
// <sanitized-base>_<unix-seconds>_<8-hex token>. The random token keeps
// identifiers unique across concurrent calls within the same second.
func NewID(sourcePath string) string {
	base := filepath.Base(strings.TrimSpace(sourcePath))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%d_%s", textutil.SanitizeToken(base), clock().Unix(), token)
}

// ValidID reports whether id is safe to use as a single path segment.
func ValidID(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, `/\`)
}

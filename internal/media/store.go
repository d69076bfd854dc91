// Package media persists complaint attachments (photos, voice notes) and
// hands back public URLs for them.
package media

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store is the blob-storage boundary of the submission pipeline. Put writes
// the object durably and returns a public URL; names are unique per upload
// so writes never collide.
type Store interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// ObjectName derives a collision-free object name from the upload time, a
// random UUID, and the original file extension.
func ObjectName(originalName string) string {
	ext := ""
	if i := strings.LastIndex(originalName, "."); i >= 0 {
		ext = strings.ToLower(originalName[i:])
	}
	return fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), uuid.New().String(), ext)
}

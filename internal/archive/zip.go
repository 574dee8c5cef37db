// Package archive extracts product images from an uploaded ZIP so the engine
// can match them to rows by SKU.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/kobimazuz/pi-order-system-sub000/internal/engine"
)

// imageTypes maps the accepted file extensions to their media types. Anything
// else in the archive is ignored rather than rejected, since vendors tend to
// ship stray files alongside the images.
var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Extract reads a ZIP archive and returns its images keyed by base filename
// without the extension (HY1001.jpg → HY1001), which is the SKU matching
// convention. Later duplicates of the same key overwrite earlier ones.
func Extract(data []byte) (map[string]engine.Blob, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open image archive: %w", err)
	}

	images := make(map[string]engine.Blob)
	for _, file := range zr.File {
		if file.FileInfo().IsDir() {
			continue
		}
		base := path.Base(file.Name)
		// macOS zips carry resource-fork noise under __MACOSX and ._ prefixes.
		if strings.HasPrefix(file.Name, "__MACOSX/") || strings.HasPrefix(base, ".") {
			continue
		}
		ext := strings.ToLower(path.Ext(base))
		mediaType, ok := imageTypes[ext]
		if !ok {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s in archive: %w", file.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s from archive: %w", file.Name, err)
		}

		key := strings.TrimSuffix(base, path.Ext(base))
		images[key] = engine.Blob{Data: content, MediaType: mediaType}
	}
	return images, nil
}

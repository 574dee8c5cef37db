package archive

import (
	"archive/zip"
	"bytes"
	"testing"
)

// zipBytes builds an in-memory ZIP with the given name → content entries.
func zipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtract(t *testing.T) {
	data := zipBytes(t, map[string]string{
		"HY1001.jpg":        "jpeg-bytes",
		"images/HY1002.png": "png-bytes",
		"readme.txt":        "not an image",
	})

	images, err := Extract(data)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("images = %d, want 2", len(images))
	}

	if blob := images["HY1001"]; string(blob.Data) != "jpeg-bytes" || blob.MediaType != "image/jpeg" {
		t.Errorf("HY1001 = %+v", blob)
	}
	if blob := images["HY1002"]; string(blob.Data) != "png-bytes" || blob.MediaType != "image/png" {
		t.Errorf("nested HY1002 = %+v", blob)
	}
	if _, ok := images["readme"]; ok {
		t.Error("non-image files must be ignored")
	}
}

func TestExtractIgnoresMacOSNoise(t *testing.T) {
	data := zipBytes(t, map[string]string{
		"__MACOSX/HY1001.jpg": "resource fork",
		"._HY1001.jpg":        "resource fork",
		"HY1001.jpg":          "real",
	})

	images, err := Extract(data)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(images) != 1 || string(images["HY1001"].Data) != "real" {
		t.Errorf("images = %v", images)
	}
}

func TestExtractNotAZip(t *testing.T) {
	if _, err := Extract([]byte("definitely not a zip")); err == nil {
		t.Fatal("expected error for invalid archive")
	}
}

func TestExtractCaseSensitiveKeys(t *testing.T) {
	data := zipBytes(t, map[string]string{"hy1001.JPG": "x"})

	images, err := Extract(data)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if _, ok := images["hy1001"]; !ok {
		t.Errorf("extension should match case-insensitively, keys stay as named: %v", images)
	}
}

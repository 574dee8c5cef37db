package engine

// images.go associates loose archive files with product rows. The convention
// is that each image file is named after the product's SKU (HY1001.jpg →
// HY1001); the archive decoder already strips the extension from the keys.

// ResolveImage returns the blob for a product's SKU, or false when the archive
// holds no matching file. A missing image is not an error: images are optional
// and the match is exact on the SKU, independent of file extension.
func ResolveImage(sku string, images map[string]Blob) (Blob, bool) {
	if len(images) == 0 {
		return Blob{}, false
	}
	blob, ok := images[sku]
	return blob, ok
}

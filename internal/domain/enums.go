package domain

// ProductStatus mirrors Shopify's product status values.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusArchived ProductStatus = "archived"
	ProductStatusDraft    ProductStatus = "draft"
)

// ImageOp distinguishes the three states of an optional image argument:
// not supplied, supplied as null (remove), supplied with data (replace).
type ImageOp int

const (
	ImageKeep ImageOp = iota
	ImageRemove
	ImageReplace
)

// ImagePatch is the tagged union for a product image update. The zero
// value means "no change".
type ImagePatch struct {
	Op   ImageOp
	Data string // base64 image data, only for ImageReplace
}

func KeepImage() ImagePatch {
	return ImagePatch{Op: ImageKeep}
}

func RemoveImage() ImagePatch {
	return ImagePatch{Op: ImageRemove}
}

func ReplaceImage(data string) ImagePatch {
	return ImagePatch{Op: ImageReplace, Data: data}
}

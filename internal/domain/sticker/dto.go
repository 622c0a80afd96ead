package sticker

type CreateCategoryRequest struct {
	Name  string `json:"name" binding:"required,max=64"`
	Order int    `json:"order"`
}

// StickerResponse decorates a sticker with the link callers use to
// fetch its image.
type StickerResponse struct {
	*Sticker
	URL string `json:"url"`
}

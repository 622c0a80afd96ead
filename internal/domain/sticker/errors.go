package sticker

import "errors"

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already exists")
	ErrCategoryNotEmpty = errors.New("category still contains stickers")
	ErrStickerNotFound  = errors.New("sticker not found")
	ErrNotUploader      = errors.New("only the uploader may delete a sticker")
	ErrNoFile           = errors.New("no file provided")
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidFileType  = errors.New("file type is not allowed")
	ErrFileNotFound     = errors.New("file not found")
	ErrStorageFailed    = errors.New("could not save file")
)

package sticker

// Category is a user-owned named grouping of stickers. The composite
// unique index backs the name-per-owner invariant that the service
// pre-checks before insert.
type Category struct {
	ID     int64  `gorm:"column:id;primaryKey" json:"id"`
	Name   string `gorm:"column:name;size:64;uniqueIndex:idx_categories_owner_name" json:"name"`
	UserID string `gorm:"column:user_id;size:64;uniqueIndex:idx_categories_owner_name" json:"userId"`
	Order  int    `gorm:"column:sort_order" json:"order"`
}

func (Category) TableName() string { return "sticker_categories" }

// Sticker is one uploaded image asset. Path points at exactly one blob
// in the blob store; UploadedBy is nil for records whose uploader
// account no longer exists.
type Sticker struct {
	ID         int64   `gorm:"column:id;primaryKey" json:"id"`
	CategoryID int64   `gorm:"column:category_id;index" json:"categoryId"`
	Name       string  `gorm:"column:name;size:64" json:"name"`
	Path       string  `gorm:"column:path;size:255;uniqueIndex" json:"path"`
	MimeType   string  `gorm:"column:mime_type;size:255" json:"mimeType"`
	UploadedBy *string `gorm:"column:uploaded_by;size:64" json:"uploadedBy"`
	UploadTime int64   `gorm:"column:upload_time" json:"uploadTime"`
}

func (Sticker) TableName() string { return "stickers" }

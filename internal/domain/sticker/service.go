package sticker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"stickerboard/internal/blobstore"
)

const (
	// MaxFileSize is the hard per-sticker upload ceiling.
	MaxFileSize = 1024 * 1024

	blobRoot   = "stickers"
	maxNameLen = 64
)

// allowedMimeTypes is matched against the sniffed content type, never
// the client-declared one.
var allowedMimeTypes = []string{
	"image/png",
	"image/jpeg",
	"image/gif",
	"image/webp",
	"image/svg+xml",
}

// Service orchestrates category/sticker persistence and blob storage.
// Every method takes the authenticated caller's id explicitly; there is
// no ambient session state.
type Service struct {
	categories CategoryRepository
	stickers   StickerRepository
	blobs      blobstore.Store
}

func NewService(categories CategoryRepository, stickers StickerRepository, blobs blobstore.Store) *Service {
	return &Service{categories: categories, stickers: stickers, blobs: blobs}
}

// Download carries blob bytes plus the transfer metadata for serving
// them as a file response.
type Download struct {
	Data     []byte
	Name     string
	MimeType string
}

func (s *Service) GetCategories(ctx context.Context, callerID string) ([]*Category, error) {
	return s.categories.ListForOwner(ctx, callerID)
}

func (s *Service) CreateCategory(ctx context.Context, callerID, name string, order int) (*Category, error) {
	_, err := s.categories.FindByNameForOwner(ctx, name, callerID)
	if err == nil {
		return nil, ErrCategoryExists
	}
	if !errors.Is(err, ErrCategoryNotFound) {
		return nil, err
	}

	category := &Category{
		Name:   name,
		UserID: callerID,
		Order:  order,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes an empty category. Deletion with stickers
// still in the category is refused rather than cascaded.
func (s *Service) DeleteCategory(ctx context.Context, callerID string, categoryID int64) error {
	category, err := s.findOwnedCategory(ctx, callerID, categoryID)
	if err != nil {
		return err
	}

	n, err := s.stickers.CountByCategory(ctx, category.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrCategoryNotEmpty
	}

	return s.categories.Delete(ctx, category.ID)
}

func (s *Service) GetStickers(ctx context.Context, callerID string, categoryID int64) ([]*Sticker, error) {
	if _, err := s.findOwnedCategory(ctx, callerID, categoryID); err != nil {
		return nil, err
	}
	return s.stickers.ListByCategory(ctx, categoryID)
}

// Upload validates the file, writes its bytes to the blob store and
// only then records the sticker. A failed blob write leaves no
// metadata behind.
func (s *Service) Upload(ctx context.Context, callerID string, categoryID int64, fileHeader *multipart.FileHeader) (*Sticker, error) {
	category, err := s.findOwnedCategory(ctx, callerID, categoryID)
	if err != nil {
		return nil, err
	}

	if fileHeader == nil || fileHeader.Size == 0 {
		return nil, ErrNoFile
	}
	if fileHeader.Size > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoFile
	}

	mimeType, err := sniffMimeType(data)
	if err != nil {
		return nil, err
	}

	folder := path.Join(blobRoot, strconv.FormatInt(category.ID, 10))
	if err := s.blobs.EnsureFolder(ctx, folder); err != nil {
		return nil, ErrStorageFailed
	}

	originalName := sanitizeFilename(fileHeader.Filename)
	filename := uuid.NewString() + "-" + originalName
	if err := s.blobs.WriteFile(ctx, folder, filename, data); err != nil {
		return nil, ErrStorageFailed
	}

	uploadedBy := callerID
	sticker := &Sticker{
		CategoryID: category.ID,
		Name:       originalName,
		Path:       path.Join(folder, filename),
		MimeType:   mimeType,
		UploadedBy: &uploadedBy,
		UploadTime: time.Now().Unix(),
	}
	if err := s.stickers.Create(ctx, sticker); err != nil {
		// Roll the blob back so a metadata failure leaves no orphan.
		_ = s.blobs.DeleteFile(ctx, sticker.Path)
		return nil, err
	}

	return sticker, nil
}

// Delete removes a sticker's blob and metadata. Only the uploader may
// delete; an anonymous caller is refused the same way. The blob delete
// is best-effort, a missing blob never blocks record deletion.
func (s *Service) Delete(ctx context.Context, callerID string, stickerID int64) error {
	sticker, err := s.stickers.FindByID(ctx, stickerID)
	if err != nil {
		return err
	}

	if callerID == "" || sticker.UploadedBy == nil || *sticker.UploadedBy != callerID {
		return ErrNotUploader
	}

	_ = s.blobs.DeleteFile(ctx, sticker.Path)

	return s.stickers.Delete(ctx, sticker.ID)
}

// GetDownload loads a sticker's bytes. Stickers are readable by any
// authenticated caller, not only the uploader; authentication itself
// is the transport's concern.
func (s *Service) GetDownload(ctx context.Context, stickerID int64) (*Download, error) {
	sticker, err := s.stickers.FindByID(ctx, stickerID)
	if err != nil {
		return nil, err
	}

	data, err := s.blobs.ReadFile(ctx, sticker.Path)
	if errors.Is(err, blobstore.ErrNotFound) {
		// Metadata/blob drift: the record outlived its blob.
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	return &Download{
		Data:     data,
		Name:     sticker.Name,
		MimeType: sticker.MimeType,
	}, nil
}

// findOwnedCategory resolves a category and checks ownership. A
// category owned by someone else reads as missing so the response
// never confirms that another user's category exists.
func (s *Service) findOwnedCategory(ctx context.Context, callerID string, categoryID int64) (*Category, error) {
	category, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category.UserID != callerID {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

func sniffMimeType(data []byte) (string, error) {
	detected := mimetype.Detect(data)
	for _, allowed := range allowedMimeTypes {
		if detected.Is(allowed) {
			return allowed, nil
		}
	}
	return "", ErrInvalidFileType
}

func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "file"
	}
	if len(name) > maxNameLen {
		// Keep the extension when truncating.
		ext := path.Ext(name)
		if len(ext) >= maxNameLen {
			ext = ""
		}
		name = name[:maxNameLen-len(ext)] + ext
	}
	return name
}

package sticker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/gorm/logger"

	"stickerboard/internal/blobstore"
	"stickerboard/internal/database"
)

// pngBytes is a minimal valid PNG signature, enough for sniffing.
var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}

var gifBytes = []byte("GIF89a\x01\x00\x01\x00")

func setupTestService(t *testing.T) (*Service, *blobstore.Disk) {
	t.Helper()
	dsn := fmt.Sprintf("file:sticker_test_%s?mode=memory&cache=shared", t.Name())
	db, err := database.Connect(dsn)
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	db.Logger = logger.Default.LogMode(logger.Silent)
	if err := db.AutoMigrate(&Category{}, &Sticker{}); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}

	blobs, err := blobstore.NewDisk(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create blob store: %v", err)
	}

	return NewService(NewCategoryRepository(db), NewStickerRepository(db), blobs), blobs
}

func fileHeader(t *testing.T, filename string, data []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	_, fh, err := req.FormFile("file")
	if err != nil {
		t.Fatalf("failed to parse form file: %v", err)
	}
	return fh
}

func mustCategory(t *testing.T, svc *Service, owner, name string) *Category {
	t.Helper()
	c, err := svc.CreateCategory(context.Background(), owner, name, 0)
	if err != nil {
		t.Fatalf("CreateCategory returned error: %v", err)
	}
	return c
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateCategory(ctx, "user-a", "emoji", 0); err != nil {
		t.Fatalf("first CreateCategory returned error: %v", err)
	}
	if _, err := svc.CreateCategory(ctx, "user-a", "emoji", 0); !errors.Is(err, ErrCategoryExists) {
		t.Fatalf("expected ErrCategoryExists, got %v", err)
	}

	// Same name under a different owner is a separate scope.
	if _, err := svc.CreateCategory(ctx, "user-b", "emoji", 0); err != nil {
		t.Fatalf("CreateCategory for other owner returned error: %v", err)
	}
}

func TestGetCategoriesScopedToOwnerAndOrdered(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateCategory(ctx, "user-a", "second", 2); err != nil {
		t.Fatalf("CreateCategory returned error: %v", err)
	}
	if _, err := svc.CreateCategory(ctx, "user-a", "first", 1); err != nil {
		t.Fatalf("CreateCategory returned error: %v", err)
	}
	if _, err := svc.CreateCategory(ctx, "user-b", "other", 0); err != nil {
		t.Fatalf("CreateCategory returned error: %v", err)
	}

	categories, err := svc.GetCategories(ctx, "user-a")
	if err != nil {
		t.Fatalf("GetCategories returned error: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categories))
	}
	if categories[0].Name != "first" || categories[1].Name != "second" {
		t.Fatalf("categories not ordered by sort key: %s, %s", categories[0].Name, categories[1].Name)
	}
	for _, c := range categories {
		if c.UserID != "user-a" {
			t.Fatalf("category %q leaked from owner %q", c.Name, c.UserID)
		}
	}
}

func TestGetStickersMasksForeignCategoryAsNotFound(t *testing.T) {
	svc, _ := setupTestService(t)
	category := mustCategory(t, svc, "user-a", "emoji")

	_, err := svc.GetStickers(context.Background(), "user-b", category.ID)
	if !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound for foreign category, got %v", err)
	}
}

func TestUploadAndDownloadRoundTrip(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()
	category := mustCategory(t, svc, "user-a", "emoji")

	sticker, err := svc.Upload(ctx, "user-a", category.ID, fileHeader(t, "cat.png", pngBytes))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if sticker.MimeType != "image/png" {
		t.Fatalf("expected image/png, got %s", sticker.MimeType)
	}
	if sticker.Name != "cat.png" {
		t.Fatalf("expected original filename, got %s", sticker.Name)
	}
	if sticker.UploadedBy == nil || *sticker.UploadedBy != "user-a" {
		t.Fatalf("uploader not recorded: %v", sticker.UploadedBy)
	}
	if !strings.HasPrefix(sticker.Path, fmt.Sprintf("stickers/%d/", category.ID)) {
		t.Fatalf("unexpected blob path %s", sticker.Path)
	}

	stickers, err := svc.GetStickers(ctx, "user-a", category.ID)
	if err != nil {
		t.Fatalf("GetStickers returned error: %v", err)
	}
	if len(stickers) != 1 || stickers[0].ID != sticker.ID {
		t.Fatalf("uploaded sticker missing from listing")
	}

	dl, err := svc.GetDownload(ctx, sticker.ID)
	if err != nil {
		t.Fatalf("GetDownload returned error: %v", err)
	}
	if !bytes.Equal(dl.Data, pngBytes) {
		t.Fatalf("downloaded bytes differ from uploaded bytes")
	}
	if dl.Name != "cat.png" || dl.MimeType != "image/png" {
		t.Fatalf("unexpected transfer metadata: %s %s", dl.Name, dl.MimeType)
	}
}

func TestUploadConcurrentNamesDoNotCollide(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()
	category := mustCategory(t, svc, "user-a", "emoji")

	first, err := svc.Upload(ctx, "user-a", category.ID, fileHeader(t, "same.png", pngBytes))
	if err != nil {
		t.Fatalf("first Upload returned error: %v", err)
	}
	second, err := svc.Upload(ctx, "user-a", category.ID, fileHeader(t, "same.png", gifBytes))
	if err != nil {
		t.Fatalf("second Upload returned error: %v", err)
	}
	if first.Path == second.Path {
		t.Fatalf("two uploads share blob path %s", first.Path)
	}
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	svc, _ := setupTestService(t)
	category := mustCategory(t, svc, "user-a", "emoji")

	big := make([]byte, MaxFileSize+1)
	copy(big, pngBytes)

	_, err := svc.Upload(context.Background(), "user-a", category.ID, fileHeader(t, "big.png", big))
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestUploadRejectsDisallowedContent(t *testing.T) {
	svc, _ := setupTestService(t)
	category := mustCategory(t, svc, "user-a", "emoji")

	// Extension claims PNG, bytes say plain text. Sniffing wins.
	_, err := svc.Upload(context.Background(), "user-a", category.ID, fileHeader(t, "fake.png", []byte("just some text")))
	if !errors.Is(err, ErrInvalidFileType) {
		t.Fatalf("expected ErrInvalidFileType, got %v", err)
	}
}

func TestUploadRejectsMissingFile(t *testing.T) {
	svc, _ := setupTestService(t)
	category := mustCategory(t, svc, "user-a", "emoji")

	_, err := svc.Upload(context.Background(), "user-a", category.ID, nil)
	if !errors.Is(err, ErrNoFile) {
		t.Fatalf("expected ErrNoFile, got %v", err)
	}
}

func TestUploadToForeignCategoryMaskedAsNotFound(t *testing.T) {
	svc, _ := setupTestService(t)
	category := mustCategory(t, svc, "user-a", "emoji")

	_, err := svc.Upload(context.Background(), "user-b", category.ID, fileHeader(t, "cat.png", pngBytes))
	if !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestUploadFailedBlobWriteLeavesNoRecord(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()
	category := mustCategory(t, svc, "user-a", "emoji")

	svc.blobs = failingStore{}

	_, err := svc.Upload(ctx, "user-a", category.ID, fileHeader(t, "cat.png", pngBytes))
	if !errors.Is(err, ErrStorageFailed) {
		t.Fatalf("expected ErrStorageFailed, got %v", err)
	}

	stickers, err := svc.stickers.ListByCategory(ctx, category.ID)
	if err != nil {
		t.Fatalf("ListByCategory returned error: %v", err)
	}
	if len(stickers) != 0 {
		t.Fatalf("orphaned metadata row after failed blob write")
	}
}

func TestDeleteByNonUploaderForbidden(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()
	category := mustCategory(t, svc, "user-a", "emoji")

	sticker, err := svc.Upload(ctx, "user-a", category.ID, fileHeader(t, "cat.png", pngBytes))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	if err := svc.Delete(ctx, "user-b", sticker.ID); !errors.Is(err, ErrNotUploader) {
		t.Fatalf("expected ErrNotUploader for non-uploader, got %v", err)
	}
	if err := svc.Delete(ctx, "", sticker.ID); !errors.Is(err, ErrNotUploader) {
		t.Fatalf("expected ErrNotUploader for anonymous caller, got %v", err)
	}

	// The sticker must remain retrievable after the refused deletes.
	if _, err := svc.GetDownload(ctx, sticker.ID); err != nil {
		t.Fatalf("sticker no longer retrievable: %v", err)
	}
}

func TestDeleteByUploaderRemovesBlobAndRecord(t *testing.T) {
	svc, blobs := setupTestService(t)
	ctx := context.Background()
	category := mustCategory(t, svc, "user-a", "emoji")

	sticker, err := svc.Upload(ctx, "user-a", category.ID, fileHeader(t, "cat.png", pngBytes))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	if err := svc.Delete(ctx, "user-a", sticker.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if _, err := svc.GetDownload(ctx, sticker.ID); !errors.Is(err, ErrStickerNotFound) {
		t.Fatalf("expected ErrStickerNotFound after delete, got %v", err)
	}
	if _, err := blobs.ReadFile(ctx, sticker.Path); !errors.Is(err, blobstore.ErrNotFound) {
		t.Fatalf("blob still present after delete")
	}

	stickers, err := svc.GetStickers(ctx, "user-a", category.ID)
	if err != nil {
		t.Fatalf("GetStickers returned error: %v", err)
	}
	if len(stickers) != 0 {
		t.Fatalf("deleted sticker still listed")
	}
}

func TestDeleteSurvivesMissingBlob(t *testing.T) {
	svc, blobs := setupTestService(t)
	ctx := context.Background()
	category := mustCategory(t, svc, "user-a", "emoji")

	sticker, err := svc.Upload(ctx, "user-a", category.ID, fileHeader(t, "cat.png", pngBytes))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	if err := blobs.DeleteFile(ctx, sticker.Path); err != nil {
		t.Fatalf("DeleteFile returned error: %v", err)
	}

	if err := svc.Delete(ctx, "user-a", sticker.ID); err != nil {
		t.Fatalf("Delete with missing blob returned error: %v", err)
	}
	if _, err := svc.stickers.FindByID(ctx, sticker.ID); !errors.Is(err, ErrStickerNotFound) {
		t.Fatalf("metadata row survived delete: %v", err)
	}
}

func TestDownloadMissingBlobIsFileNotFound(t *testing.T) {
	svc, blobs := setupTestService(t)
	ctx := context.Background()
	category := mustCategory(t, svc, "user-a", "emoji")

	sticker, err := svc.Upload(ctx, "user-a", category.ID, fileHeader(t, "cat.png", pngBytes))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if err := blobs.DeleteFile(ctx, sticker.Path); err != nil {
		t.Fatalf("DeleteFile returned error: %v", err)
	}

	if _, err := svc.GetDownload(ctx, sticker.ID); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound on drifted record, got %v", err)
	}
}

func TestDeleteCategoryRefusesNonEmpty(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()
	category := mustCategory(t, svc, "user-a", "emoji")

	if _, err := svc.Upload(ctx, "user-a", category.ID, fileHeader(t, "cat.png", pngBytes)); err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	if err := svc.DeleteCategory(ctx, "user-a", category.ID); !errors.Is(err, ErrCategoryNotEmpty) {
		t.Fatalf("expected ErrCategoryNotEmpty, got %v", err)
	}
}

func TestDeleteCategoryEmpty(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()
	category := mustCategory(t, svc, "user-a", "emoji")

	if err := svc.DeleteCategory(ctx, "user-a", category.ID); err != nil {
		t.Fatalf("DeleteCategory returned error: %v", err)
	}
	if err := svc.DeleteCategory(ctx, "user-b", category.ID); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound after delete, got %v", err)
	}
}

// failingStore fails every write so blob/metadata consistency can be
// checked without touching the filesystem.
type failingStore struct{}

func (failingStore) EnsureFolder(ctx context.Context, path string) error { return nil }
func (failingStore) WriteFile(ctx context.Context, folder, filename string, data []byte) error {
	return blobstore.ErrWriteFailed
}
func (failingStore) ReadFile(ctx context.Context, path string) ([]byte, error) {
	return nil, blobstore.ErrNotFound
}
func (failingStore) DeleteFile(ctx context.Context, path string) error { return blobstore.ErrNotFound }

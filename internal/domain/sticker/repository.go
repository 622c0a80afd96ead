package sticker

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"stickerboard/internal/database"
)

type CategoryRepository interface {
	ListForOwner(ctx context.Context, ownerID string) ([]*Category, error)
	FindByNameForOwner(ctx context.Context, name, ownerID string) (*Category, error)
	FindByID(ctx context.Context, id int64) (*Category, error)
	Create(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id int64) error
}

type StickerRepository interface {
	ListByCategory(ctx context.Context, categoryID int64) ([]*Sticker, error)
	CountByCategory(ctx context.Context, categoryID int64) (int64, error)
	FindByID(ctx context.Context, id int64) (*Sticker, error)
	Create(ctx context.Context, s *Sticker) error
	Delete(ctx context.Context, id int64) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) ListForOwner(ctx context.Context, ownerID string) ([]*Category, error) {
	var categories []*Category
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("sort_order ASC").
		Find(&categories).Error
	return categories, err
}

func (r *categoryRepository) FindByNameForOwner(ctx context.Context, name, ownerID string) (*Category, error) {
	var c Category
	err := r.db.WithContext(ctx).
		Where("name = ? AND user_id = ?", name, ownerID).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCategoryNotFound
	}
	return &c, err
}

func (r *categoryRepository) FindByID(ctx context.Context, id int64) (*Category, error) {
	var c Category
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCategoryNotFound
	}
	return &c, err
}

func (r *categoryRepository) Create(ctx context.Context, c *Category) error {
	err := r.db.WithContext(ctx).Create(c).Error
	// Safety net behind the service's pre-check: two concurrent creates
	// for the same (owner, name) can both pass the lookup, the unique
	// index catches the loser.
	if database.IsDuplicateKey(err) {
		return ErrCategoryExists
	}
	return err
}

func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&Category{}).Error
}

type stickerRepository struct {
	db *gorm.DB
}

func NewStickerRepository(db *gorm.DB) StickerRepository {
	return &stickerRepository{db: db}
}

func (r *stickerRepository) ListByCategory(ctx context.Context, categoryID int64) ([]*Sticker, error) {
	var stickers []*Sticker
	err := r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("id ASC").
		Find(&stickers).Error
	return stickers, err
}

func (r *stickerRepository) CountByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&Sticker{}).
		Where("category_id = ?", categoryID).
		Count(&n).Error
	return n, err
}

func (r *stickerRepository) FindByID(ctx context.Context, id int64) (*Sticker, error) {
	var s Sticker
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStickerNotFound
	}
	return &s, err
}

func (r *stickerRepository) Create(ctx context.Context, s *Sticker) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *stickerRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&Sticker{}).Error
}

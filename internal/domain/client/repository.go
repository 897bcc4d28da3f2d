package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the persistence contract for clients. Update writes c only when
// the stored version equals expectedVersion, and sets c.Version to the new one.
type Repository interface {
	List(ctx context.Context) ([]Client, error)
	Get(ctx context.Context, id uuid.UUID) (*Client, error)
	Create(ctx context.Context, c *Client) error
	Update(ctx context.Context, c *Client, expectedVersion int64) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) List(ctx context.Context) ([]Client, error) {
	var out []Client
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	for i := range out {
		out[i].normalize()
	}
	return out, nil
}

func (r *GormRepository) Get(ctx context.Context, id uuid.UUID) (*Client, error) {
	var c Client
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	c.normalize()
	return &c, nil
}

func (r *GormRepository) Create(ctx context.Context, c *Client) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

func (r *GormRepository) Update(ctx context.Context, c *Client, expectedVersion int64) error {
	c.Version = expectedVersion + 1
	c.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(c).
		Where("version = ?", expectedVersion).
		Select("*").
		Omit("created_at").
		Updates(c)
	if res.Error != nil {
		c.Version = expectedVersion
		return fmt.Errorf("update client: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		c.Version = expectedVersion
		return r.missOrStale(ctx, c.ID)
	}
	return nil
}

func (r *GormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&Client{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete client: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository) missOrStale(ctx context.Context, id uuid.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&Client{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("check client: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrStaleWrite
}

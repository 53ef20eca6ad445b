package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"nestlink/server/internal/models"
)

// listingRecord is the row layout of a generated listing. Position keeps
// the generation order, which callers rely on.
type listingRecord struct {
	ID          string   `gorm:"primaryKey;size:64"`
	Position    int      `gorm:"index;not null"`
	Title       string   `gorm:"size:200;not null"`
	Description string   `gorm:"size:1000"`
	Price       int      `gorm:"not null"`
	Location    string   `gorm:"size:200;index"`
	Latitude    float64
	Longitude   float64
	Type        string   `gorm:"size:20;not null"`
	Bedrooms    int
	Bathrooms   int
	Area        int
	Amenities   []string `gorm:"serializer:json"`
	Images      []string `gorm:"serializer:json"`

	HostID     string `gorm:"size:64"`
	HostName   string `gorm:"size:200"`
	HostEmail  string `gorm:"size:200"`
	HostPhone  string `gorm:"size:32"`
	HostAvatar string `gorm:"size:500"`
	HostIsHost bool

	Rating      float64
	ReviewCount int
	IsAvailable bool

	CreatedAt time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}

func (listingRecord) TableName() string {
	return "listings"
}

func toRecord(position int, l models.Listing) listingRecord {
	return listingRecord{
		ID:          l.ID,
		Position:    position,
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Location:    l.Location,
		Latitude:    l.Coordinates.Latitude,
		Longitude:   l.Coordinates.Longitude,
		Type:        string(l.Type),
		Bedrooms:    l.Bedrooms,
		Bathrooms:   l.Bathrooms,
		Area:        l.Area,
		Amenities:   l.Amenities,
		Images:      l.Images,
		HostID:      l.Host.ID,
		HostName:    l.Host.Name,
		HostEmail:   l.Host.Email,
		HostPhone:   l.Host.Phone,
		HostAvatar:  l.Host.Avatar,
		HostIsHost:  l.Host.IsHost,
		Rating:      l.Rating,
		ReviewCount: l.ReviewCount,
		IsAvailable: l.IsAvailable,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func (r listingRecord) toListing() models.Listing {
	return models.Listing{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Location:    r.Location,
		Coordinates: models.Coordinates{Latitude: r.Latitude, Longitude: r.Longitude},
		Type:        models.PropertyType(r.Type),
		Bedrooms:    r.Bedrooms,
		Bathrooms:   r.Bathrooms,
		Area:        r.Area,
		Amenities:   r.Amenities,
		Images:      r.Images,
		Host: models.User{
			ID:     r.HostID,
			Name:   r.HostName,
			Email:  r.HostEmail,
			Phone:  r.HostPhone,
			Avatar: r.HostAvatar,
			IsHost: r.HostIsHost,
		},
		Rating:      r.Rating,
		ReviewCount: r.ReviewCount,
		IsAvailable: r.IsAvailable,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// ReplaceListings swaps the stored catalog for listings in one transaction.
// On error the previous catalog is kept.
func (d *Database) ReplaceListings(ctx context.Context, listings []models.Listing) error {
	records := make([]listingRecord, len(listings))
	for i, l := range listings {
		records[i] = toRecord(i, l)
	}

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&listingRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear listings: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(records, 100).Error; err != nil {
			return fmt.Errorf("failed to insert listings: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	d.logger.WithField("count", len(records)).Debug("Replaced stored listings")
	return nil
}

// GetAllListings returns the stored catalog in generation order.
func (d *Database) GetAllListings(ctx context.Context) ([]models.Listing, error) {
	var records []listingRecord
	if err := d.db.WithContext(ctx).Order("position asc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to get listings: %w", err)
	}

	listings := make([]models.Listing, len(records))
	for i, r := range records {
		listings[i] = r.toListing()
	}
	return listings, nil
}

// GetListing returns a single listing by id.
func (d *Database) GetListing(ctx context.Context, id string) (models.Listing, error) {
	var record listingRecord
	if err := d.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Listing{}, ErrNotFound
		}
		return models.Listing{}, fmt.Errorf("failed to get listing: %w", err)
	}
	return record.toListing(), nil
}

// CountListings returns the number of stored listings.
func (d *Database) CountListings(ctx context.Context) (int64, error) {
	var count int64
	if err := d.db.WithContext(ctx).Model(&listingRecord{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return count, nil
}

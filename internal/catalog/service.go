package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"nestlink/server/internal/database"
	"nestlink/server/internal/delay"
	"nestlink/server/internal/geocoding"
	"nestlink/server/internal/models"
)

var ErrListingNotFound = errors.New("listing not found")

// Repository stores the current catalog.
type Repository interface {
	ReplaceListings(ctx context.Context, listings []models.Listing) error
	GetAllListings(ctx context.Context) ([]models.Listing, error)
	GetListing(ctx context.Context, id string) (models.Listing, error)
}

type Options struct {
	Size          int
	FeaturedCount int
	LoadDelay     time.Duration
	SearchDelay   time.Duration
}

// Service owns the listing catalog shown by the explore and home screens.
type Service struct {
	repo      Repository
	generator *Generator
	geocoder  *geocoding.Geocoder
	opts      Options
	logger    *logrus.Logger

	loading atomic.Int32
	refresh singleflight.Group
}

func NewService(repo Repository, generator *Generator, geocoder *geocoding.Geocoder, opts Options, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if generator == nil {
		generator = NewGenerator(nil)
	}
	if geocoder == nil {
		geocoder = geocoding.NewGeocoder(logger)
	}
	if opts.FeaturedCount <= 0 {
		opts.FeaturedCount = DefaultFeaturedCount
	}

	return &Service{
		repo:      repo,
		generator: generator,
		geocoder:  geocoder,
		opts:      opts,
		logger:    logger,
	}
}

// Load generates a new catalog and makes it current. A failed or cancelled
// load keeps the previous catalog.
func (s *Service) Load(ctx context.Context) error {
	s.loading.Add(1)
	defer s.loading.Add(-1)

	if err := delay.Wait(ctx, s.opts.LoadDelay); err != nil {
		return fmt.Errorf("catalog load interrupted: %w", err)
	}

	listings := s.generator.Generate(s.opts.Size)
	if err := s.repo.ReplaceListings(ctx, listings); err != nil {
		s.logger.WithError(err).Error("Failed to store generated listings")
		return fmt.Errorf("failed to store listings: %w", err)
	}

	s.logger.WithField("count", len(listings)).Info("Loaded listing catalog")
	return nil
}

// Refresh reloads the catalog. Calls that overlap an ongoing refresh wait
// for it and share its result. The shared load does not stop when one
// caller gives up; that caller just stops waiting.
func (s *Service) Refresh(ctx context.Context) error {
	ch := s.refresh.DoChan("refresh", func() (any, error) {
		return nil, s.Load(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Shared {
			s.logger.Debug("Joined in-flight catalog refresh")
		}
		return res.Err
	case <-ctx.Done():
		return fmt.Errorf("catalog refresh interrupted: %w", ctx.Err())
	}
}

// IsLoading reports whether a load is in progress.
func (s *Service) IsLoading() bool {
	return s.loading.Load() > 0
}

func (s *Service) Listings(ctx context.Context) ([]models.Listing, error) {
	listings, err := s.repo.GetAllListings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return listings, nil
}

// FeaturedListings returns the head of the catalog.
func (s *Service) FeaturedListings(ctx context.Context) ([]models.Listing, error) {
	listings, err := s.Listings(ctx)
	if err != nil {
		return nil, err
	}
	return Featured(listings, s.opts.FeaturedCount), nil
}

func (s *Service) Get(ctx context.Context, id string) (models.Listing, error) {
	listing, err := s.repo.GetListing(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return models.Listing{}, fmt.Errorf("%w: %s", ErrListingNotFound, id)
	}
	if err != nil {
		return models.Listing{}, fmt.Errorf("failed to read listing: %w", err)
	}
	return listing, nil
}

// Search runs a text search over the current catalog after the simulated
// request delay.
func (s *Service) Search(ctx context.Context, query string) ([]models.Listing, error) {
	s.loading.Add(1)
	defer s.loading.Add(-1)

	if err := delay.Wait(ctx, s.opts.SearchDelay); err != nil {
		return nil, fmt.Errorf("search interrupted: %w", err)
	}

	listings, err := s.Listings(ctx)
	if err != nil {
		return nil, err
	}

	result := Search(query, listings)
	s.logger.WithFields(logrus.Fields{
		"query":   query,
		"matches": len(result),
	}).Debug("Searched catalog")
	return result, nil
}

// NearbyPoint returns listings within radiusKm of a coordinate.
func (s *Service) NearbyPoint(ctx context.Context, latitude, longitude, radiusKm float64) ([]models.Listing, error) {
	listings, err := s.Listings(ctx)
	if err != nil {
		return nil, err
	}
	return Nearby(orb.Point{longitude, latitude}, radiusKm, listings), nil
}

// NearbyPlace returns listings within radiusKm of a named place.
func (s *Service) NearbyPlace(ctx context.Context, place string, radiusKm float64) ([]models.Listing, error) {
	center, err := s.geocoder.Geocode(place)
	if err != nil {
		return nil, err
	}
	return s.NearbyPoint(ctx, center.Lat(), center.Lon(), radiusKm)
}

package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"nestlink/server/internal/auth"
	"nestlink/server/internal/catalog"
	"nestlink/server/internal/chat"
	"nestlink/server/internal/checkout"
	"nestlink/server/internal/geocoding"
	"nestlink/server/internal/geometry"
	"nestlink/server/internal/payment"
	"nestlink/server/internal/procurement"
	"nestlink/server/internal/relocation"
)

const defaultNearbyRadiusKm = 5.0

// Services are the stores and collaborators the API drives. They are built
// once by the caller and shared by every request.
type Services struct {
	Catalog  *catalog.Service
	Cart     *procurement.Store
	Payments *payment.Store
	Attempt  *payment.Attempt
	Checkout *checkout.Service
	Booker   *relocation.Booker
	Chat     *chat.Session
	Auth     *auth.Service
}

type Handler struct {
	Services
	logger *logrus.Logger
}

func NewHandler(services Services, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Handler{Services: services, logger: logger}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"catalog_loading": h.Catalog.IsLoading(),
	})
}

func (h *Handler) GetListings(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		listings, err := h.Catalog.Listings(c.Request.Context())
		if err != nil {
			h.fail(c, err, "Failed to get listings")
			return
		}
		c.JSON(http.StatusOK, listings)
		return
	}

	listings, err := h.Catalog.Search(c.Request.Context(), query)
	if err != nil {
		h.fail(c, err, "Failed to search listings")
		return
	}
	c.JSON(http.StatusOK, listings)
}

func (h *Handler) GetFeaturedListings(c *gin.Context) {
	listings, err := h.Catalog.FeaturedListings(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to get featured listings")
		return
	}
	c.JSON(http.StatusOK, listings)
}

// GetNearbyListings accepts either lat and lng or a place name.
func (h *Handler) GetNearbyListings(c *gin.Context) {
	radius := defaultNearbyRadiusKm
	if raw := c.Query("radius_km"); raw != "" {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil || r <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "radius_km must be a positive number"})
			return
		}
		radius = r
	}

	if place := strings.TrimSpace(c.Query("place")); place != "" {
		listings, err := h.Catalog.NearbyPlace(c.Request.Context(), place, radius)
		if err != nil {
			h.fail(c, err, "Failed to find nearby listings")
			return
		}
		c.JSON(http.StatusOK, listings)
		return
	}

	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng, or place, are required"})
		return
	}

	listings, err := h.Catalog.NearbyPoint(c.Request.Context(), lat, lng, radius)
	if err != nil {
		h.fail(c, err, "Failed to find nearby listings")
		return
	}
	c.JSON(http.StatusOK, listings)
}

func (h *Handler) GetListingsGeoJSON(c *gin.Context) {
	listings, err := h.Catalog.Listings(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to get listings")
		return
	}
	c.JSON(http.StatusOK, geometry.ListingsFeatureCollection(listings))
}

func (h *Handler) GetListingsCoverage(c *gin.Context) {
	listings, err := h.Catalog.Listings(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to get listings")
		return
	}
	c.JSON(http.StatusOK, geometry.CoverageFeatureCollection(listings))
}

func (h *Handler) GetListing(c *gin.Context) {
	listing, err := h.Catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Failed to get listing")
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (h *Handler) RefreshListings(c *gin.Context) {
	if err := h.Catalog.Refresh(c.Request.Context()); err != nil {
		h.fail(c, err, "Failed to refresh listings")
		return
	}
	listings, err := h.Catalog.Listings(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to get listings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(listings)})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, checkout.ErrSignInRequired),
		errors.Is(err, auth.ErrNotSignedIn),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized

	case errors.Is(err, catalog.ErrListingNotFound),
		errors.Is(err, chat.ErrMessageNotFound):
		return http.StatusNotFound

	case errors.Is(err, payment.ErrPaymentInProgress),
		errors.Is(err, payment.ErrAttemptCompleted):
		return http.StatusConflict

	case errors.Is(err, chat.ErrReplyQueueFull):
		return http.StatusTooManyRequests

	case errors.Is(err, payment.ErrInvalidPhoneNumber),
		errors.Is(err, payment.ErrInvalidAmount),
		errors.Is(err, payment.ErrInvalidType),
		errors.Is(err, payment.ErrNothingToPay),
		errors.Is(err, checkout.ErrEmptyProcurement),
		errors.Is(err, relocation.ErrVehicleRequired),
		errors.Is(err, relocation.ErrUnknownVehicle),
		errors.Is(err, relocation.ErrLocationsRequired),
		errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, chat.ErrNotEditing),
		errors.Is(err, auth.ErrCredentialsRequired),
		errors.Is(err, auth.ErrNameRequired),
		errors.Is(err, auth.ErrPasswordMismatch),
		errors.Is(err, auth.ErrUnknownUserType),
		errors.Is(err, geocoding.ErrPlaceNotFound):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// fail writes err with its mapped status. Server errors are logged with
// msg and their detail is not exposed.
func (h *Handler) fail(c *gin.Context, err error, msg string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).WithField("path", c.FullPath()).Error(msg)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

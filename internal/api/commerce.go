package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"nestlink/server/internal/models"
	"nestlink/server/internal/payment"
	"nestlink/server/internal/pricing"
	"nestlink/server/internal/relocation"
)

type procurementView struct {
	Items     []models.ProcurementItem `json:"items"`
	ItemCount int                      `json:"item_count"`
	Summary   pricing.Summary          `json:"summary"`
}

type addProcurementRequest struct {
	ListingID string `json:"listing_id" binding:"required"`
}

type paymentView struct {
	Items     []models.PaymentItem `json:"items"`
	ItemCount int                  `json:"item_count"`
	Total     int                  `json:"total"`
	Stage     payment.Stage        `json:"stage"`
}

type mobileMoneyRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
}

func (h *Handler) procurementView() procurementView {
	return procurementView{
		Items:     h.Cart.Items(),
		ItemCount: h.Cart.ItemCount(),
		Summary:   h.Checkout.Summary(),
	}
}

func (h *Handler) paymentView() paymentView {
	return paymentView{
		Items:     h.Payments.Items(),
		ItemCount: h.Payments.ItemCount(),
		Total:     h.Payments.Total(),
		Stage:     h.Attempt.Stage(),
	}
}

func (h *Handler) GetProcurement(c *gin.Context) {
	c.JSON(http.StatusOK, h.procurementView())
}

// AddToProcurement adds a catalog listing to the cart. Adding a listing
// that is already there succeeds without changing the cart.
func (h *Handler) AddToProcurement(c *gin.Context) {
	var req addProcurementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "listing_id is required"})
		return
	}

	listing, err := h.Catalog.Get(c.Request.Context(), req.ListingID)
	if err != nil {
		h.fail(c, err, "Failed to get listing")
		return
	}

	status := http.StatusOK
	if h.Cart.Add(listing) {
		status = http.StatusCreated
		h.logger.WithField("listing_id", listing.ID).Info("Added listing to procurement")
	}
	c.JSON(status, h.procurementView())
}

func (h *Handler) RemoveFromProcurement(c *gin.Context) {
	h.Cart.Remove(c.Param("id"))
	c.JSON(http.StatusOK, h.procurementView())
}

func (h *Handler) ClearProcurement(c *gin.Context) {
	h.Cart.Clear()
	c.JSON(http.StatusOK, h.procurementView())
}

func (h *Handler) CheckoutProcurement(c *gin.Context) {
	item, err := h.Checkout.ProcurementCheckout(currentUser(c))
	if err != nil {
		h.fail(c, err, "Failed to check out")
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) GetVehicles(c *gin.Context) {
	c.JSON(http.StatusOK, h.Booker.Vehicles())
}

func (h *Handler) BookRelocation(c *gin.Context) {
	var req relocation.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	item, err := h.Checkout.BookRelocation(req)
	if err != nil {
		h.fail(c, err, "Failed to book relocation")
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) GetPayment(c *gin.Context) {
	c.JSON(http.StatusOK, h.paymentView())
}

func (h *Handler) ClearPayment(c *gin.Context) {
	err := h.Attempt.Update(func(payments *payment.Store) error {
		payments.Clear()
		return nil
	})
	if err != nil {
		h.fail(c, err, "Failed to clear payment")
		return
	}
	c.JSON(http.StatusOK, h.paymentView())
}

func (h *Handler) GetPaymentMethods(c *gin.Context) {
	c.JSON(http.StatusOK, payment.DefaultMethods())
}

// PayMobileMoney runs the charge for everything queued. It blocks for the
// gateway's processing time. A declined charge answers 402 with the result.
func (h *Handler) PayMobileMoney(c *gin.Context) {
	var req mobileMoneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": payment.ErrInvalidPhoneNumber.Error()})
		return
	}

	result, err := h.Attempt.Submit(c.Request.Context(), strings.TrimSpace(req.PhoneNumber))
	if err != nil {
		h.fail(c, err, "Failed to process payment")
		return
	}
	if !result.Succeeded() {
		c.JSON(http.StatusPaymentRequired, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) ResetPayment(c *gin.Context) {
	h.Attempt.Reset()
	c.JSON(http.StatusOK, gin.H{"stage": h.Attempt.Stage()})
}

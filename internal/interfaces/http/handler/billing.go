package handler

import (
	"io"
	"net/http"

	appbilling "github.com/appforge/backend/internal/application/billing"
	"github.com/appforge/backend/internal/domain/billing"
	"github.com/appforge/backend/internal/infrastructure/logger"
	"github.com/appforge/backend/internal/interfaces/http/dto"
	"github.com/appforge/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookObserver is told how each delivered event was handled
type WebhookObserver func(eventType, result string)

// BillingHandler handles checkout, the customer portal and Stripe webhooks
type BillingHandler struct {
	BaseHandler
	billing  *appbilling.Service
	webhooks *appbilling.StripeWebhookService
	observe  WebhookObserver
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(svc *appbilling.Service, webhooks *appbilling.StripeWebhookService, observe WebhookObserver) *BillingHandler {
	if observe == nil {
		observe = func(string, string) {}
	}
	return &BillingHandler{billing: svc, webhooks: webhooks, observe: observe}
}

// WebhooksEnabled reports whether Stripe events can be verified. The webhook
// route is only mounted when this is true.
func (h *BillingHandler) WebhooksEnabled() bool {
	return h.webhooks != nil && h.webhooks.Enabled()
}

// CheckoutRequest is the POST /billing/checkout body
type CheckoutRequest struct {
	Tier     string `json:"tier" binding:"required,oneof=pro team"`
	Interval string `json:"interval" binding:"required,oneof=month year"`
}

// Checkout handles POST /billing/checkout
// @Summary      Start a Stripe checkout session
// @Tags         billing
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CheckoutRequest true "Plan to buy"
// @Success      200 {object} dto.Response{data=appbilling.CheckoutResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/checkout [post]
func (h *BillingHandler) Checkout(c *gin.Context) {
	id, ok := h.accountID(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if !h.bindJSON(c, &req) {
		return
	}

	res, err := h.billing.Checkout(c.Request.Context(), id, appbilling.CheckoutInput{
		Tier:     billing.Tier(req.Tier),
		Interval: billing.Interval(req.Interval),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// Portal handles POST /billing/portal
// @Summary      Open the Stripe customer portal
// @Tags         billing
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.Response{data=appbilling.PortalResult}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/portal [post]
func (h *BillingHandler) Portal(c *gin.Context) {
	id, ok := h.accountID(c)
	if !ok {
		return
	}
	res, err := h.billing.Portal(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// Subscription handles GET /billing/subscription
// @Summary      Get the current subscription
// @Tags         billing
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.Response{data=appbilling.SubscriptionView}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/subscription [get]
func (h *BillingHandler) Subscription(c *gin.Context) {
	id, ok := h.accountID(c)
	if !ok {
		return
	}
	view, err := h.billing.Subscription(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// StripeWebhook handles POST /webhooks/stripe.
// Anything past signature verification is acknowledged with 200 so Stripe
// does not retry events we already logged as failed.
// @Summary      Receive Stripe events
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        Stripe-Signature header string true "Stripe signature"
// @Success      200 {object} dto.Response{data=appbilling.WebhookResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /webhooks/stripe [post]
func (h *BillingHandler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		if middleware.IsBodyTooLarge(err) {
			middleware.AbortBodyTooLarge(c)
			return
		}
		h.BadRequest(c, "Failed to read request body")
		return
	}

	res, err := h.webhooks.ProcessWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.observe("unknown", "rejected")
		logger.GetGinLogger(c).Warn("Stripe webhook rejected", zap.Error(err))
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Invalid webhook signature")
		return
	}

	switch {
	case res.Duplicate:
		h.observe(res.EventType, "duplicate")
	case res.Processed:
		h.observe(res.EventType, "processed")
	default:
		h.observe(res.EventType, "failed")
	}
	h.Success(c, res)
}

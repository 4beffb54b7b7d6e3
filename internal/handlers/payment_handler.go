package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hermon-k/roomshare/backend/internal/engine"
	"github.com/hermon-k/roomshare/backend/internal/middleware"
	"github.com/hermon-k/roomshare/backend/internal/repositories"
	"github.com/hermon-k/roomshare/backend/pkg/chapa"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// PaymentHandler handles checkout creation and payment confirmation
type PaymentHandler struct {
	engine         *engine.Engine
	chapaClient    *chapa.Client
	userRepository repositories.UserRepository
	baseURL        string
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(eng *engine.Engine, chapaClient *chapa.Client, userRepo repositories.UserRepository, baseURL string) *PaymentHandler {
	return &PaymentHandler{
		engine:         eng,
		chapaClient:    chapaClient,
		userRepository: userRepo,
		baseURL:        baseURL,
	}
}

// RegisterPaymentRoutes registers authenticated payment routes
func (h *PaymentHandler) RegisterPaymentRoutes(g *echo.Group) {
	g.POST("/payments/checkout", h.CreateCheckout)
	g.POST("/payments/mark-paid", h.MarkPaid)
}

// RegisterWebhookRoutes registers provider-facing routes that carry
// their own verification instead of a user token.
func (h *PaymentHandler) RegisterWebhookRoutes(g *echo.Group) {
	g.POST("/payments/chapa/webhook", h.ChapaWebhook)
}

// CheckoutRequest defines the request body for creating a checkout session
type CheckoutRequest struct {
	GroupID uint `json:"group_id" validate:"required"`
}

// CreateCheckout opens a Chapa checkout session for the caller's share
// of the group cost and returns the hosted checkout URL.
func (h *PaymentHandler) CreateCheckout(c echo.Context) error {
	userID, err := middleware.UserIDFromContext(c)
	if err != nil {
		return err
	}

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userRepository.GetUserByID(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Short, provider-compliant reference (alphanumeric and '-')
	txRef := fmt.Sprintf("grp%d-usr%d-%.8s", req.GroupID, userID, uuid.NewString())

	amount, err := h.engine.BeginCheckout(c.Request().Context(), req.GroupID, userID, txRef)
	if err != nil {
		return engineHTTPError(err)
	}

	checkoutURL, err := h.chapaClient.Initialize(c.Request().Context(), chapa.InitializeRequest{
		Amount:      strconv.FormatFloat(amount, 'f', -1, 64),
		Currency:    "ETB",
		Email:       chapa.SanitizeEmail(user.Email),
		FirstName:   chapa.SanitizeName(user.FirstName),
		LastName:    chapa.SanitizeName(user.LastName),
		TxRef:       txRef,
		ReturnURL:   fmt.Sprintf("%s/payments/chapa/return?tx_ref=%s", h.baseURL, txRef),
		CallbackURL: h.baseURL + "/api/v1/payments/chapa/webhook",
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "Failed to initialize payment")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"checkout_url": checkoutURL,
		"tx_ref":       txRef,
	})
}

// ChapaWebhook confirms a payment reported by Chapa. The transaction is
// re-verified against the provider before any state changes.
func (h *PaymentHandler) ChapaWebhook(c echo.Context) error {
	var payload struct {
		TxRef string `json:"tx_ref"`
		Data  struct {
			TxRef string `json:"tx_ref"`
		} `json:"data"`
	}
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid webhook payload")
	}

	txRef := payload.TxRef
	if txRef == "" {
		txRef = payload.Data.TxRef
	}
	if txRef == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "tx_ref missing")
	}

	ok, err := h.chapaClient.Verify(c.Request().Context(), txRef)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Verification failed")
	}
	if !ok {
		// Acknowledge non-success without changes
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	}

	if err := h.engine.MarkPaidByRef(c.Request().Context(), txRef); err != nil {
		if engine.KindOf(err) == engine.KindNotFound {
			// Unknown reference, nothing to update
			return c.JSON(http.StatusOK, echo.Map{"success": true})
		}
		return engineHTTPError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// MarkPaidRequest defines the request body for the client-side paid signal
type MarkPaidRequest struct {
	GroupID uint `json:"group_id" validate:"required"`
}

// MarkPaid records a payment from the client after a confirmed success
// return, in case the webhook is delayed.
func (h *PaymentHandler) MarkPaid(c echo.Context) error {
	userID, err := middleware.UserIDFromContext(c)
	if err != nil {
		return err
	}

	var req MarkPaidRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.engine.MarkPaid(c.Request().Context(), req.GroupID, userID); err != nil {
		return engineHTTPError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

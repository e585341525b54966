package payment

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/wichananm65/shop-backend/internal/auth"
	"github.com/wichananm65/shop-backend/internal/platform/httpx"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app fiber.Router) {
	app.Post("/api/v1/payments", h.createPayment)
	app.Get("/api/v1/payments", auth.RequireAdmin, h.listPayments)
	app.Get("/api/v1/payments/order/:orderId", h.listForOrder)
	app.Get("/api/v1/payments/:id", h.getPayment)
	app.Put("/api/v1/payments/:id/status", auth.RequireAdmin, h.updateStatus)
}

// paymentRequest accepts both the short (order, user) and the id-suffixed
// field names.
type paymentRequest struct {
	Order         int             `json:"order"`
	OrderID       int             `json:"orderId"`
	User          int             `json:"user"`
	UserID        int             `json:"userId"`
	PaymentMethod string          `json:"paymentMethod"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transactionId"`
}

func (r paymentRequest) input() CreateInput {
	in := CreateInput{
		OrderID:       r.Order,
		UserID:        r.User,
		PaymentMethod: r.PaymentMethod,
		Amount:        r.Amount,
		TransactionID: r.TransactionID,
	}
	if in.OrderID == 0 {
		in.OrderID = r.OrderID
	}
	if in.UserID == 0 {
		in.UserID = r.UserID
	}
	return in
}

type statusRequest struct {
	PaymentStatus string `json:"paymentStatus"`
}

func (h *Handler) createPayment(c *fiber.Ctx) error {
	payload := new(paymentRequest)
	if err := c.BodyParser(payload); err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, err.Error())
	}
	p, err := auth.FromCtx(c)
	if err != nil {
		return httpx.Message(c, fiber.StatusUnauthorized, "unauthorized")
	}

	created, err := h.service.CreatePayment(c.UserContext(), p, payload.input())
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) listPayments(c *fiber.Ctx) error {
	payments, err := h.service.ListAll(c.UserContext())
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(payments)
}

func (h *Handler) listForOrder(c *fiber.Ctx) error {
	orderID, err := strconv.Atoi(c.Params("orderId"))
	if err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, "invalid order id")
	}
	p, err := auth.FromCtx(c)
	if err != nil {
		return httpx.Message(c, fiber.StatusUnauthorized, "unauthorized")
	}

	payments, err := h.service.ListForOrder(c.UserContext(), orderID, p)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(payments)
}

func (h *Handler) getPayment(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, "invalid payment id")
	}
	p, err := auth.FromCtx(c)
	if err != nil {
		return httpx.Message(c, fiber.StatusUnauthorized, "unauthorized")
	}

	payment, err := h.service.Get(c.UserContext(), id, p)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(payment)
}

func (h *Handler) updateStatus(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, "invalid payment id")
	}
	payload := new(statusRequest)
	if err := c.BodyParser(payload); err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, err.Error())
	}

	updated, err := h.service.UpdateStatus(c.UserContext(), id, payload.PaymentStatus)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(updated)
}

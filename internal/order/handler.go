package order

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/shop-backend/internal/auth"
	"github.com/wichananm65/shop-backend/internal/platform/httpx"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

// RegisterProtectedRoutes mounts the order routes. /orders/my is registered
// before /orders/:id so it is not captured as an id.
func (h *Handler) RegisterProtectedRoutes(app fiber.Router) {
	app.Post("/api/v1/orders", h.placeOrder)
	app.Post("/api/v1/orders/checkout", h.checkout)
	app.Get("/api/v1/orders/my", h.myOrders)
	app.Get("/api/v1/orders", auth.RequireAdmin, h.allOrders)
	app.Get("/api/v1/orders/:id", h.getOrder)
	app.Put("/api/v1/orders/:id/status", auth.RequireAdmin, h.updateStatus)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) placeOrder(c *fiber.Ctx) error {
	payload := new(PlaceInput)
	if err := c.BodyParser(payload); err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, err.Error())
	}
	p, err := auth.FromCtx(c)
	if err != nil {
		return httpx.Message(c, fiber.StatusUnauthorized, "unauthorized")
	}

	o, err := h.service.PlaceOrder(c.UserContext(), p.UserID, *payload)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(o)
}

func (h *Handler) checkout(c *fiber.Ctx) error {
	payload := new(PlaceInput)
	if err := c.BodyParser(payload); err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, err.Error())
	}
	p, err := auth.FromCtx(c)
	if err != nil {
		return httpx.Message(c, fiber.StatusUnauthorized, "unauthorized")
	}

	o, err := h.service.Checkout(c.UserContext(), p.UserID, *payload)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(o)
}

func (h *Handler) myOrders(c *fiber.Ctx) error {
	p, err := auth.FromCtx(c)
	if err != nil {
		return httpx.Message(c, fiber.StatusUnauthorized, "unauthorized")
	}

	orders, err := h.service.ListForUser(c.UserContext(), p.UserID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(orders)
}

func (h *Handler) allOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListAll(c.UserContext())
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(orders)
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, "invalid order id")
	}
	p, err := auth.FromCtx(c)
	if err != nil {
		return httpx.Message(c, fiber.StatusUnauthorized, "unauthorized")
	}

	d, err := h.service.GetOrder(c.UserContext(), id, p)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(d)
}

func (h *Handler) updateStatus(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, "invalid order id")
	}
	payload := new(statusRequest)
	if err := c.BodyParser(payload); err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, err.Error())
	}

	o, err := h.service.AdvanceStatus(c.UserContext(), id, payload.Status)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(o)
}

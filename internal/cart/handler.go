package cart

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/shop-backend/internal/auth"
	"github.com/wichananm65/shop-backend/internal/platform/httpx"
)

// Handler delegates cart operations to the cart service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app fiber.Router) {
	app.Get("/api/v1/cart", h.getCart)
	app.Post("/api/v1/cart/add", h.addItem)
	app.Put("/api/v1/cart/update", h.updateItem)
	app.Delete("/api/v1/cart/delete", h.removeItem)
	app.Delete("/api/v1/cart", h.clearCart)
}

type cartRequest struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

func (h *Handler) addItem(c *fiber.Ctx) error {
	payload := new(cartRequest)
	if err := c.BodyParser(payload); err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, err.Error())
	}
	p, err := auth.FromCtx(c)
	if err != nil {
		return httpx.Message(c, fiber.StatusUnauthorized, "unauthorized")
	}

	v, err := h.service.AddItem(c.UserContext(), p.UserID, payload.ProductID, payload.Quantity)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(v)
}

func (h *Handler) updateItem(c *fiber.Ctx) error {
	payload := new(cartRequest)
	if err := c.BodyParser(payload); err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, err.Error())
	}
	p, err := auth.FromCtx(c)
	if err != nil {
		return httpx.Message(c, fiber.StatusUnauthorized, "unauthorized")
	}

	v, err := h.service.SetItemQuantity(c.UserContext(), p.UserID, payload.ProductID, payload.Quantity)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(v)
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	payload := new(cartRequest)
	if err := c.BodyParser(payload); err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, err.Error())
	}
	p, err := auth.FromCtx(c)
	if err != nil {
		return httpx.Message(c, fiber.StatusUnauthorized, "unauthorized")
	}

	v, err := h.service.RemoveItem(c.UserContext(), p.UserID, payload.ProductID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(v)
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	p, err := auth.FromCtx(c)
	if err != nil {
		return httpx.Message(c, fiber.StatusUnauthorized, "unauthorized")
	}

	v, err := h.service.GetCart(c.UserContext(), p.UserID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(v)
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	p, err := auth.FromCtx(c)
	if err != nil {
		return httpx.Message(c, fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.service.Clear(c.UserContext(), p.UserID); err != nil {
		return httpx.Error(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

package address

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/shop-backend/internal/auth"
	"github.com/wichananm65/shop-backend/internal/platform/httpx"
)

// Handler delegates address operations to the address service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app fiber.Router) {
	app.Get("/api/v1/address", h.getAddresses)
	app.Post("/api/v1/address", h.addAddress)
	app.Patch("/api/v1/address/:id", h.updateAddress)
	app.Delete("/api/v1/address/:id", h.deleteAddress)
}

func (h *Handler) getAddresses(c *fiber.Ctx) error {
	p, err := auth.FromCtx(c)
	if err != nil {
		return httpx.Message(c, fiber.StatusUnauthorized, "unauthorized")
	}

	addrs, err := h.service.List(c.UserContext(), p.UserID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(addrs)
}

func (h *Handler) addAddress(c *fiber.Ctx) error {
	payload := new(Shipping)
	if err := c.BodyParser(payload); err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, err.Error())
	}
	p, err := auth.FromCtx(c)
	if err != nil {
		return httpx.Message(c, fiber.StatusUnauthorized, "unauthorized")
	}

	addr, err := h.service.Add(c.UserContext(), p.UserID, *payload)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(addr)
}

func (h *Handler) updateAddress(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, "invalid address id")
	}
	payload := new(Shipping)
	if err := c.BodyParser(payload); err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, err.Error())
	}
	p, err := auth.FromCtx(c)
	if err != nil {
		return httpx.Message(c, fiber.StatusUnauthorized, "unauthorized")
	}

	addr, err := h.service.Update(c.UserContext(), p.UserID, id, *payload)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(addr)
}

func (h *Handler) deleteAddress(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, "invalid address id")
	}
	p, err := auth.FromCtx(c)
	if err != nil {
		return httpx.Message(c, fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.service.Delete(c.UserContext(), p.UserID, id); err != nil {
		return httpx.Error(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

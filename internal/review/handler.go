package review

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/shop-backend/internal/auth"
	"github.com/wichananm65/shop-backend/internal/platform/apperr"
	"github.com/wichananm65/shop-backend/internal/platform/httpx"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Get("/api/v1/reviews", h.listReviews)
	app.Get("/api/v1/reviews/product/:productId", h.listForProduct)
}

// POST on a review id is an alias of PUT.
func (h *Handler) RegisterProtectedRoutes(app fiber.Router) {
	app.Post("/api/v1/reviews", h.createReview)
	app.Put("/api/v1/reviews/:reviewId", h.updateReview)
	app.Post("/api/v1/reviews/:reviewId", h.updateReview)
	app.Delete("/api/v1/reviews/:reviewId", h.deleteReview)
}

func (h *Handler) createReview(c *fiber.Ctx) error {
	payload := new(Input)
	if err := c.BodyParser(payload); err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, err.Error())
	}
	p, err := auth.FromCtx(c)
	if err != nil {
		return httpx.Message(c, fiber.StatusUnauthorized, "unauthorized")
	}

	r, err := h.service.CreateReview(c.UserContext(), p.UserID, *payload)
	if errors.Is(err, ErrDuplicate) {
		return httpx.Message(c, fiber.StatusBadRequest, apperr.Message(err))
	}
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(r)
}

func (h *Handler) updateReview(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("reviewId"))
	if err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, "invalid review id")
	}
	payload := new(Input)
	if err := c.BodyParser(payload); err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, err.Error())
	}
	p, err := auth.FromCtx(c)
	if err != nil {
		return httpx.Message(c, fiber.StatusUnauthorized, "unauthorized")
	}

	r, err := h.service.UpdateReview(c.UserContext(), id, p.UserID, *payload)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(r)
}

func (h *Handler) deleteReview(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("reviewId"))
	if err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, "invalid review id")
	}
	p, err := auth.FromCtx(c)
	if err != nil {
		return httpx.Message(c, fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.service.DeleteReview(c.UserContext(), id, p.UserID); err != nil {
		return httpx.Error(c, err)
	}
	return httpx.Message(c, fiber.StatusOK, "review deleted")
}

func (h *Handler) listReviews(c *fiber.Ctx) error {
	reviews, err := h.service.ListAll(c.UserContext())
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(reviews)
}

func (h *Handler) listForProduct(c *fiber.Ctx) error {
	productID, err := strconv.Atoi(c.Params("productId"))
	if err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, "invalid product id")
	}

	reviews, err := h.service.ListForProduct(c.UserContext(), productID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(reviews)
}

package product

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/wichananm65/shop-backend/internal/auth"
	"github.com/wichananm65/shop-backend/internal/platform/httpx"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Get("/api/v1/products", h.getProducts)
	app.Get("/api/v1/products/:id", h.getProduct)
}

func (h *Handler) RegisterProtectedRoutes(app fiber.Router) {
	app.Post("/api/v1/products", auth.RequireAdmin, h.createProduct)
	app.Put("/api/v1/products/:id", auth.RequireAdmin, h.updateProduct)
}

// productRequest accepts tags, colors and sizes in any shape ParseList understands.
type productRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Brand       string          `json:"brand"`
	Tags        json.RawMessage `json:"tags"`
	Colors      json.RawMessage `json:"colors"`
	Sizes       json.RawMessage `json:"sizes"`
}

func (r productRequest) toProduct() (Product, error) {
	p := Product{
		Name:        strings.TrimSpace(r.Name),
		Description: strings.TrimSpace(r.Description),
		Price:       r.Price,
		Stock:       r.Stock,
		Category:    strings.TrimSpace(r.Category),
		Brand:       strings.TrimSpace(r.Brand),
	}
	var err error
	if p.Tags, err = ParseList(r.Tags); err != nil {
		return Product{}, err
	}
	if p.Colors, err = ParseList(r.Colors); err != nil {
		return Product{}, err
	}
	if p.Sizes, err = ParseList(r.Sizes); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	products, err := h.service.List(c.UserContext())
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(products)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, "invalid product id")
	}

	p, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	p, err := parseProduct(c)
	if err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, err.Error())
	}

	created, err := h.service.Create(c.UserContext(), p)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, "invalid product id")
	}
	p, err := parseProduct(c)
	if err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, err.Error())
	}

	updated, err := h.service.Update(c.UserContext(), id, p)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(updated)
}

func parseProduct(c *fiber.Ctx) (Product, error) {
	payload := new(productRequest)
	if err := c.BodyParser(payload); err != nil {
		return Product{}, err
	}
	return payload.toProduct()
}

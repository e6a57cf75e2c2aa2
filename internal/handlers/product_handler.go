package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"mime/multipart"
	"strconv"
	"strings"

	"marcha/internal/middleware"
	"marcha/internal/models"
	"marcha/internal/repositories"
	"marcha/internal/services"
	"marcha/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service     *services.ProductService
	authService *services.AuthService
	validate    *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, authService *services.AuthService) *ProductHandler {
	return &ProductHandler{
		service:     service,
		authService: authService,
		validate:    models.NewValidator(),
	}
}

// RegisterRoutes registers the product routes under /produto.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	session := middleware.SessionToken(h.authService)
	validID := middleware.ValidProductID(h.validate)

	productRoutes := router.Group("/produto")
	productRoutes.Post("/", h.HandleCreateProduct)
	// todos/:token must be registered before :id/:token.
	productRoutes.Get("/todos/:token", session, h.HandleListProducts)
	productRoutes.Patch("/campo/:id", middleware.ValidProductBody(h.validate), validID, h.HandlePatchProduct)
	productRoutes.Patch("/hidden/:id/:token", session, validID, h.HandleToggleVisibility)
	productRoutes.Patch("/imagem/:id/:token", session, validID, h.HandleReplaceImage)
	productRoutes.Get("/:id/:token", session, validID, h.HandleGetProduct)
	productRoutes.Delete("/:id/:token", session, validID, h.HandleDeleteProduct)
}

// productError maps a service error to a response.
func productError(c *fiber.Ctx, message string, err error) error {
	switch {
	case errors.Is(err, repositories.ErrProductNotFound):
		return response.Fail(c, fiber.StatusNotFound, "Produto não encontrado", nil)
	case errors.Is(err, services.ErrInvalidImage):
		return response.Fail(c, fiber.StatusBadRequest, "Imagem inválida", err.Error())
	case errors.Is(err, services.ErrUnknownOwner):
		return response.Fail(c, fiber.StatusBadRequest, "Usuário não encontrado", err.Error())
	}
	log.Printf("%s: %v", message, err)
	return response.ServerError(c, message, err)
}

// HandleCreateProduct creates a product from a multipart form carrying
// the product fields and one "imagem" file.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return response.Fail(c, fiber.StatusBadRequest, "Requisição mal formatada", err.Error())
	}

	product, err := productFromForm(form)
	if err != nil {
		return response.Fail(c, fiber.StatusBadRequest, "Requisição mal formatada", err.Error())
	}
	if err := h.validate.Struct(product); err != nil {
		return response.Fail(c, fiber.StatusBadRequest, "Campos inválidos", models.ValidationMessages(err))
	}

	img, err := imageFromForm(form)
	if err != nil {
		return response.Fail(c, fiber.StatusBadRequest, "Imagem obrigatória", err.Error())
	}

	if err := h.service.CreateProduct(product, img); err != nil {
		return productError(c, "Falha ao cadastrar produto", err)
	}
	return response.Success(c, fiber.StatusCreated, "Produto cadastrado com sucesso!", product)
}

// HandleListProducts lists every product of the session user.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	products, err := h.service.ListByUser(middleware.SessionUserID(c))
	if err != nil {
		return productError(c, "Falha ao consultar produtos", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return response.Success(c, fiber.StatusOK, "Produtos consultados com sucesso", products)
}

// HandleGetProduct returns one product of the session user.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(middleware.SessionUserID(c), c.Params("id"))
	if err != nil {
		return productError(c, "Falha ao consultar produto", err)
	}
	return response.Success(c, fiber.StatusOK, "Produto encontrado com sucesso", product)
}

// HandleDeleteProduct deletes one product of the session user.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(middleware.SessionUserID(c), c.Params("id")); err != nil {
		return productError(c, "Falha ao deletar produto", err)
	}
	return response.Success(c, fiber.StatusOK, "Produto deletado com sucesso", nil)
}

// HandlePatchProduct applies the patch validated by ValidProductBody.
func (h *ProductHandler) HandlePatchProduct(c *fiber.Ctx) error {
	patch, ok := middleware.ProductPatch(c)
	if !ok {
		return response.Fail(c, fiber.StatusBadRequest, "Nenhum campo para alterar", nil)
	}
	product, err := h.service.PatchProduct(c.Params("id"), patch)
	if err != nil {
		return productError(c, "Falha ao alterar campos", err)
	}
	return response.Success(c, fiber.StatusOK, "Campos alterados com sucesso", product)
}

// HandleToggleVisibility shows a hidden product or hides a visible one.
func (h *ProductHandler) HandleToggleVisibility(c *fiber.Ctx) error {
	visibility, err := h.service.ToggleVisibility(middleware.SessionUserID(c), c.Params("id"))
	if err != nil {
		return productError(c, "Falha ao alterar visibilidade", err)
	}
	return response.Success(c, fiber.StatusOK, "Visibilidade alterada com sucesso", visibility)
}

// HandleReplaceImage replaces the image of a product with the uploaded "imagem".
func (h *ProductHandler) HandleReplaceImage(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return response.Fail(c, fiber.StatusBadRequest, "Requisição mal formatada", err.Error())
	}
	img, err := imageFromForm(form)
	if err != nil {
		return response.Fail(c, fiber.StatusBadRequest, "Imagem obrigatória", err.Error())
	}

	product, err := h.service.ReplaceImage(middleware.SessionUserID(c), c.Params("id"), img)
	if err != nil {
		return productError(c, "Falha ao alterar imagem", err)
	}
	return response.Success(c, fiber.StatusOK, "Imagem alterada com sucesso", product)
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return strings.TrimSpace(values[0])
	}
	return ""
}

// productFromForm reads the product fields of a multipart form. cores is
// a JSON document; tags is a JSON array or a repeated field.
func productFromForm(form *multipart.Form) (*models.Product, error) {
	product := &models.Product{
		UserID: formValue(form, "userId"),
		Brand:  formValue(form, "marcanome"),
		Model:  formValue(form, "modelo"),
		Gender: models.Gender(formValue(form, "genero")),
	}

	price, err := strconv.ParseFloat(formValue(form, "preco"), 64)
	if err != nil {
		return nil, fmt.Errorf("preco: %w", err)
	}
	if math.IsInf(price, 0) || math.IsNaN(price) {
		return nil, fmt.Errorf("preco: %q is not a finite number", formValue(form, "preco"))
	}
	product.Price = price

	size, err := strconv.Atoi(formValue(form, "tamanho"))
	if err != nil {
		return nil, fmt.Errorf("tamanho: %w", err)
	}
	product.Size = size

	if raw := formValue(form, "cores"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &product.Colors); err != nil {
			return nil, err
		}
	}

	tags := form.Value["tags"]
	if len(tags) == 1 && strings.HasPrefix(strings.TrimSpace(tags[0]), "[") {
		if err := json.Unmarshal([]byte(tags[0]), &product.Tags); err != nil {
			return nil, fmt.Errorf("tags: %w", err)
		}
	} else {
		for _, tag := range tags {
			if tag = strings.TrimSpace(tag); tag != "" {
				product.Tags = append(product.Tags, tag)
			}
		}
	}
	return product, nil
}

func imageFromForm(form *multipart.Form) (services.Image, error) {
	files := form.File["imagem"]
	if len(files) == 0 {
		return services.Image{}, fmt.Errorf("missing file field \"imagem\"")
	}
	file, err := files[0].Open()
	if err != nil {
		return services.Image{}, fmt.Errorf("open imagem: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return services.Image{}, fmt.Errorf("read imagem: %w", err)
	}
	return services.Image{Filename: files[0].Filename, Data: data}, nil
}

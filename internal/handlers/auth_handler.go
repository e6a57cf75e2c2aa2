package handlers

import (
	"errors"
	"log"

	"marcha/internal/middleware"
	"marcha/internal/models"
	"marcha/internal/services"
	"marcha/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for users and sessions.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    models.NewValidator(),
	}
}

// RegisterRoutes registers the user and session routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/usuario", h.HandleRegister)
	router.Get("/usuario/:token", middleware.SessionToken(h.authService), h.HandleProfile)
	router.Post("/sessao", h.HandleLogin)
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100,excludes=@"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Fail(c, fiber.StatusBadRequest, "Corpo da requisição inválido", err.Error())
	}
	if err := h.validate.Struct(req); err != nil {
		return response.Fail(c, fiber.StatusBadRequest, "Campos inválidos", models.ValidationMessages(err))
	}

	user := models.User{Username: req.Username, Email: req.Email, Password: req.Password}
	if err := h.authService.RegisterUser(&user); err != nil {
		if errors.Is(err, services.ErrUserExists) {
			return response.Fail(c, fiber.StatusConflict, "Usuário já cadastrado", err.Error())
		}
		log.Printf("Error registering user: %v", err)
		return response.ServerError(c, "Falha ao cadastrar usuário", err)
	}

	// Never return the password hash.
	user.Password = ""
	return response.Success(c, fiber.StatusCreated, "Usuário cadastrado com sucesso", user)
}

// LoginRequest represents the request body for login. Either username or
// email identifies the user.
type LoginRequest struct {
	Username string `json:"username" validate:"required_without=Email"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin opens a session and returns its token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Fail(c, fiber.StatusBadRequest, "Corpo da requisição inválido", err.Error())
	}
	if err := h.validate.Struct(req); err != nil {
		return response.Fail(c, fiber.StatusBadRequest, "Campos inválidos", models.ValidationMessages(err))
	}

	login := req.Username
	if login == "" {
		login = req.Email
	}
	token, err := h.authService.LoginUser(login, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return response.Fail(c, fiber.StatusUnauthorized, "Credenciais inválidas", nil)
		}
		log.Printf("Error during login for %s: %v", login, err)
		return response.ServerError(c, "Falha ao iniciar sessão", err)
	}

	return response.Success(c, fiber.StatusOK, "Sessão iniciada com sucesso", fiber.Map{"token": token})
}

// HandleProfile returns the user of the session token.
func (h *AuthHandler) HandleProfile(c *fiber.Ctx) error {
	user, err := h.authService.GetUser(middleware.SessionUserID(c))
	if err != nil {
		return response.Fail(c, fiber.StatusNotFound, "Usuário não encontrado", nil)
	}
	return response.Success(c, fiber.StatusOK, "Usuário encontrado com sucesso", user)
}

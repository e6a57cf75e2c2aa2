package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"marcha/internal/database"
	"marcha/internal/handlers"
	"marcha/internal/models"
	"marcha/internal/repositories"
	"marcha/internal/services"
	"marcha/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_jwt_secret"

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type testEnv struct {
	app   *fiber.App
	repo  repositories.ProductRepository
	disk  *storage.LocalDisk
	token string
	user  models.User
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Desc    json.RawMessage `json:"desc"`
}

// setupApp sets up a Fiber app backed by a temporary SQLite file and a
// temporary local disk, and registers a seller.
func setupApp(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.OpenGORM("sqlite", filepath.Join(t.TempDir(), "marcha.db"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	disk, err := storage.NewLocalDisk(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)

	productRepo := repositories.NewGORMProductRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	authService := services.NewAuthService(userRepo, services.NewTokenService(testSecret, time.Hour))
	productService := services.NewProductService(productRepo, userRepo, disk, nil)

	app := fiber.New()
	handlers.RegisterServiceRoutes(app, false)
	handlers.NewAuthHandler(authService).RegisterRoutes(app)
	handlers.NewProductHandler(productService, authService).RegisterRoutes(app)

	env := &testEnv{app: app, repo: productRepo, disk: disk}
	env.user, env.token = registerAndLogin(t, app, "seller", "seller@example.com")
	return env
}

// onDisk reports whether key was written under the root of disk.
func onDisk(disk *storage.LocalDisk, key string) bool {
	_, err := os.Stat(filepath.Join(disk.Root(), filepath.FromSlash(key)))
	return err == nil
}

func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body any) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	return do(t, app, req)
}

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, envelope) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func registerAndLogin(t *testing.T, app *fiber.App, username, email string) (models.User, string) {
	t.Helper()
	resp, env := doJSON(t, app, http.MethodPost, "/usuario", map[string]string{
		"username": username,
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var user models.User
	require.NoError(t, json.Unmarshal(env.Data, &user))

	resp, env = doJSON(t, app, http.MethodPost, "/sessao", map[string]string{
		"username": username,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var session struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &session))
	require.NotEmpty(t, session.Token)
	return user, session.Token
}

// productForm builds the multipart body of a product creation request.
func productForm(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if image != nil {
		part, err := writer.CreateFormFile("imagem", "tenis.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func adidasFields(userID string) map[string]string {
	return map[string]string{
		"userId":    userID,
		"marcanome": "adidas",
		"modelo":    "Ultraboost 22",
		"genero":    "masculino",
		"preco":     "799.90",
		"tamanho":   "42",
		"cores":     `[{"azul claro":2},{"preto":1}]`,
		"tags":      `["corrida","conforto"]`,
	}
}

func createProduct(t *testing.T, env *testEnv) models.Product {
	t.Helper()
	body, contentType := productForm(t, adidasFields(env.user.ID), pngBytes)
	req := httptest.NewRequest(http.MethodPost, "/produto", body)
	req.Header.Set("Content-Type", contentType)

	resp, envl := do(t, env.app, req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Produto cadastrado com sucesso!", envl.Message)

	var product models.Product
	require.NoError(t, json.Unmarshal(envl.Data, &product))
	return product
}

func TestServiceRoutes(t *testing.T) {
	env := setupApp(t)

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var info map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, "API MARCHA", info["nome"])
	assert.Equal(t, "0.0.1", info["version"])
	assert.Equal(t, "Api de gerenciamento de produto do marketplace", info["description"])
}

func TestAuthRegisterAndLogin(t *testing.T) {
	env := setupApp(t)
	assert.NotEmpty(t, env.user.ID)
	assert.Empty(t, env.user.Password)

	// Duplicate registration
	resp, _ := doJSON(t, env.app, http.MethodPost, "/usuario", map[string]string{
		"username": "seller",
		"email":    "other@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Usernames cannot contain "@", which marks an e-mail login
	resp, envl := doJSON(t, env.app, http.MethodPost, "/usuario", map[string]string{
		"username": "sel@ler",
		"email":    "atsign@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Campos inválidos", envl.Message)
	assert.Contains(t, string(envl.Desc), "username")

	// Login by email
	resp, _ = doJSON(t, env.app, http.MethodPost, "/sessao", map[string]string{
		"email":    "seller@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Wrong password
	resp, envl = doJSON(t, env.app, http.MethodPost, "/sessao", map[string]string{
		"username": "seller",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Credenciais inválidas", envl.Message)

	// Profile
	resp, envl = doJSON(t, env.app, http.MethodGet, "/usuario/"+env.token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var profile models.User
	require.NoError(t, json.Unmarshal(envl.Data, &profile))
	assert.Equal(t, env.user.ID, profile.ID)
	assert.Empty(t, profile.Password)
}

func TestCreateAndListProducts(t *testing.T) {
	env := setupApp(t)
	created := createProduct(t, env)

	assert.NotEmpty(t, created.ID)
	assert.True(t, created.Active)
	assert.Equal(t, models.ColorStock{"azul claro": 2, "preto": 1}, created.Colors)
	assert.True(t, onDisk(env.disk, created.Image))
	assert.Equal(t, "http://localhost:8080/"+created.Image, created.ImageURL)

	resp, envl := doJSON(t, env.app, http.MethodGet, "/produto/todos/"+env.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Produtos consultados com sucesso", envl.Message)

	var products []models.Product
	require.NoError(t, json.Unmarshal(envl.Data, &products))
	require.Len(t, products, 1)
	assert.Equal(t, created.ID, products[0].ID)
	assert.Equal(t, "adidas", products[0].Brand)
	assert.Equal(t, 799.90, products[0].Price)
	assert.Equal(t, 42, products[0].Size)
	assert.Equal(t, []string{"corrida", "conforto"}, products[0].Tags)
}

func TestListProductsEmpty(t *testing.T) {
	env := setupApp(t)

	resp, envl := doJSON(t, env.app, http.MethodGet, "/produto/todos/"+env.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(envl.Data))
}

func TestCreateProductValidation(t *testing.T) {
	env := setupApp(t)

	t.Run("invalid gender", func(t *testing.T) {
		fields := adidasFields(env.user.ID)
		fields["genero"] = "outro"
		body, contentType := productForm(t, fields, pngBytes)
		req := httptest.NewRequest(http.MethodPost, "/produto", body)
		req.Header.Set("Content-Type", contentType)

		resp, envl := do(t, env.app, req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Campos inválidos", envl.Message)
		assert.Contains(t, string(envl.Desc), "genero")
	})

	t.Run("negative color quantity", func(t *testing.T) {
		fields := adidasFields(env.user.ID)
		fields["cores"] = `{"preto":-1}`
		body, contentType := productForm(t, fields, pngBytes)
		req := httptest.NewRequest(http.MethodPost, "/produto", body)
		req.Header.Set("Content-Type", contentType)

		resp, _ := do(t, env.app, req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing image", func(t *testing.T) {
		body, contentType := productForm(t, adidasFields(env.user.ID), nil)
		req := httptest.NewRequest(http.MethodPost, "/produto", body)
		req.Header.Set("Content-Type", contentType)

		resp, _ := do(t, env.app, req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("not an image", func(t *testing.T) {
		body, contentType := productForm(t, adidasFields(env.user.ID), []byte("plain text, not a picture"))
		req := httptest.NewRequest(http.MethodPost, "/produto", body)
		req.Header.Set("Content-Type", contentType)

		resp, envl := do(t, env.app, req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Imagem inválida", envl.Message)
	})

	t.Run("unknown owner", func(t *testing.T) {
		body, contentType := productForm(t, adidasFields(uuid.NewString()), pngBytes)
		req := httptest.NewRequest(http.MethodPost, "/produto", body)
		req.Header.Set("Content-Type", contentType)

		resp, _ := do(t, env.app, req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("non-finite price", func(t *testing.T) {
		for _, price := range []string{"Inf", "+Inf", "infinity", "NaN"} {
			fields := adidasFields(env.user.ID)
			fields["preco"] = price
			body, contentType := productForm(t, fields, pngBytes)
			req := httptest.NewRequest(http.MethodPost, "/produto", body)
			req.Header.Set("Content-Type", contentType)

			resp, envl := do(t, env.app, req)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, price)
			assert.Equal(t, "Requisição mal formatada", envl.Message, price)
		}
	})

	t.Run("svg image", func(t *testing.T) {
		svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(document.cookie)</script></svg>`)
		body, contentType := productForm(t, adidasFields(env.user.ID), svg)
		req := httptest.NewRequest(http.MethodPost, "/produto", body)
		req.Header.Set("Content-Type", contentType)

		resp, envl := do(t, env.app, req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Imagem inválida", envl.Message)
	})

	products, err := env.repo.GetAllByUser(env.user.ID)
	require.NoError(t, err)
	assert.Empty(t, products)

	stored, err := filepath.Glob(filepath.Join(env.disk.Root(), "uploads", "*"))
	require.NoError(t, err)
	assert.Empty(t, stored)

	resp, envl := doJSON(t, env.app, http.MethodGet, "/produto/todos/"+env.token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(envl.Data))
}

func TestCreateRunfalconProduct(t *testing.T) {
	env := setupApp(t)

	body, contentType := productForm(t, map[string]string{
		"userId":    env.user.ID,
		"marcanome": "adidas",
		"modelo":    "Runfalcon",
		"genero":    "feminino",
		"preco":     "379.9",
		"tamanho":   "32",
		"cores":     `[{"azul claro":2}]`,
		"tags":      `["corrida"]`,
	}, pngBytes)
	req := httptest.NewRequest(http.MethodPost, "/produto", body)
	req.Header.Set("Content-Type", contentType)

	resp, envl := do(t, env.app, req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Produto cadastrado com sucesso!", envl.Message)

	resp, envl = doJSON(t, env.app, http.MethodGet, "/produto/todos/"+env.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var products []models.Product
	require.NoError(t, json.Unmarshal(envl.Data, &products))
	require.Len(t, products, 1)
	assert.Equal(t, "adidas", products[0].Brand)
	assert.Equal(t, "Runfalcon", products[0].Model)
	assert.Equal(t, models.GenderFeminine, products[0].Gender)
	assert.Equal(t, 379.9, products[0].Price)
	assert.Equal(t, 32, products[0].Size)
	assert.Equal(t, models.ColorStock{"azul claro": 2}, products[0].Colors)
	assert.Equal(t, []string{"corrida"}, products[0].Tags)
	assert.True(t, products[0].Active)
}

func TestHiddenProductStaysManageableByOwner(t *testing.T) {
	env := setupApp(t)
	created := createProduct(t, env)

	resp, envl := doJSON(t, env.app, http.MethodPatch, "/produto/hidden/"+created.ID+"/"+env.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"modelo":"Ultraboost 22","active":false}`, string(envl.Data))

	resp, envl = doJSON(t, env.app, http.MethodGet, "/produto/"+created.ID+"/"+env.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched models.Product
	require.NoError(t, json.Unmarshal(envl.Data, &fetched))
	assert.False(t, fetched.Active)

	resp, envl = doJSON(t, env.app, http.MethodPatch, "/produto/campo/"+created.ID, map[string]any{"modelo": "Ultraboost 23"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var patched models.Product
	require.NoError(t, json.Unmarshal(envl.Data, &patched))
	assert.Equal(t, "Ultraboost 23", patched.Model)
	assert.False(t, patched.Active, "patching fields keeps the product hidden")

	resp, envl = doJSON(t, env.app, http.MethodDelete, "/produto/"+created.ID+"/"+env.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Produto deletado com sucesso", envl.Message)

	_, err := env.repo.GetByID(created.ID)
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)
	assert.False(t, onDisk(env.disk, created.Image))
}

func TestSessionToken(t *testing.T) {
	env := setupApp(t)
	created := createProduct(t, env)

	t.Run("expired", func(t *testing.T) {
		expired, err := services.NewTokenService(testSecret, -time.Hour).Issue(env.user.ID, env.user.Username)
		require.NoError(t, err)

		resp, envl := doJSON(t, env.app, http.MethodGet, "/produto/todos/"+expired, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, 400, envl.Status)
		assert.Equal(t, "token expired", envl.Message)
	})

	t.Run("invalid token does not mutate", func(t *testing.T) {
		resp, envl := doJSON(t, env.app, http.MethodDelete, "/produto/"+created.ID+"/not-a-token", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "token inválido", envl.Message)

		resp, _ = doJSON(t, env.app, http.MethodPatch, "/produto/hidden/"+created.ID+"/not-a-token", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		stored, err := env.repo.GetByID(created.ID)
		require.NoError(t, err)
		assert.True(t, stored.Active)
	})

	t.Run("token from another secret", func(t *testing.T) {
		foreign, err := services.NewTokenService("another_secret", time.Hour).Issue(env.user.ID, env.user.Username)
		require.NoError(t, err)

		resp, envl := doJSON(t, env.app, http.MethodGet, "/produto/todos/"+foreign, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "token inválido", envl.Message)
	})
}

func TestMalformedProductID(t *testing.T) {
	env := setupApp(t)

	for _, tc := range []struct{ method, target string }{
		{http.MethodGet, "/produto/123/" + env.token},
		{http.MethodDelete, "/produto/not-a-uuid/" + env.token},
		{http.MethodPatch, "/produto/hidden/123/" + env.token},
	} {
		resp, envl := doJSON(t, env.app, tc.method, tc.target, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, tc.target)
		assert.Equal(t, "id de produto inválido", envl.Message, tc.target)
	}

	resp, envl := doJSON(t, env.app, http.MethodPatch, "/produto/campo/123", map[string]any{"modelo": "Novo"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "id de produto inválido", envl.Message)
}

func TestGetAndDeleteProduct(t *testing.T) {
	env := setupApp(t)
	created := createProduct(t, env)

	resp, envl := doJSON(t, env.app, http.MethodGet, "/produto/"+created.ID+"/"+env.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Produto encontrado com sucesso", envl.Message)
	var fetched models.Product
	require.NoError(t, json.Unmarshal(envl.Data, &fetched))
	assert.Equal(t, created.ID, fetched.ID)

	resp, envl = doJSON(t, env.app, http.MethodDelete, "/produto/"+created.ID+"/"+env.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Produto deletado com sucesso", envl.Message)
	assert.False(t, onDisk(env.disk, created.Image))

	resp, envl = doJSON(t, env.app, http.MethodGet, "/produto/"+created.ID+"/"+env.token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Produto não encontrado", envl.Message)

	resp, _ = doJSON(t, env.app, http.MethodDelete, "/produto/"+created.ID+"/"+env.token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestForeignProductIsNotFound(t *testing.T) {
	env := setupApp(t)
	created := createProduct(t, env)
	_, intruderToken := registerAndLogin(t, env.app, "intruder", "intruder@example.com")

	resp, _ := doJSON(t, env.app, http.MethodGet, "/produto/"+created.ID+"/"+intruderToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, env.app, http.MethodDelete, "/produto/"+created.ID+"/"+intruderToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, env.app, http.MethodPatch, "/produto/hidden/"+created.ID+"/"+intruderToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, envl := doJSON(t, env.app, http.MethodGet, "/produto/todos/"+intruderToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(envl.Data))

	stored, err := env.repo.GetByID(created.ID)
	require.NoError(t, err)
	assert.True(t, stored.Active)
}

func TestToggleVisibilityTwiceRestoresState(t *testing.T) {
	env := setupApp(t)
	created := createProduct(t, env)
	target := "/produto/hidden/" + created.ID + "/" + env.token

	resp, envl := doJSON(t, env.app, http.MethodPatch, target, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Visibilidade alterada com sucesso", envl.Message)
	assert.JSONEq(t, `{"modelo":"Ultraboost 22","active":false}`, string(envl.Data))

	// Hidden products stay readable by their owner.
	resp, _ = doJSON(t, env.app, http.MethodGet, "/produto/"+created.ID+"/"+env.token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, envl = doJSON(t, env.app, http.MethodPatch, target, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"modelo":"Ultraboost 22","active":true}`, string(envl.Data))

	stored, err := env.repo.GetByID(created.ID)
	require.NoError(t, err)
	assert.True(t, stored.Active)
}

func TestPatchProductFields(t *testing.T) {
	env := setupApp(t)
	created := createProduct(t, env)
	target := "/produto/campo/" + created.ID

	resp, envl := doJSON(t, env.app, http.MethodPatch, target, map[string]any{
		"preco": 649.5,
		"cores": map[string]int{"branco": 4},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Campos alterados com sucesso", envl.Message)

	var patched models.Product
	require.NoError(t, json.Unmarshal(envl.Data, &patched))
	assert.Equal(t, 649.5, patched.Price)
	assert.Equal(t, models.ColorStock{"branco": 4}, patched.Colors)
	assert.Equal(t, "adidas", patched.Brand)

	stored, err := env.repo.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, 649.5, stored.Price)
	assert.True(t, stored.Active)

	t.Run("unknown field", func(t *testing.T) {
		resp, envl := doJSON(t, env.app, http.MethodPatch, target, map[string]any{"estoque": 3})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Corpo da requisição inválido", envl.Message)
	})

	t.Run("empty body", func(t *testing.T) {
		resp, envl := doJSON(t, env.app, http.MethodPatch, target, map[string]any{})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Nenhum campo para alterar", envl.Message)
	})

	t.Run("invalid value", func(t *testing.T) {
		resp, envl := doJSON(t, env.app, http.MethodPatch, target, map[string]any{"preco": -1})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Campos inválidos", envl.Message)
		assert.Contains(t, string(envl.Desc), "preco")
	})

	t.Run("missing product", func(t *testing.T) {
		resp, _ := doJSON(t, env.app, http.MethodPatch, "/produto/campo/"+uuid.NewString(), map[string]any{"modelo": "X"})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	stored, err = env.repo.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, 649.5, stored.Price)
}

func TestReplaceProductImage(t *testing.T) {
	env := setupApp(t)
	created := createProduct(t, env)

	body, contentType := productForm(t, nil, pngBytes)
	req := httptest.NewRequest(http.MethodPatch, "/produto/imagem/"+created.ID+"/"+env.token, body)
	req.Header.Set("Content-Type", contentType)

	resp, envl := do(t, env.app, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Imagem alterada com sucesso", envl.Message)

	var updated models.Product
	require.NoError(t, json.Unmarshal(envl.Data, &updated))
	assert.NotEqual(t, created.Image, updated.Image)
	assert.True(t, onDisk(env.disk, updated.Image))
	assert.False(t, onDisk(env.disk, created.Image))

	stored, err := env.repo.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Image, stored.Image)
}

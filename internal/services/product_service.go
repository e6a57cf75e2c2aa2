package services

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"time"

	"marcha/internal/models"
	"marcha/internal/repositories"
	"marcha/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	// ErrUnknownOwner is returned when a product references a user that does not exist.
	ErrUnknownOwner = errors.New("owning user does not exist")
	// ErrInvalidImage is returned when an upload is empty or not an accepted image type.
	ErrInvalidImage = errors.New("invalid image")
)

// imageTypes are the raster formats accepted for product images.
var imageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// Image is an uploaded image file.
type Image struct {
	Filename string
	Data     []byte
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	users     repositories.UserRepository
	disk      storage.Disk
	publisher EventPublisher
}

// NewProductService creates a new ProductService. publisher may be nil.
func NewProductService(repo repositories.ProductRepository, users repositories.UserRepository, disk storage.Disk, publisher EventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		users:     users,
		disk:      disk,
		publisher: publisher,
	}
}

// storeImage checks that img is an image and writes it under uploads/.
// It returns the storage key.
func (s *ProductService) storeImage(img Image) (string, error) {
	if len(img.Data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrInvalidImage)
	}
	mtype := mimetype.Detect(img.Data)
	if !mimetype.EqualsAny(mtype.String(), imageTypes...) {
		return "", fmt.Errorf("%w: %s is %s", ErrInvalidImage, img.Filename, mtype.String())
	}

	key := fmt.Sprintf("uploads/%d-%s%s", time.Now().UnixMilli(), uuid.New().String()[:8], mtype.Extension())
	if err := s.disk.PutStream(key, bytes.NewReader(img.Data)); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return key, nil
}

func (s *ProductService) discardImage(key string) {
	if key == "" {
		return
	}
	if err := s.disk.Delete(key); err != nil {
		log.Printf("Failed to delete image %s: %v", key, err)
	}
}

func (s *ProductService) withImageURL(product *models.Product) {
	if product.Image != "" {
		product.ImageURL = s.disk.URL(product.Image)
	}
}

// CreateProduct stores the image and persists a new, visible product.
func (s *ProductService) CreateProduct(product *models.Product, img Image) error {
	if _, err := s.users.GetByID(product.UserID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return fmt.Errorf("user %s: %w", product.UserID, ErrUnknownOwner)
		}
		return fmt.Errorf("failed to check owner: %w", err)
	}

	key, err := s.storeImage(img)
	if err != nil {
		return err
	}
	product.ID = ""
	product.Image = key
	product.Active = true

	if err := s.repo.Create(product); err != nil {
		s.discardImage(key)
		return err
	}
	s.withImageURL(product)
	publishProductEvent(s.publisher, EventProductCreated, product)
	return nil
}

// ListByUser retrieves every product owned by userID.
func (s *ProductService) ListByUser(userID string) ([]models.Product, error) {
	products, err := s.repo.GetAllByUser(userID)
	if err != nil {
		return nil, err
	}
	for i := range products {
		s.withImageURL(&products[i])
	}
	return products, nil
}

// GetProduct retrieves an owned product with its public image URL.
func (s *ProductService) GetProduct(userID, id string) (*models.Product, error) {
	product, err := s.GetOwnedProduct(userID, id)
	if err != nil {
		return nil, err
	}
	s.withImageURL(product)
	return product, nil
}

// GetOwnedProduct retrieves a product, reporting ErrProductNotFound when
// it belongs to someone other than userID.
func (s *ProductService) GetOwnedProduct(userID, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product.UserID != userID {
		return nil, fmt.Errorf("product with ID %s not owned by %s: %w", id, userID, repositories.ErrProductNotFound)
	}
	return product, nil
}

// DeleteProduct removes an owned product and its image.
func (s *ProductService) DeleteProduct(userID, id string) error {
	product, err := s.GetOwnedProduct(userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.discardImage(product.Image)
	publishProductEvent(s.publisher, EventProductDeleted, product)
	return nil
}

// PatchProduct applies patch to the product and returns the result.
func (s *ProductService) PatchProduct(id string, patch models.ProductPatch) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	patch.Apply(product)
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	s.withImageURL(product)
	publishProductEvent(s.publisher, EventProductUpdated, product)
	return product, nil
}

// ToggleVisibility flips the active flag of an owned product.
func (s *ProductService) ToggleVisibility(userID, id string) (*models.Visibility, error) {
	product, err := s.GetOwnedProduct(userID, id)
	if err != nil {
		return nil, err
	}
	product.Active = !product.Active
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	publishProductEvent(s.publisher, EventProductVisibility, product)
	return &models.Visibility{Model: product.Model, Active: product.Active}, nil
}

// ReplaceImage stores img as the new image of an owned product and
// removes the previous one.
func (s *ProductService) ReplaceImage(userID, id string, img Image) (*models.Product, error) {
	product, err := s.GetOwnedProduct(userID, id)
	if err != nil {
		return nil, err
	}
	key, err := s.storeImage(img)
	if err != nil {
		return nil, err
	}

	previous := product.Image
	product.Image = key
	if err := s.repo.Update(product); err != nil {
		s.discardImage(key)
		return nil, err
	}
	s.discardImage(previous)
	s.withImageURL(product)
	publishProductEvent(s.publisher, EventProductImage, product)
	return product, nil
}

package repositories

import (
	"errors"
	"fmt"
	"time"

	"marcha/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoUserRepository is a MongoDB implementation of UserRepository.
type MongoUserRepository struct {
	col *mongo.Collection
}

// NewMongoUserRepository creates a new instance of MongoUserRepository.
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{
		col: db.Collection(usersCollection),
	}
}

// Create inserts a new user document.
func (r *MongoUserRepository) Create(user *models.User) error {
	ctx, cancel := opContext()
	defer cancel()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) findOne(field, value string) (*models.User, error) {
	ctx, cancel := opContext()
	defer cancel()

	var user models.User
	if err := r.col.FindOne(ctx, bson.M{field: value}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user with %s %s: %w", field, value, ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user by %s %s: %w", field, value, err)
	}
	return &user, nil
}

// GetByUsername retrieves a user by their username.
func (r *MongoUserRepository) GetByUsername(username string) (*models.User, error) {
	return r.findOne("username", username)
}

// GetByEmail retrieves a user by their email.
func (r *MongoUserRepository) GetByEmail(email string) (*models.User, error) {
	return r.findOne("email", email)
}

// GetByID retrieves a user by their ID.
func (r *MongoUserRepository) GetByID(id string) (*models.User, error) {
	return r.findOne("_id", id)
}

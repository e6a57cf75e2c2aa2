package services

import (
	"encoding/json"
	"log"
	"time"

	"marcha/internal/metrics"
	"marcha/internal/models"
)

// Product event types, used as AMQP routing keys.
const (
	EventProductCreated    = "produto.cadastrado"
	EventProductDeleted    = "produto.deletado"
	EventProductUpdated    = "produto.alterado"
	EventProductVisibility = "produto.visibilidade"
	EventProductImage      = "produto.imagem"
)

// EventPublisher delivers serialized events to a broker.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// ProductEvent is the message published after every product mutation.
type ProductEvent struct {
	Type      string    `json:"type"`
	ProductID string    `json:"productId"`
	UserID    string    `json:"userId"`
	Active    bool      `json:"active"`
	At        time.Time `json:"at"`
}

func publishProductEvent(publisher EventPublisher, eventType string, product *models.Product) {
	metrics.ProductEvents.WithLabelValues(eventType).Inc()
	if publisher == nil {
		return
	}

	body, err := json.Marshal(ProductEvent{
		Type:      eventType,
		ProductID: product.ID,
		UserID:    product.UserID,
		Active:    product.Active,
		At:        time.Now().UTC(),
	})
	if err != nil {
		log.Printf("Failed to marshal %s event for product %s: %v", eventType, product.ID, err)
		return
	}
	if err := publisher.Publish(eventType, body); err != nil {
		log.Printf("Warning: Failed to publish %s event for product %s: %v", eventType, product.ID, err)
	}
}

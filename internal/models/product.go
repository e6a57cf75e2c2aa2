package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Gender is the audience a product is made for.
type Gender string

const (
	GenderMasculine Gender = "masculino"
	GenderFeminine  Gender = "feminino"
	GenderUnisex    Gender = "unissex"
)

// ColorStock maps a color name to the quantity available in that color.
type ColorStock map[string]int

// UnmarshalJSON accepts either an object ({"preto": 1}) or a list of
// single-color objects ([{"azul claro": 2}, {"preto": 1}]). Repeated
// colors in the list form are summed.
func (cs *ColorStock) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var entries []map[string]int
		if err := json.Unmarshal(data, &entries); err != nil {
			return fmt.Errorf("cores: %w", err)
		}
		out := make(ColorStock, len(entries))
		for _, entry := range entries {
			for color, qty := range entry {
				out[color] += qty
			}
		}
		*cs = out
		return nil
	}

	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("cores: %w", err)
	}
	*cs = ColorStock(m)
	return nil
}

// Total returns the number of units across every color.
func (cs ColorStock) Total() int {
	total := 0
	for _, qty := range cs {
		total += qty
	}
	return total
}

// Product represents a product listed by a seller.
type Product struct {
	ID        string     `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	UserID    string     `json:"userId" gorm:"index;type:varchar(36);not null" bson:"userId" validate:"required,uuid"`
	Brand     string     `json:"marcanome" gorm:"type:varchar(60)" bson:"marcanome" validate:"required,max=60"`
	Model     string     `json:"modelo" gorm:"type:varchar(120)" bson:"modelo" validate:"required,max=120"`
	Gender    Gender     `json:"genero" gorm:"type:varchar(10)" bson:"genero" validate:"required,oneof=masculino feminino unissex"`
	Price     float64    `json:"preco" bson:"preco" validate:"required,gt=0"`
	Size      int        `json:"tamanho" bson:"tamanho" validate:"required,gt=0"`
	Colors    ColorStock `json:"cores" gorm:"serializer:json;type:text" bson:"cores" validate:"required,min=1,dive,keys,required,endkeys,gte=0"`
	Tags      []string   `json:"tags" gorm:"serializer:json;type:text" bson:"tags" validate:"dive,required"`
	Image     string     `json:"imagem" bson:"imagem"`
	ImageURL  string     `json:"imagemUrl,omitempty" gorm:"-" bson:"-"`
	Active    bool       `json:"active" gorm:"not null" bson:"active"`
	CreatedAt time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// ProductPatch carries the subset of product fields a seller may change
// in place. Nil fields are left untouched.
type ProductPatch struct {
	Brand  *string    `json:"marcanome" validate:"omitempty,min=1,max=60"`
	Model  *string    `json:"modelo" validate:"omitempty,min=1,max=120"`
	Gender *Gender    `json:"genero" validate:"omitempty,oneof=masculino feminino unissex"`
	Price  *float64   `json:"preco" validate:"omitempty,gt=0"`
	Size   *int       `json:"tamanho" validate:"omitempty,gt=0"`
	Colors ColorStock `json:"cores" validate:"omitempty,min=1,dive,keys,required,endkeys,gte=0"`
	Tags   []string   `json:"tags" validate:"omitempty,dive,required"`
}

// Empty reports whether the patch changes nothing.
func (p ProductPatch) Empty() bool {
	return p.Brand == nil && p.Model == nil && p.Gender == nil &&
		p.Price == nil && p.Size == nil && p.Colors == nil && p.Tags == nil
}

// Apply copies every set field of the patch onto product.
func (p ProductPatch) Apply(product *Product) {
	if p.Brand != nil {
		product.Brand = *p.Brand
	}
	if p.Model != nil {
		product.Model = *p.Model
	}
	if p.Gender != nil {
		product.Gender = *p.Gender
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Size != nil {
		product.Size = *p.Size
	}
	if p.Colors != nil {
		product.Colors = p.Colors
	}
	if p.Tags != nil {
		product.Tags = p.Tags
	}
}

// Visibility is the payload returned when a product is shown or hidden.
type Visibility struct {
	Model  string `json:"modelo"`
	Active bool   `json:"active"`
}

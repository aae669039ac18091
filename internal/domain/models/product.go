package models

import "time"

// Product is a catalogue entry line items can reference.
type Product struct {
	ID          string    `json:"id" bson:"_id,omitempty" firestore:"-"`
	OwnerID     string    `json:"ownerId" bson:"ownerId" firestore:"ownerId"`
	Name        string    `json:"name" bson:"name" firestore:"name"`
	SKU         string    `json:"sku,omitempty" bson:"sku,omitempty" firestore:"sku"`
	Price       float64   `json:"price" bson:"price" firestore:"price"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" firestore:"description"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt" firestore:"updatedAt"`
}

func (p *Product) GetID() string           { return p.ID }
func (p *Product) SetID(id string)         { p.ID = id }
func (p *Product) GetOwnerID() string      { return p.OwnerID }
func (p *Product) GetCreatedAt() time.Time { return p.CreatedAt }

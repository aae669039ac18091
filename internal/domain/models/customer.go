package models

import "time"

// Customer is someone invoices are issued to.
type Customer struct {
	ID        string    `json:"id" bson:"_id,omitempty" firestore:"-"`
	OwnerID   string    `json:"ownerId" bson:"ownerId" firestore:"ownerId"`
	Name      string    `json:"name" bson:"name" firestore:"name"`
	Email     string    `json:"email,omitempty" bson:"email,omitempty" firestore:"email"`
	Phone     string    `json:"phone,omitempty" bson:"phone,omitempty" firestore:"phone"`
	Address   string    `json:"address,omitempty" bson:"address,omitempty" firestore:"address"`
	City      string    `json:"city,omitempty" bson:"city,omitempty" firestore:"city"`
	Zip       string    `json:"zip,omitempty" bson:"zip,omitempty" firestore:"zip"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt" firestore:"updatedAt"`
}

func (c *Customer) GetID() string           { return c.ID }
func (c *Customer) SetID(id string)         { c.ID = id }
func (c *Customer) GetOwnerID() string      { return c.OwnerID }
func (c *Customer) GetCreatedAt() time.Time { return c.CreatedAt }

// CustomerRef is the trimmed customer shape embedded in listings.
type CustomerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

package models

import (
	"strings"
	"time"
)

// Company holds the business profile of a user. Each user owns at most one.
type Company struct {
	ID                   string    `json:"id" bson:"_id,omitempty" firestore:"-"`
	OwnerID              string    `json:"ownerId" bson:"ownerId" firestore:"ownerId"`
	BusinessName         string    `json:"businessName" bson:"businessName" firestore:"businessName"`
	Address              string    `json:"address,omitempty" bson:"address,omitempty" firestore:"address"`
	Country              string    `json:"country,omitempty" bson:"country,omitempty" firestore:"country"`
	State                string    `json:"state,omitempty" bson:"state,omitempty" firestore:"state"`
	City                 string    `json:"city,omitempty" bson:"city,omitempty" firestore:"city"`
	Email                string    `json:"email,omitempty" bson:"email,omitempty" firestore:"email"`
	Phone                string    `json:"phone,omitempty" bson:"phone,omitempty" firestore:"phone"`
	Region               string    `json:"region,omitempty" bson:"region,omitempty" firestore:"region"`
	TaxID                string    `json:"taxId" bson:"taxId" firestore:"taxId"`
	TaxIDLower           string    `json:"-" bson:"taxIdLower" firestore:"taxIdLower"`
	Logo                 string    `json:"logo,omitempty" bson:"logo,omitempty" firestore:"logo"`
	ManufacturingEnabled bool      `json:"manufacturingEnabled" bson:"manufacturingEnabled" firestore:"manufacturingEnabled"`
	SetupComplete        bool      `json:"setupComplete" bson:"setupComplete" firestore:"setupComplete"`
	CreatedAt            time.Time `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt" bson:"updatedAt" firestore:"updatedAt"`
}

func (c *Company) GetID() string           { return c.ID }
func (c *Company) SetID(id string)         { c.ID = id }
func (c *Company) GetOwnerID() string      { return c.OwnerID }
func (c *Company) GetCreatedAt() time.Time { return c.CreatedAt }

// NormalizeTaxID trims the id and collapses inner whitespace runs to one space.
func NormalizeTaxID(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// SetTaxID stores the normalized id and its lower-cased lookup copy.
func (c *Company) SetTaxID(raw string) {
	c.TaxID = NormalizeTaxID(raw)
	c.TaxIDLower = strings.ToLower(c.TaxID)
}

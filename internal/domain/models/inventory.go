package models

import (
	"strings"
	"time"
)

// InventoryItem is a stocked good with purchase and selling prices.
type InventoryItem struct {
	ID               string    `json:"id" bson:"_id,omitempty" firestore:"-"`
	OwnerID          string    `json:"ownerId" bson:"ownerId" firestore:"ownerId"`
	CompanyName      string    `json:"companyName" bson:"companyName" firestore:"companyName"`
	ProductName      string    `json:"productName" bson:"productName" firestore:"productName"`
	ProductNameLower string    `json:"-" bson:"productNameLower" firestore:"productNameLower"`
	Variant          string    `json:"variant,omitempty" bson:"variant,omitempty" firestore:"variant"`
	Quantity         float64   `json:"quantity" bson:"quantity" firestore:"quantity"`
	PurchasePrice    float64   `json:"purchasePrice" bson:"purchasePrice" firestore:"purchasePrice"`
	SellingPrice     float64   `json:"sellingPrice" bson:"sellingPrice" firestore:"sellingPrice"`
	MinQuantity      float64   `json:"minQuantity" bson:"minQuantity" firestore:"minQuantity"`
	PurchaseUnit     string    `json:"purchaseUnit,omitempty" bson:"purchaseUnit,omitempty" firestore:"purchaseUnit"`
	Profit           float64   `json:"profit" bson:"profit" firestore:"profit"`
	ProfitPct        float64   `json:"profitPct" bson:"profitPct" firestore:"profitPct"`
	CreatedAt        time.Time `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt" bson:"updatedAt" firestore:"updatedAt"`
}

func (i *InventoryItem) GetID() string           { return i.ID }
func (i *InventoryItem) SetID(id string)         { i.ID = id }
func (i *InventoryItem) GetOwnerID() string      { return i.OwnerID }
func (i *InventoryItem) GetCreatedAt() time.Time { return i.CreatedAt }

// Recalculate refreshes the derived fields. Call it before every save.
func (i *InventoryItem) Recalculate() {
	i.ProductNameLower = strings.ToLower(strings.TrimSpace(i.ProductName))
	i.Profit = i.SellingPrice - i.PurchasePrice
	if i.PurchasePrice > 0 {
		i.ProfitPct = i.Profit / i.PurchasePrice * 100
	} else {
		i.ProfitPct = 0
	}
}

// LowStock reports whether the quantity reached the minimum threshold.
func (i *InventoryItem) LowStock() bool {
	return i.Quantity <= i.MinQuantity
}

// InventoryFilter narrows inventory listings.
type InventoryFilter struct {
	// NamePrefix matches the start of the product name, case-insensitively.
	NamePrefix string
}

package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// CashDirection tells whether money entered or left the drawer.
type CashDirection string

const (
	CashIn  CashDirection = "in"
	CashOut CashDirection = "out"
)

// Valid reports whether d is a known direction.
func (d CashDirection) Valid() bool {
	return d == CashIn || d == CashOut
}

// AllowedDenominations are the note and coin face values accepted in a drawer count.
var AllowedDenominations = []int{5000, 2000, 1000, 500, 100, 50, 20, 10}

// CashEntry is one drawer count. Entries are immutable once stored.
type CashEntry struct {
	ID            string             `json:"id" bson:"_id,omitempty" firestore:"-"`
	OwnerID       string             `json:"ownerId" bson:"ownerId" firestore:"ownerId"`
	Direction     CashDirection      `json:"direction" bson:"direction" firestore:"direction"`
	Denominations map[string]float64 `json:"denominations" bson:"denominations" firestore:"denominations"`
	TotalAmount   float64            `json:"totalAmount" bson:"totalAmount" firestore:"totalAmount"`
	Note          string             `json:"note,omitempty" bson:"note,omitempty" firestore:"note"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
}

func (e *CashEntry) GetID() string           { return e.ID }
func (e *CashEntry) SetID(id string)         { e.ID = id }
func (e *CashEntry) GetOwnerID() string      { return e.OwnerID }
func (e *CashEntry) GetCreatedAt() time.Time { return e.CreatedAt }

// denominationValue returns the face value of label when it is an allowed denomination.
func denominationValue(label string) (int, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(label), 64)
	if err != nil {
		return 0, false
	}
	for _, allowed := range AllowedDenominations {
		if value == float64(allowed) {
			return allowed, true
		}
	}
	return 0, false
}

// DenominationCounts maps face value labels to note counts as submitted by a
// client. Counts that are not JSON numbers decode as NaN so the totaler drops
// them instead of failing the whole request.
type DenominationCounts map[string]float64

func (d *DenominationCounts) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(DenominationCounts, len(raw))
	for label, value := range raw {
		var count float64
		if err := json.Unmarshal(value, &count); err != nil {
			count = math.NaN()
		}
		out[label] = count
	}
	*d = out
	return nil
}

func validCount(count float64) bool {
	return !math.IsNaN(count) && !math.IsInf(count, 0) && count >= 0
}

// NormalizeDenominations drops unknown face values and counts that are negative
// or not finite. The returned map is keyed by the canonical face value.
func NormalizeDenominations(counts map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(counts))
	for label, count := range counts {
		face, ok := denominationValue(label)
		if !ok || !validCount(count) {
			continue
		}
		out[strconv.Itoa(face)] += count
	}
	return out
}

// TotalDenominations sums face value times count over the accepted entries.
func TotalDenominations(counts map[string]float64) float64 {
	var total float64
	for label, count := range counts {
		face, ok := denominationValue(label)
		if !ok || !validCount(count) {
			continue
		}
		total += float64(face) * count
	}
	return total
}

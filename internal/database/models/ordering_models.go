package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringArray stores a string list as a JSON column.
type StringArray []string

func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = []string{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to scan StringArray: %v", value)
	}

	return json.Unmarshal(bytes, a)
}

func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Address is embedded with a column prefix wherever an address is stored.
type Address struct {
	AddressLine1 string  `gorm:"size:255"`
	AddressLine2 *string `gorm:"size:255"`
	City         string  `gorm:"size:100"`
	State        string  `gorm:"size:100"`
	Zip          string  `gorm:"size:20"`
}

type Company struct {
	ID        string  `gorm:"primaryKey;type:varchar(36)"`
	Name      string  `gorm:"size:255;not null"`
	Code      string  `gorm:"size:50;uniqueIndex;not null"`
	Address   Address `gorm:"embedded;embeddedPrefix:address_"`
	IsActive  bool    `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Shifts []CompanyShift `gorm:"foreignKey:CompanyID"`
}

// CompanyShift holds the per-order budget a company grants on one shift.
type CompanyShift struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	CompanyID   string `gorm:"type:varchar(36);uniqueIndex:idx_company_shift;not null"`
	Shift       string `gorm:"size:50;uniqueIndex:idx_company_shift;not null"`
	ShiftBudget string `gorm:"type:varchar(32);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Customer struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	FirstName string `gorm:"size:100;not null"`
	LastName  string `gorm:"size:100"`
	Email     string `gorm:"size:255;uniqueIndex;not null"`
	Role      string `gorm:"size:32;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Memberships []Membership `gorm:"foreignKey:CustomerID"`
}

// Membership links a customer to a company. At most one is ACTIVE.
type Membership struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	CustomerID string `gorm:"type:varchar(36);index;not null"`
	CompanyID  string `gorm:"type:varchar(36);index;not null"`
	Shift      string `gorm:"size:50;not null"`
	Status     string `gorm:"size:16;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Company *Company `gorm:"foreignKey:CompanyID"`
}

type Restaurant struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	Name      string `gorm:"size:255;not null"`
	IsActive  bool   `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Order is one ordered dish. Customer, company and restaurant fields are
// copied at order time so later renames do not rewrite history.
type Order struct {
	ID                  string    `gorm:"primaryKey;type:varchar(36)"`
	CustomerID          string    `gorm:"type:varchar(36);index;not null"`
	CustomerFirstName   string    `gorm:"size:100"`
	CustomerLastName    string    `gorm:"size:100"`
	CustomerEmail       string    `gorm:"size:255"`
	RestaurantID        string    `gorm:"type:varchar(36);not null"`
	RestaurantName      string    `gorm:"size:255"`
	CompanyID           string    `gorm:"type:varchar(36);index;not null"`
	CompanyName         string    `gorm:"size:255"`
	CompanyCode         string    `gorm:"size:50;index"`
	CompanyShift        string    `gorm:"size:50"`
	DeliveryDate        time.Time `gorm:"type:date;index;not null"`
	DeliveryAddress     Address   `gorm:"embedded;embeddedPrefix:delivery_"`
	ItemID              string    `gorm:"type:varchar(36);not null"`
	ItemName            string    `gorm:"size:255;not null"`
	Quantity            int32     `gorm:"not null"`
	Total               string    `gorm:"type:varchar(32);not null"`
	OptionalAddons      *string   `gorm:"type:text"`
	RequiredAddons      *string   `gorm:"type:text"`
	RemovedIngredients  *string   `gorm:"type:text"`
	Status              string    `gorm:"size:16;index;not null"`
	PaymentIntentID     *string   `gorm:"size:255"`
	PaymentDistributed  *string   `gorm:"type:varchar(32)"`
	DiscountCodeID      *string   `gorm:"type:varchar(36)"`
	DiscountDistributed *string   `gorm:"type:varchar(32)"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type DiscountCode struct {
	ID             string `gorm:"primaryKey;type:varchar(36)"`
	Code           string `gorm:"size:64;uniqueIndex;not null"`
	Value          string `gorm:"type:varchar(32);not null"`
	CompanyIDs     string `gorm:"type:text"`
	MaxRedemptions int32  `gorm:"default:0"`
	Redemptions    int32  `gorm:"default:0"`
	ExpiresAt      *time.Time
	IsActive       bool `gorm:"default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

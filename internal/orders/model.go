package orders

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("order not found")
	ErrInvalidOrder  = errors.New("invalid order")
	ErrInvalidStatus = errors.New("invalid order status")
	ErrMissingLookup = errors.New("order id or email is required")
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Any status may follow any other; there is no transition table.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// Item is one order line. Name and price are captured when the order is
// placed and do not follow later catalog edits.
type Item struct {
	ProductID   string `json:"product_id" example:"3f2b9c1e-5d4a-4f7b-8e21-0c9d6a100001"`
	ProductName string `json:"product_name" example:"SonicPods Pro Max"`
	Quantity    int    `json:"quantity" example:"1"`
	Price       int64  `json:"price" example:"24999"`
}

// Items is stored as a JSONB array.
type Items []Item

func (it Items) Value() (driver.Value, error) {
	if it == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(it)
}

func (it *Items) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*it = Items{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan items: unsupported type %T", src)
	}
	var out Items
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("scan items: %w", err)
	}
	if out == nil {
		out = Items{}
	}
	*it = out
	return nil
}

// Total is the sum of quantity times unit price.
func (it Items) Total() int64 {
	var total int64
	for _, item := range it {
		total += int64(item.Quantity) * item.Price
	}
	return total
}

type Order struct {
	ID           string    `json:"id" example:"9a3c1a2e-8d8f-4b7e-a3a4-2f6f4f1b0c11"`
	CustomerName string    `json:"customer_name" example:"Ayesha Khan"`
	Email        string    `json:"email" example:"ayesha@example.com"`
	Phone        string    `json:"phone" example:"+92 300 1234567"`
	Address      string    `json:"address"`
	City         string    `json:"city" example:"Lahore"`
	PostalCode   string    `json:"postal_code" example:"54000"`
	Items        Items     `json:"items"`
	TotalAmount  int64     `json:"total_amount" example:"24999"`
	Status       Status    `json:"status" example:"pending"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (o Order) Validate() error {
	switch {
	case o.CustomerName == "":
		return fmt.Errorf("%w: customer_name is required", ErrInvalidOrder)
	case o.Email == "":
		return fmt.Errorf("%w: email is required", ErrInvalidOrder)
	case o.Address == "":
		return fmt.Errorf("%w: address is required", ErrInvalidOrder)
	case len(o.Items) == 0:
		return fmt.Errorf("%w: at least one item is required", ErrInvalidOrder)
	case !o.Status.Valid():
		return fmt.Errorf("%w: %q", ErrInvalidStatus, o.Status)
	}
	if _, err := mail.ParseAddress(o.Email); err != nil {
		return fmt.Errorf("%w: malformed email", ErrInvalidOrder)
	}
	for i, item := range o.Items {
		switch {
		case item.ProductID == "":
			return fmt.Errorf("%w: item %d has no product_id", ErrInvalidOrder, i)
		case item.Quantity <= 0:
			return fmt.Errorf("%w: item %d quantity must be positive", ErrInvalidOrder, i)
		case item.Price < 0:
			return fmt.Errorf("%w: item %d price must not be negative", ErrInvalidOrder, i)
		}
	}
	return nil
}

func (o Order) Clone() Order {
	out := o
	out.Items = append(Items(nil), o.Items...)
	return out
}

// TrackQuery selects the most recent order matching every non-empty field.
type TrackQuery struct {
	OrderID string
	Email   string
}

func (q TrackQuery) Validate() error {
	if q.OrderID == "" && q.Email == "" {
		return ErrMissingLookup
	}
	return nil
}

func (q TrackQuery) Match(o Order) bool {
	if q.OrderID != "" && o.ID != q.OrderID {
		return false
	}
	if q.Email != "" && !strings.EqualFold(o.Email, q.Email) {
		return false
	}
	return true
}

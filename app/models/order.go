package models

import (
	"fmt"
	"time"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every valid status in display order.
var OrderStatuses = []OrderStatus{OrderPending, OrderProcessing, OrderCompleted, OrderCancelled}

// ParseOrderStatus validates s.
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range OrderStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// OrderItem is the product snapshot captured at checkout.
type OrderItem struct {
	ProductID string `bson:"product_id" json:"product_id"`
	Name      string `bson:"name"       json:"name"`
	Price     int64  `bson:"price"      json:"price"`
	Quantity  int    `bson:"quantity"   json:"quantity"`
}

// LineTotal is Price × Quantity.
func (i OrderItem) LineTotal() int64 { return i.Price * int64(i.Quantity) }

// Order is a persisted checkout. It is only ever mutated by status changes.
type Order struct {
	ID            string      `gorm:"primaryKey;size:64"            bson:"_id"                json:"id"`
	Items         []OrderItem `gorm:"serializer:json;type:text"     bson:"items"              json:"items"`
	Quantity      int         `gorm:"not null;default:0"            bson:"quantity"           json:"quantity"`
	Total         int64       `gorm:"not null;default:0"            bson:"total"              json:"total"`
	CustomerName  string      `gorm:"size:255;not null"             bson:"customer_name"      json:"customer_name"`
	CustomerPhone string      `gorm:"size:64;not null"              bson:"customer_phone"     json:"customer_phone"`
	CustomerEmail string      `gorm:"size:255"                      bson:"customer_email"     json:"customer_email,omitempty"`
	Address       string      `gorm:"type:text"                     bson:"address,omitempty"  json:"address,omitempty"`
	Notes         string      `gorm:"type:text"                     bson:"notes,omitempty"    json:"notes,omitempty"`
	Status        OrderStatus `gorm:"size:32;not null;default:pending;index" bson:"status"    json:"status"`
	CreatedAt     time.Time   `gorm:"index"                         bson:"created_at"         json:"created_at"`
	UpdatedAt     time.Time   `                                     bson:"updated_at"         json:"updated_at"`
}

func (o *Order) DocID() string           { return o.ID }
func (o *Order) SetDocID(id string)      { o.ID = id }
func (o *Order) Created() time.Time      { return o.CreatedAt }
func (o *Order) SetCreated(at time.Time) { o.CreatedAt = at }
func (o *Order) Stamp(now time.Time)     { stamp(&o.CreatedAt, &o.UpdatedAt, now) }

// Recompute derives Quantity and Total from Items.
func (o *Order) Recompute() {
	o.Quantity, o.Total = 0, 0
	for _, it := range o.Items {
		o.Quantity += it.Quantity
		o.Total += it.LineTotal()
	}
}

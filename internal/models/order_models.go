package models

import "time"

// PaymentMethod is the closed set of ways an order can be paid.
type PaymentMethod string

const (
	PaymentMethodStripe PaymentMethod = "stripe" // provider-hosted checkout
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCard   PaymentMethod = "card"
)

// PaymentStatus tracks the payment side of an order's lifecycle.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Settled reports whether the payment has gone through. Older records may
// carry "paid" instead of "completed"; both count.
func (s PaymentStatus) Settled() bool {
	return s == PaymentStatusCompleted || s == "paid"
}

// OrderStatus tracks the fulfilment side of an order's lifecycle.
type OrderStatus string

const (
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusOnTheWay  OrderStatus = "on-the-way"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// DefaultDroneSpeed is the fallback drone speed (distance units per time unit)
// applied when a drone-delivery request omits it.
const DefaultDroneSpeed = 10.0

// OrderItem is a snapshot of a purchased menu item. Name and price are copied
// at order time so the order stays valid even if the menu item is later
// deleted or repriced.
type OrderItem struct {
	Name       string   `json:"name"`
	Quantity   int      `json:"quantity"`
	Price      float64  `json:"price"`
	TotalPrice float64  `json:"total_price"`
	MenuItemID *string  `json:"menu_item_id,omitempty"`
	OptionIDs  []string `json:"option_ids,omitempty"`
}

// DeliveryAddress is the structured drop-off destination of an order.
type DeliveryAddress struct {
	Name   string   `json:"name" validate:"required"`
	Street string   `json:"street" validate:"required"`
	City   string   `json:"city" validate:"required"`
	State  string   `json:"state"`
	Zip    string   `json:"zip"`
	Phone  string   `json:"phone"`
	Email  string   `json:"email" validate:"omitempty,email"`
	Lat    *float64 `json:"lat,omitempty"`
	Lng    *float64 `json:"lng,omitempty"`
}

// DroneDelivery is the simplified sub-record attached to orders fulfilled by
// drone instead of a courier.
type DroneDelivery struct {
	StartTime time.Time `json:"start_time"`
	OriginLat float64   `json:"origin_lat"`
	OriginLng float64   `json:"origin_lng"`
	DestLat   float64   `json:"dest_lat"`
	DestLng   float64   `json:"dest_lng"`
	Speed     float64   `json:"speed"`
}

// Order represents a customer's placed purchase against one restaurant.
type Order struct {
	ID                    string          `json:"id"`
	RestaurantID          string          `json:"restaurant_id"`
	UserID                *string         `json:"user_id,omitempty"`
	Items                 []OrderItem     `json:"items"`
	Subtotal              float64         `json:"subtotal"`
	DeliveryFee           float64         `json:"delivery_fee"`
	Total                 float64         `json:"total"`
	Address               DeliveryAddress `json:"address"`
	PaymentMethod         PaymentMethod   `json:"payment_method"`
	PaymentStatus         PaymentStatus   `json:"payment_status"`
	Status                OrderStatus     `json:"status"`
	EstimatedDeliveryTime *int            `json:"estimated_delivery_time,omitempty"`
	DroneDelivery         *DroneDelivery  `json:"drone_delivery,omitempty"`
	PaymentRef            *string         `json:"payment_ref,omitempty"`
	PaidAt                *time.Time      `json:"paid_at,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// CreateOrderItem is one line of an incoming order request.
type CreateOrderItem struct {
	Name       string   `json:"name" validate:"required"`
	Quantity   int      `json:"quantity" validate:"required,min=1"`
	Price      float64  `json:"price" validate:"gte=0"`
	MenuItemID *string  `json:"menu_item_id,omitempty" validate:"omitempty,uuid"`
	OptionIDs  []string `json:"option_ids,omitempty" validate:"omitempty,dive,uuid"`
}

// CreateDroneDeliveryRequest carries the optional drone sub-record on order
// creation. Speed defaults to DefaultDroneSpeed when omitted.
type CreateDroneDeliveryRequest struct {
	StartTime *time.Time `json:"start_time,omitempty"`
	OriginLat float64    `json:"origin_lat"`
	OriginLng float64    `json:"origin_lng"`
	DestLat   float64    `json:"dest_lat"`
	DestLng   float64    `json:"dest_lng"`
	Speed     *float64   `json:"speed,omitempty" validate:"omitempty,gt=0"`
}

// CreateOrderRequest represents the body of POST /orders.
type CreateOrderRequest struct {
	RestaurantID          string                      `json:"restaurant_id" validate:"required,uuid"`
	Items                 []CreateOrderItem           `json:"items" validate:"required,min=1,dive"`
	Subtotal              float64                     `json:"subtotal" validate:"gte=0"`
	DeliveryFee           float64                     `json:"delivery_fee" validate:"gte=0"`
	Total                 float64                     `json:"total" validate:"gte=0"`
	Address               DeliveryAddress             `json:"address" validate:"required"`
	PaymentMethod         PaymentMethod               `json:"payment_method" validate:"required,oneof=stripe cash card"`
	EstimatedDeliveryTime *int                        `json:"estimated_delivery_time,omitempty" validate:"omitempty,gt=0"`
	DroneDelivery         *CreateDroneDeliveryRequest `json:"drone_delivery,omitempty"`
}

// UpdateOrderStatusRequest represents the body of PATCH /orders/:id.
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=preparing on-the-way delivered cancelled"`
}

// UpdatePaymentStatusRequest represents the body of PUT /orders/:id/payment.
type UpdatePaymentStatusRequest struct {
	PaymentStatus PaymentStatus `json:"payment_status" validate:"required,oneof=pending completed failed refunded"`
}

// DeliveryFilters is the conjunctive filter set for the administrative
// delivery listing. CityName is resolved to the restaurants located in that
// city before filtering; date bounds on created_at are inclusive.
type DeliveryFilters struct {
	Status        *OrderStatus
	CityName      string
	RestaurantID  string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// DeliveryOrder is a delivery-listing row, optionally enriched with customer
// info. Population of Customer degrades gracefully: a lookup failure leaves it
// nil rather than failing the whole listing.
type DeliveryOrder struct {
	Order
	Customer *User `json:"customer,omitempty"`
}

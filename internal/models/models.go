package models

import (
	"encoding/json"
	"time"
)

// Role is the authorization attribute of an authenticated user
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the roles the API issues
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is the identity record returned by the API on login and by the admin user listing.
// Field names follow the API wire format.
type User struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"user_role"`
	HasAccess bool   `json:"hasAccess"`
}

// Clone returns a copy of u, or nil when u is nil
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// RegisterForm is the body of POST /auth/register
type RegisterForm struct {
	Name            string `json:"name" yaml:"name" form:"name" validate:"required"`
	Email           string `json:"email" yaml:"email" form:"email" validate:"required,loose_email"`
	Password        string `json:"password" yaml:"password" form:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" yaml:"confirmPassword" form:"confirmPassword" validate:"required,eqfield=Password"`
}

// LoginForm is the body of POST /auth/login
type LoginForm struct {
	Email    string `json:"email" yaml:"email" form:"email" validate:"required,loose_email"`
	Password string `json:"password" yaml:"password" form:"password" validate:"required,min=6"`
}

// Address is a sender or receiver block of a shipment order
type Address struct {
	Name    string `json:"name" yaml:"name" validate:"required"`
	Phone   string `json:"phone" yaml:"phone" validate:"required"`
	Company string `json:"company" yaml:"company" validate:"required"`
	Street  string `json:"street" yaml:"street" validate:"required"`
	Street2 string `json:"street2" yaml:"street2"`
	City    string `json:"city" yaml:"city" validate:"required"`
	State   string `json:"state" yaml:"state" validate:"required"`
	Zip     string `json:"zip" yaml:"zip" validate:"required"`
}

// DefaultServiceType is the carrier preselected on a new order
const DefaultServiceType = "UPS"

// Package describes the parcel of a shipment order.
// Dimensions stay strings, the API receives them as typed by the user.
type Package struct {
	ServiceType      string `json:"serviceType" yaml:"serviceType"`
	Weight           string `json:"weight" yaml:"weight" validate:"required,numeric_value,positive_value"`
	Length           string `json:"length" yaml:"length" validate:"required,numeric_value,positive_value"`
	Width            string `json:"width" yaml:"width" validate:"required,numeric_value,positive_value"`
	Height           string `json:"height" yaml:"height" validate:"required,numeric_value,positive_value"`
	Description      string `json:"description" yaml:"description" validate:"required"`
	Reference1       string `json:"reference1" yaml:"reference1"`
	Reference2       string `json:"reference2" yaml:"reference2"`
	RequireSignature bool   `json:"requireSignature" yaml:"requireSignature"`
	SaturdayDelivery bool   `json:"saturdayDelivery" yaml:"saturdayDelivery"`
}

// ShipmentForm is the order-label form submitted to create a shipment
type ShipmentForm struct {
	Sender   Address `json:"sender" yaml:"sender"`
	Receiver Address `json:"receiver" yaml:"receiver"`
	Package  Package `json:"package" yaml:"package"`
}

// NewShipmentForm returns an empty form with the default carrier selected
func NewShipmentForm() ShipmentForm {
	return ShipmentForm{Package: Package{ServiceType: DefaultServiceType}}
}

// ShipmentService is a carrier service offered by the API. The remaining attributes are
// carrier specific and carried through untouched.
type ShipmentService struct {
	Name       string                     `json:"name"`
	Attributes map[string]json.RawMessage `json:"attributes"`
}

// OrderSender is the sender block of an order history record
type OrderSender struct {
	Name    string `json:"sender_name"`
	Company string `json:"sender_company"`
}

// OrderReceiver is the receiver block of an order history record
type OrderReceiver struct {
	Name    string `json:"receiver_name"`
	Company string `json:"receiver_company"`
}

// Order is a past shipment order. The API owns its schema, so only the fields the
// order history shows are typed.
type Order struct {
	ID             string          `json:"_id"`
	ServiceName    string          `json:"service_name"`
	TrackingNumber string          `json:"tracking_number"`
	Sender         OrderSender     `json:"sender"`
	Receiver       OrderReceiver   `json:"receiver"`
	CreatedAt      time.Time       `json:"createdAt"`
	Raw            json.RawMessage `json:"-"`
}

// UnmarshalJSON keeps the raw record alongside the typed fields
func (o *Order) UnmarshalJSON(data []byte) error {
	type order Order
	var tmp order
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*o = Order(tmp)
	o.Raw = append(json.RawMessage(nil), data...)
	return nil
}

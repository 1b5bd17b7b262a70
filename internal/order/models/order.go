package models

import (
	"strings"
	"time"

	"github.com/asaskevich/govalidator"

	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
)

// Status is the order lifecycle label. Administrators may set any label
// directly; there is no ordering guard between them.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
)

// Statuses lists the labels in lifecycle order.
var Statuses = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered}

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Statuses {
		if s == known {
			return s, nil
		}
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "unknown order status")
}

// LineItem is the immutable snapshot of a cart line at submission.
type LineItem struct {
	ProductID id.ProductID `json:"id"`
	Name      string       `json:"name"`
	Price     id.Amount    `json:"price"`
	Quantity  int          `json:"quantity"`
	Image     string       `json:"image"`
}

type ShippingAddress struct {
	Address string `json:"address"`
	City    string `json:"city"`
	Pincode string `json:"pincode"`
}

type Order struct {
	ID              id.OrderID      `json:"id"`
	UserID          id.UserID       `json:"user_id"`
	CustomerName    string          `json:"customer_name"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	Items           []LineItem      `json:"items"`
	Subtotal        id.Amount       `json:"subtotal"`
	Shipping        id.Amount       `json:"shipping"`
	Tax             id.Amount       `json:"tax"`
	Total           id.Amount       `json:"total_amount"`
	Status          Status          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

const (
	PaymentCard   = "Credit/Debit Card"
	PaymentUPI    = "UPI / GPay"
	PaymentOnSite = "Cash on Delivery"

	DefaultPaymentMethod = PaymentUPI
)

// CheckoutForm is the customer-supplied part of an order.
type CheckoutForm struct {
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	FullName      string `json:"full_name"`
	Address       string `json:"address"`
	City          string `json:"city"`
	Pincode       string `json:"pincode"`
	PaymentMethod string `json:"payment_method"`
}

func (f *CheckoutForm) Normalize() {
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.FullName = strings.TrimSpace(f.FullName)
	f.Address = strings.TrimSpace(f.Address)
	f.City = strings.TrimSpace(f.City)
	f.Pincode = strings.TrimSpace(f.Pincode)
	f.PaymentMethod = strings.TrimSpace(f.PaymentMethod)
	if f.PaymentMethod == "" {
		f.PaymentMethod = DefaultPaymentMethod
	}
}

// Validate expects a normalized form.
func (f *CheckoutForm) Validate() error {
	required := []struct {
		value, field string
	}{
		{f.Email, "email"},
		{f.Phone, "phone"},
		{f.FullName, "full name"},
		{f.Address, "address"},
		{f.City, "city"},
		{f.Pincode, "pincode"},
	}
	for _, r := range required {
		if r.value == "" {
			return dErrors.New(dErrors.CodeValidation, r.field+" is required")
		}
	}
	if !govalidator.IsEmail(f.Email) {
		return dErrors.New(dErrors.CodeValidation, "email must be a valid address")
	}
	if !govalidator.IsIn(f.PaymentMethod, PaymentCard, PaymentUPI, PaymentOnSite) {
		return dErrors.New(dErrors.CodeValidation, "unsupported payment method")
	}
	return nil
}

package gateway

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
)

// Notification is the webhook payload the gateway posts on every status
// change of an order.
type Notification struct {
	OrderID           string `json:"order_id" validate:"required"`
	StatusCode        string `json:"status_code" validate:"required"`
	GrossAmount       string `json:"gross_amount" validate:"required"`
	SignatureKey      string `json:"signature_key" validate:"required"`
	TransactionStatus string `json:"transaction_status" validate:"required"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	TransactionID     string `json:"transaction_id"`
	TransactionTime   string `json:"transaction_time"`
}

// Signature computes SHA512(order_id + status_code + gross_amount + server_key).
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

func (n *Notification) Verify(serverKey string) bool {
	want := Signature(n.OrderID, n.StatusCode, n.GrossAmount, serverKey)
	return subtle.ConstantTimeCompare([]byte(want), []byte(n.SignatureKey)) == 1
}

// DedupeKey identifies one delivery of one status for one order. Redelivery
// of the same status produces the same key.
func (n *Notification) DedupeKey() string {
	return n.OrderID + ":" + n.TransactionStatus + ":" + n.FraudStatus + ":" + n.StatusCode
}

// Status is the notification in the shape a status poll returns.
func (n *Notification) Status() *Status {
	return &Status{
		OrderID:           n.OrderID,
		StatusCode:        n.StatusCode,
		GrossAmount:       n.GrossAmount,
		TransactionStatus: n.TransactionStatus,
		FraudStatus:       n.FraudStatus,
		PaymentType:       n.PaymentType,
		TransactionID:     n.TransactionID,
	}
}

package services

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrOutOfStock         = errors.New("product is out of stock")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrPaymentNotRequired = errors.New("order does not take a payment proof")
	ErrProofRequired      = errors.New("payment proof has not been uploaded")
	ErrStorageDisabled    = errors.New("file storage is not configured")
)

package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"ticktee/internal/models"
	"ticktee/internal/repositories"
	"ticktee/pkg/storage"

	"github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"
)

// MaxProofSize is the largest accepted payment proof upload.
const MaxProofSize = 5 << 20

var proofContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

// ProofUpload is a payment receipt sent by the customer.
type ProofUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// VerifyInput is an admin's decision on a payment proof.
type VerifyInput struct {
	OrderID  string `json:"order_id" validate:"required"`
	Approved bool   `json:"approved"`
	Note     string `json:"note" validate:"omitempty,max=1000"`
}

// WalletInfo is where wallet payments are sent.
type WalletInfo struct {
	Name   string
	Number string
}

// PaymentService handles payment proofs and their verification.
type PaymentService struct {
	orders    repositories.OrderRepository
	uploader  storage.Uploader
	publisher EventPublisher
	wallet    WalletInfo
	log       logrus.FieldLogger
}

// NewPaymentService creates a PaymentService. uploader may be nil when storage is
// not configured.
func NewPaymentService(orders repositories.OrderRepository, uploader storage.Uploader, publisher EventPublisher, wallet WalletInfo, log logrus.FieldLogger) *PaymentService {
	return &PaymentService{
		orders:    orders,
		uploader:  uploader,
		publisher: publisher,
		wallet:    wallet,
		log:       log,
	}
}

// SubmitProof stores a payment receipt for a wallet order owned by userID. A
// previously rejected order goes back to awaiting payment.
func (s *PaymentService) SubmitProof(ctx context.Context, userID, orderID string, up ProofUpload) (*models.Order, error) {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("order with ID %s: %w", orderID, repositories.ErrNotFound)
	}
	if !order.PaymentMethod.IsWallet() {
		return nil, ErrPaymentNotRequired
	}
	if order.Status != models.StatusAwaitingPayment && order.Status != models.StatusPaymentRejected {
		return nil, fmt.Errorf("order in status %s does not accept a payment proof: %w", order.Status, ErrInvalidTransition)
	}
	contentType := strings.ToLower(strings.TrimSpace(strings.SplitN(up.ContentType, ";", 2)[0]))
	if !proofContentTypes[contentType] {
		return nil, fmt.Errorf("unsupported file type %q: %w", up.ContentType, ErrInvalidInput)
	}
	if up.Size <= 0 || up.Size > MaxProofSize {
		return nil, fmt.Errorf("file must be between 1 byte and %d bytes: %w", MaxProofSize, ErrInvalidInput)
	}
	if s.uploader == nil {
		return nil, ErrStorageDisabled
	}

	url, err := s.uploader.Upload(ctx, storage.ObjectName("payment-proofs/"+order.ID, up.Filename), up.Body, up.Size, contentType)
	if err != nil {
		return nil, err
	}

	from := order.Status
	order.PaymentProof = url
	order.Status = models.StatusAwaitingPayment
	order.IsVerified = false
	order.VerifiedAt = nil
	order.VerifiedBy = ""
	if err := s.orders.Update(order, from, false); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"order_id": order.ID, "user_id": userID}).Info("payment proof submitted")
	if from != order.Status {
		publishEvent(s.publisher, s.log, newOrderEvent(EventOrderStatusChanged, order, from, ""))
	}
	return order, nil
}

// PendingPayments lists wallet orders with a proof waiting for verification.
func (s *PaymentService) PendingPayments(page Page) ([]models.Order, int64, error) {
	page = page.Normalize()
	return s.orders.List(repositories.OrderFilter{
		Statuses:     []models.OrderStatus{models.StatusAwaitingPayment},
		WalletOnly:   true,
		ProofPending: true,
		Offset:       page.Offset(),
		Limit:        page.Limit,
	})
}

// VerifyPayment records an admin's approval or rejection of a payment proof.
// Notification failures do not undo the decision.
func (s *PaymentService) VerifyPayment(adminID string, in VerifyInput) (*models.Order, error) {
	order, err := s.orders.GetByID(in.OrderID)
	if err != nil {
		return nil, err
	}
	if !order.PaymentMethod.IsWallet() {
		return nil, ErrPaymentNotRequired
	}

	to := models.StatusPaymentRejected
	event := EventPaymentRejected
	if in.Approved {
		if order.PaymentProof == "" {
			return nil, ErrProofRequired
		}
		to = models.StatusPaymentVerified
		event = EventPaymentVerified
	}
	from := order.Status
	if !CanTransition(from, to) {
		return nil, fmt.Errorf("%s -> %s: %w", from, to, ErrInvalidTransition)
	}

	now := time.Now()
	order.Status = to
	order.IsVerified = in.Approved
	order.VerifiedAt = &now
	order.VerifiedBy = adminID
	order.PaymentNote = strings.TrimSpace(in.Note)
	if err := s.orders.Update(order, from, false); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"order_id": order.ID, "admin_id": adminID, "approved": in.Approved}).Info("payment reviewed")
	publishEvent(s.publisher, s.log, newOrderEvent(event, order, from, order.PaymentNote))
	return order, nil
}

// PaymentQR renders a PNG QR code carrying the wallet number, amount and order
// reference for a wallet order owned by userID.
func (s *PaymentService) PaymentQR(userID string, isAdmin bool, orderID string, size int) ([]byte, error) {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != userID {
		return nil, fmt.Errorf("order with ID %s: %w", orderID, repositories.ErrNotFound)
	}
	if !order.PaymentMethod.IsWallet() {
		return nil, ErrPaymentNotRequired
	}
	if s.wallet.Number == "" {
		return nil, fmt.Errorf("wallet number is not configured: %w", ErrPaymentNotRequired)
	}
	if size < 128 || size > 1024 {
		size = 256
	}
	return qrcode.Encode(PaymentReference(s.wallet, order), qrcode.Medium, size)
}

// PaymentReference is the text encoded in an order's payment QR code.
func PaymentReference(w WalletInfo, order *models.Order) string {
	return fmt.Sprintf("%s|%s|%s|%.0f|%s", strings.ToUpper(string(order.PaymentMethod)), w.Name, w.Number, order.TotalAmount, order.ID)
}

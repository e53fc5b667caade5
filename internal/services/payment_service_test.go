package services_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"ticktee/internal/models"
	"ticktee/internal/repositories"
	"ticktee/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testWallet = services.WalletInfo{Name: "TickTee Style", Number: "03001112223"}

func walletOrder(t *testing.T, store *testStore, userID string, method models.PaymentMethod) *models.Order {
	t.Helper()
	product := store.seedProduct(t, "Seiko Presage", 2000, 5)
	order, err := newOrderService(store, nil).Checkout(userID, services.CheckoutInput{
		Items:           []services.CheckoutItem{{ProductID: product.ID, Quantity: 1}},
		PaymentMethod:   method,
		ShippingAddress: testAddress(),
	})
	require.NoError(t, err)
	return order
}

func proof(contentType string, size int64) services.ProofUpload {
	return services.ProofUpload{Filename: "receipt.png", ContentType: contentType, Size: size, Body: strings.NewReader("receipt")}
}

func TestPaymentService_SubmitProof(t *testing.T) {
	store := newTestStore(t)
	uploader := new(MockUploader)
	service := services.NewPaymentService(store.orders, uploader, nil, testWallet, quietLogger())
	user := store.seedUser(t, "payer@example.com")
	other := store.seedUser(t, "stranger@example.com")
	order := walletOrder(t, store, user.ID, models.PaymentJazzCash)

	uploader.On("Upload", mock.MatchedBy(func(name string) bool {
		return strings.HasPrefix(name, "payment-proofs/"+order.ID+"/")
	}), int64(7), "image/png").Return("https://files.example.com/proof.png", nil).Once()

	updated, err := service.SubmitProof(context.Background(), user.ID, order.ID, proof("image/png", 7))
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com/proof.png", updated.PaymentProof)
	assert.Equal(t, models.StatusAwaitingPayment, updated.Status)
	uploader.AssertExpectations(t)

	_, err = service.SubmitProof(context.Background(), other.ID, order.ID, proof("image/png", 7))
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = service.SubmitProof(context.Background(), user.ID, order.ID, proof("text/html", 7))
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	_, err = service.SubmitProof(context.Background(), user.ID, order.ID, proof("image/webp", 7))
	assert.ErrorIs(t, err, services.ErrInvalidInput, "only jpeg, png and pdf receipts are accepted")

	_, err = service.SubmitProof(context.Background(), user.ID, order.ID, proof("image/png", services.MaxProofSize+1))
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	cod := walletOrder(t, store, user.ID, models.PaymentCOD)
	_, err = service.SubmitProof(context.Background(), user.ID, cod.ID, proof("image/png", 7))
	assert.ErrorIs(t, err, services.ErrPaymentNotRequired)

	noStorage := services.NewPaymentService(store.orders, nil, nil, testWallet, quietLogger())
	_, err = noStorage.SubmitProof(context.Background(), user.ID, order.ID, proof("image/png", 7))
	assert.ErrorIs(t, err, services.ErrStorageDisabled)
}

func TestPaymentService_VerifyPayment(t *testing.T) {
	store := newTestStore(t)
	uploader := new(MockUploader)
	pub := &recordingPublisher{}
	service := services.NewPaymentService(store.orders, uploader, pub, testWallet, quietLogger())
	user := store.seedUser(t, "verify@example.com")
	order := walletOrder(t, store, user.ID, models.PaymentEasypaisa)

	// Approval needs a proof
	_, err := service.VerifyPayment("admin-1", services.VerifyInput{OrderID: order.ID, Approved: true})
	assert.ErrorIs(t, err, services.ErrProofRequired)

	uploader.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return("https://files.example.com/p.png", nil)
	_, err = service.SubmitProof(context.Background(), user.ID, order.ID, proof("image/png", 7))
	require.NoError(t, err)

	pending, total, err := service.PendingPayments(services.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, order.ID, pending[0].ID)

	// Rejection, then a fresh proof moves it back to awaiting payment
	rejected, err := service.VerifyPayment("admin-1", services.VerifyInput{OrderID: order.ID, Approved: false, Note: "amount mismatch"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaymentRejected, rejected.Status)
	assert.False(t, rejected.IsVerified)
	assert.Equal(t, "amount mismatch", rejected.PaymentNote)

	_, total, err = service.PendingPayments(services.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	resubmitted, err := service.SubmitProof(context.Background(), user.ID, order.ID, proof("image/png", 7))
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingPayment, resubmitted.Status)

	approved, err := service.VerifyPayment("admin-1", services.VerifyInput{OrderID: order.ID, Approved: true})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaymentVerified, approved.Status)
	assert.True(t, approved.IsVerified)
	assert.Equal(t, "admin-1", approved.VerifiedBy)
	assert.NotNil(t, approved.VerifiedAt)

	stored, err := store.orders.GetByID(order.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsVerified)

	// Already verified orders cannot be reviewed again
	_, err = service.VerifyPayment("admin-1", services.VerifyInput{OrderID: order.ID, Approved: false})
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	assert.Equal(t, []string{
		services.EventPaymentRejected,
		services.EventOrderStatusChanged,
		services.EventPaymentVerified,
	}, pub.routingKeys())
}

func TestPaymentService_VerifyStandsWhenPublishFails(t *testing.T) {
	store := newTestStore(t)
	uploader := new(MockUploader)
	pub := &recordingPublisher{err: errors.New("broker down")}
	service := services.NewPaymentService(store.orders, uploader, pub, testWallet, quietLogger())
	user := store.seedUser(t, "flaky@example.com")
	order := walletOrder(t, store, user.ID, models.PaymentJazzCash)

	uploader.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return("https://files.example.com/p.png", nil)
	_, err := service.SubmitProof(context.Background(), user.ID, order.ID, proof("image/jpeg", 7))
	require.NoError(t, err)

	approved, err := service.VerifyPayment("admin-1", services.VerifyInput{OrderID: order.ID, Approved: true})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaymentVerified, approved.Status)
}

func TestPaymentService_PaymentQR(t *testing.T) {
	store := newTestStore(t)
	service := services.NewPaymentService(store.orders, nil, nil, testWallet, quietLogger())
	user := store.seedUser(t, "qr@example.com")
	order := walletOrder(t, store, user.ID, models.PaymentJazzCash)

	png, err := service.PaymentQR(user.ID, false, order.ID, 256)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = service.PaymentQR("someone-else", false, order.ID, 256)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = service.PaymentQR("someone-else", true, order.ID, 0)
	assert.NoError(t, err)

	cod := walletOrder(t, store, user.ID, models.PaymentCOD)
	_, err = service.PaymentQR(user.ID, false, cod.ID, 256)
	assert.ErrorIs(t, err, services.ErrPaymentNotRequired)

	assert.Equal(t,
		"JAZZCASH|TickTee Style|03001112223|2450|"+order.ID,
		services.PaymentReference(testWallet, order))
}

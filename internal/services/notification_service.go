package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	"ticktee/internal/models"
	"ticktee/internal/repositories"
	"ticktee/pkg/format"
	"ticktee/pkg/mailer"

	"github.com/sirupsen/logrus"
)

const sendTimeout = 15 * time.Second

var emailFuncs = template.FuncMap{
	"price": format.Price,
	"date":  func(t time.Time) string { return format.Date(t, format.DateOptions{}) },
	"label": statusLabel,
}

var orderEmail = template.Must(template.New("order").Funcs(emailFuncs).Parse(`<!DOCTYPE html>
<html><body style="font-family: Arial, sans-serif; color: #222;">
<h2>{{.Site}}</h2>
<p>Hi {{.Name}},</p>
<p>{{.Intro}}</p>
<table style="border-collapse: collapse; width: 100%;">
<tr><th align="left">Item</th><th align="right">Qty</th><th align="right">Price</th></tr>
{{range .Order.Items}}<tr><td>{{.ProductName}}</td><td align="right">{{.Quantity}}</td><td align="right">{{price .LineTotal}}</td></tr>
{{end}}</table>
<p>Subtotal: {{price .Order.Subtotal}}<br>
Tax: {{price .Order.Tax}}<br>
Shipping: {{price .Order.ShippingFee}}<br>
{{if .Order.PaymentFee}}Payment fee: {{price .Order.PaymentFee}}<br>{{end}}
<strong>Total: {{price .Order.TotalAmount}}</strong></p>
<p>Order {{.Order.ID}} placed on {{date .Order.CreatedAt}}. Status: {{label .Order.Status}}.</p>
{{if .Note}}<p>Note: {{.Note}}</p>{{end}}
<p><a href="{{.OrderURL}}">View your order</a></p>
</body></html>`))

var contactEmail = template.Must(template.New("contact").Parse(`<!DOCTYPE html>
<html><body style="font-family: Arial, sans-serif;">
<h3>New contact message</h3>
<p><strong>From:</strong> {{.Name}} &lt;{{.Email}}&gt;</p>
<p><strong>Subject:</strong> {{.Subject}}</p>
<p>{{.Message}}</p>
</body></html>`))

func statusLabel(s models.OrderStatus) string {
	switch s {
	case models.StatusPending:
		return "Pending"
	case models.StatusAwaitingPayment:
		return "Awaiting payment"
	case models.StatusPaymentVerified:
		return "Payment verified"
	case models.StatusPaymentRejected:
		return "Payment rejected"
	case models.StatusProcessing:
		return "Processing"
	case models.StatusShipped:
		return "Shipped"
	case models.StatusDelivered:
		return "Delivered"
	case models.StatusCancelled:
		return "Cancelled"
	case models.StatusRefunded:
		return "Refunded"
	}
	return string(s)
}

// NotificationService turns order events into customer email.
type NotificationService struct {
	orders   repositories.OrderRepository
	profiles repositories.ProfileRepository
	mail     mailer.Mailer
	siteName string
	siteURL  string
	log      logrus.FieldLogger
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(orders repositories.OrderRepository, profiles repositories.ProfileRepository, mail mailer.Mailer, siteName, siteURL string, log logrus.FieldLogger) *NotificationService {
	return &NotificationService{
		orders:   orders,
		profiles: profiles,
		mail:     mail,
		siteName: siteName,
		siteURL:  siteURL,
		log:      log,
	}
}

// HandleEvent processes one published event body. Only malformed bodies return
// an error; delivery problems are logged and swallowed.
func (s *NotificationService) HandleEvent(routingKey string, body []byte) error {
	var ev OrderEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("malformed %s event: %w", routingKey, err)
	}
	entry := s.log.WithFields(logrus.Fields{"event": ev.Type, "order_id": ev.OrderID, "user_id": ev.UserID})

	msg, err := s.buildOrderMessage(ev)
	if err != nil {
		entry.WithError(err).Warn("notification skipped")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	if err := s.mail.Send(ctx, msg); err != nil {
		entry.WithError(err).Error("failed to send order notification")
		return nil
	}
	entry.Info("order notification sent")
	return nil
}

func (s *NotificationService) buildOrderMessage(ev OrderEvent) (mailer.Message, error) {
	order, err := s.orders.GetByID(ev.OrderID)
	if err != nil {
		return mailer.Message{}, err
	}
	profile, err := s.profiles.GetByID(order.UserID)
	if err != nil {
		return mailer.Message{}, err
	}
	if profile.Email == "" {
		return mailer.Message{}, fmt.Errorf("profile %s has no email", profile.ID)
	}

	subject, intro := s.describe(ev, order)
	var buf bytes.Buffer
	err = orderEmail.Execute(&buf, map[string]interface{}{
		"Site":     s.siteName,
		"Name":     profile.FullName,
		"Intro":    intro,
		"Order":    order,
		"Note":     ev.Note,
		"OrderURL": fmt.Sprintf("%s/orders/%s", s.siteURL, order.ID),
	})
	if err != nil {
		return mailer.Message{}, fmt.Errorf("failed to render email: %w", err)
	}
	return mailer.Message{To: profile.Email, Subject: subject, HTML: buf.String()}, nil
}

func (s *NotificationService) describe(ev OrderEvent, order *models.Order) (subject, intro string) {
	short := order.ID
	if len(short) > 8 {
		short = short[:8]
	}
	switch ev.Type {
	case EventOrderCreated:
		intro = "Thank you for your order."
		if order.PaymentMethod.IsWallet() {
			intro += " Please upload your payment receipt so we can verify it."
		}
		return fmt.Sprintf("%s: order #%s received", s.siteName, short), intro
	case EventPaymentVerified:
		return fmt.Sprintf("%s: payment verified for order #%s", s.siteName, short),
			"We have verified your payment. Your order is being prepared."
	case EventPaymentRejected:
		return fmt.Sprintf("%s: payment for order #%s was not accepted", s.siteName, short),
			"We could not verify your payment. Please upload a new receipt or contact us."
	default:
		return fmt.Sprintf("%s: order #%s is now %s", s.siteName, short, statusLabel(order.Status)),
			fmt.Sprintf("Your order status changed to %s.", statusLabel(order.Status))
	}
}

// ContactNotice renders the email sent to the store for a contact form message.
func ContactNotice(to string, msg *models.ContactMessage) (mailer.Message, error) {
	var buf bytes.Buffer
	if err := contactEmail.Execute(&buf, msg); err != nil {
		return mailer.Message{}, fmt.Errorf("failed to render contact email: %w", err)
	}
	subject := msg.Subject
	if subject == "" {
		subject = "Contact form message"
	}
	return mailer.Message{
		To:      to,
		ReplyTo: msg.Email,
		Subject: "[Contact] " + subject,
		HTML:    buf.String(),
		Text:    msg.Message,
	}, nil
}

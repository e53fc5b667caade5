package services

import (
	"context"
	"strings"

	"ticktee/internal/models"
	"ticktee/internal/repositories"
	"ticktee/pkg/mailer"

	"github.com/sirupsen/logrus"
)

// ContactInput is a contact form submission.
type ContactInput struct {
	Name    string `json:"name" validate:"required,min=2,max=150"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Subject string `json:"subject" validate:"omitempty,max=200"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
}

// ContactService stores contact messages and forwards them to the store.
type ContactService struct {
	repo  repositories.ContactRepository
	mail  mailer.Mailer
	inbox string
	log   logrus.FieldLogger
}

// NewContactService creates a ContactService. inbox is the address messages are
// forwarded to; when empty they are only stored.
func NewContactService(repo repositories.ContactRepository, mail mailer.Mailer, inbox string, log logrus.FieldLogger) *ContactService {
	return &ContactService{repo: repo, mail: mail, inbox: inbox, log: log}
}

// Submit stores the message and emails it to the store inbox. A failed email is
// logged; the message is still accepted.
func (s *ContactService) Submit(ctx context.Context, in ContactInput, ip string) (*models.ContactMessage, error) {
	msg := &models.ContactMessage{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Subject: strings.TrimSpace(in.Subject),
		Message: strings.TrimSpace(in.Message),
		IP:      ip,
	}
	if err := s.repo.Create(msg); err != nil {
		return nil, err
	}

	if s.inbox == "" || s.mail == nil {
		return msg, nil
	}
	notice, err := ContactNotice(s.inbox, msg)
	if err != nil {
		s.log.WithError(err).Error("failed to render contact notice")
		return msg, nil
	}
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if err := s.mail.Send(ctx, notice); err != nil {
		s.log.WithError(err).WithField("contact_id", msg.ID).Error("failed to forward contact message")
	}
	return msg, nil
}

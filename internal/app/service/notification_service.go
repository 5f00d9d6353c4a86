package service

import (
	"context"
	"fmt"
	"time"

	"github.com/prasetyo/tokobarang-backend/internal/app/model"
	"github.com/prasetyo/tokobarang-backend/pkg/logger"
	"github.com/prasetyo/tokobarang-backend/pkg/mailer"
)

const mailSendTimeout = 10 * time.Second

// NotificationService delivers transactional email in the background.
// Delivery failures are logged and never surfaced to the triggering request.
type NotificationService interface {
	SendOrderConfirmation(user *model.User, order *model.Order)
	SendOrderStatusUpdate(user *model.User, order *model.Order)
	SendPasswordReset(email, resetURL string)
}

type notificationService struct {
	mailer mailer.Mailer
}

func NewNotificationService(m mailer.Mailer) NotificationService {
	return &notificationService{mailer: m}
}

func (s *notificationService) SendOrderConfirmation(user *model.User, order *model.Order) {
	subject := fmt.Sprintf("Pesanan #%d diterima", order.ID)
	plain := fmt.Sprintf(
		"Halo %s,\n\nPesanan Anda #%d telah kami terima dengan total Rp%.0f.\n"+
			"Metode pembayaran: %s.\n\nTerima kasih telah berbelanja.",
		user.Name, order.ID, order.Total, order.PaymentMethod,
	)
	html := fmt.Sprintf(
		"<p>Halo %s,</p><p>Pesanan Anda <strong>#%d</strong> telah kami terima "+
			"dengan total <strong>Rp%.0f</strong>.</p><p>Metode pembayaran: %s.</p>"+
			"<p>Terima kasih telah berbelanja.</p>",
		user.Name, order.ID, order.Total, order.PaymentMethod,
	)
	s.sendAsync(user.Email, subject, plain, html, map[string]interface{}{
		"order_id": order.ID,
		"user_id":  user.ID,
		"kind":     "order_confirmation",
	})
}

func (s *notificationService) SendOrderStatusUpdate(user *model.User, order *model.Order) {
	subject := fmt.Sprintf("Pesanan #%d: %s", order.ID, order.Status)
	plain := fmt.Sprintf(
		"Halo %s,\n\nStatus pesanan Anda #%d sekarang: %s.",
		user.Name, order.ID, order.Status,
	)
	html := fmt.Sprintf(
		"<p>Halo %s,</p><p>Status pesanan Anda <strong>#%d</strong> sekarang: "+
			"<strong>%s</strong>.</p>",
		user.Name, order.ID, order.Status,
	)
	s.sendAsync(user.Email, subject, plain, html, map[string]interface{}{
		"order_id": order.ID,
		"user_id":  user.ID,
		"kind":     "order_status",
	})
}

func (s *notificationService) SendPasswordReset(email, resetURL string) {
	subject := "Atur ulang kata sandi"
	plain := fmt.Sprintf(
		"Kami menerima permintaan untuk mengatur ulang kata sandi Anda.\n\n"+
			"Buka tautan berikut dalam 1 jam:\n%s\n\n"+
			"Abaikan email ini jika Anda tidak meminta pengaturan ulang.",
		resetURL,
	)
	html := fmt.Sprintf(
		"<p>Kami menerima permintaan untuk mengatur ulang kata sandi Anda.</p>"+
			"<p><a href=%q>Atur ulang kata sandi</a> (berlaku 1 jam)</p>"+
			"<p>Abaikan email ini jika Anda tidak meminta pengaturan ulang.</p>",
		resetURL,
	)
	s.sendAsync(email, subject, plain, html, map[string]interface{}{
		"kind": "password_reset",
	})
}

func (s *notificationService) sendAsync(to, subject, plain, html string, fields map[string]interface{}) {
	if s.mailer == nil {
		logger.Debug("Mailer not configured, skipping email", fields)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailSendTimeout)
		defer cancel()

		if err := s.mailer.Send(ctx, to, subject, plain, html); err != nil {
			logger.Error("Failed to send email", err, fields)
			return
		}
		logger.Info("Email sent", fields)
	}()
}

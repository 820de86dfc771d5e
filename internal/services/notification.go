package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ezstore/electronics-store-backend/internal/models"
	"github.com/ezstore/electronics-store-backend/pkg/sendgrid"
)

// NotificationService formats and sends the checkout receipt. Delivery is
// best-effort; callers log failures instead of propagating them, since the
// checkout itself has already committed.
type NotificationService struct {
	email sendgrid.EmailService
}

func NewNotificationService(email sendgrid.EmailService) *NotificationService {
	return &NotificationService{email: email}
}

func (s *NotificationService) SendCheckoutReceipt(ctx context.Context, to string, cart *models.Cart) error {
	if to == "" {
		return nil
	}

	var lines []string

	var htmlRows []string

	for _, item := range cart.Items {
		lines = append(lines, fmt.Sprintf("%d x %s (%s) — %.2f each", item.Quantity, item.Model, item.Category, item.Price))
		htmlRows = append(htmlRows, fmt.Sprintf("<tr><td>%d</td><td>%s</td><td>%s</td><td>%.2f</td></tr>",
			item.Quantity, item.Model, item.Category, item.Price))
	}

	paidOn := ""
	if cart.PaymentDate != nil {
		paidOn = cart.PaymentDate.Format("2006-01-02")
	}

	req := &models.EmailNotificationRequest{
		To:      to,
		Subject: "Your order confirmation",
		Content: fmt.Sprintf("Thank you for your order, %s!\n\nPaid on %s\n\n%s\n\nTotal: %.2f",
			cart.Customer, paidOn, strings.Join(lines, "\n"), cart.Total),
		HTMLContent: fmt.Sprintf("<p>Thank you for your order, %s!</p><p>Paid on %s</p><table>%s</table><p><b>Total: %.2f</b></p>",
			cart.Customer, paidOn, strings.Join(htmlRows, ""), cart.Total),
	}

	return s.email.Send(ctx, req)
}

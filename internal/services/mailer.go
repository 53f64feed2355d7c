package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"kart_back_end/internal/models"
)

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends checkout receipts over SMTP.
type Mailer struct {
	cfg MailConfig
	log *zap.Logger
}

func NewMailer(cfg MailConfig, log *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

var receiptTemplate = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Order receipt</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Thanks for your order, {{.Name}}</h2>
		<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left;">Product</th>
					<th style="padding: 10px; text-align: left;">Quantity</th>
					<th style="padding: 10px; text-align: left;">Price</th>
				</tr>
			</thead>
			<tbody>
			{{range .Items}}
				<tr>
					<td style="padding: 10px;">{{.Product.Name}}</td>
					<td style="padding: 10px;">{{.Quantity}}</td>
					<td style="padding: 10px;">{{.Product.Cost}}</td>
				</tr>
			{{end}}
			</tbody>
		</table>
		<p><strong>Total: {{.Total}}</strong></p>
		<p>Wallet balance: {{.Wallet}}</p>
		<p>Shipping to: {{.Address}}</p>
	</div>
</body>
</html>`))

func renderReceipt(user *models.User, items []models.CartItem, total int64) (string, error) {
	var body bytes.Buffer
	err := receiptTemplate.Execute(&body, map[string]interface{}{
		"Name":    user.Name,
		"Items":   items,
		"Total":   total,
		"Wallet":  user.WalletMoney,
		"Address": user.AddressOrDefault(),
	})
	return body.String(), err
}

func (m *Mailer) buildReceipt(user *models.User, items []models.CartItem, total int64) (*mail.Msg, error) {
	body, err := renderReceipt(user, items, total)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return nil, err
	}
	if err := msg.To(user.Email); err != nil {
		return nil, err
	}
	msg.Subject(fmt.Sprintf("Your Kart order (%d items)", len(items)))
	msg.SetBodyString(mail.TypeTextHTML, body)
	return msg, nil
}

// SendCheckoutReceipt implements ReceiptSender.
func (m *Mailer) SendCheckoutReceipt(ctx context.Context, user *models.User, items []models.CartItem, total int64) error {
	msg, err := m.buildReceipt(user, items, total)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	m.log.Info("sending checkout receipt", zap.String("email", user.Email))
	return client.DialAndSendWithContext(ctx, msg)
}

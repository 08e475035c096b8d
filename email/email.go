package email

import (
	"bytes"
	"fmt"
	"net/smtp"
	"text/template"
)

const confirmationTmpl = `To: {{.To}}
From: {{.From}}
Subject: Your FitZone order {{.OrderID}}

Thanks for training with us!

Your order {{.OrderID}} is complete. We received a total of {{.Total}} INR.
Your programs are now available in your account.

The FitZone team
`

type Email struct {
	from     string
	password string
	host     string
	port     string
	tmpl     *template.Template
}

func New(address string, password string, host string, port string) *Email {
	return &Email{
		from:     address,
		password: password,
		host:     host,
		port:     port,
		tmpl:     template.Must(template.New("confirmation").Parse(confirmationTmpl)),
	}
}

// SendOrderConfirmation is best effort: callers run it in the
// background and only log the returned error.
func (e *Email) SendOrderConfirmation(to string, orderID string, total int) error {
	data := struct {
		To      string
		From    string
		OrderID string
		Total   int
	}{
		To:      to,
		From:    e.from,
		OrderID: orderID,
		Total:   total,
	}

	var body bytes.Buffer
	if err := e.tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("rendering confirmation mail: %w", err)
	}

	auth := smtp.PlainAuth("", e.from, e.password, e.host)
	addr := e.host + ":" + e.port

	if err := smtp.SendMail(addr, auth, e.from, []string{to}, body.Bytes()); err != nil {
		return fmt.Errorf("sending confirmation mail to [%s]: %w", to, err)
	}

	return nil
}

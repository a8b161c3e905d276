package email

import (
	"bytes"
	"html/template"
)

// TemplateManager holds the parsed email templates.
type TemplateManager struct {
	orderConfirmationTmpl *template.Template
	paymentReceiptTmpl    *template.Template
}

// NewTemplateManager parses all email templates at startup.
func NewTemplateManager() (*TemplateManager, error) {
	confirmationTmpl, err := template.New("orderConfirmation").Parse(orderConfirmationTemplate)
	if err != nil {
		return nil, err
	}

	receiptTmpl, err := template.New("paymentReceipt").Parse(paymentReceiptTemplate)
	if err != nil {
		return nil, err
	}

	return &TemplateManager{
		orderConfirmationTmpl: confirmationTmpl,
		paymentReceiptTmpl:    receiptTmpl,
	}, nil
}

// OrderTemplateData holds the dynamic data for order-related emails.
type OrderTemplateData struct {
	Name       string
	OrderID    string
	Restaurant string
	Total      float64
}

// GenerateOrderConfirmationHTML renders the order confirmation email body.
func (tm *TemplateManager) GenerateOrderConfirmationHTML(data OrderTemplateData) (string, error) {
	var body bytes.Buffer
	if err := tm.orderConfirmationTmpl.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}

// GeneratePaymentReceiptHTML renders the payment receipt email body.
func (tm *TemplateManager) GeneratePaymentReceiptHTML(data OrderTemplateData) (string, error) {
	var body bytes.Buffer
	if err := tm.paymentReceiptTmpl.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}

const orderConfirmationTemplate = `
<!DOCTYPE html>
<html>
<head>
	<title>Order Confirmed</title>
</head>
<body style="font-family: Arial, sans-serif;">
	<h2>Thanks for your order, {{.Name}}!</h2>
	<p>Your order <strong>{{.OrderID}}</strong> from {{.Restaurant}} is being prepared.</p>
	<p>Order total: <strong>{{printf "%.2f" .Total}}</strong></p>
	<p>We'll let you know when it's on the way.</p>
</body>
</html>
`

const paymentReceiptTemplate = `
<!DOCTYPE html>
<html>
<head>
	<title>Payment Received</title>
</head>
<body style="font-family: Arial, sans-serif;">
	<h2>Payment received</h2>
	<p>Hi {{.Name}}, we received your payment of <strong>{{printf "%.2f" .Total}}</strong> for order {{.OrderID}}.</p>
	<p>Bon appetit!</p>
</body>
</html>
`

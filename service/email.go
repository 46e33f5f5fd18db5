package service

import (
	"fmt"

	"feeledger/config"
	"feeledger/models"

	"gopkg.in/gomail.v2"
)

// ReceiptMailer delivers payment receipts over SMTP. It implements Notifier.
type ReceiptMailer struct {
	cfg         *config.EmailConfig
	institution string
}

func NewReceiptMailer(cfg *config.EmailConfig, institution string) *ReceiptMailer {
	return &ReceiptMailer{cfg: cfg, institution: institution}
}

// SendReceipt mails a payment receipt to the student's record address. The
// roster carries no per-student email in this deployment, so the receipt is
// addressed to the office inbox configured as From.
func (s *ReceiptMailer) SendReceipt(student *models.Student, event *models.PaymentEvent) error {
	if !s.cfg.Enabled {
		return fmt.Errorf("email notifications disabled")
	}

	subject := fmt.Sprintf("[%s] Payment receipt %s", s.institution, event.ReceiptNumber)
	body := s.receiptBody(student, event)

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", s.cfg.From)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	return d.DialAndSend(m)
}

func (s *ReceiptMailer) receiptBody(student *models.Student, event *models.PaymentEvent) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
        .header { background: linear-gradient(135deg, #2563eb, #1d4ed8); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { padding: 40px 30px; }
        .content p { color: #333; line-height: 1.8; margin: 0 0 16px; }
        .receipt { background: #f8f9fa; border: 1px solid #e9ecef; border-radius: 8px; padding: 20px; margin: 20px 0; }
        .receipt td { padding: 6px 12px; color: #333; }
        .receipt td:first-child { color: #6c757d; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>%s</h1>
        </div>
        <div class="content">
            <p>Payment received.</p>
            <table class="receipt">
                <tr><td>Receipt No.</td><td><strong>%s</strong></td></tr>
                <tr><td>Student</td><td>%s (PRN %s)</td></tr>
                <tr><td>Class</td><td>%s-%s</td></tr>
                <tr><td>Amount</td><td><strong>%.2f</strong></td></tr>
                <tr><td>Mode</td><td>%s</td></tr>
                <tr><td>Date</td><td>%s</td></tr>
            </table>
        </div>
        <div class="footer">
            <p>This receipt was generated automatically, please do not reply.</p>
            <p>&copy; %s</p>
        </div>
    </div>
</body>
</html>
`, s.institution,
		event.ReceiptNumber,
		student.Name, student.PRN,
		student.Class, student.Division,
		event.Amount,
		event.Mode,
		event.PaidAt.Format("02 Jan 2006 15:04"),
		s.institution)
}

package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"lending-service/configs"
	"lending-service/internal/models"
	"lending-service/internal/repository"
)

// NotificationSvc is an implementation of the service.NotificationService interface
type NotificationSvc struct {
	repos  *repository.Repository
	logger *logrus.Logger
	config *configs.Config
}

// NewNotificationService creates a new NotificationSvc
func NewNotificationService(deps Dependencies) *NotificationSvc {
	return &NotificationSvc{
		repos:  deps.Repos,
		logger: deps.Logger,
		config: deps.Config,
	}
}

// NotifyNonPerforming tells a borrower they have been flagged as
// non-performing and alerts the provider's contact address. Either channel
// may be unconfigured; a failure on one does not stop the other.
func (s *NotificationSvc) NotifyNonPerforming(ctx context.Context, borrower *models.Borrower, provider *models.LoanProvider) error {
	var errs []string

	if borrower.PhoneNumber != "" && s.config.SMS.GatewayURL != "" {
		message := fmt.Sprintf(
			"Dear %s, your account with %s has been suspended due to overdue loans. Please contact %s to settle your balance.",
			borrower.FullName, provider.Name, provider.Name,
		)
		if err := s.sendSMS(ctx, borrower.PhoneNumber, message); err != nil {
			errs = append(errs, fmt.Sprintf("sms: %v", err))
		}
	}

	if provider.ContactEmail != "" {
		if err := s.sendProviderAlert(borrower, provider); err != nil {
			errs = append(errs, fmt.Sprintf("email: %v", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notification delivery incomplete: %s", strings.Join(errs, "; "))
	}

	return nil
}

// sendSMS delivers one message through the XML SMS gateway
func (s *NotificationSvc) sendSMS(ctx context.Context, phoneNumber, message string) error {
	form := url.Values{}
	form.Set("from", s.config.SMS.Sender)
	form.Set("to", phoneNumber)
	form.Set("text", message)

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.SMS.GatewayURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	// The gateway answers with an XML envelope carrying a per-message status
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return fmt.Errorf("failed to parse gateway response: %w", err)
	}

	statusElem := doc.FindElement("//response/message/status")
	if statusElem == nil {
		return fmt.Errorf("status element not found in gateway response")
	}
	if status := strings.TrimSpace(statusElem.Text()); status != "0" {
		errElem := doc.FindElement("//response/message/error")
		if errElem != nil {
			return fmt.Errorf("gateway rejected message: status=%s error=%s", status, errElem.Text())
		}
		return fmt.Errorf("gateway rejected message: status=%s", status)
	}

	s.logger.Infof("SMS delivered to %s", phoneNumber)

	return nil
}

// sendProviderAlert emails the provider about a newly flagged borrower
func (s *NotificationSvc) sendProviderAlert(borrower *models.Borrower, provider *models.LoanProvider) error {
	subject := fmt.Sprintf("Non-performing borrower flagged: %s", borrower.FullName)

	body := fmt.Sprintf(`
	<h2>Non-Performing Borrower Notification</h2>
	<p>Dear %s team,</p>

	<p>The following borrower has been flagged as non-performing because of loans
	overdue beyond your %d-day threshold:</p>

	<table style="border-collapse: collapse; width: 100%%;">
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Borrower:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Phone Number:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Flagged At:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
		</tr>
	</table>

	<p>New disbursements to this borrower are blocked until the balance is settled.</p>

	<p>
	Best regards,<br>
	Lending Service Team
	</p>
	`,
		provider.Name,
		provider.NPLThresholdDays,
		borrower.FullName,
		borrower.PhoneNumber,
		time.Now().Format("2006-01-02 15:04:05"),
	)

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.Email.SenderEmail)
	m.SetHeader("To", provider.ContactEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(
		s.config.Email.SMTPHost,
		s.config.Email.SMTPPort,
		s.config.Email.SMTPUser,
		s.config.Email.SMTPPassword,
	)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("NPL alert email sent to %s for borrower %d", provider.ContactEmail, borrower.ID)

	return nil
}

package email

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Sender delivers one HTML mail
type Sender interface {
	Send(to, subject, htmlBody string) error
}

// Service handles email sending via SMTP
type Service struct {
	dialer *gomail.Dialer
	from   string
}

// NewService creates a new email service. user and password may be empty
// for relays that accept unauthenticated mail.
func NewService(host string, port int, user, password, from string) *Service {
	return &Service{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (s *Service) Send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// SendShopWelcome tells a merchant their shop is live
func SendShopWelcome(s Sender, to string, shop ShopWelcome) error {
	subject := fmt.Sprintf("Your shop %s is now open on SuperMall", shop.Name)
	return s.Send(to, subject, BuildShopWelcomeBody(shop))
}

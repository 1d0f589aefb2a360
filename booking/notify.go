package booking

import (
	"fmt"
	"log"
	"strings"

	"github.com/meinhoongagan/bookify/models"
)

const timeLayout = "Mon, 02 Jan 2006 03:04 PM"

func (b *Booker) notifyConfirmed(a *models.Appointment, p *models.ServiceProvider) {
	if b.Notifier == nil {
		return
	}
	if a.UserEmail != "" {
		subject, body := ConfirmationEmail(a)
		if err := b.Notifier.SendEmail(a.UserEmail, subject, body); err != nil {
			log.Printf("Failed to send booking confirmation for %s: %v", a.ID, err)
		}
	}
	if p.Email != "" {
		subject, body := ProviderEmail(a)
		if err := b.Notifier.SendEmail(p.Email, subject, body); err != nil {
			log.Printf("Failed to send new booking email to provider %s: %v", p.ID, err)
		}
	}
}

func ConfirmationEmail(a *models.Appointment) (subject, body string) {
	subject = "Booking Confirmed - " + a.ProviderName
	body = fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your booking has been confirmed.</p>
		<ul>
			<li><strong>Provider:</strong> %s</li>
			<li><strong>Services:</strong> %s</li>
			<li><strong>Date:</strong> %s</li>
			<li><strong>Total:</strong> %s</li>
		</ul>
		<p>Thank you for booking with Bookify!</p>
	`, a.UserName, a.ProviderName, strings.Join(a.ServiceNames(), ", "),
		a.Date.Format(timeLayout), FormatPrice(a.TotalPrice))
	return subject, body
}

func ProviderEmail(a *models.Appointment) (subject, body string) {
	subject = "New Booking - " + a.UserName
	body = fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You have a new booking.</p>
		<ul>
			<li><strong>Customer:</strong> %s</li>
			<li><strong>Services:</strong> %s</li>
			<li><strong>Date:</strong> %s</li>
			<li><strong>Total:</strong> %s</li>
		</ul>
	`, a.ProviderName, a.UserName, strings.Join(a.ServiceNames(), ", "),
		a.Date.Format(timeLayout), FormatPrice(a.TotalPrice))
	return subject, body
}

func ReminderEmail(a *models.Appointment) (subject, body string) {
	subject = "Reminder: Upcoming Booking - " + a.ProviderName
	body = fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>This is a reminder for your upcoming booking.</p>
		<ul>
			<li><strong>Provider:</strong> %s</li>
			<li><strong>Services:</strong> %s</li>
			<li><strong>Date:</strong> %s</li>
		</ul>
		<p>If you need to cancel, please do so as soon as possible.</p>
	`, a.UserName, a.ProviderName, strings.Join(a.ServiceNames(), ", "), a.Date.Format(timeLayout))
	return subject, body
}

package cron

import (
	"context"
	"log"
	"time"

	"github.com/meinhoongagan/bookify/booking"
	"github.com/meinhoongagan/bookify/models"
	"github.com/meinhoongagan/bookify/search"
	"github.com/robfig/cron/v3"
)

// Store is the read side the reminder job needs.
type Store interface {
	ListAppointments(ctx context.Context, f search.AppointmentFilter) ([]models.Appointment, int64, error)
}

// Reminder emails customers whose confirmed booking starts Lead from now.
type Reminder struct {
	Store    Store
	Notifier booking.Notifier
	Lead     time.Duration
	Now      func() time.Time

	cron *cron.Cron
}

func NewReminder(store Store, notifier booking.Notifier, lead time.Duration) *Reminder {
	return &Reminder{Store: store, Notifier: notifier, Lead: lead, Now: time.Now}
}

// Start schedules SendReminders every minute.
func (r *Reminder) Start() error {
	r.cron = cron.New()
	_, err := r.cron.AddFunc("* * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Second)
		defer cancel()
		if _, err := r.SendReminders(ctx); err != nil {
			log.Printf("Error sending appointment reminders: %v", err)
		}
	})
	if err != nil {
		return err
	}
	r.cron.Start()
	log.Println("Cron job scheduler started for appointment reminders")
	return nil
}

// Stop waits for a running job to finish.
func (r *Reminder) Stop() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
}

// SendReminders mails every confirmed appointment starting in
// [now+Lead, now+Lead+1m) and returns how many were sent. The window
// matches the schedule, so each appointment is picked up once.
func (r *Reminder) SendReminders(ctx context.Context) (int, error) {
	from := r.Now().Add(r.Lead).Truncate(time.Minute)
	appointments, _, err := r.Store.ListAppointments(ctx, search.AppointmentFilter{
		Status: models.StatusConfirmed,
		From:   from,
		To:     from.Add(time.Minute),
	})
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range appointments {
		a := &appointments[i]
		if a.UserEmail == "" {
			continue
		}
		subject, body := booking.ReminderEmail(a)
		if err := r.Notifier.SendEmail(a.UserEmail, subject, body); err != nil {
			log.Printf("Failed to send reminder for appointment %s: %v", a.ID, err)
			continue
		}
		sent++
		log.Printf("Sent reminder for appointment %s to %s", a.ID, a.UserEmail)
	}
	return sent, nil
}

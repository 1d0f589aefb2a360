package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/meinhoongagan/bookify/models"
)

var (
	ErrNoServices     = errors.New("no services selected")
	ErrUnknownService = errors.New("service does not belong to provider")
	ErrInvalidDate    = errors.New("invalid date, use YYYY-MM-DD")
	ErrSlotInPast     = errors.New("time slot is in the past")
	ErrSlotTaken      = errors.New("time slot not available")
	ErrBookingFailed  = errors.New("booking failed")
	ErrProviderBusy   = errors.New("provider is busy with another booking, retry shortly")
	ErrSpanTooLong    = errors.New("selected services take longer than a day")
)

const dateLayout = "2006-01-02"

// Store is the part of the persistence layer the Booker needs.
type Store interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetProvider(ctx context.Context, id uuid.UUID) (*models.ServiceProvider, error)
	ListServices(ctx context.Context, providerID uuid.UUID) ([]models.Service, error)
	ListProviderAppointments(ctx context.Context, providerID uuid.UUID, from, to time.Time) ([]models.Appointment, error)
	HasConflict(ctx context.Context, providerID uuid.UUID, start, end time.Time) (bool, error)
	CreateAppointment(ctx context.Context, a *models.Appointment) error
}

// Notifier delivers booking emails.
type Notifier interface {
	SendEmail(to, subject, body string) error
}

type Booker struct {
	Store    Store
	Locker   Locker
	Notifier Notifier // nil disables confirmation emails
	Location *time.Location
	Now      func() time.Time
	LockTTL  time.Duration
}

func NewBooker(store Store, locker Locker, notifier Notifier, loc *time.Location) *Booker {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Booker{
		Store:    store,
		Locker:   locker,
		Notifier: notifier,
		Location: loc,
		Now:      time.Now,
		LockTTL:  30 * time.Second,
	}
}

type Request struct {
	UserID     uuid.UUID
	ProviderID uuid.UUID
	ServiceIDs []uuid.UUID
	Date       string
	Slot       string
}

type Quote struct {
	Services      []models.Service `json:"services"`
	TotalPrice    float64          `json:"total_price"`
	TotalPriceStr string           `json:"total_price_text"`
	TotalMinutes  int              `json:"total_minutes"`
	TotalDuration string           `json:"total_duration"`
	Notices       []string         `json:"notices,omitempty"`
}

type Result struct {
	Appointment   *models.Appointment `json:"appointment"`
	TotalDuration string              `json:"total_duration"`
	Notices       []string            `json:"notices,omitempty"`
}

type SlotAvailability struct {
	Slot      string    `json:"slot"`
	StartsAt  time.Time `json:"starts_at"`
	Available bool      `json:"available"`
}

// Select builds a selection from the provider's catalog in the order the
// IDs were given. Repeated IDs are reported as notices, not errors.
func (b *Booker) Select(ctx context.Context, providerID uuid.UUID, serviceIDs []uuid.UUID) (*Selection, []string, error) {
	if len(serviceIDs) == 0 {
		return nil, nil, ErrNoServices
	}
	catalog, err := b.Store.ListServices(ctx, providerID)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[uuid.UUID]models.Service, len(catalog))
	for _, s := range catalog {
		byID[s.ID] = s
	}

	sel := NewSelection()
	var notices []string
	for _, id := range serviceIDs {
		s, ok := byID[id]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnknownService, id)
		}
		if err := sel.Add(s); errors.Is(err, ErrAlreadySelected) {
			notices = append(notices, fmt.Sprintf("%s is already selected", s.Name))
		}
	}
	return sel, notices, nil
}

// Quote prices a set of services without booking them.
func (b *Booker) Quote(ctx context.Context, providerID uuid.UUID, serviceIDs []uuid.UUID) (*Quote, error) {
	if _, err := b.Store.GetProvider(ctx, providerID); err != nil {
		return nil, err
	}
	sel, notices, err := b.Select(ctx, providerID, serviceIDs)
	if err != nil {
		return nil, err
	}
	return &Quote{
		Services:      sel.Services(),
		TotalPrice:    sel.TotalPrice(),
		TotalPriceStr: FormatPrice(sel.TotalPrice()),
		TotalMinutes:  sel.TotalMinutes(),
		TotalDuration: sel.TotalDuration(),
		Notices:       notices,
	}, nil
}

// Book validates the request, guards the slot against double booking and
// writes the confirmed appointment to both the global and per-user
// locations in one store call.
func (b *Booker) Book(ctx context.Context, req Request) (*Result, error) {
	if !IsSlot(req.Slot) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSlot, req.Slot)
	}
	day, err := b.parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	start, err := Combine(day, req.Slot, b.Location)
	if err != nil {
		return nil, err
	}
	now := b.Now()
	if !start.After(now) {
		return nil, ErrSlotInPast
	}

	user, err := b.Store.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	provider, err := b.Store.GetProvider(ctx, req.ProviderID)
	if err != nil {
		return nil, err
	}
	sel, notices, err := b.Select(ctx, provider.ID, req.ServiceIDs)
	if err != nil {
		return nil, err
	}

	span := time.Duration(sel.TotalMinutes()) * time.Minute
	if span < SlotLength {
		span = SlotLength
	}
	if span > models.MaxSpan {
		return nil, ErrSpanTooLong
	}
	end := start.Add(span)

	appt := &models.Appointment{
		ID:           uuid.New(),
		UserID:       user.ID,
		UserName:     user.FullName,
		UserEmail:    user.Email,
		ProviderID:   provider.ID,
		ProviderName: provider.BusinessName,
		Services:     sel.BookedServices(),
		TotalPrice:   sel.TotalPrice(),
		Date:         start,
		EndsAt:       end,
		Status:       models.StatusConfirmed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := b.reserve(ctx, appt); err != nil {
		return nil, err
	}
	log.Printf("Booked appointment %s for user %s with provider %s at %s", appt.ID, user.ID, provider.ID, start.Format(time.RFC3339))

	// Mail goes out after the lock is released.
	b.notifyConfirmed(appt, provider)

	return &Result{Appointment: appt, TotalDuration: sel.TotalDuration(), Notices: notices}, nil
}

// reserve writes appt if its span is still free. One booking per provider
// runs at a time, so the overlap check cannot race with another write.
func (b *Booker) reserve(ctx context.Context, appt *models.Appointment) error {
	unlock, err := b.lock(ctx, lockKey(appt.ProviderID))
	if err != nil {
		if errors.Is(err, ErrSlotLocked) {
			return ErrProviderBusy
		}
		return fmt.Errorf("%w: %v", ErrBookingFailed, err)
	}
	defer unlock()

	taken, err := b.Store.HasConflict(ctx, appt.ProviderID, appt.Date, appt.EndsAt)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBookingFailed, err)
	}
	if taken {
		return ErrSlotTaken
	}
	if err := b.Store.CreateAppointment(ctx, appt); err != nil {
		return fmt.Errorf("%w: %v", ErrBookingFailed, err)
	}
	return nil
}

// Availability lists every slot of the given day and whether it can still
// be booked.
func (b *Booker) Availability(ctx context.Context, providerID uuid.UUID, date string) ([]SlotAvailability, error) {
	day, err := b.parseDate(date)
	if err != nil {
		return nil, err
	}
	if _, err := b.Store.GetProvider(ctx, providerID); err != nil {
		return nil, err
	}
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, b.Location)
	// Appointments may start up to a MaxSpan before the day and run into it.
	appts, err := b.Store.ListProviderAppointments(ctx, providerID, dayStart.Add(-models.MaxSpan), dayStart.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}

	now := b.Now()
	out := make([]SlotAvailability, 0, len(slots))
	for _, label := range slots {
		start, err := Combine(day, label, b.Location)
		if err != nil {
			return nil, err
		}
		available := start.After(now)
		for i := range appts {
			if appts[i].Status != models.StatusCancelled && appts[i].Overlaps(start, start.Add(SlotLength)) {
				available = false
				break
			}
		}
		out = append(out, SlotAvailability{Slot: label, StartsAt: start, Available: available})
	}
	return out, nil
}

func (b *Booker) parseDate(s string) (time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, s, b.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return day, nil
}

// lock retries briefly while another booking for the same provider is in
// flight.
func (b *Booker) lock(ctx context.Context, key string) (func(), error) {
	const attempts = 5
	var err error
	for i := 0; i < attempts; i++ {
		var unlock func()
		unlock, err = b.Locker.Lock(ctx, key, b.LockTTL)
		if err == nil {
			return unlock, nil
		}
		if !errors.Is(err, ErrSlotLocked) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(i+1) * 50 * time.Millisecond):
		}
	}
	return nil, err
}

func lockKey(providerID uuid.UUID) string {
	return "provider:" + providerID.String()
}

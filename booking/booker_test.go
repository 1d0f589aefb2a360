package booking_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/meinhoongagan/bookify/booking"
	"github.com/meinhoongagan/bookify/memstore"
	"github.com/meinhoongagan/bookify/models"
	"github.com/meinhoongagan/bookify/search"
)

var ist = time.FixedZone("IST", 5*3600+1800)

type sentMail struct{ to, subject string }

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (n *recordingNotifier) SendEmail(to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{to, subject})
	return n.err
}

type fixture struct {
	ctx      context.Context
	store    *memstore.Store
	booker   *booking.Booker
	notifier *recordingNotifier
	user     *models.User
	provider *models.ServiceProvider
	cut      models.Service
	shave    models.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st := memstore.New()

	user := &models.User{FullName: "Asha Rao", Email: "asha@example.com", Role: models.RoleUser}
	if err := st.CreateUser(ctx, user, nil); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	owner := &models.User{FullName: "Ravi Kumar", Email: "ravi@example.com", Role: models.RoleServiceProvider}
	provider := &models.ServiceProvider{BusinessName: "Ravi's Salon", FullName: "Ravi Kumar", Email: "ravi@example.com", ServiceCategory: "Salon"}
	if err := st.CreateUser(ctx, owner, provider); err != nil {
		t.Fatalf("CreateUser(provider): %v", err)
	}
	cut := models.Service{ProviderID: provider.ID, Name: "Haircut", Price: "500", Duration: "1 hr"}
	shave := models.Service{ProviderID: provider.ID, Name: "Shave", Price: "299.99", Duration: "45 mins"}
	for _, s := range []*models.Service{&cut, &shave} {
		if err := st.CreateService(ctx, s); err != nil {
			t.Fatalf("CreateService: %v", err)
		}
	}

	n := &recordingNotifier{}
	b := booking.NewBooker(st, nil, n, ist)
	b.Now = func() time.Time { return time.Date(2024, 7, 19, 10, 0, 0, 0, ist) }

	return &fixture{ctx: ctx, store: st, booker: b, notifier: n, user: user, provider: provider, cut: cut, shave: shave}
}

func (f *fixture) request(slot string, ids ...uuid.UUID) booking.Request {
	return booking.Request{UserID: f.user.ID, ProviderID: f.provider.ID, ServiceIDs: ids, Date: "2024-07-20", Slot: slot}
}

func TestBookWritesBothCopies(t *testing.T) {
	f := newFixture(t)

	res, err := f.booker.Book(f.ctx, f.request("02:30 PM", f.cut.ID, f.shave.ID))
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	a := res.Appointment
	if a.Status != models.StatusConfirmed {
		t.Errorf("Status = %q, want confirmed", a.Status)
	}
	if a.TotalPrice != 799.99 {
		t.Errorf("TotalPrice = %v, want 799.99", a.TotalPrice)
	}
	if got := booking.FormatPrice(a.TotalPrice); got != "799.99" {
		t.Errorf("FormatPrice = %q, want 799.99", got)
	}
	wantStart := time.Date(2024, 7, 20, 14, 30, 0, 0, ist)
	if !a.Date.Equal(wantStart) {
		t.Errorf("Date = %v, want %v", a.Date, wantStart)
	}
	if !a.EndsAt.Equal(wantStart.Add(105 * time.Minute)) {
		t.Errorf("EndsAt = %v, want 105 minutes after start", a.EndsAt)
	}
	if res.TotalDuration != "1 hr 45 mins" {
		t.Errorf("TotalDuration = %q", res.TotalDuration)
	}
	if a.UserName != "Asha Rao" || a.ProviderName != "Ravi's Salon" {
		t.Errorf("denormalized names = %q, %q", a.UserName, a.ProviderName)
	}

	global, err := f.store.GetAppointment(f.ctx, a.ID)
	if err != nil {
		t.Fatalf("GetAppointment: %v", err)
	}
	perUser, ok := f.store.GetUserCopy(f.user.ID, a.ID)
	if !ok {
		t.Fatal("per-user copy missing")
	}
	if diff := cmp.Diff(global, perUser); diff != "" {
		t.Errorf("global and per-user copies differ (-global +user):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Haircut", "Shave"}, global.ServiceNames()); diff != "" {
		t.Errorf("services (-want +got):\n%s", diff)
	}

	if len(f.notifier.sent) != 2 {
		t.Fatalf("sent %d emails, want 2", len(f.notifier.sent))
	}
	if f.notifier.sent[0].to != "asha@example.com" || !strings.HasPrefix(f.notifier.sent[0].subject, "Booking Confirmed") {
		t.Errorf("first email = %+v", f.notifier.sent[0])
	}
}

func TestBookReportsDuplicateSelection(t *testing.T) {
	f := newFixture(t)

	res, err := f.booker.Book(f.ctx, f.request("09:00 AM", f.cut.ID, f.cut.ID))
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if len(res.Appointment.Services) != 1 {
		t.Errorf("booked %d services, want 1", len(res.Appointment.Services))
	}
	if diff := cmp.Diff([]string{"Haircut is already selected"}, res.Notices); diff != "" {
		t.Errorf("notices (-want +got):\n%s", diff)
	}
}

func TestBookRejectsOverlap(t *testing.T) {
	f := newFixture(t)

	if _, err := f.booker.Book(f.ctx, f.request("10:00 AM", f.cut.ID)); err != nil {
		t.Fatalf("first Book: %v", err)
	}
	// The haircut runs until 11:00, so 10:30 overlaps and 11:00 does not.
	if _, err := f.booker.Book(f.ctx, f.request("10:30 AM", f.shave.ID)); !errors.Is(err, booking.ErrSlotTaken) {
		t.Errorf("overlapping Book error = %v, want ErrSlotTaken", err)
	}
	if _, err := f.booker.Book(f.ctx, f.request("11:00 AM", f.shave.ID)); err != nil {
		t.Errorf("adjacent Book: %v", err)
	}
}

func TestBookAfterCancelFreesSlot(t *testing.T) {
	f := newFixture(t)

	res, err := f.booker.Book(f.ctx, f.request("10:00 AM", f.cut.ID))
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if _, err := f.store.UpdateAppointmentStatus(f.ctx, res.Appointment.ID, models.StatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := f.booker.Book(f.ctx, f.request("10:00 AM", f.cut.ID)); err != nil {
		t.Errorf("Book after cancel: %v", err)
	}
}

func TestBookConcurrentSameSlot(t *testing.T) {
	f := newFixture(t)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.booker.Book(f.ctx, f.request("03:00 PM", f.cut.ID))
		}(i)
	}
	wg.Wait()

	booked := 0
	for _, err := range errs {
		switch {
		case err == nil:
			booked++
		case errors.Is(err, booking.ErrSlotTaken), errors.Is(err, booking.ErrProviderBusy):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if booked != 1 {
		t.Errorf("%d concurrent bookings succeeded, want 1", booked)
	}
	_, total, _ := f.store.ListAppointments(f.ctx, search.AppointmentFilter{})
	if total != 1 {
		t.Errorf("stored %d appointments, want 1", total)
	}
}

func TestBookValidation(t *testing.T) {
	f := newFixture(t)
	other := uuid.New()

	tests := []struct {
		name string
		req  booking.Request
		want error
	}{
		{"slot outside list", f.request("06:00 PM", f.cut.ID), booking.ErrInvalidSlot},
		{"no services", f.request("09:00 AM"), booking.ErrNoServices},
		{"foreign service", f.request("09:00 AM", other), booking.ErrUnknownService},
		{"bad date", booking.Request{UserID: f.user.ID, ProviderID: f.provider.ID, ServiceIDs: []uuid.UUID{f.cut.ID}, Date: "20/07/2024", Slot: "09:00 AM"}, booking.ErrInvalidDate},
		{"past date", booking.Request{UserID: f.user.ID, ProviderID: f.provider.ID, ServiceIDs: []uuid.UUID{f.cut.ID}, Date: "2024-07-18", Slot: "09:00 AM"}, booking.ErrSlotInPast},
		{"earlier today", booking.Request{UserID: f.user.ID, ProviderID: f.provider.ID, ServiceIDs: []uuid.UUID{f.cut.ID}, Date: "2024-07-19", Slot: "09:30 AM"}, booking.ErrSlotInPast},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.booker.Book(f.ctx, tt.req); !errors.Is(err, tt.want) {
				t.Errorf("Book error = %v, want %v", err, tt.want)
			}
		})
	}
	_, total, _ := f.store.ListAppointments(f.ctx, search.AppointmentFilter{})
	if total != 0 {
		t.Errorf("rejected requests stored %d appointments", total)
	}
}

// gateNotifier holds the first email until release is closed.
type gateNotifier struct {
	mu      sync.Mutex
	calls   int
	entered chan struct{}
	release chan struct{}
}

func (n *gateNotifier) SendEmail(to, subject, body string) error {
	n.mu.Lock()
	n.calls++
	first := n.calls == 1
	n.mu.Unlock()
	if first {
		close(n.entered)
		<-n.release
	}
	return nil
}

func TestBookSlowMailDoesNotBlockProvider(t *testing.T) {
	f := newFixture(t)
	gate := &gateNotifier{entered: make(chan struct{}), release: make(chan struct{})}
	f.booker.Notifier = gate

	done := make(chan error, 1)
	go func() {
		_, err := f.booker.Book(f.ctx, f.request("09:00 AM", f.cut.ID))
		done <- err
	}()
	<-gate.entered

	// The first booking is still mailing; a free slot of the same provider
	// must book straight away.
	if _, err := f.booker.Book(f.ctx, f.request("03:00 PM", f.shave.ID)); err != nil {
		t.Errorf("Book while another booking is mailing: %v", err)
	}
	close(gate.release)
	if err := <-done; err != nil {
		t.Errorf("first Book: %v", err)
	}
}

type heldLocker struct{}

func (heldLocker) Lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	return nil, booking.ErrSlotLocked
}

func TestBookReportsBusyProvider(t *testing.T) {
	f := newFixture(t)
	f.booker.Locker = heldLocker{}

	_, err := f.booker.Book(f.ctx, f.request("09:00 AM", f.cut.ID))
	if !errors.Is(err, booking.ErrProviderBusy) {
		t.Fatalf("Book with a held lock = %v, want ErrProviderBusy", err)
	}
	if _, total, _ := f.store.ListAppointments(f.ctx, search.AppointmentFilter{}); total != 0 {
		t.Errorf("stored %d appointments, want 0", total)
	}
}

func TestBookRejectsSpanOverADay(t *testing.T) {
	f := newFixture(t)
	retreat := models.Service{ProviderID: f.provider.ID, Name: "Spa Retreat", Price: "9000", Duration: "25 hrs"}
	if err := f.store.CreateService(f.ctx, &retreat); err != nil {
		t.Fatalf("CreateService: %v", err)
	}
	if _, err := f.booker.Book(f.ctx, f.request("09:00 AM", retreat.ID)); !errors.Is(err, booking.ErrSpanTooLong) {
		t.Errorf("Book of a 25 hour selection = %v, want ErrSpanTooLong", err)
	}
}

func TestBookSurvivesMailFailure(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("smtp down")

	if _, err := f.booker.Book(f.ctx, f.request("04:00 PM", f.shave.ID)); err != nil {
		t.Fatalf("Book with failing mailer: %v", err)
	}
}

func TestQuote(t *testing.T) {
	f := newFixture(t)

	q, err := f.booker.Quote(f.ctx, f.provider.ID, []uuid.UUID{f.cut.ID, f.shave.ID, f.shave.ID})
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if q.TotalPriceStr != "799.99" || q.TotalMinutes != 105 || q.TotalDuration != "1 hr 45 mins" {
		t.Errorf("Quote = %+v", q)
	}
	if diff := cmp.Diff([]string{"Shave is already selected"}, q.Notices); diff != "" {
		t.Errorf("notices (-want +got):\n%s", diff)
	}
	if _, err := f.booker.Quote(f.ctx, uuid.New(), []uuid.UUID{f.cut.ID}); err == nil {
		t.Error("Quote for an unknown provider succeeded")
	}
}

func TestAvailability(t *testing.T) {
	f := newFixture(t)
	if _, err := f.booker.Book(f.ctx, f.request("10:00 AM", f.cut.ID)); err != nil {
		t.Fatalf("Book: %v", err)
	}

	slots, err := f.booker.Availability(f.ctx, f.provider.ID, "2024-07-20")
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if len(slots) != len(booking.Slots()) {
		t.Fatalf("got %d slots, want %d", len(slots), len(booking.Slots()))
	}
	taken := map[string]bool{}
	for _, s := range slots {
		if !s.Available {
			taken[s.Slot] = true
		}
	}
	if diff := cmp.Diff(map[string]bool{"10:00 AM": true, "10:30 AM": true}, taken); diff != "" {
		t.Errorf("taken slots (-want +got):\n%s", diff)
	}

	today, err := f.booker.Availability(f.ctx, f.provider.ID, "2024-07-19")
	if err != nil {
		t.Fatalf("Availability(today): %v", err)
	}
	for _, s := range today {
		if want := s.StartsAt.After(f.booker.Now()); s.Available != want {
			t.Errorf("slot %s available = %v, want %v", s.Slot, s.Available, want)
		}
	}
}

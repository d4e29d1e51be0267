package appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/practice-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/practice-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/practice-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/practice-scheduler/internal/httperr"
	"github.com/BruksfildServices01/practice-scheduler/internal/infra/memory"
	"github.com/BruksfildServices01/practice-scheduler/internal/models"
	"github.com/BruksfildServices01/practice-scheduler/internal/timezone"
)

// --------------------------------------------------
// fixtures
// --------------------------------------------------

type fakeCache struct {
	mu          sync.Mutex
	entries     map[string][]domain.Slot
	gens        map[string]int64
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]domain.Slot{}, gens: map[string]int64{}}
}

func (c *fakeCache) Get(_ context.Context, pid, date string) ([]domain.Slot, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := pid + "|" + date
	s, ok := c.entries[k]
	return s, c.gens[k], ok, nil
}

func (c *fakeCache) Set(_ context.Context, pid, date string, gen int64, slots []domain.Slot) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := pid + "|" + date
	if c.gens[k] != gen {
		return false, nil
	}
	c.entries[k] = slots
	return true, nil
}

func (c *fakeCache) Invalidate(_ context.Context, pid string, dates ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range dates {
		k := pid + "|" + d
		c.gens[k]++
		delete(c.entries, k)
		c.invalidated = append(c.invalidated, k)
	}
	return nil
}

// bookingDuringRead books once right after the busy set has been read,
// before the resolved slots reach the cache.
type bookingDuringRead struct {
	domain.Repository
	once sync.Once
	book func()
}

func (r *bookingDuringRead) ListBusy(ctx context.Context, pid string, start, end time.Time) ([]models.Appointment, error) {
	busy, err := r.Repository.ListBusy(ctx, pid, start, end)
	r.once.Do(r.book)
	return busy, err
}

type recordingSink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (s *recordingSink) Log(_ context.Context, ev audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingSink) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.Action)
	}
	return out
}

type fixture struct {
	store *memory.Store
	cache *fakeCache
	sink  *recordingSink
	audit *audit.Dispatcher
	clock *timezone.FixedClock

	practitioner models.User
	other        models.User
	client       models.User
	client2      models.User
	admin        models.User

	availability *GetAvailability
	create       *CreateAppointment
	transition   *TransitionAppointment
	list         *ListAppointments
	public       *ListUpcomingPublic
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	store := memory.NewStore()

	mk := func(email string, role user.Role) models.User {
		u := &models.User{Email: email, FirstName: email[:3], Role: string(role)}
		require.NoError(t, store.CreateUser(ctx, u))
		return *u
	}

	schedule := Schedule{
		Hours:    domain.DefaultBusinessHours,
		Slot:     30 * time.Minute,
		Location: time.UTC,
	}

	f := &fixture{
		store:        store,
		cache:        newFakeCache(),
		sink:         &recordingSink{},
		clock:        timezone.NewFixedClock(time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC)),
		practitioner: mk("pra@example.com", user.RolePractitioner),
		other:        mk("oth@example.com", user.RolePractitioner),
		client:       mk("cli@example.com", user.RoleClient),
		client2:      mk("cl2@example.com", user.RoleClient),
		admin:        mk("adm@example.com", user.RoleAdmin),
	}
	f.audit = audit.NewDispatcher(f.sink, zerolog.Nop())
	t.Cleanup(f.audit.Close)

	log := zerolog.Nop()
	f.availability = NewGetAvailability(store, store, f.cache, schedule, nil, log)
	f.create = NewCreateAppointment(store, store, f.cache, f.audit, nil, schedule, log)
	f.transition = NewTransitionAppointment(store, f.cache, f.audit, nil, f.clock, schedule, log)
	f.list = NewListAppointments(store, schedule)
	f.public = NewListUpcomingPublic(store, f.clock)

	return f
}

func principal(u models.User) user.Principal {
	return user.Principal{ID: u.ID, Role: user.Role(u.Role)}
}

func at(hh, mm int) time.Time {
	return time.Date(2024, 6, 1, hh, mm, 0, 0, time.UTC)
}

func (f *fixture) seed(t *testing.T, pid string, start, end time.Time, status domain.Status) *models.Appointment {
	t.Helper()
	ap := &models.Appointment{
		PractitionerID: pid,
		ClientID:       f.client.ID,
		StartsAt:       start,
		EndsAt:         end,
		Status:         string(status),
	}
	require.NoError(t, f.store.CreateAppointment(context.Background(), ap))
	return ap
}

func (f *fixture) book(client models.User, start, end time.Time) (*models.Appointment, error) {
	return f.create.Execute(context.Background(), CreateAppointmentInput{
		Principal:      principal(client),
		PractitionerID: f.practitioner.ID,
		StartsAt:       start,
		EndsAt:         end,
	})
}

// --------------------------------------------------
// availability
// --------------------------------------------------

func TestGetAvailability_ConfirmedMorningSlot(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.practitioner.ID, at(9, 0), at(9, 30), domain.StatusConfirmed)

	slots, err := f.availability.Execute(context.Background(), domain.AvailabilityInput{
		PractitionerID: f.practitioner.ID,
		Date:           "2024-06-01",
	})
	require.NoError(t, err)

	require.Len(t, slots, 15)
	assert.True(t, slots[0].Start.Equal(at(9, 30)))
	assert.True(t, slots[14].Start.Equal(at(16, 30)))
	assert.True(t, slots[14].End.Equal(at(17, 0)))
	for _, s := range slots {
		assert.False(t, s.Start.Equal(at(9, 0)))
	}
}

func TestGetAvailability_NeverOverlapsBlockingAppointments(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.practitioner.ID, at(10, 15), at(11, 5), domain.StatusPending)
	f.seed(t, f.practitioner.ID, at(13, 0), at(14, 0), domain.StatusConfirmed)
	f.seed(t, f.practitioner.ID, at(15, 0), at(16, 0), domain.StatusCancelled)
	f.seed(t, f.other.ID, at(9, 0), at(17, 0), domain.StatusConfirmed)

	slots, err := f.availability.Execute(context.Background(), domain.AvailabilityInput{
		PractitionerID: f.practitioner.ID,
		Date:           "2024-06-01",
	})
	require.NoError(t, err)

	busy := [][2]time.Time{{at(10, 15), at(11, 5)}, {at(13, 0), at(14, 0)}}
	for _, s := range slots {
		for _, b := range busy {
			assert.False(t, domain.Overlaps(s.Start, s.End, b[0], b[1]), "slot %s overlaps busy window", s.Start)
		}
	}
	// 16 candidates: 10:00, 10:30, 11:00 and 13:00, 13:30 are taken; 15:00 is cancelled and free.
	assert.Len(t, slots, 11)
}

func TestGetAvailability_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.availability.Execute(ctx, domain.AvailabilityInput{PractitionerID: f.practitioner.ID, Date: "06/01/2024"})
	assert.True(t, httperr.IsBusiness(err, "invalid_date"))

	_, err = f.availability.Execute(ctx, domain.AvailabilityInput{Date: "2024-06-01"})
	assert.True(t, httperr.IsKind(err, httperr.KindInvalidInput))

	_, err = f.availability.Execute(ctx, domain.AvailabilityInput{PractitionerID: "nope", Date: "2024-06-01"})
	assert.True(t, httperr.IsBusiness(err, "practitioner_not_found"))

	_, err = f.availability.Execute(ctx, domain.AvailabilityInput{PractitionerID: f.client.ID, Date: "2024-06-01"})
	assert.True(t, httperr.IsBusiness(err, "practitioner_not_found"))
}

func TestGetAvailability_CacheInvalidatedByBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := domain.AvailabilityInput{PractitionerID: f.practitioner.ID, Date: "2024-06-01"}

	first, err := f.availability.Execute(ctx, in)
	require.NoError(t, err)
	require.Len(t, first, 16)

	_, _, ok, _ := f.cache.Get(ctx, f.practitioner.ID, "2024-06-01")
	require.True(t, ok)

	_, err = f.book(f.client, at(9, 0), at(9, 30))
	require.NoError(t, err)
	assert.Contains(t, f.cache.invalidated, f.practitioner.ID+"|2024-06-01")

	second, err := f.availability.Execute(ctx, in)
	require.NoError(t, err)
	assert.Len(t, second, 15)
}

func TestGetAvailability_BookingDuringResolveIsNotCachedStale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := domain.AvailabilityInput{PractitionerID: f.practitioner.ID, Date: "2024-06-01"}

	repo := &bookingDuringRead{
		Repository: f.store,
		book: func() {
			_, err := f.book(f.client, at(10, 0), at(10, 30))
			require.NoError(t, err)
		},
	}
	schedule := Schedule{Hours: domain.DefaultBusinessHours, Slot: 30 * time.Minute, Location: time.UTC}
	racing := NewGetAvailability(repo, f.store, f.cache, schedule, nil, zerolog.Nop())

	// The in-flight result predates the booking and still shows 10:00.
	first, err := racing.Execute(ctx, in)
	require.NoError(t, err)
	assert.Len(t, first, 16)

	_, _, cached, _ := f.cache.Get(ctx, f.practitioner.ID, "2024-06-01")
	assert.False(t, cached)

	fresh, err := f.availability.Execute(ctx, in)
	require.NoError(t, err)
	require.Len(t, fresh, 15)
	for _, s := range fresh {
		assert.False(t, s.Start.Before(at(10, 30)) && s.End.After(at(10, 0)), "slot %s overlaps the booking", s.Start)
	}
}

// --------------------------------------------------
// booking guard
// --------------------------------------------------

func TestCreateAppointment_Boundaries(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.practitioner.ID, at(10, 30), at(11, 0), domain.StatusConfirmed)

	ap, err := f.book(f.client, at(10, 0), at(10, 30))
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusPending), ap.Status)
	assert.Equal(t, f.client.ID, ap.ClientID)

	_, err = f.book(f.client2, at(10, 0), at(10, 31))
	assert.True(t, httperr.IsKind(err, httperr.KindSlotConflict))
}

func TestCreateAppointment_CancelledDoesNotBlock(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.practitioner.ID, at(10, 0), at(10, 30), domain.StatusCancelled)

	_, err := f.book(f.client, at(10, 0), at(10, 30))
	require.NoError(t, err)
}

func TestCreateAppointment_ConcurrentOverlapping(t *testing.T) {
	f := newFixture(t)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	clients := []models.User{f.client, f.client2}
	for i := range clients {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.book(clients[i], at(14, 0), at(14, 30))
		}(i)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case httperr.IsKind(err, httperr.KindSlotConflict):
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflicts)

	apps, err := f.store.ListAppointments(context.Background(), domain.ListFilter{PractitionerID: f.practitioner.ID})
	require.NoError(t, err)
	assert.Len(t, apps, 1)
}

func TestCreateAppointment_ConcurrentNonOverlapping(t *testing.T) {
	f := newFixture(t)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	windows := [][2]time.Time{{at(14, 0), at(14, 30)}, {at(14, 30), at(15, 0)}}
	for i := range windows {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.book(f.client, windows[i][0], windows[i][1])
		}(i)
	}
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
}

func TestCreateAppointment_AcrossMidnightLocksBothDays(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.practitioner.ID,
		time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 2, 0, 30, 0, 0, time.UTC),
		domain.StatusConfirmed)

	_, err := f.book(f.client, at(23, 30), time.Date(2024, 6, 2, 0, 15, 0, 0, time.UTC))
	assert.True(t, httperr.IsKind(err, httperr.KindSlotConflict))
}

func TestCreateAppointment_RoleRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// a client's clientId is ignored
	ap, err := f.create.Execute(ctx, CreateAppointmentInput{
		Principal:      principal(f.client),
		PractitionerID: f.practitioner.ID,
		ClientID:       f.client2.ID,
		StartsAt:       at(9, 0),
		EndsAt:         at(9, 30),
	})
	require.NoError(t, err)
	assert.Equal(t, f.client.ID, ap.ClientID)

	// practitioner must name the client
	_, err = f.create.Execute(ctx, CreateAppointmentInput{
		Principal:      principal(f.practitioner),
		PractitionerID: f.practitioner.ID,
		StartsAt:       at(10, 0),
		EndsAt:         at(10, 30),
	})
	assert.True(t, httperr.IsBusiness(err, "client_id_required"))

	// admin books on behalf of a client
	ap, err = f.create.Execute(ctx, CreateAppointmentInput{
		Principal:      principal(f.admin),
		PractitionerID: f.practitioner.ID,
		ClientID:       f.client2.ID,
		StartsAt:       at(10, 0),
		EndsAt:         at(10, 30),
	})
	require.NoError(t, err)
	assert.Equal(t, f.client2.ID, ap.ClientID)
}

func TestCreateAppointment_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateAppointmentInput
		code string
	}{
		{"end before start", CreateAppointmentInput{Principal: principal(f.client), PractitionerID: f.practitioner.ID, StartsAt: at(10, 0), EndsAt: at(9, 0)}, "invalid_time_range"},
		{"empty window", CreateAppointmentInput{Principal: principal(f.client), PractitionerID: f.practitioner.ID, StartsAt: at(10, 0), EndsAt: at(10, 0)}, "invalid_time_range"},
		{"missing practitioner", CreateAppointmentInput{Principal: principal(f.client), StartsAt: at(10, 0), EndsAt: at(10, 30)}, "practitioner_id_required"},
		{"not a practitioner", CreateAppointmentInput{Principal: principal(f.client), PractitionerID: f.client2.ID, StartsAt: at(10, 0), EndsAt: at(10, 30)}, "practitioner_not_found"},
		{"unknown client", CreateAppointmentInput{Principal: principal(f.admin), PractitionerID: f.practitioner.ID, ClientID: "ghost", StartsAt: at(10, 0), EndsAt: at(10, 30)}, "client_not_found"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.create.Execute(ctx, tc.in)
			assert.True(t, httperr.IsBusiness(err, tc.code), "got %v", err)
		})
	}
}

func TestCreateAppointment_AuditsOutcome(t *testing.T) {
	f := newFixture(t)

	_, err := f.book(f.client, at(9, 0), at(9, 30))
	require.NoError(t, err)
	_, err = f.book(f.client2, at(9, 0), at(9, 30))
	require.Error(t, err)

	f.audit.Close()
	assert.Equal(t, []string{"appointment_created", "appointment_conflict"}, f.sink.actions())
}

// --------------------------------------------------
// lifecycle
// --------------------------------------------------

func TestTransition_LifecycleAndAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ap, err := f.book(f.client, at(9, 0), at(9, 30))
	require.NoError(t, err)

	move := func(p models.User, to domain.Status) (*models.Appointment, error) {
		return f.transition.Execute(ctx, TransitionInput{Principal: principal(p), AppointmentID: ap.ID, Target: to})
	}

	// client may not confirm
	_, err = move(f.client, domain.StatusConfirmed)
	assert.True(t, httperr.IsKind(err, httperr.KindForbidden))

	// another practitioner may not touch it
	_, err = move(f.other, domain.StatusConfirmed)
	assert.True(t, httperr.IsKind(err, httperr.KindForbidden))

	got, err := move(f.practitioner, domain.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), got.Status)
	require.NotNil(t, got.ConfirmedAt)
	assert.True(t, got.ConfirmedAt.Equal(f.clock.Now()))

	// same-state is invalid
	_, err = move(f.practitioner, domain.StatusConfirmed)
	assert.True(t, httperr.IsKind(err, httperr.KindInvalidTransition))

	got, err = move(f.practitioner, domain.StatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, got.CompletedAt)

	// terminal
	_, err = move(f.admin, domain.StatusCancelled)
	assert.True(t, httperr.IsKind(err, httperr.KindInvalidTransition))
}

func TestTransition_ClientCancelFreesSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ap, err := f.book(f.client, at(9, 0), at(9, 30))
	require.NoError(t, err)

	// other client may not cancel it
	_, err = f.transition.Execute(ctx, TransitionInput{Principal: principal(f.client2), AppointmentID: ap.ID, Target: domain.StatusCancelled})
	assert.True(t, httperr.IsKind(err, httperr.KindForbidden))

	got, err := f.transition.Execute(ctx, TransitionInput{Principal: principal(f.client), AppointmentID: ap.ID, Target: domain.StatusCancelled})
	require.NoError(t, err)
	require.NotNil(t, got.CancelledAt)

	_, err = f.book(f.client2, at(9, 0), at(9, 30))
	require.NoError(t, err)
}

func TestTransition_UnknownAppointment(t *testing.T) {
	f := newFixture(t)

	_, err := f.transition.Execute(context.Background(), TransitionInput{
		Principal:     principal(f.admin),
		AppointmentID: "missing",
		Target:        domain.StatusConfirmed,
	})
	assert.True(t, httperr.IsKind(err, httperr.KindNotFound))
}

// --------------------------------------------------
// listing
// --------------------------------------------------

func TestListAppointments_ScopedByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.book(f.client, at(9, 0), at(9, 30))
	require.NoError(t, err)
	_, err = f.book(f.client2, at(10, 0), at(10, 30))
	require.NoError(t, err)
	f.seed(t, f.other.ID, at(11, 0), at(11, 30), domain.StatusPending)

	count := func(p models.User) int {
		apps, err := f.list.Execute(ctx, ListAppointmentsInput{Principal: principal(p)})
		require.NoError(t, err)
		return len(apps)
	}

	assert.Equal(t, 2, count(f.client)) // own booking plus the seeded one
	assert.Equal(t, 1, count(f.client2))
	assert.Equal(t, 2, count(f.practitioner))
	assert.Equal(t, 1, count(f.other))
	assert.Equal(t, 3, count(f.admin))
}

func TestListAppointments_PeriodShorthands(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.book(f.client, at(9, 0), at(9, 30))
	require.NoError(t, err)
	f.seed(t, f.practitioner.ID,
		time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC),
		domain.StatusPending)

	byDay, err := f.list.Execute(ctx, ListAppointmentsInput{Principal: principal(f.admin), Date: "2024-06-01"})
	require.NoError(t, err)
	assert.Len(t, byDay, 1)

	byMonth, err := f.list.Execute(ctx, ListAppointmentsInput{Principal: principal(f.admin), Month: "2024-07"})
	require.NoError(t, err)
	assert.Len(t, byMonth, 1)

	_, err = f.list.Execute(ctx, ListAppointmentsInput{Principal: principal(f.admin), Month: "July"})
	assert.True(t, httperr.IsBusiness(err, "invalid_month"))
}

func TestListUpcomingPublic(t *testing.T) {
	f := newFixture(t)

	f.seed(t, f.practitioner.ID, at(9, 0), at(9, 30), domain.StatusPending)
	f.seed(t, f.practitioner.ID,
		time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
		domain.StatusCompleted)

	apps, err := f.public.Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, f.practitioner.ID, apps[0].Practitioner.ID)
}

func TestScheduleFromConfig(t *testing.T) {
	s, err := ScheduleFromConfig(configSchedule("08:30", "12:00", 45))
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, s.Slot)
	assert.Equal(t, domain.ClockTime{Hour: 8, Minute: 30}, s.Hours.Open)

	_, err = ScheduleFromConfig(configSchedule("8am", "12:00", 30))
	assert.Error(t, err)
}

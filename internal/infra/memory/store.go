// Package memory is a process-local store used by STORAGE_DRIVER=memory
// and by usecase tests. It honours the same booking lock contract as the
// postgres repository.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/practice-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/practice-scheduler/internal/domain/intake"
	"github.com/BruksfildServices01/practice-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/practice-scheduler/internal/httperr"
	"github.com/BruksfildServices01/practice-scheduler/internal/models"
)

type Store struct {
	mu sync.RWMutex

	users        map[string]models.User
	appointments map[string]models.Appointment
	templates    map[string]models.IntakeTemplate
	submissions  map[string]models.IntakeSubmission

	locksMu sync.Mutex
	locks   map[string]*keyMutex

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:        map[string]models.User{},
		appointments: map[string]models.Appointment{},
		templates:    map[string]models.IntakeTemplate{},
		submissions:  map[string]models.IntakeSubmission{},
		locks:        map[string]*keyMutex{},
		now:          time.Now,
	}
}

// NewStoreWithClock stamps created/updated times from now.
func NewStoreWithClock(now func() time.Time) *Store {
	s := NewStore()
	s.now = now
	return s
}

var (
	_ user.Repository        = (*Store)(nil)
	_ appointment.Repository = (*Store)(nil)
	_ intake.Repository      = (*Store)(nil)
)

// --------------------------------------------------
// Users
// --------------------------------------------------

func (s *Store) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, httperr.ErrNotFound("user_not_found", "User not found")
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, httperr.ErrNotFound("user_not_found", "User not found")
}

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return httperr.ErrBusiness(httperr.KindConflict, "email_taken", "Email already registered")
		}
	}

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = string(user.RoleClient)
	}
	now := s.now()
	u.CreatedAt, u.UpdatedAt = now, now

	s.users[u.ID] = *u
	return nil
}

func (s *Store) ListPractitioners(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.User
	for _, u := range s.users {
		if u.Role == string(user.RolePractitioner) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].LastName < out[j].LastName
	})
	return out, nil
}

// --------------------------------------------------
// Appointments
// --------------------------------------------------

// keyMutex is dropped from Store.locks once no caller holds or waits on it.
type keyMutex struct {
	mu   sync.Mutex
	refs int
}

func (s *Store) lockKey(key string) {
	s.locksMu.Lock()
	m, ok := s.locks[key]
	if !ok {
		m = &keyMutex{}
		s.locks[key] = m
	}
	m.refs++
	s.locksMu.Unlock()

	m.mu.Lock()
}

func (s *Store) unlockKey(key string) {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	m := s.locks[key]
	m.mu.Unlock()
	m.refs--
	if m.refs == 0 {
		delete(s.locks, key)
	}
}

func (s *Store) WithBookingLock(
	ctx context.Context,
	practitionerID string,
	days []string,
	fn func(tx appointment.Repository) error,
) error {

	keys := make([]string, 0, len(days))
	for _, d := range days {
		keys = append(keys, practitionerID+"|"+d)
	}
	sort.Strings(keys)

	for _, k := range keys {
		s.lockKey(k)
		defer s.unlockKey(k)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(s)
}

func (s *Store) FindOverlapping(
	_ context.Context,
	practitionerID string,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.overlapping(practitionerID, start, end), nil
}

func (s *Store) overlapping(practitionerID string, start, end time.Time) []models.Appointment {
	var out []models.Appointment
	for _, ap := range s.appointments {
		if ap.PractitionerID != practitionerID {
			continue
		}
		if !appointment.Status(ap.Status).Blocks() {
			continue
		}
		if appointment.Overlaps(ap.StartsAt, ap.EndsAt, start, end) {
			out = append(out, ap)
		}
	}
	sortByStart(out)
	return out
}

func (s *Store) CreateAppointment(_ context.Context, ap *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Same backstop as the postgres exclusion constraint.
	if appointment.Status(ap.Status).Blocks() &&
		len(s.overlapping(ap.PractitionerID, ap.StartsAt, ap.EndsAt)) > 0 {
		return httperr.ErrSlotConflict()
	}

	if ap.ID == "" {
		ap.ID = uuid.NewString()
	}
	now := s.now()
	ap.CreatedAt, ap.UpdatedAt = now, now

	stored := *ap
	stored.Client = models.User{}
	stored.Practitioner = models.User{}
	s.appointments[ap.ID] = stored
	return nil
}

func (s *Store) GetAppointment(_ context.Context, id string) (*models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ap, ok := s.appointments[id]
	if !ok {
		return nil, httperr.ErrNotFound("appointment_not_found", "Appointment not found")
	}
	s.preload(&ap)
	return &ap, nil
}

func (s *Store) UpdateAppointmentStatus(_ context.Context, ap *models.Appointment, from appointment.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.appointments[ap.ID]
	if !ok {
		return httperr.ErrNotFound("appointment_not_found", "Appointment not found")
	}
	if current.Status != string(from) {
		return httperr.ErrInvalidTransition(current.Status, ap.Status)
	}

	current.Status = ap.Status
	current.ConfirmedAt = ap.ConfirmedAt
	current.CancelledAt = ap.CancelledAt
	current.CompletedAt = ap.CompletedAt
	current.UpdatedAt = s.now()
	ap.UpdatedAt = current.UpdatedAt

	s.appointments[ap.ID] = current
	return nil
}

func (s *Store) ListBusy(
	_ context.Context,
	practitionerID string,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.overlapping(practitionerID, start, end), nil
}

func (s *Store) ListAppointments(_ context.Context, f appointment.ListFilter) ([]models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Appointment
	for _, ap := range s.appointments {
		if f.ClientID != "" && ap.ClientID != f.ClientID {
			continue
		}
		if f.PractitionerID != "" && ap.PractitionerID != f.PractitionerID {
			continue
		}
		if f.From != nil && ap.StartsAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !ap.StartsAt.Before(*f.To) {
			continue
		}
		s.preload(&ap)
		out = append(out, ap)
	}

	sortByStart(out)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Store) preload(ap *models.Appointment) {
	ap.Client = s.users[ap.ClientID]
	ap.Practitioner = s.users[ap.PractitionerID]
}

func sortByStart(apps []models.Appointment) {
	sort.Slice(apps, func(i, j int) bool {
		if !apps[i].StartsAt.Equal(apps[j].StartsAt) {
			return apps[i].StartsAt.Before(apps[j].StartsAt)
		}
		return apps[i].ID < apps[j].ID
	})
}

// --------------------------------------------------
// Intake
// --------------------------------------------------

func (s *Store) CreateTemplate(_ context.Context, t *models.IntakeTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := s.now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	s.templates[t.ID] = *t
	return nil
}

func (s *Store) GetTemplate(_ context.Context, id string) (*models.IntakeTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.templates[id]
	if !ok {
		return nil, httperr.ErrNotFound("template_not_found", "Intake template not found")
	}
	return &t, nil
}

func (s *Store) LatestActiveTemplate(ctx context.Context) (*models.IntakeTemplate, error) {
	active, _ := s.ListActiveTemplates(ctx)
	if len(active) == 0 {
		return nil, httperr.ErrNotFound("no_active_template", "No active intake template")
	}
	return &active[len(active)-1], nil
}

// ListActiveTemplates returns oldest first.
func (s *Store) ListActiveTemplates(_ context.Context) ([]models.IntakeTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.IntakeTemplate
	for _, t := range s.templates {
		if t.IsActive {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) SetTemplateActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.templates[id]
	if !ok {
		return httperr.ErrNotFound("template_not_found", "Intake template not found")
	}
	t.IsActive = active
	t.UpdatedAt = s.now()
	s.templates[id] = t
	return nil
}

func submissionKey(appointmentID, clientID string) string {
	return appointmentID + "|" + clientID
}

func (s *Store) UpsertSubmission(_ context.Context, sub *models.IntakeSubmission) (*models.IntakeSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := submissionKey(sub.AppointmentID, sub.ClientID)
	now := s.now()

	stored, ok := s.submissions[key]
	if ok {
		stored.TemplateID = sub.TemplateID
		stored.AnswersJSON = sub.AnswersJSON
		stored.SubmittedAt = sub.SubmittedAt
		stored.UpdatedAt = now
	} else {
		stored = *sub
		if stored.ID == "" {
			stored.ID = uuid.NewString()
		}
		stored.CreatedAt, stored.UpdatedAt = now, now
	}
	stored.Appointment = models.Appointment{}
	stored.Template = models.IntakeTemplate{}

	s.submissions[key] = stored
	return &stored, nil
}

func (s *Store) FindSubmission(_ context.Context, appointmentID, clientID string) (*models.IntakeSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.submissions[submissionKey(appointmentID, clientID)]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

func (s *Store) CountSubmissions(_ context.Context, appointmentID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, sub := range s.submissions {
		if sub.AppointmentID == appointmentID {
			n++
		}
	}
	return n, nil
}

package appointment

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	domain "github.com/BruksfildServices01/practice-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/practice-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/practice-scheduler/internal/httperr"
	"github.com/BruksfildServices01/practice-scheduler/internal/metrics"
	"github.com/BruksfildServices01/practice-scheduler/internal/models"
)

type GetAvailability struct {
	repo     domain.Repository
	users    user.Repository
	cache    domain.AvailabilityCache
	schedule Schedule
	metrics  *metrics.SchedulingMetrics
	logger   zerolog.Logger
}

// NewGetAvailability wires the resolver. cache and m may be nil.
func NewGetAvailability(
	repo domain.Repository,
	users user.Repository,
	cache domain.AvailabilityCache,
	schedule Schedule,
	m *metrics.SchedulingMetrics,
	logger zerolog.Logger,
) *GetAvailability {
	return &GetAvailability{
		repo:     repo,
		users:    users,
		cache:    cache,
		schedule: schedule,
		metrics:  m,
		logger:   logger,
	}
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	in domain.AvailabilityInput,
) ([]domain.Slot, error) {

	started := time.Now()

	// --------------------------------------------------
	// 1. Input
	// --------------------------------------------------
	in.PractitionerID = strings.TrimSpace(in.PractitionerID)
	if in.PractitionerID == "" {
		return nil, httperr.ErrInvalidInput("practitioner_id_required", "practitioner_id is required")
	}

	day, err := uc.schedule.ParseDay(in.Date)
	if err != nil {
		return nil, httperr.ErrInvalidInput("invalid_date", "date must be YYYY-MM-DD")
	}

	// --------------------------------------------------
	// 2. Practitioner
	// --------------------------------------------------
	if _, err := loadPractitioner(ctx, uc.users, in.PractitionerID); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 3. Cache
	// --------------------------------------------------
	// The generation is read before the busy rows so a booking that lands
	// in between makes the later Set a no-op.
	var (
		gen       int64
		cacheable bool
	)
	if uc.cache != nil {
		slots, g, ok, err := uc.cache.Get(ctx, in.PractitionerID, in.Date)
		switch {
		case err != nil:
			uc.logger.Warn().Err(err).Str("practitioner_id", in.PractitionerID).Msg("availability cache read failed")
		case ok:
			uc.metrics.ObserveAvailability(true, time.Since(started).Seconds())
			return slots, nil
		default:
			gen, cacheable = g, true
		}
	}

	// --------------------------------------------------
	// 4. Candidates minus busy
	// --------------------------------------------------
	candidates, err := domain.GenerateSlots(day, uc.schedule.Hours, uc.schedule.Slot)
	if err != nil {
		return nil, err
	}

	dayStart, dayEnd := uc.schedule.Hours.Window(day)
	busy, err := uc.repo.ListBusy(ctx, in.PractitionerID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	free := domain.FreeSlots(candidates, busy)

	if cacheable {
		stored, err := uc.cache.Set(ctx, in.PractitionerID, in.Date, gen, free)
		switch {
		case err != nil:
			uc.logger.Warn().Err(err).Str("practitioner_id", in.PractitionerID).Msg("availability cache write failed")
		case !stored:
			uc.logger.Debug().Str("practitioner_id", in.PractitionerID).Str("date", in.Date).Msg("availability changed while resolving, not cached")
		}
	}

	uc.metrics.ObserveAvailability(false, time.Since(started).Seconds())
	return free, nil
}

// loadPractitioner hides non-practitioner accounts behind NotFound.
func loadPractitioner(ctx context.Context, users user.Repository, id string) (*models.User, error) {
	u, err := users.GetUserByID(ctx, id)
	if err != nil {
		if httperr.IsKind(err, httperr.KindNotFound) {
			return nil, httperr.ErrNotFound("practitioner_not_found", "Practitioner not found")
		}
		return nil, err
	}
	if u.Role != string(user.RolePractitioner) {
		return nil, httperr.ErrNotFound("practitioner_not_found", "Practitioner not found")
	}
	return u, nil
}

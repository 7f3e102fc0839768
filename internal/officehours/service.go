package officehours

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Pilsner12/Dental-Lite-sub000/internal/kv"
	"github.com/Pilsner12/Dental-Lite-sub000/internal/timeutil"
)

const storageKey = "dental:office-hours"

// MinBlockMinutes is the minimum duration a time block may have.
const MinBlockMinutes = 30

var (
	ErrUnknownDay    = errors.New("unknown weekday")
	ErrBlockNotFound = errors.New("time block not found")
	ErrInvalidTime   = errors.New("invalid time format")
)

type persistedSchedule struct {
	Schedule    Schedule  `json:"schedule"`
	LastUpdated time.Time `json:"last_updated"`
}

// Service owns the singleton clinic schedule. All mutations go through its
// validated setters; every mutation bumps lastUpdated and flushes the full
// schedule to durable storage.
type Service struct {
	mu          sync.Mutex
	store       kv.Store
	log         zerolog.Logger
	schedule    Schedule
	lastUpdated time.Time
}

// NewService loads the persisted schedule, falling back to the seeded
// defaults when nothing is stored or the payload does not parse.
func NewService(ctx context.Context, store kv.Store, log zerolog.Logger) *Service {
	s := &Service{
		store:    store,
		log:      log.With().Str("component", "officehours").Logger(),
		schedule: DefaultSchedule(),
	}

	raw, err := store.Get(ctx, storageKey)
	if err != nil {
		if !errors.Is(err, kv.ErrKeyNotFound) {
			s.log.Warn().Err(err).Msg("load office hours failed, using defaults")
		}
		return s
	}

	var p persistedSchedule
	if err := json.Unmarshal(raw, &p); err != nil || len(p.Schedule) == 0 {
		s.log.Warn().Err(err).Msg("corrupt office hours payload, using defaults")
		return s
	}

	// Guarantee every weekday has an entry even if the payload predates one.
	for _, day := range Weekdays {
		if _, ok := p.Schedule[day]; !ok {
			p.Schedule[day] = DaySchedule{Open: false, Blocks: []TimeBlock{}}
		}
	}

	s.schedule = p.Schedule
	s.lastUpdated = p.LastUpdated
	return s
}

// IsSlotAvailable reports whether the day is open and the time falls within
// at least one of its blocks.
func (s *Service) IsSlotAvailable(day Weekday, hhmm string) bool {
	return s.SlotStatus(day, hhmm) == SlotAvailable
}

// SlotStatus classifies a (day, time) pair: closed when the day is not open,
// outside-hours when open but no block contains the time, available otherwise.
func (s *Service) SlotStatus(day Weekday, hhmm string) SlotStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds, ok := s.schedule[day]
	if !ok || !ds.Open {
		return SlotClosed
	}

	t, err := timeutil.ToMinutes(hhmm)
	if err != nil {
		return SlotOutsideHours
	}

	for _, b := range ds.Blocks {
		start, err := timeutil.ToMinutes(b.Start)
		if err != nil {
			continue
		}
		end, err := timeutil.ToMinutes(b.End)
		if err != nil {
			continue
		}
		if start <= t && t < end {
			return SlotAvailable
		}
	}
	return SlotOutsideHours
}

// ValidateBlock checks a candidate block against every rule: time format,
// end after start, minimum duration, and non-overlap with the day's other
// blocks. excludeID skips the block being edited. The result is advisory;
// mutations do not call it themselves.
func (s *Service) ValidateBlock(day Weekday, candidate TimeBlock, excludeID uuid.UUID) ValidationResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []string

	startOK := timeutil.IsValidTime(candidate.Start)
	endOK := timeutil.IsValidTime(candidate.End)
	if !startOK {
		errs = append(errs, fmt.Sprintf("start time %q is not a valid HH:MM time", candidate.Start))
	}
	if !endOK {
		errs = append(errs, fmt.Sprintf("end time %q is not a valid HH:MM time", candidate.End))
	}

	ds, ok := s.schedule[day]
	if !ok {
		errs = append(errs, fmt.Sprintf("unknown weekday %q", day))
	}

	if startOK && endOK {
		start, _ := timeutil.ToMinutes(candidate.Start)
		end, _ := timeutil.ToMinutes(candidate.End)

		if end <= start {
			errs = append(errs, "end time must be after start time")
		} else if end-start < MinBlockMinutes {
			errs = append(errs, fmt.Sprintf("block must be at least %d minutes long", MinBlockMinutes))
		}

		if ok && end > start {
			for _, other := range ds.Blocks {
				if other.ID == excludeID {
					continue
				}
				oStart, err := timeutil.ToMinutes(other.Start)
				if err != nil {
					continue
				}
				oEnd, err := timeutil.ToMinutes(other.End)
				if err != nil {
					continue
				}
				if timeutil.Overlaps(start, end, oStart, oEnd) {
					errs = append(errs, fmt.Sprintf("block overlaps existing block %s-%s", other.Start, other.End))
				}
			}
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// AddBlock appends a block to the day. Only structural checks are enforced
// here; callers are expected to run ValidateBlock first.
func (s *Service) AddBlock(ctx context.Context, day Weekday, start, end string) (TimeBlock, error) {
	if !timeutil.IsValidTime(start) || !timeutil.IsValidTime(end) {
		return TimeBlock{}, ErrInvalidTime
	}

	s.mu.Lock()
	ds, ok := s.schedule[day]
	if !ok {
		s.mu.Unlock()
		return TimeBlock{}, ErrUnknownDay
	}

	block := TimeBlock{ID: uuid.New(), Start: start, End: end}
	ds.Blocks = append(ds.Blocks, block)
	sortBlocks(ds.Blocks)
	s.schedule[day] = ds
	s.lastUpdated = time.Now().UTC()
	s.mu.Unlock()

	s.persist(ctx)
	return block, nil
}

// UpdateBlock applies a partial update to one block.
func (s *Service) UpdateBlock(ctx context.Context, day Weekday, blockID uuid.UUID, upd BlockUpdate) (TimeBlock, error) {
	if upd.Start != nil && !timeutil.IsValidTime(*upd.Start) {
		return TimeBlock{}, ErrInvalidTime
	}
	if upd.End != nil && !timeutil.IsValidTime(*upd.End) {
		return TimeBlock{}, ErrInvalidTime
	}

	s.mu.Lock()
	ds, ok := s.schedule[day]
	if !ok {
		s.mu.Unlock()
		return TimeBlock{}, ErrUnknownDay
	}

	idx := -1
	for i, b := range ds.Blocks {
		if b.ID == blockID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return TimeBlock{}, ErrBlockNotFound
	}

	if upd.Start != nil {
		ds.Blocks[idx].Start = *upd.Start
	}
	if upd.End != nil {
		ds.Blocks[idx].End = *upd.End
	}
	sortBlocks(ds.Blocks)
	s.schedule[day] = ds
	s.lastUpdated = time.Now().UTC()

	var updated TimeBlock
	for _, b := range ds.Blocks {
		if b.ID == blockID {
			updated = b
			break
		}
	}
	s.mu.Unlock()

	s.persist(ctx)
	return updated, nil
}

// RemoveBlock deletes one block from the day.
func (s *Service) RemoveBlock(ctx context.Context, day Weekday, blockID uuid.UUID) error {
	s.mu.Lock()
	ds, ok := s.schedule[day]
	if !ok {
		s.mu.Unlock()
		return ErrUnknownDay
	}

	idx := -1
	for i, b := range ds.Blocks {
		if b.ID == blockID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrBlockNotFound
	}

	ds.Blocks = append(ds.Blocks[:idx], ds.Blocks[idx+1:]...)
	s.schedule[day] = ds
	s.lastUpdated = time.Now().UTC()
	s.mu.Unlock()

	s.persist(ctx)
	return nil
}

// SetDayOpen toggles a whole day on or off without touching its blocks.
func (s *Service) SetDayOpen(ctx context.Context, day Weekday, open bool) error {
	s.mu.Lock()
	ds, ok := s.schedule[day]
	if !ok {
		s.mu.Unlock()
		return ErrUnknownDay
	}

	ds.Open = open
	s.schedule[day] = ds
	s.lastUpdated = time.Now().UTC()
	s.mu.Unlock()

	s.persist(ctx)
	return nil
}

// ResetToDefaults restores the seeded schedule.
func (s *Service) ResetToDefaults(ctx context.Context) {
	s.mu.Lock()
	s.schedule = DefaultSchedule()
	s.lastUpdated = time.Now().UTC()
	s.mu.Unlock()

	s.persist(ctx)
}

// Snapshot returns a deep copy of the schedule and its lastUpdated stamp.
func (s *Service) Snapshot() (Schedule, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make(Schedule, len(s.schedule))
	for day, ds := range s.schedule {
		blocks := make([]TimeBlock, len(ds.Blocks))
		copy(blocks, ds.Blocks)
		cp[day] = DaySchedule{Open: ds.Open, Blocks: blocks}
	}
	return cp, s.lastUpdated
}

// persist flushes the schedule to durable storage. Failures are logged, not
// returned: losing a flush must not fail the mutation.
func (s *Service) persist(ctx context.Context) {
	s.mu.Lock()
	p := persistedSchedule{Schedule: s.schedule, LastUpdated: s.lastUpdated}
	raw, err := json.Marshal(p)
	s.mu.Unlock()
	if err != nil {
		s.log.Error().Err(err).Msg("marshal office hours")
		return
	}
	if err := s.store.Set(ctx, storageKey, raw); err != nil {
		s.log.Error().Err(err).Msg("persist office hours")
	}
}

func sortBlocks(blocks []TimeBlock) {
	// Zero-padded HH:MM strings order lexicographically.
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Start < blocks[j].Start })
}

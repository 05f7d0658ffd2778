// Package memory is an in-process implementation of repository.Store used by
// tests and by the server when store.type is "memory".
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/juju/clock"

	"fieldservice-backend/internal/domain"
	"fieldservice-backend/internal/repository"
)

type state struct {
	devices map[string]domain.Device
	rentals map[int32]domain.Rental
	jobs    map[int32]domain.Job
	reports map[int32]domain.JobReport

	nextDeviceID int32
	nextRentalID int32
	nextJobID    int32
	nextReportID int32
}

func newState() *state {
	return &state{
		devices: make(map[string]domain.Device),
		rentals: make(map[int32]domain.Rental),
		jobs:    make(map[int32]domain.Job),
		reports: make(map[int32]domain.JobReport),
	}
}

func (s *state) clone() *state {
	c := *s
	c.devices = make(map[string]domain.Device, len(s.devices))
	for k, v := range s.devices {
		c.devices[k] = v
	}
	c.rentals = make(map[int32]domain.Rental, len(s.rentals))
	for k, v := range s.rentals {
		c.rentals[k] = v
	}
	c.jobs = make(map[int32]domain.Job, len(s.jobs))
	for k, v := range s.jobs {
		c.jobs[k] = v
	}
	c.reports = make(map[int32]domain.JobReport, len(s.reports))
	for k, v := range s.reports {
		c.reports[k] = v
	}
	return &c
}

// Store serializes every call and every transaction behind one mutex, which
// makes all mutations linearizable. Transactions run against a copy that
// replaces the live state only on success.
type Store struct {
	mu    sync.Mutex
	data  *state
	clock clock.Clock
}

var _ repository.Store = (*Store)(nil)

func NewStore(clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.WallClock
	}
	return &Store{data: newState(), clock: clk}
}

func (s *Store) Devices() repository.DeviceRepository { return &deviceRepository{view{store: s}} }
func (s *Store) Rentals() repository.RentalRepository { return &rentalRepository{view{store: s}} }
func (s *Store) Jobs() repository.JobRepository       { return &jobRepository{view{store: s}} }

func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Ledger) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(&txLedger{view{store: s, tx: work}}); err != nil {
		return err
	}
	s.data = work
	return nil
}

type txLedger struct {
	v view
}

func (l *txLedger) Devices() repository.DeviceRepository { return &deviceRepository{l.v} }
func (l *txLedger) Rentals() repository.RentalRepository { return &rentalRepository{l.v} }
func (l *txLedger) Jobs() repository.JobRepository       { return &jobRepository{l.v} }

// view runs a function against either the live state (taking the lock) or
// a transaction's working copy (lock already held by WithinTx).
type view struct {
	store *Store
	tx    *state
}

func (v view) do(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.data)
}

func (v view) now() time.Time {
	return v.store.clock.Now().UTC()
}

type deviceRepository struct{ v view }

func (r *deviceRepository) Create(ctx context.Context, d *domain.Device) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.devices[d.SerialNo]; ok {
			return domain.ErrDuplicateSerial
		}
		if d.Availability == "" {
			d.Availability = domain.DeviceAvailable
		}
		st.nextDeviceID++
		d.ID = st.nextDeviceID
		d.CreatedAt = r.v.now()
		st.devices[d.SerialNo] = *d
		return nil
	})
}

func (r *deviceRepository) GetBySerial(ctx context.Context, serial string) (*domain.Device, error) {
	var out *domain.Device
	err := r.v.do(func(st *state) error {
		d, ok := st.devices[serial]
		if !ok {
			return domain.ErrDeviceNotFound
		}
		out = &d
		return nil
	})
	return out, err
}

// LockBySerial needs no extra locking: transactions already hold the store mutex.
func (r *deviceRepository) LockBySerial(ctx context.Context, serial string) (*domain.Device, error) {
	return r.GetBySerial(ctx, serial)
}

func (r *deviceRepository) SetAvailability(ctx context.Context, serial string, availability domain.DeviceAvailability) error {
	return r.v.do(func(st *state) error {
		d, ok := st.devices[serial]
		if !ok {
			return domain.ErrDeviceNotFound
		}
		d.Availability = availability
		st.devices[serial] = d
		return nil
	})
}

func (r *deviceRepository) List(ctx context.Context, availability domain.DeviceAvailability) ([]domain.Device, error) {
	var out []domain.Device
	err := r.v.do(func(st *state) error {
		for _, d := range st.devices {
			if availability == "" || d.Availability == availability {
				out = append(out, d)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Model != out[j].Model {
			return out[i].Model < out[j].Model
		}
		return out[i].SerialNo < out[j].SerialNo
	})
	return out, err
}

func (r *deviceRepository) CountByAvailability(ctx context.Context) (map[domain.DeviceAvailability]int32, error) {
	counts := make(map[domain.DeviceAvailability]int32)
	err := r.v.do(func(st *state) error {
		for _, d := range st.devices {
			counts[d.Availability]++
		}
		return nil
	})
	return counts, err
}

type rentalRepository struct{ v view }

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	return r.v.do(func(st *state) error {
		for _, existing := range st.rentals {
			if existing.DeviceSerial == rt.DeviceSerial && existing.Status == domain.RentalStatusActive {
				return domain.ErrConflict
			}
		}
		st.nextRentalID++
		rt.ID = st.nextRentalID
		rt.Status = domain.RentalStatusActive
		rt.ReturnedAt = nil
		rt.CreatedAt = r.v.now()
		st.rentals[rt.ID] = *rt
		return nil
	})
}

func (r *rentalRepository) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	var out *domain.Rental
	err := r.v.do(func(st *state) error {
		rt, ok := st.rentals[id]
		if !ok {
			return domain.ErrRentalNotFound
		}
		out = &rt
		return nil
	})
	return out, err
}

func (r *rentalRepository) MarkReturned(ctx context.Context, id int32, at time.Time) error {
	return r.v.do(func(st *state) error {
		rt, ok := st.rentals[id]
		if !ok {
			return domain.ErrRentalNotFound
		}
		if rt.Status != domain.RentalStatusActive {
			return domain.ErrAlreadyReturned
		}
		rt.Status = domain.RentalStatusReturned
		rt.ReturnedAt = &at
		st.rentals[id] = rt
		return nil
	})
}

func (r *rentalRepository) List(ctx context.Context, status domain.RentalStatus) ([]domain.Rental, error) {
	return r.filter(func(rt domain.Rental) bool {
		return status == "" || rt.Status == status
	})
}

func (r *rentalRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Rental, error) {
	return r.filter(func(rt domain.Rental) bool {
		return rt.IsOverdue(asOf)
	})
}

func (r *rentalRepository) filter(keep func(domain.Rental) bool) ([]domain.Rental, error) {
	var out []domain.Rental
	err := r.v.do(func(st *state) error {
		for _, rt := range st.rentals {
			if keep(rt) {
				out = append(out, rt)
			}
		}
		return nil
	})
	// Newest first, matching the postgres ordering.
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, err
}

func (r *rentalRepository) CountByStatus(ctx context.Context) (map[domain.RentalStatus]int32, error) {
	counts := make(map[domain.RentalStatus]int32)
	err := r.v.do(func(st *state) error {
		for _, rt := range st.rentals {
			counts[rt.Status]++
		}
		return nil
	})
	return counts, err
}

type jobRepository struct{ v view }

func (r *jobRepository) Create(ctx context.Context, j *domain.Job) error {
	return r.v.do(func(st *state) error {
		st.nextJobID++
		j.ID = st.nextJobID
		j.Status = domain.JobStatusOpen
		j.AssignedTo = nil
		j.AssignedAt = nil
		if j.Priority == "" {
			j.Priority = domain.JobPriorityMedium
		}
		j.CreatedAt = r.v.now()
		st.jobs[j.ID] = *j
		return nil
	})
}

func (r *jobRepository) GetByID(ctx context.Context, id int32) (*domain.Job, error) {
	var out *domain.Job
	err := r.v.do(func(st *state) error {
		j, ok := st.jobs[id]
		if !ok {
			return domain.ErrJobNotFound
		}
		out = &j
		return nil
	})
	return out, err
}

func (r *jobRepository) CompareAndSetAssignment(ctx context.Context, id int32, expected, next domain.JobStatus, assignee int32, at time.Time) error {
	return r.v.do(func(st *state) error {
		j, ok := st.jobs[id]
		if !ok {
			return domain.ErrJobNotFound
		}
		if j.Status != expected {
			return domain.ErrConflict
		}
		j.Status = next
		j.AssignedTo = &assignee
		j.AssignedAt = &at
		st.jobs[id] = j
		return nil
	})
}

func (r *jobRepository) CompareAndSetStatus(ctx context.Context, id int32, expected, next domain.JobStatus) error {
	return r.v.do(func(st *state) error {
		j, ok := st.jobs[id]
		if !ok {
			return domain.ErrJobNotFound
		}
		if j.Status != expected {
			return domain.ErrConflict
		}
		j.Status = next
		st.jobs[id] = j
		return nil
	})
}

func (r *jobRepository) CreateReport(ctx context.Context, rep *domain.JobReport) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.jobs[rep.JobID]; !ok {
			return domain.ErrJobNotFound
		}
		st.nextReportID++
		rep.ID = st.nextReportID
		rep.CreatedAt = r.v.now()
		st.reports[rep.ID] = *rep
		return nil
	})
}

func (r *jobRepository) ListReports(ctx context.Context, jobID int32) ([]domain.JobReport, error) {
	var out []domain.JobReport
	err := r.v.do(func(st *state) error {
		for _, rep := range st.reports {
			if jobID == 0 || rep.JobID == jobID {
				out = append(out, rep)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, err
}

func (r *jobRepository) List(ctx context.Context, status domain.JobStatus) ([]domain.Job, error) {
	var out []domain.Job
	err := r.v.do(func(st *state) error {
		for _, j := range st.jobs {
			if status == "" || j.Status == status {
				out = append(out, j)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, err
}

func (r *jobRepository) CountByStatus(ctx context.Context) (map[domain.JobStatus]int32, error) {
	counts := make(map[domain.JobStatus]int32)
	err := r.v.do(func(st *state) error {
		for _, j := range st.jobs {
			counts[j.Status]++
		}
		return nil
	})
	return counts, err
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tutor-portal/internal/lock"
	"tutor-portal/internal/metrics"
	"tutor-portal/internal/models"
	"tutor-portal/pkg/response"

	"github.com/google/uuid"
)

const (
	defaultLockTTL   = 10 * time.Second
	defaultLockWait  = 5 * time.Second
	lockRetryBackoff = 25 * time.Millisecond
	defaultLocale    = "id"
)

type Service struct {
	store    Store
	locker   lock.Locker
	lockTTL  time.Duration
	lockWait time.Duration
	loc      *time.Location
	locale   string
	now      func() time.Time
}

type Option func(*Service)

func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithLocale(locale string) Option {
	return func(s *Service) {
		if locale != "" {
			s.locale = locale
		}
	}
}

func WithLockTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

// WithLockWait sets how long a mutation waits for a held schedule lock
// before giving up with response.ErrLocked. Zero means try once.
func WithLockWait(wait time.Duration) Option {
	return func(s *Service) {
		if wait >= 0 {
			s.lockWait = wait
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(store Store, locker lock.Locker, opts ...Option) *Service {
	s := &Service{
		store:    store,
		locker:   locker,
		lockTTL:  defaultLockTTL,
		lockWait: defaultLockWait,
		loc:      time.UTC,
		locale:   defaultLocale,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Store is the persistence capability. WithTx runs fn inside one atomic
// transaction: an error from fn rolls back every write made through repo.
type Store interface {
	Repository
	WithTx(ctx context.Context, fn func(repo Repository) error) error
}

// Repository reports missing rows as response.ErrNotFound and uniqueness
// violations as response.ErrConflict. Getters include soft-deleted rows.
type Repository interface {
	// Users & Students
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	// DeleteUser reports response.ErrConflict while the user still owns
	// schedules, notes, materials or news.
	DeleteUser(ctx context.Context, id uuid.UUID) error
	GetStudent(ctx context.Context, id uuid.UUID) (*models.Student, error)
	ListStudents(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
	ListStudentsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Student, error)
	ListStudentCodes(ctx context.Context) ([]string, error)
	CreateStudent(ctx context.Context, student *models.Student) error
	UpdateStudent(ctx context.Context, student *models.Student) error
	SetStudentDeletedAt(ctx context.Context, id uuid.UUID, at *time.Time) error

	// Schedules
	CreateSchedule(ctx context.Context, schedule *models.Schedule) error
	UpdateSchedule(ctx context.Context, schedule *models.Schedule) error
	GetSchedule(ctx context.Context, id uuid.UUID) (*models.Schedule, error)
	ListSchedules(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, error)
	ListSchedulesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Schedule, error)
	SetScheduleDeletedAt(ctx context.Context, id uuid.UUID, at *time.Time) error
	// SetScheduleBadge writes the badge column only. It is the refresher's
	// write path and must not trigger anything else.
	SetScheduleBadge(ctx context.Context, id uuid.UUID, badge models.Badge) error

	// Roster
	SyncRoster(ctx context.Context, scheduleID uuid.UUID, studentIDs []uuid.UUID) error
	Rosters(ctx context.Context, scheduleIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error)

	// Attendance
	GetAttendance(ctx context.Context, id uuid.UUID) (*models.Attendance, error)
	FindAttendance(ctx context.Context, studentID, scheduleID uuid.UUID, date time.Time) (*models.Attendance, error)
	ListAttendance(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, error)
	CreateAttendance(ctx context.Context, attendance *models.Attendance) error
	UpdateAttendance(ctx context.Context, attendance *models.Attendance) error
	DeleteAttendance(ctx context.Context, id uuid.UUID) error
	DeleteScheduleAttendance(ctx context.Context, scheduleID uuid.UUID) (int64, error)

	// Teacher notes
	GetNote(ctx context.Context, id uuid.UUID) (*models.TeacherNote, error)
	GetNoteByAttendance(ctx context.Context, attendanceID uuid.UUID) (*models.TeacherNote, error)
	ListNotes(ctx context.Context, filter models.NoteFilter) ([]models.TeacherNote, error)
	CreateNote(ctx context.Context, note *models.TeacherNote) error
	UpdateNote(ctx context.Context, note *models.TeacherNote) error
	DeleteNote(ctx context.Context, id uuid.UUID) error
	DeleteAttendanceNote(ctx context.Context, attendanceID uuid.UUID) (int64, error)

	// Materials
	GetMaterial(ctx context.Context, id uuid.UUID) (*models.Material, error)
	ListMaterials(ctx context.Context, scheduleIDs []uuid.UUID) ([]models.Material, error)
	CreateMaterial(ctx context.Context, material *models.Material) error
	UpdateMaterial(ctx context.Context, material *models.Material) error
	DeleteMaterial(ctx context.Context, id uuid.UUID) error

	// Library
	GetBook(ctx context.Context, id uuid.UUID) (*models.Book, error)
	ListBooks(ctx context.Context) ([]models.Book, error)
	CreateBook(ctx context.Context, book *models.Book) error
	UpdateBook(ctx context.Context, book *models.Book) error
	// DeleteBook drops the book together with its loans.
	DeleteBook(ctx context.Context, id uuid.UUID) error
	GetLoan(ctx context.Context, id uuid.UUID) (*models.Loan, error)
	// ListLoans never returns soft-deleted loans.
	ListLoans(ctx context.Context, filter models.LoanFilter) ([]models.Loan, error)
	CreateLoan(ctx context.Context, loan *models.Loan) error
	UpdateLoan(ctx context.Context, loan *models.Loan) error
	SetLoanDeletedAt(ctx context.Context, id uuid.UUID, at *time.Time) error

	// News
	GetNews(ctx context.Context, id uuid.UUID) (*models.News, error)
	ListNews(ctx context.Context, filter models.NewsFilter) ([]models.News, error)
	CreateNews(ctx context.Context, news *models.News) error
	UpdateNews(ctx context.Context, news *models.News) error
	SetNewsDeletedAt(ctx context.Context, id uuid.UUID, at *time.Time) error
}

// withScheduleLock serializes mutations of one schedule across instances.
// A held lock is retried until it frees up, ctx ends or the wait budget runs
// out; only then the caller gets response.ErrLocked.
func (s *Service) withScheduleLock(ctx context.Context, scheduleID uuid.UUID, fn func() error) error {
	const op = "service.withScheduleLock"

	if s.locker == nil {
		return fn()
	}

	key := "schedule:" + scheduleID.String()

	token, err := s.acquire(ctx, key)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	defer func() {
		// the ttl releases the key if this fails
		_ = s.locker.Unlock(context.WithoutCancel(ctx), key, token)
	}()

	return fn()
}

func (s *Service) acquire(ctx context.Context, key string) (string, error) {
	token, ok, err := s.locker.Lock(ctx, key, s.lockTTL)
	if err != nil || ok {
		return token, err
	}

	metrics.LockContention.Inc()

	deadline := time.NewTimer(s.lockWait)
	defer deadline.Stop()

	retry := time.NewTicker(lockRetryBackoff)
	defer retry.Stop()

	for {
		select {
		case <-ctx.Done():
			metrics.LockTimeouts.Inc()
			return "", errors.Join(response.ErrLocked, ctx.Err())
		case <-deadline.C:
			metrics.LockTimeouts.Inc()
			return "", response.ErrLocked
		case <-retry.C:
			token, ok, err := s.locker.Lock(ctx, key, s.lockTTL)
			if err != nil || ok {
				return token, err
			}
		}
	}
}

// ownedSchedule loads a live schedule and checks it belongs to teacherID.
func ownedSchedule(ctx context.Context, repo Repository, id, teacherID uuid.UUID, withTrashed bool) (*models.Schedule, error) {
	const op = "service.ownedSchedule"

	sch, err := repo.GetSchedule(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if sch.Deleted() && !withTrashed {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	if sch.TeacherID != teacherID {
		return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	return sch, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, response.ErrNotFound)
}

func badRequest(op, msg string) error {
	return fmt.Errorf("%s: %w", op, response.WithDetail(response.ErrBadRequest, msg))
}

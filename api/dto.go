package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const DateLayout = "2006-01-02"

// #### schedules ####

type ScheduleCreateRequest struct {
	StudentIDs      []uuid.UUID     `json:"student_ids" validate:"required,min=1"`
	Subject         string          `json:"subject" validate:"required,max=150"`
	Topic           string          `json:"topic" validate:"required,max=150"`
	LearningFocus   *string         `json:"learning_focus,omitempty" validate:"omitempty,max=150"`
	Description     *string         `json:"description,omitempty"`
	StartTime       string          `json:"start_time" validate:"required"`
	EndTime         *string         `json:"end_time,omitempty"`
	Location        *string         `json:"location,omitempty" validate:"omitempty,max=150"`
	MeetingURL      *string         `json:"meeting_url,omitempty" validate:"omitempty,url"`
	MaxParticipants *int            `json:"max_participants,omitempty" validate:"omitempty,min=1,max=100"`
	StatusBadge     *string         `json:"status_badge,omitempty" validate:"omitempty,oneof=Upcoming Ongoing Completed Canceled"`
	AttachmentsMeta json.RawMessage `json:"attachments_meta,omitempty"`
	Timezone        *string         `json:"timezone,omitempty" validate:"omitempty,timezone"`
}

// ScheduleUpdateRequest only touches the fields that are present. A missing
// student_ids leaves the roster as it is; an empty list clears it.
type ScheduleUpdateRequest struct {
	StudentIDs      *[]uuid.UUID    `json:"student_ids,omitempty"`
	Subject         *string         `json:"subject,omitempty" validate:"omitnil,min=1,max=150"`
	Topic           *string         `json:"topic,omitempty" validate:"omitnil,min=1,max=150"`
	LearningFocus   *string         `json:"learning_focus,omitempty" validate:"omitempty,max=150"`
	Description     *string         `json:"description,omitempty"`
	StartTime       *string         `json:"start_time,omitempty" validate:"omitnil,min=1"`
	EndTime         *string         `json:"end_time,omitempty"`
	Location        *string         `json:"location,omitempty" validate:"omitempty,max=150"`
	MeetingURL      *string         `json:"meeting_url,omitempty" validate:"omitempty,url"`
	MaxParticipants *int            `json:"max_participants,omitempty" validate:"omitempty,min=1,max=100"`
	StatusBadge     *string         `json:"status_badge,omitempty" validate:"omitempty,oneof=Upcoming Ongoing Completed Canceled"`
	AttachmentsMeta json.RawMessage `json:"attachments_meta,omitempty"`
	Timezone        *string         `json:"timezone,omitempty" validate:"omitempty,timezone"`
}

// ScheduleStatusRequest locks the badge to StatusBadge, or unlocks it when
// Locked is false.
type ScheduleStatusRequest struct {
	StatusBadge string `json:"status_badge,omitempty" validate:"omitempty,oneof=Upcoming Ongoing Completed Canceled"`
	Locked      *bool  `json:"locked,omitempty"`
}

type ScheduleListQuery struct {
	Status      string
	Search      string
	WithTrashed bool
	OnlyTrashed bool
}

type StudentRef struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"student_code"`
	Name string    `json:"name"`
}

type ScheduleRef struct {
	ID      uuid.UUID `json:"id"`
	Subject string    `json:"subject"`
	Topic   string    `json:"topic"`
}

type ScheduleResponse struct {
	ID              uuid.UUID          `json:"id"`
	TeacherID       uuid.UUID          `json:"teacher_id"`
	StudentID       *uuid.UUID         `json:"student_id"`
	Subject         string             `json:"subject"`
	Topic           string             `json:"topic"`
	LearningFocus   *string            `json:"learning_focus"`
	Description     *string            `json:"description"`
	StartTime       *time.Time         `json:"start_time"`
	EndTime         *time.Time         `json:"end_time"`
	Location        *string            `json:"location"`
	MeetingURL      *string            `json:"meeting_url"`
	MaxParticipants *int               `json:"max_participants"`
	AttachmentsMeta json.RawMessage    `json:"attachments_meta,omitempty"`
	StatusBadge     string             `json:"status_badge"`
	StatusColor     string             `json:"status_color"`
	StatusLockedAt  *time.Time         `json:"status_locked_at"`
	Students        []StudentRef       `json:"students"`
	Materials       []MaterialResponse `json:"materials"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	DeletedAt       *time.Time         `json:"deleted_at"`
}

type ScheduleListResponse struct {
	Schedules []ScheduleResponse `json:"data"`
	Summary   map[string]int     `json:"summary"`
}

// #### materials ####

type MaterialRequest struct {
	Title       string          `json:"title" validate:"required,max=150"`
	Description *string         `json:"description,omitempty"`
	Status      *string         `json:"status,omitempty" validate:"omitempty,max=30"`
	DownloadURL *string         `json:"download_url,omitempty" validate:"omitempty,max=255"`
	Visibility  *string         `json:"visibility,omitempty" validate:"omitempty,max=20"`
	Labels      json.RawMessage `json:"labels,omitempty"`
}

type MaterialResponse struct {
	ID          uuid.UUID       `json:"id"`
	ScheduleID  uuid.UUID       `json:"schedule_id"`
	UploadedBy  uuid.UUID       `json:"uploaded_by"`
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Status      string          `json:"status"`
	DownloadURL *string         `json:"download_url"`
	Visibility  string          `json:"visibility"`
	Labels      json.RawMessage `json:"labels,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// #### attendance ####

type AttendanceRequest struct {
	ScheduleID       uuid.UUID       `json:"schedule_id" validate:"required"`
	StudentID        uuid.UUID       `json:"student_id" validate:"required"`
	Status           string          `json:"status" validate:"required"`
	AttendanceDate   *string         `json:"attendance_date,omitempty"`
	RecordedAt       *string         `json:"recorded_at,omitempty"`
	Notes            *string         `json:"notes,omitempty"`
	SessionTopic     *string         `json:"session_topic,omitempty" validate:"omitempty,max=150"`
	SessionTime      *string         `json:"session_time,omitempty" validate:"omitempty,max=100"`
	RequiresFollowUp *bool           `json:"requires_follow_up,omitempty"`
	InputChannel     *string         `json:"input_channel,omitempty" validate:"omitempty,max=30"`
	Meta             json.RawMessage `json:"meta,omitempty"`
}

type AttendanceListQuery struct {
	ScheduleDate string
	ScheduleID   *uuid.UUID
	Status       string
	Search       string
	Subject      string
}

type AttendanceResponse struct {
	ID               uuid.UUID       `json:"id"`
	StudentID        uuid.UUID       `json:"student_id"`
	ScheduleID       *uuid.UUID      `json:"schedule_id"`
	RecordedBy       *uuid.UUID      `json:"recorded_by"`
	AttendanceDate   *string         `json:"attendance_date"`
	RecordedAt       *time.Time      `json:"recorded_at"`
	Status           *string         `json:"status"`
	SessionTopic     *string         `json:"session_topic"`
	SessionTime      *string         `json:"session_time"`
	Notes            *string         `json:"notes"`
	InputChannel     *string         `json:"input_channel"`
	RequiresFollowUp bool            `json:"requires_follow_up"`
	Meta             json.RawMessage `json:"meta,omitempty"`
	Student          *StudentRef     `json:"student,omitempty"`
	Schedule         *ScheduleRef    `json:"schedule,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type AttendanceSummary struct {
	Present int `json:"Present"`
	Sick    int `json:"Sick"`
	Excused int `json:"Excused"`
	Absent  int `json:"Absent"`
}

type ScheduleWindow struct {
	StartsAt      time.Time `json:"starts_at"`
	SecondsUntil  int64     `json:"seconds_until"`
	ScheduleLabel string    `json:"schedule_label"`
}

type AttendanceListResponse struct {
	Records        []AttendanceResponse `json:"data"`
	Summary        AttendanceSummary    `json:"summary"`
	Subjects       []string             `json:"subjects"`
	ScheduleDate   string               `json:"schedule_date"`
	ScheduleWindow *ScheduleWindow      `json:"schedule_window"`
}

// #### notes ####

type NoteRequest struct {
	StudentID       uuid.UUID       `json:"student_id" validate:"required"`
	ScheduleID      *uuid.UUID      `json:"schedule_id,omitempty"`
	Title           string          `json:"title" validate:"required,max=150"`
	Note            string          `json:"note" validate:"required"`
	Category        string          `json:"category" validate:"required,oneof=behavior academic communication general"`
	Visibility      *string         `json:"visibility,omitempty" validate:"omitempty,oneof=parent admin_only"`
	TagColor        *string         `json:"tag_color,omitempty" validate:"omitempty,len=7,hexcolor"`
	Sentiment       *string         `json:"sentiment,omitempty" validate:"omitempty,max=20"`
	IsFlagged       *bool           `json:"is_flagged,omitempty"`
	FollowUpActions *string         `json:"follow_up_actions,omitempty"`
	Attachments     json.RawMessage `json:"attachments,omitempty"`
	RecordedAt      *string         `json:"recorded_at,omitempty"`
}

type NoteResponse struct {
	ID              uuid.UUID       `json:"id"`
	StudentID       uuid.UUID       `json:"student_id"`
	ScheduleID      *uuid.UUID      `json:"schedule_id"`
	AttendanceID    *uuid.UUID      `json:"attendance_id"`
	TeacherID       uuid.UUID       `json:"teacher_id"`
	Title           string          `json:"title"`
	Note            string          `json:"note"`
	Category        string          `json:"category"`
	Visibility      string          `json:"visibility"`
	TagColor        *string         `json:"tag_color"`
	Sentiment       *string         `json:"sentiment"`
	IsFlagged       bool            `json:"is_flagged"`
	FollowUpActions *string         `json:"follow_up_actions"`
	Attachments     json.RawMessage `json:"attachments,omitempty"`
	RecordedAt      time.Time       `json:"recorded_at"`
	Student         *StudentRef     `json:"student,omitempty"`
	Schedule        *ScheduleRef    `json:"schedule,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// #### dashboards ####

type DashboardSchedule struct {
	ID          uuid.UUID  `json:"id"`
	Subject     string     `json:"subject"`
	Topic       string     `json:"topic"`
	StartTime   *time.Time `json:"start_time"`
	StartLabel  string     `json:"start_label"`
	StatusBadge string     `json:"status_badge"`
	StatusColor string     `json:"status_color"`
	Students    []string   `json:"students"`
}

type DashboardNote struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Student    string    `json:"student"`
	Category   string    `json:"category"`
	TagColor   *string   `json:"tag_color"`
	RecordedAt time.Time `json:"recorded_at"`
}

type TeacherDashboardResponse struct {
	UpcomingSchedules []DashboardSchedule `json:"upcoming_schedules"`
	AttendanceStats   AttendanceSummary   `json:"attendance_stats"`
	RecentNotes       []DashboardNote     `json:"recent_notes"`
}

type ParentSummary struct {
	AttendanceRate    float64            `json:"attendance_rate"`
	SessionsThisMonth int                `json:"sessions_this_month"`
	NotesThisMonth    int                `json:"notes_this_month"`
	NextSchedule      *DashboardSchedule `json:"next_schedule"`
}

type ParentDashboardResponse struct {
	Student     StudentResponse      `json:"student"`
	Summary     ParentSummary        `json:"summary"`
	Notes       []NoteResponse       `json:"notes"`
	Schedules   []DashboardSchedule  `json:"schedules"`
	Attendances []AttendanceResponse `json:"attendances"`
}

type ParentSchedulesResponse struct {
	Student   StudentResponse     `json:"student"`
	Schedules []DashboardSchedule `json:"data"`
}

type ParentNotesResponse struct {
	Student StudentResponse `json:"student"`
	Notes   []NoteResponse  `json:"data"`
}

// #### students ####

type StudentRequest struct {
	Code                *string    `json:"student_code,omitempty" validate:"omitempty,max=20"`
	Name                string     `json:"name" validate:"required,max=150"`
	EducationLevel      *string    `json:"education_level,omitempty" validate:"omitempty,max=50"`
	ParentID            *uuid.UUID `json:"parent_id,omitempty"`
	CreateParentAccount bool       `json:"create_parent_account,omitempty"`
	NewParentName       *string    `json:"new_parent_name,omitempty" validate:"required_if=CreateParentAccount true,omitempty,max=150"`
	NewParentEmail      *string    `json:"new_parent_email,omitempty" validate:"required_if=CreateParentAccount true,omitempty,email,max=150"`
	NewParentPhone      *string    `json:"new_parent_phone,omitempty" validate:"omitempty,max=30"`
	Status              string     `json:"status" validate:"required,oneof=active inactive"`
	DateOfBirth         *string    `json:"date_of_birth,omitempty"`
	SchoolName          *string    `json:"school_name,omitempty" validate:"omitempty,max=150"`
	Address             *string    `json:"address,omitempty"`
}

type StudentListQuery struct {
	Search      string
	WithTrashed bool
	OnlyTrashed bool
}

type StudentResponse struct {
	ID             uuid.UUID  `json:"id"`
	Code           string     `json:"student_code"`
	Name           string     `json:"name"`
	EducationLevel *string    `json:"education_level"`
	ParentID       *uuid.UUID `json:"parent_id"`
	Status         string     `json:"status"`
	DateOfBirth    *string    `json:"date_of_birth"`
	SchoolName     *string    `json:"school_name"`
	Address        *string    `json:"address"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `json:"deleted_at"`
}

type ParentAccount struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type StudentSaveResponse struct {
	Student       StudentResponse `json:"student"`
	ParentAccount *ParentAccount  `json:"parent_account,omitempty"`
}

type StudentStats struct {
	Total         int    `json:"total"`
	Active        int    `json:"active"`
	Inactive      int    `json:"inactive"`
	MostEducation string `json:"most_education"`
}

type StudentListResponse struct {
	Students []StudentResponse `json:"data"`
	Stats    StudentStats      `json:"stats"`
}

// #### users ####

type UserRequest struct {
	Name     string  `json:"name" validate:"required,max=150"`
	Email    string  `json:"email" validate:"required,email,max=150"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Role     string  `json:"role" validate:"required,oneof=admin teacher parent"`
	IsActive *bool   `json:"is_active,omitempty"`
	// Password is required on create. On update an empty value keeps the
	// stored hash.
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
}

type UserListQuery struct {
	Search string
	Role   string
}

type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       *string   `json:"phone"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"is_active"`
	StatusLabel string    `json:"status_label"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UserStats struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Staff   int `json:"staff"`
	Parents int `json:"parents"`
}

type UserListResponse struct {
	Users []UserResponse `json:"data"`
	Stats UserStats      `json:"stats"`
}

// #### library ####

type BookRequest struct {
	Code           *string `json:"code,omitempty" validate:"omitempty,max=30"`
	Title          string  `json:"title" validate:"required,max=255"`
	Author         *string `json:"author,omitempty" validate:"omitempty,max=150"`
	Category       *string `json:"category,omitempty" validate:"omitempty,max=100"`
	Status         string  `json:"status" validate:"required,oneof=available maintenance lost"`
	PublishedYear  *int    `json:"published_year,omitempty" validate:"omitnil,min=1000,max=9999"`
	TotalPages     *int    `json:"total_pages,omitempty" validate:"omitnil,min=1"`
	TotalStock     int     `json:"total_stock" validate:"required,min=1"`
	AvailableStock *int    `json:"available_stock,omitempty" validate:"omitnil,min=0"`
	Description    *string `json:"description,omitempty"`
}

type BookListQuery struct {
	Search string
	Status string
	// Lendable keeps books with a copy on the shelf, for the borrow form.
	Lendable bool
}

type BorrowerRef struct {
	UserID *uuid.UUID `json:"user_id"`
	Name   *string    `json:"name"`
	Email  *string    `json:"email"`
}

type BookResponse struct {
	ID             uuid.UUID     `json:"id"`
	Code           *string       `json:"code"`
	Title          string        `json:"title"`
	Author         *string       `json:"author"`
	Category       *string       `json:"category"`
	Status         string        `json:"status"`
	StatusLabel    string        `json:"status_label"`
	PublishedYear  *int          `json:"published_year"`
	TotalPages     *int          `json:"total_pages"`
	TotalStock     int           `json:"total_stock"`
	AvailableStock int           `json:"available_stock"`
	Description    *string       `json:"description"`
	LoansCount     int           `json:"loans_count"`
	Borrowers      []BorrowerRef `json:"active_borrowers"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

type BookStats struct {
	Total       int `json:"total"`
	Available   int `json:"available"`
	Borrowed    int `json:"borrowed"`
	Maintenance int `json:"maintenance"`
	Lost        int `json:"lost"`
}

type BookListResponse struct {
	Books []BookResponse `json:"data"`
	Stats BookStats      `json:"stats"`
}

// BorrowRequest names either a registered user or a walk-in borrower.
type BorrowRequest struct {
	BookID        uuid.UUID  `json:"book_id" validate:"required"`
	UserID        *uuid.UUID `json:"user_id,omitempty" validate:"required_without=BorrowerName"`
	BorrowerName  *string    `json:"borrower_name,omitempty" validate:"required_without=UserID,omitempty,max=150"`
	BorrowerEmail *string    `json:"borrower_email,omitempty" validate:"omitempty,email,max=255"`
	BorrowedAt    string     `json:"borrowed_at" validate:"required"`
	DueAt         *string    `json:"due_at,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

// LoanUpdateRequest closes a loan (returned) or flags it as overdue.
type LoanUpdateRequest struct {
	Status     string  `json:"status" validate:"required,oneof=returned overdue"`
	ReturnedAt *string `json:"returned_at,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

type LoanListQuery struct {
	Search string
	Status string
}

type LoanResponse struct {
	ID          uuid.UUID   `json:"id"`
	BookID      uuid.UUID   `json:"book_id"`
	BookTitle   string      `json:"book_title"`
	BookCode    *string     `json:"book_code"`
	Borrower    BorrowerRef `json:"borrower"`
	IssuedBy    *uuid.UUID  `json:"issued_by"`
	BorrowedAt  string      `json:"borrowed_at"`
	DueAt       *string     `json:"due_at"`
	ReturnedAt  *string     `json:"returned_at"`
	Status      string      `json:"status"`
	StatusLabel string      `json:"status_label"`
	PastDue     bool        `json:"past_due"`
	Notes       *string     `json:"notes"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type LoanStats struct {
	Active   int `json:"active"`
	Overdue  int `json:"overdue"`
	Returned int `json:"returned"`
}

type LoanListResponse struct {
	Loans []LoanResponse `json:"data"`
	Stats LoanStats      `json:"stats"`
}

// #### news ####

type NewsRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Subtitle    *string `json:"subtitle,omitempty" validate:"omitempty,max=255"`
	Body        string  `json:"body" validate:"required"`
	EventDate   *string `json:"event_date,omitempty"`
	Type        string  `json:"type" validate:"required,oneof=news activity gallery"`
	IsPublished *bool   `json:"is_published,omitempty"`
}

type NewsListQuery struct {
	Search      string
	WithTrashed bool
	OnlyTrashed bool
}

type NewsResponse struct {
	ID          uuid.UUID  `json:"id"`
	AdminID     uuid.UUID  `json:"admin_id"`
	Title       string     `json:"title"`
	Subtitle    *string    `json:"subtitle"`
	Slug        string     `json:"slug"`
	Excerpt     *string    `json:"excerpt"`
	Body        string     `json:"body"`
	Type        string     `json:"type"`
	EventDate   *string    `json:"event_date"`
	DisplayDate string     `json:"display_date"`
	IsPublished bool       `json:"is_published"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at"`
}

type NewsStats struct {
	Total     int `json:"total"`
	Published int `json:"published"`
}

type NewsListResponse struct {
	News  []NewsResponse `json:"data"`
	Stats NewsStats      `json:"stats"`
}

// #### admin dashboard ####

type CountPair struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

type AdminStats struct {
	Users          CountPair `json:"users"`
	Students       CountPair `json:"students"`
	News           NewsStats `json:"news"`
	Books          int       `json:"books"`
	BookCategories int       `json:"book_categories"`
	Loans          LoanStats `json:"loans"`
}

type Growth struct {
	Labels   []string `json:"labels"`
	Users    []int    `json:"users"`
	Students []int    `json:"students"`
}

type AdminDashboardResponse struct {
	Stats          AdminStats        `json:"stats"`
	RecentNews     []NewsResponse    `json:"recent_news"`
	RecentStudents []StudentResponse `json:"recent_students"`
	Growth         Growth            `json:"growth"`
}

package announcement

import (
	"time"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
)

// Audiences
const (
	AudienceAll      = "all"
	AudienceStudents = "students"
	AudienceTeachers = "teachers"
)

const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

type Announcement struct {
	crud.Base
	Title       string    `json:"title" db:"title"`
	Body        string    `json:"body" db:"body"`
	Audience    string    `json:"audience" db:"audience"`
	Priority    string    `json:"priority" db:"priority"`
	ExpiresAt   core.Date `json:"expires_at" db:"expires_at"`
	Notify      bool      `json:"notify" db:"notify"`
	AuthorID    string    `json:"author_id" db:"author_id"`
	AuthorName  string    `json:"author_name" db:"author_name"`
	PublishedAt time.Time `json:"published_at" db:"published_at"`
}

// NewAnnouncement contains information needed to create a new Announcement.
type NewAnnouncement struct {
	Title     string    `json:"title" form:"title" validate:"required,max=200"`
	Body      string    `json:"body" form:"body" validate:"required"`
	Audience  string    `json:"audience" form:"audience" validate:"required,oneof=all students teachers"`
	Priority  string    `json:"priority" form:"priority" validate:"omitempty,oneof=low normal high"`
	ExpiresAt core.Date `json:"expires_at" form:"expires_at"`
	Notify    bool      `json:"notify" form:"notify"`
}

func (na *NewAnnouncement) Clean() {
	na.Title = core.CleanString(na.Title)
	na.Body = core.CleanString(na.Body)
	na.Audience = core.CleanString(na.Audience, true /* lower */)
	na.Priority = core.CleanString(na.Priority, true /* lower */)
}

type UpdateAnnouncement NewAnnouncement

func (ua *UpdateAnnouncement) Clean() { (*NewAnnouncement)(ua).Clean() }

package announcement

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
	"github.com/trezcool/lmsadmin/core/perm"
)

var nowFunc = time.Now // mockable

// RecipientsFunc lists the addresses an announcement for audience is mailed to.
type RecipientsFunc func(ctx context.Context, audience string) ([]mail.Address, error)

type Service struct {
	*crud.Entity[Announcement]
	mailSvc    core.EmailService
	recipients RecipientsFunc
	logger     core.Logger
}

var _ crud.Service[Announcement, NewAnnouncement, UpdateAnnouncement] = (*Service)(nil) // interface compliance check

func NewService(
	store crud.Store[Announcement],
	mailSvc core.EmailService,
	recipients RecipientsFunc,
	validate *core.Validator,
	logger core.Logger,
) *Service {
	e := &crud.Entity[Announcement]{
		Name:         perm.Announcements,
		Label:        "Announcement",
		Store:        store,
		Validator:    validate,
		SearchFields: []string{"title", "body", "author_name"},
		SortFields:   []string{"title", "audience", "priority", "published_at", "expires_at", "author_name", "created_at"},
		FilterFields: []string{"audience", "priority", "author_id"},
		DateField:    "expires_at",
		DefaultOrder: []core.DBOrdering{{Field: "published_at", Ascending: false}},
		Scope:        audienceScope,
		OptionLabel:  func(a Announcement) string { return a.Title },
	}
	e.SetSchema(NewAnnouncement{}, UpdateAnnouncement{})
	return &Service{Entity: e, mailSvc: mailSvc, recipients: recipients, logger: logger}
}

// audienceScope shows students only what is addressed to them.
func audienceScope(c crud.Caller) []crud.Filter {
	if c.Caps().IsStudent() {
		return []crud.Filter{crud.In("audience", AudienceAll, AudienceStudents)}
	}
	return nil
}

func build(in NewAnnouncement) func(a *Announcement) error {
	return func(a *Announcement) error {
		a.Title = in.Title
		a.Body = in.Body
		a.Audience = in.Audience
		a.Priority = in.Priority
		if a.Priority == "" {
			a.Priority = PriorityNormal
		}
		a.ExpiresAt = in.ExpiresAt
		a.Notify = in.Notify
		return nil
	}
}

func checkExpiry(_ context.Context, a Announcement) error {
	if !a.ExpiresAt.IsZero() && a.ExpiresAt.EndOfDay().Before(a.PublishedAt) {
		return core.NewValidationError(nil, core.FieldError{Field: "expires_at", Error: "expires at cannot be before the publication date"})
	}
	return nil
}

// Create publishes the announcement as the caller, and mails it when asked to.
func (svc *Service) Create(ctx context.Context, c crud.Caller, na NewAnnouncement) (Announcement, error) {
	na.Clean()
	a, err := svc.Entity.Create(ctx, c, crud.Mutation[Announcement]{
		Input: na,
		Build: func(a *Announcement) error {
			_ = build(na)(a)
			a.AuthorID = c.ID
			a.AuthorName = c.Name()
			a.PublishedAt = nowFunc().UTC()
			return nil
		},
		Check: checkExpiry,
	})
	if err != nil {
		return a, err
	}
	if a.Notify {
		svc.notify(ctx, a)
	}
	return a, nil
}

func (svc *Service) Update(ctx context.Context, c crud.Caller, id string, ua UpdateAnnouncement) (Announcement, error) {
	ua.Clean()
	return svc.Entity.Update(ctx, c, id, crud.Mutation[Announcement]{
		Input: NewAnnouncement(ua),
		Build: build(NewAnnouncement(ua)),
		Check: checkExpiry,
	})
}

// notify mails the announcement to its audience. Failures are logged, the announcement stays published.
func (svc *Service) notify(ctx context.Context, a Announcement) {
	if svc.recipients == nil || svc.mailSvc == nil {
		return
	}
	to, err := svc.recipients(ctx, a.Audience)
	if err != nil {
		svc.logger.Error(errors.Wrap(err, "listing announcement recipients").Error())
		return
	}
	if len(to) == 0 {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		Bcc:          to,
		Subject:      a.Title,
		TemplateName: "announcement",
		TemplateData: map[string]string{
			"Title":      a.Title,
			"AuthorName": a.AuthorName,
			"Body":       a.Body,
		},
	})
}

// Purge deletes the announcements that expired before today.
func (svc *Service) Purge(ctx context.Context) (int, error) {
	yesterday := core.DateOf(nowFunc().UTC()).Time().AddDate(0, 0, -1)
	n, err := svc.Store.DeleteWhere(ctx, crud.Lte("expires_at", core.DateOf(yesterday)))
	if err != nil {
		return 0, errors.Wrap(err, "purging expired announcements")
	}
	return n, nil
}

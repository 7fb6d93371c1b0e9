package submission

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/activity"
	"github.com/trezcool/lmsadmin/core/crud"
	"github.com/trezcool/lmsadmin/core/perm"
)

var nowFunc = time.Now // mockable

type Service struct {
	*crud.Entity[Submission]
	activities crud.Store[activity.Activity]
	students   crud.Checker
}

var _ crud.Service[Submission, NewSubmission, UpdateSubmission] = (*Service)(nil) // interface compliance check

func NewService(store crud.Store[Submission], activities crud.Store[activity.Activity], students crud.Checker, validate *core.Validator) *Service {
	e := &crud.Entity[Submission]{
		Name:         perm.Submissions,
		Label:        "Submission",
		Store:        store,
		Validator:    validate,
		SearchFields: []string{"student_name", "activity_title", "content", "feedback"},
		SortFields:   []string{"student_name", "activity_title", "status", "submitted_at", "score", "created_at"},
		FilterFields: []string{"activity_id", "student_id", "status"},
		DateField:    "submitted_at",
		DefaultOrder: []core.DBOrdering{{Field: "submitted_at", Ascending: false}},
		OwnerField:   "student_id",
		OptionLabel:  func(s Submission) string { return s.StudentName + " - " + s.ActivityTitle },
	}
	e.SetSchema(NewSubmission{}, UpdateSubmission{})
	return &Service{Entity: e, activities: activities, students: students}
}

// IsLate reports whether a submission made at t misses the due date of a.
func IsLate(a activity.Activity, t time.Time) bool {
	return !a.DueDate.IsZero() && t.After(a.DueDate.EndOfDay())
}

// Create records the submission as late when it comes after the activity's due date.
// Students always submit as themselves; other callers must name the student.
func (svc *Service) Create(ctx context.Context, c crud.Caller, ns NewSubmission) (Submission, error) {
	ns.Clean()
	if c.Caps().IsStudent() {
		ns.StudentID = c.ProfileID
	}
	return svc.Entity.Create(ctx, c, crud.Mutation[Submission]{
		Input: ns,
		Refs: []crud.Ref{
			{Field: "activity_id", ID: ns.ActivityID, In: svc.activities},
			{Field: "student_id", ID: ns.StudentID, In: svc.students},
		},
		Build: func(s *Submission) error {
			if ns.StudentID == "" {
				return core.NewValidationError(nil, core.FieldError{Field: "student_id", Error: "student is required"})
			}
			a, err := svc.activities.Get(ctx, ns.ActivityID)
			if err != nil {
				return errors.Wrap(err, "getting activity")
			}
			s.ActivityID = ns.ActivityID
			s.StudentID = ns.StudentID
			s.Content = ns.Content
			s.File = ns.File
			s.SubmittedAt = nowFunc().UTC()
			s.Status = StatusSubmitted
			if IsLate(a, s.SubmittedAt) {
				s.Status = StatusLate
			}
			return nil
		},
		Check: func(ctx context.Context, s Submission) error {
			exists, err := svc.Store.Exists(ctx, crud.Eq("activity_id", s.ActivityID), crud.Eq("student_id", s.StudentID))
			if err != nil {
				return errors.Wrap(err, "checking submission uniqueness")
			}
			if exists {
				return core.NewConflictError("this student already submitted this activity")
			}
			return nil
		},
	})
}

// Update grades the submission. The score cannot exceed the activity's max score.
func (svc *Service) Update(ctx context.Context, c crud.Caller, id string, us UpdateSubmission) (Submission, error) {
	us.Clean()
	return svc.Entity.Update(ctx, c, id, crud.Mutation[Submission]{
		Input: us,
		Build: func(s *Submission) error {
			if us.Content != "" {
				s.Content = us.Content
			}
			s.Score = us.Score
			s.Feedback = us.Feedback
			if s.Score != nil {
				s.Status = StatusGraded
			} else if s.Status == StatusGraded {
				a, err := svc.activities.Get(ctx, s.ActivityID)
				if err != nil {
					return errors.Wrap(err, "getting activity")
				}
				s.Status = StatusSubmitted
				if IsLate(a, s.SubmittedAt) {
					s.Status = StatusLate
				}
			}
			return nil
		},
		Check: func(ctx context.Context, s Submission) error {
			if s.Score == nil {
				return nil
			}
			a, err := svc.activities.Get(ctx, s.ActivityID)
			if err != nil {
				return errors.Wrap(err, "getting activity")
			}
			if *s.Score > a.MaxScore {
				msg := fmt.Sprintf("score cannot exceed the max score of %g", a.MaxScore)
				return core.NewValidationError(errors.New(msg), core.FieldError{Field: "score", Error: msg})
			}
			return nil
		},
	})
}

// SetFile stores the path of an uploaded file on the submission.
// Students may attach files to their own submissions.
func (svc *Service) SetFile(ctx context.Context, c crud.Caller, id, path string) (Submission, error) {
	return svc.Attach(ctx, c, id, func(s *Submission) { s.File = path })
}

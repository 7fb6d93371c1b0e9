// Package school assembles the entity services of the application over one set of stores.
package school

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/activity"
	"github.com/trezcool/lmsadmin/core/announcement"
	"github.com/trezcool/lmsadmin/core/attendance"
	"github.com/trezcool/lmsadmin/core/crud"
	"github.com/trezcool/lmsadmin/core/exam"
	"github.com/trezcool/lmsadmin/core/grade"
	"github.com/trezcool/lmsadmin/core/gradingperiod"
	"github.com/trezcool/lmsadmin/core/intervention"
	"github.com/trezcool/lmsadmin/core/lesson"
	"github.com/trezcool/lmsadmin/core/question"
	"github.com/trezcool/lmsadmin/core/quiz"
	"github.com/trezcool/lmsadmin/core/semester"
	"github.com/trezcool/lmsadmin/core/student"
	"github.com/trezcool/lmsadmin/core/subject"
	"github.com/trezcool/lmsadmin/core/submission"
	"github.com/trezcool/lmsadmin/core/teacher"
	"github.com/trezcool/lmsadmin/core/user"
)

// Stores is one persistence gateway per entity.
type Stores struct {
	Users          user.Repository
	Subjects       crud.Store[subject.Subject]
	Semesters      crud.Store[semester.Semester]
	GradingPeriods crud.Store[gradingperiod.GradingPeriod]
	Students       crud.Store[student.Student]
	Teachers       crud.Store[teacher.Teacher]
	Activities     crud.Store[activity.Activity]
	Quizzes        crud.Store[quiz.Quiz]
	Exams          crud.Store[exam.Exam]
	Questions      crud.Store[question.Question]
	Grades         crud.Store[grade.Grade]
	Lessons        crud.Store[lesson.Lesson]
	Interventions  crud.Store[intervention.Intervention]
	Announcements  crud.Store[announcement.Announcement]
	Attendance     crud.Store[attendance.Attendance]
	Submissions    crud.Store[submission.Submission]
}

type Services struct {
	Users          *user.Service
	Subjects       *subject.Service
	Semesters      *semester.Service
	GradingPeriods *gradingperiod.Service
	Students       *student.Service
	Teachers       *teacher.Service
	Activities     *activity.Service
	Quizzes        *quiz.Service
	Exams          *exam.Service
	Questions      *question.Service
	Grades         *grade.Service
	Lessons        *lesson.Service
	Interventions  *intervention.Service
	Announcements  *announcement.Service
	Attendance     *attendance.Service
	Submissions    *submission.Service
}

func NewServices(
	stores Stores,
	validate *core.Validator,
	mailSvc core.EmailService,
	conf *core.Config,
	logger core.Logger,
) *Services {
	svcs := &Services{
		Users:          user.NewService(stores.Users, validate, mailSvc, conf),
		Subjects:       subject.NewService(stores.Subjects, validate),
		Semesters:      semester.NewService(stores.Semesters, validate),
		GradingPeriods: gradingperiod.NewService(stores.GradingPeriods, stores.Semesters, validate),
		Students:       student.NewService(stores.Students, validate),
		Teachers:       teacher.NewService(stores.Teachers, validate),
		Activities:     activity.NewService(stores.Activities, stores.Subjects, stores.GradingPeriods, validate),
		Questions:      question.NewService(stores.Questions, validate),
		Grades: grade.NewService(
			stores.Grades, stores.Students, stores.Subjects, stores.Semesters, stores.GradingPeriods, validate,
		),
		Lessons: lesson.NewService(stores.Lessons, stores.Subjects, stores.GradingPeriods, stores.Teachers, validate),
		Interventions: intervention.NewService(
			stores.Interventions, stores.Students, stores.Subjects, stores.GradingPeriods, stores.Teachers, validate,
		),
		Attendance:  attendance.NewService(stores.Attendance, stores.Students, stores.Subjects, validate),
		Submissions: submission.NewService(stores.Submissions, stores.Activities, stores.Students, validate),
	}
	svcs.Quizzes = quiz.NewService(stores.Quizzes, svcs.Questions, stores.Subjects, stores.GradingPeriods, validate)
	svcs.Exams = exam.NewService(stores.Exams, svcs.Questions, stores.Subjects, stores.GradingPeriods, validate)
	svcs.Announcements = announcement.NewService(stores.Announcements, mailSvc, svcs.recipients, validate, logger)

	svcs.Activities.BeforeDelete = func(ctx context.Context, a activity.Activity) error {
		_, err := stores.Submissions.DeleteWhere(ctx, crud.Eq("activity_id", a.ID))
		return err
	}
	svcs.Students.BeforeDelete = func(ctx context.Context, s student.Student) error {
		for _, st := range []interface {
			DeleteWhere(ctx context.Context, filters ...crud.Filter) (int, error)
		}{stores.Grades, stores.Attendance, stores.Submissions, stores.Interventions} {
			if _, err := st.DeleteWhere(ctx, crud.Eq("student_id", s.ID)); err != nil {
				return err
			}
		}
		return nil
	}
	svcs.Subjects.BeforeDelete = func(ctx context.Context, s subject.Subject) error {
		return notInUse(ctx, "subject", crud.Eq("subject_id", s.ID),
			stores.Activities, stores.Quizzes, stores.Exams, stores.Grades, stores.Lessons,
			stores.Interventions, stores.Attendance)
	}
	svcs.Semesters.BeforeDelete = func(ctx context.Context, s semester.Semester) error {
		return notInUse(ctx, "semester", crud.Eq("semester_id", s.ID), stores.GradingPeriods, stores.Grades)
	}
	svcs.GradingPeriods.BeforeDelete = func(ctx context.Context, gp gradingperiod.GradingPeriod) error {
		return notInUse(ctx, "grading period", crud.Eq("grading_period_id", gp.ID),
			stores.Activities, stores.Quizzes, stores.Exams, stores.Grades)
	}
	svcs.Teachers.BeforeDelete = func(ctx context.Context, t teacher.Teacher) error {
		return notInUse(ctx, "teacher", crud.Eq("teacher_id", t.ID), stores.Lessons, stores.Interventions)
	}
	return svcs
}

// notInUse returns a ConflictError when a row of one of the referrers matches ref.
func notInUse(ctx context.Context, label string, ref crud.Filter, referrers ...crud.Checker) error {
	for _, r := range referrers {
		used, err := r.Exists(ctx, ref)
		if err != nil {
			return err
		}
		if used {
			return core.NewConflictError("this %s is still in use and cannot be deleted", label)
		}
	}
	return nil
}

func (svcs *Services) recipients(ctx context.Context, audience string) ([]mail.Address, error) {
	var to []mail.Address
	if audience == announcement.AudienceAll || audience == announcement.AudienceStudents {
		addrs, err := svcs.Students.Recipients(ctx)
		if err != nil {
			return nil, err
		}
		to = append(to, addrs...)
	}
	if audience == announcement.AudienceAll || audience == announcement.AudienceTeachers {
		addrs, err := svcs.Teachers.Recipients(ctx)
		if err != nil {
			return nil, err
		}
		to = append(to, addrs...)
	}
	return to, nil
}

// Counter counts the records of one entity visible to a caller.
type Counter interface {
	EntityName() string
	EntityLabel() string
	Count(ctx context.Context, c crud.Caller) (int, error)
}

// Counters returns the counters of every entity, in menu order.
func (svcs *Services) Counters() []Counter {
	return []Counter{
		svcs.Subjects, svcs.Semesters, svcs.GradingPeriods, svcs.Students, svcs.Teachers, svcs.Activities,
		svcs.Quizzes, svcs.Exams, svcs.Grades, svcs.Lessons, svcs.Interventions, svcs.Announcements,
		svcs.Attendance, svcs.Submissions,
	}
}

// Dashboard counts the records of every entity the caller may view.
func (svcs *Services) Dashboard(ctx context.Context, c crud.Caller) (map[string]int, error) {
	if !c.IsAuthenticated() {
		return nil, core.ErrUnauthenticated
	}
	caps := c.Caps()
	counts := make(map[string]int)
	for _, counter := range svcs.Counters() {
		if !caps.CanView(counter.EntityName()) {
			continue
		}
		n, err := counter.Count(ctx, c)
		if err != nil {
			return nil, errors.Wrapf(err, "counting %s", counter.EntityName())
		}
		counts[counter.EntityName()] = n
	}
	return counts, nil
}

package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/activity"
	"github.com/trezcool/lmsadmin/core/exam"
	"github.com/trezcool/lmsadmin/core/gradingperiod"
	"github.com/trezcool/lmsadmin/core/quiz"
	"github.com/trezcool/lmsadmin/core/semester"
	"github.com/trezcool/lmsadmin/core/student"
	"github.com/trezcool/lmsadmin/core/subject"
	"github.com/trezcool/lmsadmin/core/teacher"
)

// Fixtures is a minimal school: one subject, one semester with a grading period, one teacher
// and two students.
type Fixtures struct {
	Subject       subject.Subject
	Semester      semester.Semester
	GradingPeriod gradingperiod.GradingPeriod
	Teacher       teacher.Teacher
	Students      []student.Student
}

func check(t *testing.T, what string, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("seeding %s failed: %+v", what, err)
	}
}

func (env *Env) Seed(t *testing.T) Fixtures {
	t.Helper()
	ctx := context.Background()
	admin := Admin()
	svcs := env.Services
	year := time.Now().Year()

	var fx Fixtures
	var err error
	fx.Subject, err = svcs.Subjects.Create(ctx, admin, subject.NewSubject{Code: "MATH101", Name: "Mathematics"})
	check(t, "subject", err)

	fx.Semester, err = svcs.Semesters.Create(ctx, admin, semester.NewSemester{
		Name:       "First Semester",
		SchoolYear: "2024-2025",
		StartDate:  core.NewDate(year, time.January, 1),
		EndDate:    core.NewDate(year, time.December, 31),
		Status:     semester.StatusActive,
	})
	check(t, "semester", err)

	fx.GradingPeriod, err = svcs.GradingPeriods.Create(ctx, admin, gradingperiod.NewGradingPeriod{
		Name:       "Q1",
		SemesterID: fx.Semester.ID,
		StartDate:  core.NewDate(year, time.January, 1),
		EndDate:    core.NewDate(year, time.June, 30),
	})
	check(t, "grading period", err)

	fx.Teacher, err = svcs.Teachers.Create(ctx, admin, teacher.NewTeacher{
		EmployeeNumber: "T-001",
		FirstName:      "Grace",
		LastName:       "Hopper",
		Email:          "grace@school.test",
	})
	check(t, "teacher", err)

	for _, ns := range []student.NewStudent{
		{StudentNumber: "S-001", FirstName: "Ada", LastName: "Lovelace", Email: "ada@school.test"},
		{StudentNumber: "S-002", FirstName: "Alan", LastName: "Turing", Email: "alan@school.test"},
	} {
		s, err := svcs.Students.Create(ctx, admin, ns)
		check(t, "student", err)
		fx.Students = append(fx.Students, s)
	}
	return fx
}

// Activity creates an activity due on due.
func (env *Env) Activity(t *testing.T, fx Fixtures, title string, due core.Date, maxScore float64) activity.Activity {
	t.Helper()
	a, err := env.Services.Activities.Create(context.Background(), Admin(), activity.NewActivity{
		Title:           title,
		SubjectID:       fx.Subject.ID,
		GradingPeriodID: fx.GradingPeriod.ID,
		DueDate:         due,
		MaxScore:        maxScore,
	})
	check(t, "activity", err)
	return a
}

func (env *Env) Quiz(t *testing.T, fx Fixtures, title string) quiz.Quiz {
	t.Helper()
	q, err := env.Services.Quizzes.Create(context.Background(), Admin(), quiz.NewQuiz{
		Title:           title,
		SubjectID:       fx.Subject.ID,
		GradingPeriodID: fx.GradingPeriod.ID,
		Status:          quiz.StatusPublished,
	})
	check(t, "quiz", err)
	return q
}

func (env *Env) Exam(t *testing.T, fx Fixtures, title string) exam.Exam {
	t.Helper()
	ex, err := env.Services.Exams.Create(context.Background(), Admin(), exam.NewExam{
		Title:           title,
		SubjectID:       fx.Subject.ID,
		GradingPeriodID: fx.GradingPeriod.ID,
		ExamDate:        core.NewDate(time.Now().Year(), time.March, 15),
		Duration:        90,
		PassingScore:    75,
	})
	check(t, "exam", err)
	return ex
}

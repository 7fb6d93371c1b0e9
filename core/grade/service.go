package grade

import (
	"context"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
	"github.com/trezcool/lmsadmin/core/perm"
)

type Service struct {
	*crud.Entity[Grade]
	students  crud.Checker
	subjects  crud.Checker
	semesters crud.Checker
	periods   crud.Checker
}

var _ crud.Service[Grade, NewGrade, UpdateGrade] = (*Service)(nil) // interface compliance check

func NewService(store crud.Store[Grade], students, subjects, semesters, periods crud.Checker, validate *core.Validator) *Service {
	e := &crud.Entity[Grade]{
		Name:         perm.Grades,
		Label:        "Grade",
		Store:        store,
		Validator:    validate,
		SearchFields: []string{"student_name", "subject_name", "remarks"},
		SortFields: []string{
			"student_name", "subject_name", "grading_period_name", "activity_score", "quiz_score", "exam_score",
			"final_grade", "status", "created_at",
		},
		FilterFields: []string{"student_id", "subject_id", "semester_id", "grading_period_id", "status"},
		DefaultOrder: []core.DBOrdering{{Field: "student_name", Ascending: true}, {Field: "subject_name", Ascending: true}},
		OwnerField:   "student_id",
		OptionLabel:  func(g Grade) string { return g.StudentName + " - " + g.SubjectName },
	}
	e.SetSchema(NewGrade{}, UpdateGrade{})
	return &Service{Entity: e, students: students, subjects: subjects, semesters: semesters, periods: periods}
}

func (svc *Service) unique(ctx context.Context, id string, g Grade) error {
	filters := []crud.Filter{
		crud.Eq("student_id", g.StudentID),
		crud.Eq("subject_id", g.SubjectID),
		crud.Eq("grading_period_id", g.GradingPeriodID),
	}
	if id != "" {
		filters = append(filters, crud.Ne("id", id))
	}
	exists, err := svc.Store.Exists(ctx, filters...)
	if err != nil {
		return err
	}
	if exists {
		return core.NewConflictError("a grade already exists for this student, subject and grading period")
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, c crud.Caller, ng NewGrade) (Grade, error) {
	ng.Clean()
	return svc.Entity.Create(ctx, c, crud.Mutation[Grade]{
		Input: ng,
		Refs: []crud.Ref{
			{Field: "student_id", ID: ng.StudentID, In: svc.students},
			{Field: "subject_id", ID: ng.SubjectID, In: svc.subjects},
			{Field: "semester_id", ID: ng.SemesterID, In: svc.semesters},
			{Field: "grading_period_id", ID: ng.GradingPeriodID, In: svc.periods},
		},
		Build: func(g *Grade) error {
			g.StudentID = ng.StudentID
			g.SubjectID = ng.SubjectID
			g.SemesterID = ng.SemesterID
			g.GradingPeriodID = ng.GradingPeriodID
			setScores(g, ng.ActivityScore, ng.QuizScore, ng.ExamScore)
			g.Remarks = ng.Remarks
			return nil
		},
		Check: func(ctx context.Context, g Grade) error {
			return svc.unique(ctx, "", g)
		},
	})
}

// Update recomputes the final grade. Subject, semester and grading period keep their stored values.
func (svc *Service) Update(ctx context.Context, c crud.Caller, id string, ug UpdateGrade) (Grade, error) {
	ug.Clean()
	return svc.Entity.Update(ctx, c, id, crud.Mutation[Grade]{
		Input: ug,
		Refs:  []crud.Ref{{Field: "student_id", ID: ug.StudentID, In: svc.students}},
		Build: func(g *Grade) error {
			g.StudentID = ug.StudentID
			setScores(g, ug.ActivityScore, ug.QuizScore, ug.ExamScore)
			g.Remarks = ug.Remarks
			return nil
		},
		Check: func(ctx context.Context, g Grade) error {
			return svc.unique(ctx, id, g)
		},
	})
}

func setScores(g *Grade, activity, quiz, exam *float64) {
	g.ActivityScore = activity
	g.QuizScore = quiz
	g.ExamScore = exam
	res := Compute(activity, quiz, exam)
	g.FinalGrade = res.FinalGrade
	g.Status = res.Status
}

// ComputeInput carries the scores of a live preview.
type ComputeInput struct {
	ActivityScore *float64 `json:"activity_score" query:"activity_score" validate:"omitempty,min=0,max=100"`
	QuizScore     *float64 `json:"quiz_score" query:"quiz_score" validate:"omitempty,min=0,max=100"`
	ExamScore     *float64 `json:"exam_score" query:"exam_score" validate:"omitempty,min=0,max=100"`
}

// Preview computes the derived values without storing anything.
func (svc *Service) Preview(c crud.Caller, in ComputeInput) (Result, error) {
	if err := svc.Authorize(c, perm.View); err != nil {
		return Result{}, err
	}
	if err := svc.Validator.Struct(in); err != nil {
		return Result{}, err
	}
	return Compute(in.ActivityScore, in.QuizScore, in.ExamScore), nil
}

package echoapi

import (
	"context"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/activity"
	"github.com/trezcool/lmsadmin/core/attendance"
	"github.com/trezcool/lmsadmin/core/crud"
	"github.com/trezcool/lmsadmin/core/grade"
	"github.com/trezcool/lmsadmin/core/lesson"
	"github.com/trezcool/lmsadmin/core/perm"
	"github.com/trezcool/lmsadmin/core/question"
	"github.com/trezcool/lmsadmin/core/student"
	"github.com/trezcool/lmsadmin/core/submission"
	"github.com/trezcool/lmsadmin/core/teacher"
	"github.com/trezcool/lmsadmin/storage/files"
)

var errNoFile = core.NewValidationError(errors.New("file is required"), core.FieldError{Field: "file", Error: "file is required"})

func registerEntityAPI(g *echo.Group, s *Server) {
	svcs := s.svcs

	students := newEndpoint(s, svcs.Students)
	students.writes["upload"] = uploadAction(s, files.ProfilePicture, svcs.Students.Get, svcs.Students.AuthorizeAttach,
		func(r student.Student) string { return r.ProfilePicture }, svcs.Students.SetProfilePicture)

	teachers := newEndpoint(s, svcs.Teachers)
	teachers.writes["upload"] = uploadAction(s, files.ProfilePicture, svcs.Teachers.Get, svcs.Teachers.AuthorizeAttach,
		func(r teacher.Teacher) string { return r.ProfilePicture }, svcs.Teachers.SetProfilePicture)

	activities := newEndpoint(s, svcs.Activities)
	activities.writes["upload"] = uploadAction(s, files.Attachment, svcs.Activities.Get, svcs.Activities.AuthorizeAttach,
		func(r activity.Activity) string { return r.Attachment }, svcs.Activities.SetAttachment)

	lessons := newEndpoint(s, svcs.Lessons)
	lessons.writes["upload"] = uploadAction(s, files.LessonPDF, svcs.Lessons.Get, svcs.Lessons.AuthorizeAttach,
		func(r lesson.Lesson) string { return r.File }, svcs.Lessons.SetFile)

	submissions := newEndpoint(s, svcs.Submissions)
	submissions.writes["upload"] = uploadAction(s, files.Attachment, svcs.Submissions.Get, svcs.Submissions.AuthorizeAttach,
		func(r submission.Submission) string { return r.File }, svcs.Submissions.SetFile)

	quizzes := newEndpoint(s, svcs.Quizzes)
	addQuestionActions(s, quizzes, svcs.Quizzes.Questions)

	exams := newEndpoint(s, svcs.Exams)
	addQuestionActions(s, exams, svcs.Exams.Questions)

	attendanceEp := newEndpoint(s, svcs.Attendance)
	attendanceEp.writes["bulk_mark"] = func(ctx echo.Context, c crud.Caller, p *payload) error {
		if err := attendanceEp.authorize(c, perm.Add); err != nil {
			return err
		}
		var data attendance.BulkMark
		if err := p.bind(&data); err != nil {
			return err
		}
		res, err := svcs.Attendance.BulkMark(reqCtx(ctx), c, data)
		if err != nil {
			return errors.Wrap(err, "bulk marking attendance")
		}
		return s.ok(ctx, "Attendance saved successfully", res)
	}

	grades := newEndpoint(s, svcs.Grades)
	grades.reads["compute"] = func(ctx echo.Context, c crud.Caller, _ *payload) error {
		var in grade.ComputeInput
		var err error
		if in.ActivityScore, err = floatParam(ctx, "activity_score"); err != nil {
			return err
		}
		if in.QuizScore, err = floatParam(ctx, "quiz_score"); err != nil {
			return err
		}
		if in.ExamScore, err = floatParam(ctx, "exam_score"); err != nil {
			return err
		}
		res, err := svcs.Grades.Preview(c, in)
		if err != nil {
			return errors.Wrap(err, "computing grade")
		}
		return s.ok(ctx, "", res)
	}

	for _, ep := range []*endpoint{
		newEndpoint(s, svcs.Subjects),
		newEndpoint(s, svcs.Semesters),
		newEndpoint(s, svcs.GradingPeriods),
		students,
		teachers,
		activities,
		quizzes,
		exams,
		grades,
		lessons,
		newEndpoint(s, svcs.Interventions),
		newEndpoint(s, svcs.Announcements),
		attendanceEp,
		submissions,
	} {
		ep.register(g)
	}
}

// floatParam reads an optional number from the query string.
func floatParam(ctx echo.Context, name string) (*float64, error) {
	raw := core.CleanString(ctx.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		msg := core.Humanize(name) + " must be a number"
		return nil, core.NewValidationError(errors.New(msg), core.FieldError{Field: name, Error: msg})
	}
	return &f, nil
}

type questionRequest struct {
	ParentID   string         `json:"parent_id" form:"parent_id"`
	QuestionID string         `json:"question_id" form:"question_id"`
	Question   question.Input `json:"question"`
}

func addQuestionActions(s *Server, ep *endpoint, owner question.Owner) {
	ep.reads["get_questions"] = func(ctx echo.Context, c crud.Caller, _ *payload) error {
		qs, err := owner.List(reqCtx(ctx), c, ctx.QueryParam("id"))
		if err != nil {
			return errors.Wrap(err, "listing questions")
		}
		if qs == nil {
			qs = []question.Question{}
		}
		return s.ok(ctx, "", qs)
	}
	ep.writes["save_question"] = func(ctx echo.Context, c crud.Caller, p *payload) error {
		if err := ep.authorize(c, perm.Edit); err != nil {
			return err
		}
		var req questionRequest
		if err := p.bind(&req); err != nil {
			return err
		}
		if req.ParentID == "" {
			req.ParentID = p.id
		}
		q, err := owner.Save(reqCtx(ctx), c, req.ParentID, req.Question)
		if err != nil {
			return errors.Wrap(err, "saving question")
		}
		return s.ok(ctx, "Question saved successfully", q)
	}
	ep.writes["delete_question"] = func(ctx echo.Context, c crud.Caller, p *payload) error {
		if err := ep.authorize(c, perm.Edit); err != nil {
			return err
		}
		var req questionRequest
		if err := p.bind(&req); err != nil {
			return err
		}
		if req.ParentID == "" {
			req.ParentID = p.id
		}
		if err := owner.Delete(reqCtx(ctx), c, req.ParentID, req.QuestionID); err != nil {
			return errors.Wrap(err, "deleting question")
		}
		return s.ok(ctx, crud.DeletedMsg("Question"), nil)
	}
}

// uploadAction stores the multipart `file` of a record and points the record at it.
// Nothing is stored unless the caller may attach to the record; the replaced file is discarded.
func uploadAction[R any](
	s *Server,
	kind files.Kind,
	get func(ctx context.Context, c crud.Caller, id string) (R, error),
	authorize func(c crud.Caller, rec R) error,
	current func(R) string,
	attach func(ctx context.Context, c crud.Caller, id, path string) (R, error),
) action {
	return func(ctx echo.Context, c crud.Caller, p *payload) error {
		rctx := reqCtx(ctx)
		existing, err := get(rctx, c, p.id)
		if err != nil {
			return errors.Wrap(err, "getting upload target")
		}
		if err := authorize(c, existing); err != nil {
			return err
		}

		fh, err := ctx.FormFile("file")
		if err != nil {
			return errNoFile
		}
		f, err := fh.Open()
		if err != nil {
			return errors.Wrap(err, "opening upload")
		}
		defer f.Close()

		path, err := s.uploader.Upload(rctx, kind, fh.Filename, f)
		if err != nil {
			return err
		}
		rec, err := attach(rctx, c, p.id, path)
		if err != nil {
			if dErr := s.uploader.Discard(rctx, path); dErr != nil {
				s.logger.Warn("discarding upload", dErr)
			}
			return errors.Wrap(err, "attaching upload")
		}
		if old := current(existing); old != "" && old != path {
			if dErr := s.uploader.Discard(rctx, old); dErr != nil {
				s.logger.Warn("discarding replaced upload", dErr)
			}
		}
		return s.ok(ctx, "File uploaded successfully", rec)
	}
}

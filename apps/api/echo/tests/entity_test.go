package tests

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/activity"
	"github.com/trezcool/lmsadmin/core/grade"
	"github.com/trezcool/lmsadmin/core/perm"
	"github.com/trezcool/lmsadmin/core/question"
	"github.com/trezcool/lmsadmin/core/school"
	"github.com/trezcool/lmsadmin/core/student"
	"github.com/trezcool/lmsadmin/core/subject"
	"github.com/trezcool/lmsadmin/core/submission"
	"github.com/trezcool/lmsadmin/testutil"
)

func Test_entityApi_guards(t *testing.T) {
	app := setup(t)
	adminToken := roleToken(t, app, perm.RoleAdmin, "")
	teacherToken := roleToken(t, app, perm.RoleTeacher, app.fx.Teacher.ID)
	studentToken := roleToken(t, app, perm.RoleStudent, app.fx.Students[0].ID)
	unauthorized := marchallObj(t, fail(core.ErrUnauthorized.Error()))

	tests := []httpTest{
		{
			name: "anonymous listing", method: http.MethodGet, path: "/api/activities",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, fail(core.ErrUnauthenticated.Error())),
		},
		{
			name: "anonymous create", method: http.MethodPost, path: "/api/subjects",
			body:     marchallObj(t, map[string]string{"action": "create", "code": "X", "name": "X"}),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, fail(core.ErrUnauthenticated.Error())),
		},
		{
			name: "anonymous malformed body", method: http.MethodPost, path: "/api/subjects",
			body:     []byte(`{"action": "create",`),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, fail(core.ErrUnauthenticated.Error())),
		},
		{
			name: "anonymous mistyped update", method: http.MethodPut, path: "/api/grades/whatever",
			body:     []byte(`{"activity_score": "lots"}`),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, fail(core.ErrUnauthenticated.Error())),
		},
		{
			name: "teacher malformed subject body", method: http.MethodPost, path: "/api/subjects", token: teacherToken,
			body:     []byte(`{"action": "create",`),
			wantCode: http.StatusOK, wantData: unauthorized,
		},
		{
			name: "student mistyped grade update", method: http.MethodPut, path: "/api/grades/whatever", token: studentToken,
			body:     []byte(`{"activity_score": "lots"}`),
			wantCode: http.StatusOK, wantData: unauthorized,
		},
		{
			name: "student lists students", method: http.MethodGet, path: "/api/students", token: studentToken,
			wantCode: http.StatusOK, wantData: unauthorized,
		},
		{
			name: "teacher creates subject", method: http.MethodPost, path: "/api/subjects", token: teacherToken,
			body:     marchallObj(t, map[string]string{"action": "create", "code": "PHY", "name": "Physics"}),
			wantCode: http.StatusOK, wantData: unauthorized,
		},
		{
			name: "student deletes activity", method: http.MethodDelete, path: "/api/activities/whatever", token: studentToken,
			wantCode: http.StatusOK, wantData: unauthorized,
		},
		{
			name: "unknown action", method: http.MethodGet, path: "/api/subjects?action=lol", token: adminToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, fail("unknown action")),
		},
		{
			name: "unknown write action", method: http.MethodPost, path: "/api/subjects", token: adminToken,
			body:     marchallObj(t, map[string]string{"action": "lol"}),
			wantCode: http.StatusOK, wantData: marchallObj(t, fail("unknown action")),
		},
		{
			name: "malformed body", method: http.MethodPost, path: "/api/subjects", token: adminToken,
			body:     []byte(`{"action": "create",`),
			wantCode: http.StatusOK, wantData: marchallObj(t, fail("invalid JSON body")),
		},
		{
			name: "get unknown id", method: http.MethodGet, path: "/api/subjects?action=get&id=nope", token: adminToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, fail("Subject not found")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.do(req, rec)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_entityApi_datatable(t *testing.T) {
	app := setup(t)
	token := roleToken(t, app, perm.RoleAdmin, "")

	req, rec := newAuthRequest(http.MethodGet, "/api/students?draw=3&start=0&length=1&ordering=-last_name", token)
	env := decode(t, app.do(req, rec))
	require.True(t, env.Success, env.Message)
	assert.Equal(t, 3, env.Draw)
	assert.Equal(t, 2, env.RecordsTotal)
	assert.Equal(t, 2, env.RecordsFiltered)
	var rows []student.Student
	env.into(t, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, "Turing", rows[0].LastName)

	// DataTables parameters
	path := "/api/students?draw=1&start=1&length=1&order[0][column]=0&order[0][dir]=asc&columns[0][data]=last_name"
	req, rec = newAuthRequest(http.MethodGet, path, token)
	env = decode(t, app.do(req, rec))
	env.into(t, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, "Turing", rows[0].LastName)

	req, rec = newAuthRequest(http.MethodGet, "/api/students?search[value]=ada", token)
	env = decode(t, app.do(req, rec))
	assert.Equal(t, 2, env.RecordsTotal)
	assert.Equal(t, 1, env.RecordsFiltered)

	// unknown filters never restrict
	req, rec = newAuthRequest(http.MethodGet, "/api/students?colour=blue", token)
	env = decode(t, app.do(req, rec))
	assert.Equal(t, 2, env.RecordsFiltered)

	req, rec = newAuthRequest(http.MethodGet, "/api/students?action=options", token)
	env = decode(t, app.do(req, rec))
	var opts []map[string]string
	env.into(t, &opts)
	assert.Len(t, opts, 2)
}

func Test_entityApi_scenarioA_missingFirstName(t *testing.T) {
	var counting *testutil.CountingStore[student.Student]
	app := setup(t, func(s *school.Stores) {
		counting = testutil.NewCountingStore(s.Students)
		s.Students = counting
	})
	token := roleToken(t, app, perm.RoleAdmin, "")
	writes := counting.Writes()

	req, rec := newAuthRequest(http.MethodPost, "/api/students", token, marchallObj(t, map[string]string{
		"action":         "create",
		"student_number": "S-003",
		"first_name":     "",
		"last_name":      "Hamilton",
		"email":          "",
	}))
	env := decode(t, app.do(req, rec))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Message, "first name")
	assert.Contains(t, env.Message, "email", "every missing field is reported")
	var fields []core.FieldError
	env.into(t, &fields)
	assert.Len(t, fields, 2)
	assert.Equal(t, writes, counting.Writes())
}

func Test_entityApi_unauthorizedWritesNeverReachTheStore(t *testing.T) {
	var counting *testutil.CountingStore[student.Student]
	app := setup(t, func(s *school.Stores) {
		counting = testutil.NewCountingStore(s.Students)
		s.Students = counting
	})
	teacherToken := roleToken(t, app, perm.RoleTeacher, app.fx.Teacher.ID)
	target := app.fx.Students[0].ID
	calls := counting.Calls()

	bodies := [][]byte{
		marchallObj(t, map[string]string{"action": "create", "student_number": "S-9", "first_name": "A", "last_name": "B", "email": "a@b.cd"}),
		marchallObj(t, map[string]string{"action": "create"}), // invalid too
		marchallObj(t, map[string]string{"action": "update", "id": target, "first_name": "Hacked"}),
		marchallObj(t, map[string]string{"action": "delete", "id": target}),
	}
	for i, body := range bodies {
		req, rec := newAuthRequest(http.MethodPost, "/api/students", teacherToken, body)
		env := decode(t, app.do(req, rec))
		assert.False(t, env.Success, "request %d", i)
		assert.Equal(t, core.ErrUnauthorized.Error(), env.Message, "request %d", i)
	}
	assert.Equal(t, calls, counting.Calls())
}

func Test_entityApi_scenarioB_deleteTwice(t *testing.T) {
	app := setup(t)
	token := roleToken(t, app, perm.RoleTeacher, app.fx.Teacher.ID)
	act := app.env.Activity(t, app.fx, "Essay", core.NewDate(time.Now().Year(), time.May, 1), 20)

	body := marchallObj(t, map[string]string{"action": "delete", "id": act.ID})
	tests := []httpTest{
		{name: "first", wantCode: http.StatusOK, wantData: marchallObj(t, map[string]interface{}{
			"success": true, "message": "Activity deleted successfully",
		})},
		{name: "second", wantCode: http.StatusOK, wantData: marchallObj(t, fail("Activity not found"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/activities", token, body)
			app.do(req, rec)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_entityApi_scenarioC_studentSeesOwnSubmissions(t *testing.T) {
	app := setup(t)
	ctx := context.Background()
	act := app.env.Activity(t, app.fx, "Essay", core.NewDate(time.Now().Year()+1, time.May, 1), 20)
	for _, s := range app.fx.Students {
		_, err := app.env.Services.Submissions.Create(ctx, testutil.Student(s.ID), submission.NewSubmission{
			ActivityID: act.ID,
			Content:    "my essay by " + s.FirstName,
		})
		require.NoError(t, err)
	}
	me := app.fx.Students[0]

	req, rec := newAuthRequest(http.MethodGet, "/api/submissions?action=datatable", roleToken(t, app, perm.RoleStudent, me.ID))
	env := decode(t, app.do(req, rec))
	require.True(t, env.Success, env.Message)
	assert.Equal(t, 1, env.RecordsTotal)
	var rows []submission.Submission
	env.into(t, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, me.ID, rows[0].StudentID)

	req, rec = newAuthRequest(http.MethodGet, "/api/submissions", roleToken(t, app, perm.RoleTeacher, app.fx.Teacher.ID))
	env = decode(t, app.do(req, rec))
	assert.Equal(t, 2, env.RecordsTotal)
}

func Test_entityApi_roundTrip(t *testing.T) {
	app := setup(t)
	token := roleToken(t, app, perm.RoleTeacher, app.fx.Teacher.ID)
	in := activity.NewActivity{
		Title:           "Lab report",
		SubjectID:       app.fx.Subject.ID,
		GradingPeriodID: app.fx.GradingPeriod.ID,
		DueDate:         core.NewDate(time.Now().Year(), time.April, 2),
		MaxScore:        50,
		Description:     "Measure g",
		Status:          activity.StatusPublished,
	}
	body := map[string]interface{}{
		"action":            "create",
		"title":             in.Title,
		"subject_id":        in.SubjectID,
		"grading_period_id": in.GradingPeriodID,
		"due_date":          in.DueDate,
		"max_score":         in.MaxScore,
		"description":       in.Description,
		"status":            in.Status,
	}
	req, rec := newAuthRequest(http.MethodPost, "/api/activities", token, marchallObj(t, body))
	env := decode(t, app.do(req, rec))
	require.True(t, env.Success, env.Message)
	assert.Equal(t, "Activity created successfully", env.Message)
	var created activity.Activity
	env.into(t, &created)
	require.NotEmpty(t, created.ID)

	req, rec = newAuthRequest(http.MethodGet, "/api/activities?action=get&id="+created.ID, token)
	env = decode(t, app.do(req, rec))
	var got activity.Activity
	env.into(t, &got)
	assert.Equal(t, in.Title, got.Title)
	assert.Equal(t, in.SubjectID, got.SubjectID)
	assert.Equal(t, in.GradingPeriodID, got.GradingPeriodID)
	assert.Equal(t, in.DueDate.String(), got.DueDate.String())
	assert.Equal(t, in.MaxScore, got.MaxScore)
	assert.Equal(t, in.Description, got.Description)
	assert.Equal(t, in.Status, got.Status)
	assert.Equal(t, app.fx.Subject.Name, got.SubjectName)

	// REST update
	req, rec = newAuthRequest(http.MethodPut, "/api/activities/"+created.ID, token, marchallObj(t, map[string]interface{}{
		"title": "Lab report v2", "subject_id": in.SubjectID, "grading_period_id": in.GradingPeriodID,
		"due_date": in.DueDate, "max_score": 60,
	}))
	env = decode(t, app.do(req, rec))
	require.True(t, env.Success, env.Message)
	assert.Equal(t, "Activity updated successfully", env.Message)
	env.into(t, &got)
	assert.Equal(t, "Lab report v2", got.Title)
	assert.Equal(t, created.CreatedAt.Unix(), got.CreatedAt.Unix())
}

func Test_entityApi_gradeLockedFields(t *testing.T) {
	app := setup(t)
	ctx := context.Background()
	token := roleToken(t, app, perm.RoleTeacher, app.fx.Teacher.ID)
	other, err := app.env.Services.Subjects.Create(ctx, testutil.Admin(), subject.NewSubject{Code: "BIO", Name: "Biology"})
	require.NoError(t, err)

	req, rec := newAuthRequest(http.MethodPost, "/api/grades", token, marchallObj(t, map[string]interface{}{
		"action":            "create",
		"student_id":        app.fx.Students[0].ID,
		"subject_id":        app.fx.Subject.ID,
		"semester_id":       app.fx.Semester.ID,
		"grading_period_id": app.fx.GradingPeriod.ID,
		"activity_score":    80,
		"quiz_score":        70,
		"exam_score":        90,
	}))
	env := decode(t, app.do(req, rec))
	require.True(t, env.Success, env.Message)
	var g grade.Grade
	env.into(t, &g)
	assert.Equal(t, 80.0, g.FinalGrade)
	assert.Equal(t, grade.StatusPass, g.Status)

	req, rec = newAuthRequest(http.MethodPost, "/api/grades", token, marchallObj(t, map[string]interface{}{
		"action":         "update",
		"id":             g.ID,
		"student_id":     app.fx.Students[0].ID,
		"subject_id":     other.ID,
		"activity_score": 50,
		"quiz_score":     50,
		"exam_score":     50,
	}))
	env = decode(t, app.do(req, rec))
	require.True(t, env.Success, env.Message)

	stored, err := app.env.Stores.Grades.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, app.fx.Subject.ID, stored.SubjectID)
	assert.Equal(t, 50.0, stored.FinalGrade)
	assert.Equal(t, grade.StatusFail, stored.Status)
}

func Test_entityApi_gradeCompute(t *testing.T) {
	app := setup(t)
	token := roleToken(t, app, perm.RoleTeacher, app.fx.Teacher.ID)

	tests := []httpTest{
		{
			name: "pass", path: "/api/grades?action=compute&activity_score=80&quiz_score=70&exam_score=90",
			wantData: marchallObj(t, map[string]interface{}{
				"success": true, "data": map[string]interface{}{"final_grade": 80, "status": "pass"},
			}),
		},
		{
			name: "missing score", path: "/api/grades?action=compute&activity_score=100&quiz_score=100",
			wantData: marchallObj(t, map[string]interface{}{
				"success": true, "data": map[string]interface{}{"final_grade": 70, "status": "pending"},
			}),
		},
		{
			name: "not a number", path: "/api/grades?action=compute&exam_score=abc",
			wantData: marchallObj(t, map[string]interface{}{
				"success": false, "message": "exam score must be a number",
				"data": []map[string]string{{"field": "exam_score", "error": "exam score must be a number"}},
			}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.wantCode = http.StatusOK
			req, rec := newAuthRequest(http.MethodGet, tt.path, token)
			app.do(req, rec)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_entityApi_questions(t *testing.T) {
	app := setup(t)
	token := roleToken(t, app, perm.RoleTeacher, app.fx.Teacher.ID)
	ex := app.env.Exam(t, app.fx, "Midterm")

	save := func(q question.Input) envelope {
		req, rec := newAuthRequest(http.MethodPost, "/api/exams", token, marchallObj(t, map[string]interface{}{
			"action": "save_question", "parent_id": ex.ID, "question": q,
		}))
		return decode(t, app.do(req, rec))
	}

	env := save(question.Input{
		Text:    "2 + 2?",
		Type:    question.TypeMultipleChoice,
		Points:  5,
		Choices: []question.Choice{{Text: "4", Correct: true}, {Text: "5"}},
	})
	require.True(t, env.Success, env.Message)
	assert.Equal(t, "Question saved successfully", env.Message)

	env = save(question.Input{Text: "Sky is green", Type: question.TypeTrueFalse, Points: 2, Answer: "maybe"})
	assert.False(t, env.Success)

	listQuestions := func() []question.Question {
		req, rec := newAuthRequest(http.MethodGet, "/api/exams?action=get_questions&id="+ex.ID, token)
		env := decode(t, app.do(req, rec))
		require.True(t, env.Success, env.Message)
		var qs []question.Question
		env.into(t, &qs)
		return qs
	}
	assert.Len(t, listQuestions(), 1)

	req, rec := newAuthRequest(http.MethodGet, "/api/exams?action=get&id="+ex.ID, token)
	env = decode(t, app.do(req, rec))
	var got map[string]interface{}
	env.into(t, &got)
	assert.EqualValues(t, 1, got["question_count"])
	assert.EqualValues(t, 5, got["total_points"])

	// deleting the exam removes its questions
	req, rec = newAuthRequest(http.MethodDelete, "/api/exams/"+ex.ID, token)
	env = decode(t, app.do(req, rec))
	require.True(t, env.Success, env.Message)

	assert.Empty(t, listQuestions())
	left, err := app.env.Services.Questions.ForParent(context.Background(), question.ParentExam, ex.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func Test_entityApi_bulkMark(t *testing.T) {
	app := setup(t)
	token := roleToken(t, app, perm.RoleTeacher, app.fx.Teacher.ID)
	day := core.NewDate(time.Now().Year(), time.February, 3)

	body := marchallObj(t, map[string]interface{}{
		"action":     "bulk_mark",
		"subject_id": app.fx.Subject.ID,
		"date":       day,
		"marks": []map[string]string{
			{"student_id": app.fx.Students[0].ID, "status": "present"},
			{"student_id": app.fx.Students[1].ID, "status": "late", "remarks": "bus"},
		},
	})
	req, rec := newAuthRequest(http.MethodPost, "/api/attendance", token, body)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, map[string]interface{}{
		"success": true, "message": "Attendance saved successfully", "data": map[string]int{"created": 2, "updated": 0},
	})}, app.do(req, rec))

	req, rec = newAuthRequest(http.MethodPost, "/api/attendance", token, body)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, map[string]interface{}{
		"success": true, "message": "Attendance saved successfully", "data": map[string]int{"created": 0, "updated": 2},
	})}, app.do(req, rec))
}

func Test_entityApi_export(t *testing.T) {
	app := setup(t)
	token := roleToken(t, app, perm.RoleAdmin, "")

	req, rec := newAuthRequest(http.MethodGet, "/api/subjects?action=export", token)
	app.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "subjects-")

	lines, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"id", "created_at", "code", "name", "description"}, lines[0])
	assert.Equal(t, app.fx.Subject.ID, lines[1][0])
	assert.Equal(t, "MATH101", lines[1][2])
}

func Test_entityApi_upload(t *testing.T) {
	app := setup(t)
	ctx := context.Background()
	act := app.env.Activity(t, app.fx, "Essay", core.NewDate(time.Now().Year()+1, time.May, 1), 20)
	sub, err := app.env.Services.Submissions.Create(ctx, testutil.Student(app.fx.Students[0].ID), submission.NewSubmission{
		ActivityID: act.ID,
		Content:    "see attached",
	})
	require.NoError(t, err)

	upload := func(path, token, id, filename string, content []byte) envelope {
		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		require.NoError(t, w.WriteField("action", "upload"))
		require.NoError(t, w.WriteField("id", id))
		if filename != "" {
			part, err := w.CreateFormFile("file", filename)
			require.NoError(t, err)
			_, err = part.Write(content)
			require.NoError(t, err)
		}
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, path, &body)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		return decode(t, app.do(req, httptest.NewRecorder()))
	}
	pdf := []byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

	owner := roleToken(t, app, perm.RoleStudent, app.fx.Students[0].ID)
	other := roleToken(t, app, perm.RoleStudent, app.fx.Students[1].ID)

	stored := func() int {
		n := 0
		require.NoError(t, filepath.WalkDir(app.files.Dir(), func(_ string, d fs.DirEntry, err error) error {
			if err == nil && !d.IsDir() {
				n++
			}
			return err
		}))
		return n
	}

	env := upload("/api/submissions", owner, sub.ID, "", nil)
	assert.False(t, env.Success)
	assert.Equal(t, "file is required", env.Message)

	env = upload("/api/submissions", other, sub.ID, "essay.pdf", pdf)
	assert.False(t, env.Success, "another student's submission is not visible")

	// students only view activities
	env = upload("/api/activities", owner, act.ID, "essay.pdf", pdf)
	assert.False(t, env.Success)
	assert.Equal(t, core.ErrUnauthorized.Error(), env.Message)
	assert.Zero(t, stored(), "refused uploads store nothing")

	env = upload("/api/submissions", owner, sub.ID, "essay.pdf", pdf)
	require.True(t, env.Success, env.Message)
	assert.Equal(t, "File uploaded successfully", env.Message)
	var got submission.Submission
	env.into(t, &got)
	require.NotEmpty(t, got.File)
	assert.True(t, strings.HasPrefix(got.File, "/uploads/"), got.File)
	assert.Equal(t, 1, stored())

	// the stored file is served back
	req, rec := newRequest(http.MethodGet, got.File)
	app.do(req, rec)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pdf, rec.Body.Bytes())
}

func Test_entityApi_schema(t *testing.T) {
	app := setup(t)

	req, rec := newAuthRequest(http.MethodGet, "/api/grades?action=schema", roleToken(t, app, perm.RoleStudent, app.fx.Students[0].ID))
	env := decode(t, app.do(req, rec))
	require.True(t, env.Success, env.Message)
	var schema map[string][]string
	env.into(t, &schema)
	assert.Equal(t, []string{"student_id", "subject_id", "semester_id", "grading_period_id"}, schema["create"])
	assert.ElementsMatch(t, []string{"subject_id", "semester_id", "grading_period_id"}, schema["locked"])

	req, rec = newRequest(http.MethodGet, "/api/grades?action=schema")
	app.do(req, rec)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func Test_entityApi_metrics(t *testing.T) {
	app := setup(t)
	token := roleToken(t, app, perm.RoleAdmin, "")
	req, rec := newAuthRequest(http.MethodGet, "/api/subjects", token)
	app.do(req, rec)

	req, rec = newRequest(http.MethodGet, "/metrics")
	app.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), fmt.Sprintf(`lms_envelope_total{action="datatable",entity="%s",outcome="success"} 1`, perm.Subjects))
}

func Test_entityApi_formBody(t *testing.T) {
	app := setup(t)
	token := roleToken(t, app, perm.RoleAdmin, "")

	post := func(path string, form url.Values) envelope {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Authorization", "Bearer "+token)
		return decode(t, app.do(req, httptest.NewRecorder()))
	}

	env := post("/api/subjects", url.Values{"action": {"create"}, "code": {"PHY101"}, "name": {"Physics"}})
	require.True(t, env.Success, env.Message)
	assert.Equal(t, "Subject created successfully", env.Message)
	var created subject.Subject
	env.into(t, &created)
	assert.Equal(t, "PHY101", created.Code)
	assert.Equal(t, "Physics", created.Name)

	env = post("/api/subjects", url.Values{
		"action": {"update"}, "id": {created.ID}, "code": {"PHY101"}, "name": {"Physics II"}, "description": {"Waves"},
	})
	require.True(t, env.Success, env.Message)
	var updated subject.Subject
	env.into(t, &updated)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Physics II", updated.Name)
	assert.Equal(t, "Waves", updated.Description)

	// every missing field is reported
	env = post("/api/subjects", url.Values{"action": {"create"}, "code": {""}})
	assert.False(t, env.Success)
	assert.Equal(t, "code is required, name is required", env.Message)

	// empty optional numbers stay unset, bad ones are rejected
	base := url.Values{
		"action":            {"create"},
		"student_id":        {app.fx.Students[0].ID},
		"subject_id":        {app.fx.Subject.ID},
		"semester_id":       {app.fx.Semester.ID},
		"grading_period_id": {app.fx.GradingPeriod.ID},
		"activity_score":    {"88"},
		"quiz_score":        {""},
	}
	env = post("/api/grades", base)
	require.True(t, env.Success, env.Message)
	var g grade.Grade
	env.into(t, &g)
	require.NotNil(t, g.ActivityScore)
	assert.Equal(t, 88.0, *g.ActivityScore)
	assert.Nil(t, g.QuizScore)
	assert.Equal(t, grade.StatusPending, g.Status)

	base.Set("activity_score", "lots")
	env = post("/api/grades", base)
	assert.False(t, env.Success)
	assert.Equal(t, `"lots" is not a valid value`, env.Message)
}

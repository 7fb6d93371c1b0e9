package inmemdb

import (
	"github.com/trezcool/lmsadmin/core/activity"
	"github.com/trezcool/lmsadmin/core/announcement"
	"github.com/trezcool/lmsadmin/core/attendance"
	"github.com/trezcool/lmsadmin/core/exam"
	"github.com/trezcool/lmsadmin/core/grade"
	"github.com/trezcool/lmsadmin/core/gradingperiod"
	"github.com/trezcool/lmsadmin/core/intervention"
	"github.com/trezcool/lmsadmin/core/lesson"
	"github.com/trezcool/lmsadmin/core/question"
	"github.com/trezcool/lmsadmin/core/quiz"
	"github.com/trezcool/lmsadmin/core/school"
	"github.com/trezcool/lmsadmin/core/semester"
	"github.com/trezcool/lmsadmin/core/student"
	"github.com/trezcool/lmsadmin/core/subject"
	"github.com/trezcool/lmsadmin/core/submission"
	"github.com/trezcool/lmsadmin/core/teacher"
)

// DB holds one table per entity.
type DB struct {
	Subjects       *Table[subject.Subject]
	Semesters      *Table[semester.Semester]
	GradingPeriods *Table[gradingperiod.GradingPeriod]
	Students       *Table[student.Student]
	Teachers       *Table[teacher.Teacher]
	Activities     *Table[activity.Activity]
	Quizzes        *Table[quiz.Quiz]
	Exams          *Table[exam.Exam]
	Questions      *Table[question.Question]
	Grades         *Table[grade.Grade]
	Lessons        *Table[lesson.Lesson]
	Interventions  *Table[intervention.Intervention]
	Announcements  *Table[announcement.Announcement]
	Attendance     *Table[attendance.Attendance]
	Submissions    *Table[submission.Submission]
}

func NewDB() *DB {
	db := &DB{
		Subjects:       NewTable[subject.Subject](),
		Semesters:      NewTable[semester.Semester](),
		GradingPeriods: NewTable[gradingperiod.GradingPeriod](),
		Students:       NewTable[student.Student](),
		Teachers:       NewTable[teacher.Teacher](),
		Activities:     NewTable[activity.Activity](),
		Quizzes:        NewTable[quiz.Quiz](),
		Exams:          NewTable[exam.Exam](),
		Questions:      NewTable[question.Question](),
		Grades:         NewTable[grade.Grade](),
		Lessons:        NewTable[lesson.Lesson](),
		Interventions:  NewTable[intervention.Intervention](),
		Announcements:  NewTable[announcement.Announcement](),
		Attendance:     NewTable[attendance.Attendance](),
		Submissions:    NewTable[submission.Submission](),
	}
	db.joins()
	return db
}

func (db *DB) subjectName(id string) string {
	if s, ok := db.Subjects.Lookup(id); ok {
		return s.Name
	}
	return ""
}

func (db *DB) studentName(id string) string {
	if s, ok := db.Students.Lookup(id); ok {
		return s.Name()
	}
	return ""
}

func (db *DB) periodName(id string) string {
	if gp, ok := db.GradingPeriods.Lookup(id); ok {
		return gp.Name
	}
	return ""
}

func (db *DB) questions(parentType, parentID string) question.Summary {
	var qs []question.Question
	for _, q := range db.Questions.Rows() {
		if q.ParentType == parentType && q.ParentID == parentID {
			qs = append(qs, q)
		}
	}
	return question.Summarize(qs)
}

// joins fills the derived columns the way the SQL views do.
func (db *DB) joins() {
	db.GradingPeriods.Derive(func(gp *gradingperiod.GradingPeriod) {
		gp.SemesterName = ""
		if s, ok := db.Semesters.Lookup(gp.SemesterID); ok {
			gp.SemesterName = s.Name
		}
	})
	db.Activities.Derive(func(a *activity.Activity) {
		a.SubjectName = db.subjectName(a.SubjectID)
		a.GradingPeriodName = db.periodName(a.GradingPeriodID)
	})
	db.Quizzes.Derive(func(q *quiz.Quiz) {
		q.SubjectName = db.subjectName(q.SubjectID)
		sum := db.questions(question.ParentQuiz, q.ID)
		q.QuestionCount, q.TotalPoints = sum.Count, sum.TotalPoints
	})
	db.Exams.Derive(func(ex *exam.Exam) {
		ex.SubjectName = db.subjectName(ex.SubjectID)
		sum := db.questions(question.ParentExam, ex.ID)
		ex.QuestionCount, ex.TotalPoints = sum.Count, sum.TotalPoints
	})
	db.Grades.Derive(func(g *grade.Grade) {
		g.StudentName = db.studentName(g.StudentID)
		g.SubjectName = db.subjectName(g.SubjectID)
		g.GradingPeriodName = db.periodName(g.GradingPeriodID)
	})
	db.Lessons.Derive(func(l *lesson.Lesson) {
		l.SubjectName = db.subjectName(l.SubjectID)
		l.TeacherName = ""
		if t, ok := db.Teachers.Lookup(l.TeacherID); ok {
			l.TeacherName = t.Name()
		}
	})
	db.Interventions.Derive(func(i *intervention.Intervention) {
		i.StudentName = db.studentName(i.StudentID)
		i.SubjectName = db.subjectName(i.SubjectID)
	})
	db.Attendance.Derive(func(a *attendance.Attendance) {
		a.StudentName = db.studentName(a.StudentID)
		a.SubjectName = db.subjectName(a.SubjectID)
	})
	db.Submissions.Derive(func(s *submission.Submission) {
		s.StudentName = db.studentName(s.StudentID)
		s.ActivityTitle = ""
		if a, ok := db.Activities.Lookup(s.ActivityID); ok {
			s.ActivityTitle = a.Title
		}
	})
}

// NewStores returns in-memory gateways for every entity, for tests and local runs.
func NewStores() school.Stores {
	return NewDB().Stores()
}

func (db *DB) Stores() school.Stores {
	return school.Stores{
		Users:          NewUserRepository(),
		Subjects:       db.Subjects,
		Semesters:      db.Semesters,
		GradingPeriods: db.GradingPeriods,
		Students:       db.Students,
		Teachers:       db.Teachers,
		Activities:     db.Activities,
		Quizzes:        db.Quizzes,
		Exams:          db.Exams,
		Questions:      db.Questions,
		Grades:         db.Grades,
		Lessons:        db.Lessons,
		Interventions:  db.Interventions,
		Announcements:  db.Announcements,
		Attendance:     db.Attendance,
		Submissions:    db.Submissions,
	}
}

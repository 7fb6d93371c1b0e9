package pgstore

import (
	"github.com/jmoiron/sqlx"

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

// NewStores returns the PostgreSQL gateways of every entity.
func NewStores(db *sqlx.DB) school.Stores {
	return school.Stores{
		Users:          NewUserRepository(db),
		Subjects:       NewStore[subject.Subject](db, subjectsTable),
		Semesters:      NewStore[semester.Semester](db, semestersTable),
		GradingPeriods: NewStore[gradingperiod.GradingPeriod](db, gradingPeriodsTable),
		Students:       NewStore[student.Student](db, studentsTable),
		Teachers:       NewStore[teacher.Teacher](db, teachersTable),
		Activities:     NewStore[activity.Activity](db, activitiesTable),
		Quizzes:        NewStore[quiz.Quiz](db, quizzesTable),
		Exams:          NewStore[exam.Exam](db, examsTable),
		Questions:      NewStore[question.Question](db, questionsTable),
		Grades:         NewStore[grade.Grade](db, gradesTable),
		Lessons:        NewStore[lesson.Lesson](db, lessonsTable),
		Interventions:  NewStore[intervention.Intervention](db, interventionsTable),
		Announcements:  NewStore[announcement.Announcement](db, announcementsTable),
		Attendance:     NewStore[attendance.Attendance](db, attendanceTable),
		Submissions:    NewStore[submission.Submission](db, submissionsTable),
	}
}

package pgstore

import "fmt"

const (
	subjectName = "SELECT s.name FROM subjects s WHERE s.id = t.subject_id"
	periodName  = "SELECT gp.name FROM grading_periods gp WHERE gp.id = t.grading_period_id"
	studentName = "SELECT st.first_name || ' ' || st.last_name FROM students st WHERE st.id = t.student_id"
	teacherName = "SELECT te.first_name || ' ' || te.last_name FROM teachers te WHERE te.id = t.teacher_id"
)

func coalesce(query string) string {
	return fmt.Sprintf("COALESCE((%s), '')", query)
}

func questionStats(parent string) map[string]string {
	return map[string]string{
		"question_count": fmt.Sprintf(
			"SELECT COUNT(*) FROM questions q WHERE q.parent_type = '%s' AND q.parent_id = t.id", parent),
		"total_points": fmt.Sprintf(
			"SELECT COALESCE(ROUND(SUM(q.points)::numeric, 2), 0) FROM questions q WHERE q.parent_type = '%s' AND q.parent_id = t.id", parent),
	}
}

func withSubject(derived map[string]string) map[string]string {
	derived["subject_name"] = coalesce(subjectName)
	return derived
}

var (
	subjectsTable = Table{
		Name:    "subjects",
		Columns: []string{"code", "name", "description"},
	}
	semestersTable = Table{
		Name:    "semesters",
		Columns: []string{"name", "school_year", "start_date", "end_date", "status"},
	}
	gradingPeriodsTable = Table{
		Name:    "grading_periods",
		Columns: []string{"name", "semester_id", "start_date", "end_date", "status"},
		Derived: map[string]string{
			"semester_name": coalesce("SELECT se.name FROM semesters se WHERE se.id = t.semester_id"),
		},
	}
	studentsTable = Table{
		Name: "students",
		Columns: []string{
			"student_number", "first_name", "last_name", "email", "gender", "birth_date",
			"grade_level", "section", "guardian_name", "guardian_contact", "status", "profile_picture",
		},
	}
	teachersTable = Table{
		Name: "teachers",
		Columns: []string{
			"employee_number", "first_name", "last_name", "email", "department",
			"specialization", "phone", "status", "profile_picture",
		},
	}
	activitiesTable = Table{
		Name: "activities",
		Columns: []string{
			"title", "subject_id", "grading_period_id", "due_date", "max_score",
			"description", "status", "attachment",
		},
		Derived: withSubject(map[string]string{
			"grading_period_name": coalesce(periodName),
		}),
	}
	quizzesTable = Table{
		Name:    "quizzes",
		Columns: []string{"title", "subject_id", "grading_period_id", "description", "time_limit", "status"},
		Derived: withSubject(questionStats("quiz")),
	}
	examsTable = Table{
		Name: "exams",
		Columns: []string{
			"title", "subject_id", "grading_period_id", "exam_date", "duration",
			"passing_score", "description", "status",
		},
		Derived: withSubject(questionStats("exam")),
	}
	questionsTable = Table{
		Name:    "questions",
		Columns: []string{"parent_type", "parent_id", "text", "type", "points", "choices", "answer", "position"},
	}
	gradesTable = Table{
		Name: "grades",
		Columns: []string{
			"student_id", "subject_id", "semester_id", "grading_period_id",
			"activity_score", "quiz_score", "exam_score", "final_grade", "status", "remarks",
		},
		Derived: withSubject(map[string]string{
			"student_name":        coalesce(studentName),
			"grading_period_name": coalesce(periodName),
		}),
	}
	lessonsTable = Table{
		Name:     "lessons",
		Columns:  []string{"title", "subject_id", "grading_period_id", "teacher_id", "content", "status", "file"},
		Nullable: []string{"grading_period_id", "teacher_id"},
		Derived: withSubject(map[string]string{
			"teacher_name": coalesce(teacherName),
		}),
	}
	interventionsTable = Table{
		Name: "interventions",
		Columns: []string{
			"student_id", "subject_id", "grading_period_id", "teacher_id", "reason",
			"action_plan", "status", "start_date", "end_date",
		},
		Nullable: []string{"grading_period_id", "teacher_id"},
		Derived: withSubject(map[string]string{
			"student_name": coalesce(studentName),
		}),
	}
	announcementsTable = Table{
		Name: "announcements",
		Columns: []string{
			"title", "body", "audience", "priority", "expires_at", "notify",
			"author_id", "author_name", "published_at",
		},
	}
	attendanceTable = Table{
		Name:    "attendance",
		Columns: []string{"student_id", "subject_id", "date", "status", "remarks"},
		Derived: withSubject(map[string]string{
			"student_name": coalesce(studentName),
		}),
	}
	submissionsTable = Table{
		Name: "submissions",
		Columns: []string{
			"activity_id", "student_id", "content", "file", "status",
			"submitted_at", "score", "feedback",
		},
		Derived: map[string]string{
			"student_name":   coalesce(studentName),
			"activity_title": coalesce("SELECT a.title FROM activities a WHERE a.id = t.activity_id"),
		},
	}
)

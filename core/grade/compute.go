package grade

import "github.com/trezcool/lmsadmin/core"

const (
	StatusPass    = "pass"
	StatusFail    = "fail"
	StatusPending = "pending"

	PassMark = 75.0

	activityWeight = 0.4
	quizWeight     = 0.3
	examWeight     = 0.3
)

// Result is the derived part of a grade.
type Result struct {
	FinalGrade float64 `json:"final_grade"`
	Status     string  `json:"status"`
}

// Compute derives the final grade and its status from the three scores.
// Missing scores count as 0 in the final grade and keep the status pending.
func Compute(activity, quiz, exam *float64) Result {
	var final float64
	missing := false
	for _, s := range []struct {
		score  *float64
		weight float64
	}{{activity, activityWeight}, {quiz, quizWeight}, {exam, examWeight}} {
		if s.score == nil {
			missing = true
			continue
		}
		final += *s.score * s.weight
	}
	final = core.Round2(final)

	res := Result{FinalGrade: final}
	switch {
	case missing || final == 0:
		res.Status = StatusPending
	case final >= PassMark:
		res.Status = StatusPass
	default:
		res.Status = StatusFail
	}
	return res
}

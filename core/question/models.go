package question

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
)

// Parent kinds
const (
	ParentQuiz = "quiz"
	ParentExam = "exam"
)

// Question types
const (
	TypeMultipleChoice = "multiple_choice"
	TypeTrueFalse      = "true_false"
	TypeShortAnswer    = "short_answer"
	TypeEssay          = "essay"
)

type Choice struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Choices is stored as a JSON document.
type Choices []Choice

func (c Choices) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	b, err := json.Marshal(c)
	return string(b), err
}

func (c *Choices) Scan(src interface{}) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*c = nil
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Choices", src)
	}
	return json.Unmarshal(b, c)
}

type Question struct {
	crud.Base
	ParentType string  `json:"parent_type" db:"parent_type"`
	ParentID   string  `json:"parent_id" db:"parent_id"`
	Text       string  `json:"text" db:"text"`
	Type       string  `json:"type" db:"type"`
	Points     float64 `json:"points" db:"points"`
	Choices    Choices `json:"choices" db:"choices"`
	Answer     string  `json:"answer" db:"answer"`
	Position   int     `json:"position" db:"position"`
}

// Input creates a question, or updates it when ID is set.
type Input struct {
	ID       string   `json:"id" validate:"omitempty,uuid"`
	Text     string   `json:"text" validate:"required"`
	Type     string   `json:"type" validate:"required,oneof=multiple_choice true_false short_answer essay"`
	Points   float64  `json:"points" validate:"required,gt=0,lte=1000"`
	Choices  []Choice `json:"choices"`
	Answer   string   `json:"answer"`
	Position int      `json:"position" validate:"min=0"`
}

func (in *Input) Clean() {
	in.ID = core.CleanString(in.ID)
	in.Text = core.CleanString(in.Text)
	in.Type = core.CleanString(in.Type, true /* lower */)
	in.Answer = core.CleanString(in.Answer)
	choices := in.Choices[:0]
	for _, ch := range in.Choices {
		ch.Text = core.CleanString(ch.Text)
		if ch.Text != "" {
			choices = append(choices, ch)
		}
	}
	in.Choices = choices
}

// Summary is the derived question data shown on quiz and exam rows.
type Summary struct {
	Count       int
	TotalPoints float64
}

func Summarize(qs []Question) Summary {
	var s Summary
	for _, q := range qs {
		s.Count++
		s.TotalPoints += q.Points
	}
	s.TotalPoints = core.Round2(s.TotalPoints)
	return s
}

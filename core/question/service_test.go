package question_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/question"
	"github.com/trezcool/lmsadmin/testutil"
)

func TestOwner_SaveRules(t *testing.T) {
	env := testutil.NewEnv(t)
	fx := env.Seed(t)
	qz := env.Quiz(t, fx, "Fractions")
	owner := env.Services.Quizzes.Questions
	ctx := context.Background()
	teacher := testutil.Teacher(fx.Teacher.ID)

	tests := []struct {
		name    string
		in      question.Input
		wantErr func(error) bool
	}{
		{
			name: "multiple choice",
			in: question.Input{Text: "1/2 + 1/4?", Type: question.TypeMultipleChoice, Points: 2, Choices: []question.Choice{
				{Text: "3/4", Correct: true}, {Text: "2/6"}, {Text: "  "},
			}},
		},
		{
			name: "multiple choice with one choice",
			in: question.Input{Text: "?", Type: question.TypeMultipleChoice, Points: 1, Choices: []question.Choice{
				{Text: "yes", Correct: true}, {Text: " "},
			}},
			wantErr: core.IsConflict,
		},
		{
			name: "multiple choice without a correct choice",
			in: question.Input{Text: "?", Type: question.TypeMultipleChoice, Points: 1, Choices: []question.Choice{
				{Text: "a"}, {Text: "b"},
			}},
			wantErr: core.IsConflict,
		},
		{
			name: "true false",
			in:   question.Input{Text: "1/2 = 0.5", Type: question.TypeTrueFalse, Points: 1, Answer: "TRUE"},
		},
		{
			name:    "true false with another answer",
			in:      question.Input{Text: "1/2 = 0.5", Type: question.TypeTrueFalse, Points: 1, Answer: "yes"},
			wantErr: core.IsConflict,
		},
		{
			name:    "missing points",
			in:      question.Input{Text: "Explain", Type: question.TypeEssay},
			wantErr: core.IsValidation,
		},
		{
			name:    "unknown type",
			in:      question.Input{Text: "Explain", Type: "matching", Points: 1},
			wantErr: core.IsValidation,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q, err := owner.Save(ctx, teacher, qz.ID, tc.in)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr(err), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, question.ParentQuiz, q.ParentType)
			assert.Equal(t, qz.ID, q.ParentID)
		})
	}

	qs, err := owner.List(ctx, teacher, qz.ID)
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Len(t, qs[0].Choices, 2, "blank choices are dropped")
	assert.Equal(t, "true", qs[1].Answer)

	got, err := env.Services.Quizzes.Get(ctx, teacher, qz.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.QuestionCount)
	assert.Equal(t, 3.0, got.TotalPoints)
}

func TestOwner_UpdateAndOrder(t *testing.T) {
	env := testutil.NewEnv(t)
	fx := env.Seed(t)
	qz := env.Quiz(t, fx, "Fractions")
	owner := env.Services.Quizzes.Questions
	ctx := context.Background()
	admin := testutil.Admin()

	second, err := owner.Save(ctx, admin, qz.ID, question.Input{Text: "second", Type: question.TypeShortAnswer, Points: 1, Position: 2})
	require.NoError(t, err)
	first, err := owner.Save(ctx, admin, qz.ID, question.Input{Text: "first", Type: question.TypeShortAnswer, Points: 1, Position: 1})
	require.NoError(t, err)

	qs, err := owner.List(ctx, admin, qz.ID)
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, first.ID, qs[0].ID)
	assert.Equal(t, second.ID, qs[1].ID)

	edited, err := owner.Save(ctx, admin, qz.ID, question.Input{
		ID: second.ID, Text: "second, edited", Type: question.TypeEssay, Points: 5, Position: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, second.ID, edited.ID)
	assert.Equal(t, second.CreatedAt, edited.CreatedAt)

	qs, err = owner.List(ctx, admin, qz.ID)
	require.NoError(t, err)
	assert.Equal(t, "second, edited", qs[0].Text)

	other := env.Quiz(t, fx, "Decimals")
	_, err = owner.Save(ctx, admin, other.ID, question.Input{ID: second.ID, Text: "moved", Type: question.TypeEssay, Points: 1})
	assert.True(t, core.IsNotFound(err), "questions stay with their quiz: %v", err)
	assert.True(t, core.IsNotFound(owner.Delete(ctx, admin, other.ID, second.ID)))

	require.NoError(t, owner.Delete(ctx, admin, qz.ID, second.ID))
	qs, err = owner.List(ctx, admin, qz.ID)
	require.NoError(t, err)
	assert.Len(t, qs, 1)
}

func TestOwner_Authorization(t *testing.T) {
	env := testutil.NewEnv(t)
	fx := env.Seed(t)
	qz := env.Quiz(t, fx, "Fractions")
	owner := env.Services.Quizzes.Questions
	ctx := context.Background()
	in := question.Input{Text: "?", Type: question.TypeEssay, Points: 1}

	_, err := owner.Save(ctx, testutil.Student(fx.Students[0].ID), qz.ID, in)
	assert.Equal(t, core.ErrUnauthorized, err)
	_, err = owner.List(ctx, testutil.Student(fx.Students[0].ID), qz.ID)
	assert.Equal(t, core.ErrUnauthorized, err)

	_, err = owner.Save(ctx, testutil.Admin(), uuid.NewString(), in)
	assert.True(t, core.IsNotFound(err), "unknown quiz: %v", err)
}

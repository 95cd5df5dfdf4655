package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuestionIsCorrect(t *testing.T) {
	correct := "option-b"
	question := &Question{CorrectOption: &correct}

	assert.True(t, question.IsCorrect("option-b"))
	assert.True(t, question.IsCorrect("  option-b  "), "surrounding whitespace is ignored")
	assert.False(t, question.IsCorrect("option-a"))
	assert.False(t, question.IsCorrect(""))
	assert.False(t, question.IsCorrect("   "))

	descriptive := &Question{Type: QuestionTypeDescriptive}
	assert.False(t, descriptive.IsCorrect("anything"), "no correct option means never correct")
}

func TestQuestionWeight(t *testing.T) {
	assert.Equal(t, 1, (&Question{}).Weight(), "unset weight defaults to 1")
	assert.Equal(t, 1, (&Question{MaxScore: -3}).Weight())
	assert.Equal(t, 5, (&Question{MaxScore: 5}).Weight())
}

func TestQuestionTypeScorable(t *testing.T) {
	assert.True(t, QuestionTypeStandard.Scorable())
	assert.True(t, QuestionTypeOptional.Scorable())
	assert.False(t, QuestionTypeDescriptive.Scorable())
	assert.False(t, QuestionTypeFileUpload.Scorable())
}

func TestQuestionOptionList(t *testing.T) {
	question := &Question{Options: []byte(`["a","b","c","d"]`)}
	assert.Equal(t, []string{"a", "b", "c", "d"}, question.OptionList())

	assert.Empty(t, (&Question{}).OptionList())
}

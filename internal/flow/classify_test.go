package flow

import (
	"testing"

	"github.com/futig/medwatch-backend/internal/entity"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	userTurns := func(texts ...string) []entity.Turn {
		turns := make([]entity.Turn, 0, len(texts))
		for _, text := range texts {
			turns = append(turns, entity.Turn{Role: entity.RoleUser, Content: text})
		}
		return turns
	}

	tests := []struct {
		name      string
		answer    string
		hasAnswer bool
		turns     []entity.Turn
		current   string
		want      entity.ProductClass
	}{
		{name: "explicit device", answer: "A MEDICAL DEVICE", hasAnswer: true, want: entity.ProductClassMedicalDevice},
		{name: "explicit prescription", answer: "prescription", hasAnswer: true, want: entity.ProductClassMedication},
		{name: "explicit over the counter", answer: "Over-the-counter", hasAnswer: true, want: entity.ProductClassMedication},
		{name: "explicit dietary supplement", answer: "Dietary supplement", hasAnswer: true, want: entity.ProductClassOther},
		{name: "explicit wins over log", answer: "Food", hasAnswer: true, turns: userTurns("my device"), want: entity.ProductClassOther},
		{name: "no answer device keyword", turns: userTurns("the device broke"), want: entity.ProductClassMedicalDevice},
		{name: "no answer medication keyword", current: "an injection", want: entity.ProductClassMedication},
		{name: "keyword tie", turns: userTurns("pill"), current: "device", want: entity.ProductClassUnknown},
		{name: "nothing", turns: userTurns("hello"), current: "yes", want: entity.ProductClassUnknown},
		{
			name:  "assistant turns ignored",
			turns: []entity.Turn{{Role: entity.RoleAssistant, Content: "Medicine or medical device?"}},
			want:  entity.ProductClassUnknown,
		},
		{name: "device wins over other", answer: "Medical Device, Other", hasAnswer: true, want: entity.ProductClassMedicalDevice},
		{name: "device wins over medicine", answer: "a medical device that delivers medicine", hasAnswer: true, turns: userTurns("syrup"), want: entity.ProductClassMedicalDevice},
		{name: "other is a whole word", answer: "from my mother", hasAnswer: true, current: "pill", want: entity.ProductClassMedication},
		{name: "medication and other conflict", answer: "medicine, or other", hasAnswer: true, current: "device", want: entity.ProductClassMedicalDevice},
		{name: "empty explicit answer falls back", answer: "", hasAnswer: true, current: "syrup", want: entity.ProductClassMedication},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.answer, tt.hasAnswer, tt.turns, tt.current))
		})
	}
}

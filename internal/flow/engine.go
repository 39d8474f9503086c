package flow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/futig/medwatch-backend/internal/entity"
	"github.com/futig/medwatch-backend/internal/questionnaire"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const recordedPrefix = "Okay, I have recorded: "

// Corrector post-processes a raw answer in the context of the question it answers
type Corrector interface {
	CorrectAnswer(ctx context.Context, text, question string) (*entity.LLMCorrectAnswerResponse, error)
}

// State is everything the engine needs about a session between turns
type State struct {
	Turns   []entity.Turn
	Cursor  int
	Answers map[string]string
}

// Result describes what a single turn produced
type Result struct {
	Text             string
	IsEndOfQuestions bool
	Recorded         bool
	IntentSummary    string
	ProductTypeHint  string
	Classification   entity.ProductClass
	SkippedSection   entity.Section
}

type Option func(*Engine)

// WithCorrectionTimeout bounds the corrector call of every turn
func WithCorrectionTimeout(timeout time.Duration) Option {
	return func(e *Engine) {
		e.correctionTimeout = timeout
	}
}

// Engine sequences the questionnaire. It holds no session data.
type Engine struct {
	questionnaire     *questionnaire.Questionnaire
	corrector         Corrector
	correctionTimeout time.Duration
}

func NewEngine(q *questionnaire.Questionnaire, corrector Corrector, opts ...Option) *Engine {
	e := &Engine{
		questionnaire: q,
		corrector:     corrector,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Questionnaire() *questionnaire.Questionnaire {
	return e.questionnaire
}

// Advance applies one user turn to state and returns the updated state.
// On error the returned state is the input state, untouched.
func (e *Engine) Advance(ctx context.Context, state State, rawInput string) (State, Result, error) {
	if state.Cursor < 0 {
		return state, Result{}, fmt.Errorf("cursor %d: %w", state.Cursor, entity.ErrInvalidCursor)
	}

	input := strings.TrimSpace(rawInput)
	count := e.questionnaire.Count()

	next := State{
		Turns:   state.Turns,
		Cursor:  min(state.Cursor, count),
		Answers: copyAnswers(state.Answers),
	}

	var (
		result Result
		err    error
	)

	switch {
	case len(state.Turns) == 0:
		next.Cursor = 0
		result = Result{
			Text:           e.questionnaire.Text(0),
			Classification: entity.ProductClassUnknown,
		}

	case next.Cursor >= count:
		result = Result{
			Text:             e.questionnaire.CompletionMessage(),
			IsEndOfQuestions: true,
			Classification:   Classify(e.productTypeAnswer(next.Answers), e.hasProductTypeAnswer(next.Answers), state.Turns, ""),
		}

	default:
		next, result, err = e.answer(ctx, next, input)
		if err != nil {
			return state, Result{}, err
		}
	}

	turns := make([]entity.Turn, 0, len(state.Turns)+2)
	turns = append(turns, state.Turns...)
	turns = append(turns,
		entity.Turn{Role: entity.RoleUser, Content: input},
		entity.Turn{Role: entity.RoleAssistant, Content: result.Text},
	)
	next.Turns = turns

	return next, result, nil
}

func (e *Engine) answer(ctx context.Context, state State, input string) (State, Result, error) {
	if input == "" {
		return state, Result{}, entity.ErrEmptyAnswer
	}

	question := e.questionnaire.Text(state.Cursor)

	corrected, err := e.correct(ctx, input, question)
	if err != nil {
		return state, Result{}, err
	}

	correctedText := strings.TrimSpace(corrected.CorrectedText)
	state.Answers[entity.AnswerKey(state.Cursor)] = correctedText

	class := Classify(e.productTypeAnswer(state.Answers), e.hasProductTypeAnswer(state.Answers), state.Turns, correctedText)

	nextCursor, skipped := e.resolveNext(state.Cursor+1, class)

	result := Result{
		Recorded:        true,
		IntentSummary:   corrected.IntentSummary,
		ProductTypeHint: corrected.ProductType,
		Classification:  class,
		SkippedSection:  skipped,
	}

	prefix := recordedPrefix + strings.TrimRight(correctedText, ".") + ". "
	if nextCursor < e.questionnaire.Count() {
		result.Text = prefix + e.questionnaire.Text(nextCursor)
	} else {
		result.Text = prefix + e.questionnaire.CompletionMessage()
		result.IsEndOfQuestions = true
	}

	ctxzap.Extract(ctx).Debug("questionnaire turn applied",
		zap.Int("cursor", state.Cursor),
		zap.Int("next_cursor", nextCursor),
		zap.String("classification", string(class)),
		zap.String("skipped_section", string(skipped)),
	)

	state.Cursor = nextCursor
	return state, result, nil
}

func (e *Engine) correct(ctx context.Context, input, question string) (*entity.LLMCorrectAnswerResponse, error) {
	if e.correctionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.correctionTimeout)
		defer cancel()
	}

	corrected, err := e.corrector.CorrectAnswer(ctx, input, question)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrCorrectionFailed, err)
	}
	if corrected == nil {
		return nil, fmt.Errorf("%w: empty response", entity.ErrCorrectionFailed)
	}

	return corrected, nil
}

// resolveNext applies at most one section jump. The device section skip is
// checked before the product detail skip.
func (e *Engine) resolveNext(next int, class entity.ProductClass) (int, entity.Section) {
	device := e.questionnaire.DeviceRange()
	productDetail := e.questionnaire.ProductDetailRange()

	if class != entity.ProductClassMedicalDevice && device.Contains(next) {
		return device.Last + 1, entity.SectionDevice
	}
	if class == entity.ProductClassMedicalDevice && productDetail.Contains(next) {
		return device.First, entity.SectionProduct
	}

	return next, ""
}

func (e *Engine) productTypeAnswer(answers map[string]string) string {
	return answers[entity.AnswerKey(e.questionnaire.ProductTypeIndex())]
}

func (e *Engine) hasProductTypeAnswer(answers map[string]string) bool {
	_, ok := answers[entity.AnswerKey(e.questionnaire.ProductTypeIndex())]
	return ok
}

func copyAnswers(answers map[string]string) map[string]string {
	out := make(map[string]string, len(answers)+1)
	for k, v := range answers {
		out[k] = v
	}
	return out
}

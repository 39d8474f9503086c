package report

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/futig/medwatch-backend/internal/entity"
	"github.com/futig/medwatch-backend/internal/guard"
	"github.com/futig/medwatch-backend/internal/questionnaire"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]*entity.Session
}

func newMemorySessions() *memorySessions {
	return &memorySessions{sessions: map[string]*entity.Session{}}
}

func cloneSession(s *entity.Session) *entity.Session {
	c := *s
	c.Answers = make(map[string]string, len(s.Answers))
	for k, v := range s.Answers {
		c.Answers[k] = v
	}
	c.Turns = append([]entity.Turn(nil), s.Turns...)
	if s.Review != nil {
		review := *s.Review
		c.Review = &review
	}
	return &c
}

func (m *memorySessions) CreateSession(_ context.Context, session *entity.Session) (*entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = cloneSession(session)
	return cloneSession(session), nil
}

func (m *memorySessions) GetSessionByID(_ context.Context, id string) (*entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	return cloneSession(s), nil
}

func (m *memorySessions) SaveTurn(_ context.Context, session *entity.Session, appended []entity.Turn) (*entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.sessions[session.ID]
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	if len(stored.Turns)+len(appended) != len(session.Turns) {
		return nil, errors.New("turn positions out of sync")
	}
	m.sessions[session.ID] = cloneSession(session)
	return cloneSession(session), nil
}

func (m *memorySessions) UpdateSessionStatus(_ context.Context, id string, status entity.SessionStatus) (*entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	s.Status = status
	return cloneSession(s), nil
}

func (m *memorySessions) UpdateSessionReview(
	_ context.Context, id string, review *entity.ReportReview, status entity.SessionStatus,
) (*entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	s.Review = review
	s.Status = status
	return cloneSession(s), nil
}

type memoryReports struct {
	sessions *memorySessions
	err      error
	saved    []*entity.Report
}

func (m *memoryReports) SaveReport(ctx context.Context, report *entity.Report) (*entity.Report, error) {
	if m.err != nil {
		return nil, m.err
	}
	if _, err := m.sessions.UpdateSessionStatus(ctx, report.SessionID, entity.SessionStatusSubmitted); err != nil {
		return nil, err
	}
	m.saved = append(m.saved, report)
	return report, nil
}

func (m *memoryReports) GetReportBySessionID(_ context.Context, sessionID string) (*entity.Report, error) {
	for _, r := range m.saved {
		if r.SessionID == sessionID {
			return r, nil
		}
	}
	return nil, entity.ErrReportNotFound
}

type fakeLLM struct {
	correctErr error
	reviewErr  error
	drafts     []string
}

func (f *fakeLLM) CorrectAnswer(_ context.Context, text, _ string) (*entity.LLMCorrectAnswerResponse, error) {
	if f.correctErr != nil {
		return nil, f.correctErr
	}
	return &entity.LLMCorrectAnswerResponse{CorrectedText: text, IntentSummary: "summary"}, nil
}

func (f *fakeLLM) ReviewReport(_ context.Context, draft string) (*entity.ReportReview, error) {
	if f.reviewErr != nil {
		return nil, f.reviewErr
	}
	f.drafts = append(f.drafts, draft)
	return &entity.ReportReview{
		ConsistencyCheck:   "consistent",
		CompletenessScore:  "9/10",
		AnonymizationCheck: "ok",
		ClarityAssessment:  "clear",
	}, nil
}

type fakeASR struct {
	text string
	err  error
}

func (f *fakeASR) TranscribeBytes(context.Context, []byte, string) (string, error) {
	return f.text, f.err
}

type fakeProducts struct{}

func (fakeProducts) Search(_ context.Context, name string) ([]entity.Product, error) {
	if name == "unknown" {
		return nil, nil
	}
	return []entity.Product{{Name: name, Dosage: "10mg", Manufacturer: "Acme"}}, nil
}

type fakeCallback struct {
	sent   chan *entity.CallbackReportSubmittedData
	errors chan string
}

func (f *fakeCallback) SendReportSubmitted(_ context.Context, _ string, _ string, data *entity.CallbackReportSubmittedData) {
	f.sent <- data
}

func (f *fakeCallback) SendError(_ context.Context, _ string, _ string, message string, _ map[string]any) {
	f.errors <- message
}

type fixture struct {
	uc       *ReportUsecase
	sessions *memorySessions
	reports  *memoryReports
	llm      *fakeLLM
	asr      *fakeASR
	guard    *guard.MemoryGuard
	callback *fakeCallback
	ctx      context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	sessions := newMemorySessions()
	f := &fixture{
		sessions: sessions,
		reports:  &memoryReports{sessions: sessions},
		llm:      &fakeLLM{},
		asr:      &fakeASR{text: "I had a rash"},
		guard:    guard.NewMemoryGuard(time.Minute),
		callback: &fakeCallback{
			sent:   make(chan *entity.CallbackReportSubmittedData, 1),
			errors: make(chan string, 1),
		},
	}

	logger := zaptest.NewLogger(t)
	f.ctx = ctxzap.ToContext(context.Background(), logger)
	f.uc = NewUsecase(
		f.sessions, f.reports, f.guard, questionnaire.Default(),
		f.llm, f.asr, fakeProducts{}, time.Second, logger,
		WithCallback(f.callback),
		WithClock(func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }),
	)
	return f
}

// answerUntilEnd answers every remaining question with filler text
func (f *fixture) answerUntilEnd(t *testing.T, sessionID string) *entity.TurnResult {
	t.Helper()
	for i := 0; i < 100; i++ {
		turn, err := f.uc.SubmitTextAnswer(f.ctx, sessionID, "n/a")
		require.NoError(t, err)
		if turn.IsEndOfQuestions {
			return turn
		}
	}
	t.Fatal("questionnaire did not finish")
	return nil
}

func TestStartSession(t *testing.T) {
	f := newFixture(t)

	turn, err := f.uc.StartSession(f.ctx)
	require.NoError(t, err)

	q := questionnaire.Default()
	assert.Equal(t, q.Text(0), turn.Response)
	assert.Equal(t, 0, turn.Cursor)
	assert.Equal(t, entity.SessionStatusInProgress, turn.Status)
	require.NotNil(t, turn.NextQuestion)
	assert.Equal(t, 0, turn.NextQuestion.Index)

	dto, err := f.uc.GetSession(f.ctx, turn.SessionID)
	require.NoError(t, err)
	assert.Len(t, dto.Conversation, 2)
	assert.Empty(t, dto.Answers)
}

func TestSubmitTextAnswer(t *testing.T) {
	f := newFixture(t)
	start, err := f.uc.StartSession(f.ctx)
	require.NoError(t, err)

	turn, err := f.uc.SubmitTextAnswer(f.ctx, start.SessionID, "  I had a rash  ")
	require.NoError(t, err)

	q := questionnaire.Default()
	assert.Equal(t, 1, turn.Cursor)
	assert.Equal(t, "Okay, I have recorded: I had a rash. "+q.Text(1), turn.Response)
	assert.Equal(t, "summary", turn.IntentSummary)

	dto, err := f.uc.GetSession(f.ctx, start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "I had a rash", dto.Answers["question_0"])
	assert.Len(t, dto.Conversation, 4)
}

func TestSubmitTextAnswer_DeviceSkipsProductDetail(t *testing.T) {
	f := newFixture(t)
	start, err := f.uc.StartSession(f.ctx)
	require.NoError(t, err)

	q := questionnaire.Default()
	for i := 0; i < q.ProductTypeIndex(); i++ {
		_, err := f.uc.SubmitTextAnswer(f.ctx, start.SessionID, "n/a")
		require.NoError(t, err)
	}

	turn, err := f.uc.SubmitTextAnswer(f.ctx, start.SessionID, "Medical Device")
	require.NoError(t, err)

	assert.Equal(t, q.DeviceRange().First, turn.Cursor)
	assert.Equal(t, entity.SectionProduct, turn.SkippedSection)
	assert.Equal(t, entity.ProductClassMedicalDevice, turn.Classification)
}

func TestSubmitTextAnswer_CorrectionFailureLeavesSession(t *testing.T) {
	f := newFixture(t)
	start, err := f.uc.StartSession(f.ctx)
	require.NoError(t, err)

	f.llm.correctErr = errors.New("upstream 503")

	_, err = f.uc.SubmitTextAnswer(f.ctx, start.SessionID, "I had a rash")
	require.ErrorIs(t, err, entity.ErrCorrectionFailed)

	dto, err := f.uc.GetSession(f.ctx, start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 0, dto.Cursor)
	assert.Len(t, dto.Conversation, 2)
	assert.Empty(t, dto.Answers)
}

func TestSubmitTextAnswer_Errors(t *testing.T) {
	f := newFixture(t)
	start, err := f.uc.StartSession(f.ctx)
	require.NoError(t, err)

	_, err = f.uc.SubmitTextAnswer(f.ctx, start.SessionID, "   ")
	assert.ErrorIs(t, err, entity.ErrEmptyAnswer)

	_, err = f.uc.SubmitTextAnswer(f.ctx, "00000000-0000-0000-0000-000000000000", "hi")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)

	release, err := f.guard.Acquire(f.ctx, start.SessionID)
	require.NoError(t, err)
	_, err = f.uc.SubmitTextAnswer(f.ctx, start.SessionID, "hi")
	assert.ErrorIs(t, err, entity.ErrTurnInProgress)
	release()

	_, err = f.uc.CancelSession(f.ctx, start.SessionID)
	require.NoError(t, err)
	_, err = f.uc.SubmitTextAnswer(f.ctx, start.SessionID, "hi")
	assert.ErrorIs(t, err, entity.ErrSessionCancelled)
}

func TestSubmitAudioAnswer(t *testing.T) {
	f := newFixture(t)
	start, err := f.uc.StartSession(f.ctx)
	require.NoError(t, err)

	turn, err := f.uc.SubmitAudioAnswer(f.ctx, start.SessionID, []byte("RIFF"), "answer.wav")
	require.NoError(t, err)
	assert.Equal(t, 1, turn.Cursor)

	dto, err := f.uc.GetSession(f.ctx, start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "I had a rash", dto.Answers["question_0"])

	f.asr.err = errors.New("asr down")
	_, err = f.uc.SubmitAudioAnswer(f.ctx, start.SessionID, []byte("RIFF"), "answer.wav")
	assert.ErrorIs(t, err, entity.ErrTranscriptionFailed)

	f.asr.err = nil
	f.asr.text = "  "
	_, err = f.uc.SubmitAudioAnswer(f.ctx, start.SessionID, []byte("RIFF"), "answer.wav")
	assert.ErrorIs(t, err, entity.ErrEmptyAnswer)
}

func TestCancelSession(t *testing.T) {
	f := newFixture(t)
	start, err := f.uc.StartSession(f.ctx)
	require.NoError(t, err)

	dto, err := f.uc.CancelSession(f.ctx, start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusCanceled, dto.Status)

	dto, err = f.uc.CancelSession(f.ctx, start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusCanceled, dto.Status)
}

func TestReviewAndSubmit(t *testing.T) {
	f := newFixture(t)
	start, err := f.uc.StartSession(f.ctx)
	require.NoError(t, err)

	_, err = f.uc.ReviewReport(f.ctx, start.SessionID)
	assert.ErrorIs(t, err, entity.ErrQuestionsNotFinished)

	last := f.answerUntilEnd(t, start.SessionID)
	assert.Equal(t, entity.SessionStatusQuestionsDone, last.Status)
	assert.Nil(t, last.NextQuestion)

	_, err = f.uc.SubmitReport(f.ctx, start.SessionID, &entity.SubmitReportRequest{})
	assert.ErrorIs(t, err, entity.ErrNoReview)

	dto, err := f.uc.ReviewReport(f.ctx, start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusReviewed, dto.Status)
	require.NotNil(t, dto.Review)
	assert.Equal(t, "9/10", dto.Review.CompletenessScore)

	require.Len(t, f.llm.drafts, 1)
	assert.True(t, strings.HasPrefix(f.llm.drafts[0], "assistant: "+questionnaire.Default().Text(0)+"\nuser: n/a\n"))

	resp, err := f.uc.SubmitReport(f.ctx, start.SessionID, &entity.SubmitReportRequest{CallbackURL: "http://callback.local/hook"})
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusSubmitted, resp.Status)
	assert.NotEmpty(t, resp.ReportID)

	require.Len(t, f.reports.saved, 1)
	assert.Contains(t, f.reports.saved[0].Review, "completeness_score: 9/10")

	select {
	case data := <-f.callback.sent:
		assert.Equal(t, resp.ReportID, data.ReportID)
		assert.Equal(t, start.SessionID, data.SessionID)
	case <-time.After(time.Second):
		t.Fatal("callback was not sent")
	}

	report, err := f.uc.GetSubmittedReport(f.ctx, start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, resp.ReportID, report.ID)

	_, err = f.uc.SubmitReport(f.ctx, start.SessionID, nil)
	assert.ErrorIs(t, err, entity.ErrSessionSubmitted)

	_, err = f.uc.CancelSession(f.ctx, start.SessionID)
	assert.ErrorIs(t, err, entity.ErrSessionSubmitted)
}

func TestGetSubmittedReport_NotSubmitted(t *testing.T) {
	f := newFixture(t)
	start, err := f.uc.StartSession(f.ctx)
	require.NoError(t, err)

	_, err = f.uc.GetSubmittedReport(f.ctx, start.SessionID)
	assert.ErrorIs(t, err, entity.ErrReportNotFound)
}

func TestReviewReport_Failure(t *testing.T) {
	f := newFixture(t)
	start, err := f.uc.StartSession(f.ctx)
	require.NoError(t, err)
	f.answerUntilEnd(t, start.SessionID)

	f.llm.reviewErr = errors.New("timeout")
	_, err = f.uc.ReviewReport(f.ctx, start.SessionID)
	assert.ErrorIs(t, err, entity.ErrReviewFailed)
}

func TestSubmitReport_PersistenceFailureIsRetryable(t *testing.T) {
	f := newFixture(t)
	start, err := f.uc.StartSession(f.ctx)
	require.NoError(t, err)
	f.answerUntilEnd(t, start.SessionID)
	_, err = f.uc.ReviewReport(f.ctx, start.SessionID)
	require.NoError(t, err)

	f.reports.err = errors.New("connection reset")
	_, err = f.uc.SubmitReport(f.ctx, start.SessionID, &entity.SubmitReportRequest{CallbackURL: "http://callback.local/hook"})
	require.ErrorIs(t, err, entity.ErrPersistenceFailed)

	select {
	case message := <-f.callback.errors:
		assert.Equal(t, entity.ErrPersistenceFailed.Error(), message)
	case <-time.After(time.Second):
		t.Fatal("error callback was not sent")
	}

	dto, err := f.uc.GetSession(f.ctx, start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusReviewed, dto.Status)

	f.reports.err = nil
	_, err = f.uc.SubmitReport(f.ctx, start.SessionID, nil)
	require.NoError(t, err)
}

func TestExportReport(t *testing.T) {
	f := newFixture(t)
	start, err := f.uc.StartSession(f.ctx)
	require.NoError(t, err)
	_, err = f.uc.SubmitTextAnswer(f.ctx, start.SessionID, "I had a rash")
	require.NoError(t, err)

	exported, err := f.uc.ExportReport(f.ctx, start.SessionID, entity.FormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, "medwatch-report-"+start.SessionID+".md", exported.Filename)
	assert.Contains(t, string(exported.Content), "I had a rash")

	_, err = f.uc.ExportReport(f.ctx, start.SessionID, "odt")
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
}

func TestSearchProducts(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.SearchProducts(f.ctx, " aspirin ")
	require.NoError(t, err)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "aspirin", resp.Products[0].Name)

	resp, err = f.uc.SearchProducts(f.ctx, "unknown")
	require.NoError(t, err)
	assert.NotNil(t, resp.Products)
	assert.Empty(t, resp.Products)

	_, err = f.uc.SearchProducts(f.ctx, "")
	assert.ErrorIs(t, err, entity.ErrMissingField)
}

func TestQuestionnaire(t *testing.T) {
	f := newFixture(t)

	resp := f.uc.Questionnaire()
	assert.Equal(t, 56, resp.Count)
	assert.Len(t, resp.Questions, 56)
}

func TestSubmitHTTPAudioAnswer(t *testing.T) {
	upload := func(t *testing.T, content string) *multipart.FileHeader {
		t.Helper()
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("audio", "answer.wav")
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		form, err := multipart.NewReader(&body, mw.Boundary()).ReadForm(1 << 20)
		require.NoError(t, err)
		t.Cleanup(func() { _ = form.RemoveAll() })
		return form.File["audio"][0]
	}

	f := newFixture(t)
	start, err := f.uc.StartSession(f.ctx)
	require.NoError(t, err)

	turn, err := f.uc.SubmitHTTPAudioAnswer(f.ctx, start.SessionID, upload(t, "RIFF....WAVE"))
	require.NoError(t, err)
	assert.Equal(t, 1, turn.Cursor)

	lying := upload(t, "RIFF....WAVE")
	lying.Size = 4
	_, err = f.uc.SubmitHTTPAudioAnswer(f.ctx, start.SessionID, lying)
	assert.ErrorIs(t, err, entity.ErrFileTooLarge)
}

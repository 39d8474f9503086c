package handlers

import (
	"context"
	"fmt"

	"github.com/futig/medwatch-backend/internal/entity"
	"github.com/futig/medwatch-backend/internal/pkg/logger"
	"github.com/futig/medwatch-backend/internal/telegram/keyboard"
	"github.com/futig/medwatch-backend/internal/telegram/render"
	"github.com/futig/medwatch-backend/internal/telegram/state"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const voiceFilename = "voice.wav"

// AnswerHandler feeds text and voice answers into the questionnaire (IN_PROGRESS state)
type AnswerHandler struct {
	BaseHandler
	bot          BotAPI
	stateManager *state.Manager
	reportUC     ReportUsecase
	keyboard     *keyboard.Builder
	loadVoice    VoiceLoader
}

// NewAnswerHandler creates a new answer handler
func NewAnswerHandler(
	bot BotAPI,
	stateManager *state.Manager,
	reportUC ReportUsecase,
	kb *keyboard.Builder,
	loadVoice VoiceLoader,
	logger *zap.Logger,
) *AnswerHandler {
	return &AnswerHandler{
		BaseHandler: BaseHandler{
			states:        []string{string(entity.SessionStatusInProgress)},
			messageSender: NewMessageSender(bot, logger),
		},
		bot:          bot,
		stateManager: stateManager,
		reportUC:     reportUC,
		keyboard:     kb,
		loadVoice:    loadVoice,
	}
}

// Handle records the answer to the current question and asks the next one
func (h *AnswerHandler) Handle(ctx context.Context, msg *Message) error {
	telegramSession, err := h.stateManager.GetSession(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("get telegram session: %w", err)
	}
	ctx = logger.WithSession(ctx, telegramSession.SessionID)

	stopTyping := showChatAction(ctx, h.bot, msg.ChatID, tgbotapi.ChatTyping)
	defer stopTyping()

	turn, err := h.submit(ctx, telegramSession.SessionID, msg)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	ctxzap.Debug(ctx, "answer recorded",
		zap.Int("cursor", turn.Cursor),
		zap.Bool("end_of_questions", turn.IsEndOfQuestions),
	)

	text := render.RenderTurn(turn, h.reportUC.Questionnaire().Count)
	if !turn.IsEndOfQuestions {
		h.sendMessage(msg.ChatID, text, nil)
		return nil
	}

	messageID := h.sendMessage(msg.ChatID, text+"\n\n"+render.MsgQuestionsDone, h.keyboard.QuestionsDoneKeyboard())
	replaceKeyboard(ctx, h.stateManager, h.messageSender, msg, messageID)

	return nil
}

func (h *AnswerHandler) submit(ctx context.Context, sessionID string, msg *Message) (*entity.TurnResult, error) {
	if msg.Voice == nil {
		return h.reportUC.SubmitTextAnswer(ctx, sessionID, msg.Text)
	}

	h.sendMessage(msg.ChatID, render.MsgTranscribing, nil)

	audio, err := h.loadVoice(ctx, msg.Voice.FileID)
	if err != nil {
		return nil, fmt.Errorf("load voice message: %w", err)
	}

	return h.reportUC.SubmitAudioAnswer(ctx, sessionID, audio, voiceFilename)
}

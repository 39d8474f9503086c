package handlers

import (
	"context"
	"errors"

	"github.com/futig/medwatch-backend/internal/entity"
	"github.com/futig/medwatch-backend/internal/telegram/render"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// failure is how a handler error is reported to the log and to the user
type failure struct {
	level    zapcore.Level
	event    string
	notice   string
	critical bool
}

// expectedErrors come from the user or the session state; they are logged
// as warnings because nothing is broken.
var expectedErrors = []error{
	entity.ErrSessionNotFound,
	entity.ErrSessionCancelled,
	entity.ErrSessionSubmitted,
	entity.ErrQuestionsNotFinished,
	entity.ErrNoReview,
	entity.ErrTurnInProgress,
	entity.ErrEmptyAnswer,
	entity.ErrFileTooLarge,
}

func describeFailure(err error) failure {
	for _, target := range expectedErrors {
		if errors.Is(err, target) {
			return failure{level: zapcore.WarnLevel, event: target.Error(), notice: render.ClassifyError(err)}
		}
	}

	// A lost report is the one failure on-call must see
	if errors.Is(err, entity.ErrPersistenceFailed) {
		return failure{level: zapcore.ErrorLevel, event: "report persistence failed", notice: render.ErrPersistence, critical: true}
	}

	return failure{level: zapcore.ErrorLevel, event: "handler failed", notice: render.ClassifyError(err)}
}

// HandleError logs err at the level its kind deserves and tells the user
// what to do next.
func (h *BaseHandler) HandleError(ctx context.Context, chatID int64, err error) {
	if err == nil {
		return
	}

	f := describeFailure(err)
	if ce := ctxzap.Extract(ctx).Check(f.level, f.event); ce != nil {
		ce.Write(zap.Error(err), zap.Int64("chat_id", chatID), zap.Bool("critical", f.critical))
	}

	h.sendMessage(chatID, f.notice, nil)
}

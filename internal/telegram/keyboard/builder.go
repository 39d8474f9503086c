package keyboard

import (
	"github.com/futig/medwatch-backend/internal/entity"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Builder creates inline keyboards
type Builder struct{}

// NewBuilder creates a keyboard builder
func NewBuilder() *Builder {
	return &Builder{}
}

// StartKeyboard creates the initial start button
func (b *Builder) StartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚀 Start a report", EncodeCallback(PrefixAction, ActionStart)),
		),
	)
}

// CancelConfirmKeyboard asks to confirm cancellation
func (b *Builder) CancelConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Yes, cancel", EncodeCallback(PrefixConfirm, ConfirmCancel)),
			tgbotapi.NewInlineKeyboardButtonData("❌ No, continue", EncodeCallback(PrefixConfirm, ConfirmProceed)),
		),
	)
}

// QuestionsDoneKeyboard is shown once every question is answered
func (b *Builder) QuestionsDoneKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔍 Review report", EncodeCallback(PrefixAction, ActionReview)),
		),
		b.downloadRow(),
	)
}

// ReviewedKeyboard is shown with the pre-submission review
func (b *Builder) ReviewedKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📨 Submit report", EncodeCallback(PrefixAction, ActionSubmit)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Review again", EncodeCallback(PrefixAction, ActionReview)),
		),
		b.downloadRow(),
	)
}

// KeyboardForStatus picks the keyboard that matches a finished session
func (b *Builder) KeyboardForStatus(status entity.SessionStatus) *tgbotapi.InlineKeyboardMarkup {
	var markup tgbotapi.InlineKeyboardMarkup
	switch status {
	case entity.SessionStatusQuestionsDone:
		markup = b.QuestionsDoneKeyboard()
	case entity.SessionStatusReviewed:
		markup = b.ReviewedKeyboard()
	default:
		return nil
	}
	return &markup
}

func (b *Builder) downloadRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📕 Download .pdf", EncodeCallback(PrefixDownload, string(entity.FormatPDF))),
		tgbotapi.NewInlineKeyboardButtonData("📄 Download .md", EncodeCallback(PrefixDownload, string(entity.FormatMarkdown))),
	)
}

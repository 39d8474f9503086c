package report

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/futig/medwatch-backend/internal/entity"
)

// SubmitHTTPAudioAnswer answers the current question with an uploaded WAV
// recording. The upload was size checked against its header already; the
// read is bounded again in case the header lies.
func (uc *ReportUsecase) SubmitHTTPAudioAnswer(
	ctx context.Context, sessionID string, upload *multipart.FileHeader,
) (*entity.TurnResult, error) {
	f, err := upload.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", upload.Filename, err)
	}
	defer f.Close()

	audio, err := io.ReadAll(io.LimitReader(f, upload.Size+1))
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", upload.Filename, err)
	}
	if int64(len(audio)) > upload.Size {
		return nil, fmt.Errorf("%w: %s is larger than declared", entity.ErrFileTooLarge, upload.Filename)
	}

	return uc.SubmitAudioAnswer(ctx, sessionID, audio, upload.Filename)
}

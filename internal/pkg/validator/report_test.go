package validator

import (
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/futig/medwatch-backend/internal/config"
	"github.com/futig/medwatch-backend/internal/entity"
	"github.com/stretchr/testify/assert"
)

func audioHeader(name, contentType string, size int64) *multipart.FileHeader {
	header := textproto.MIMEHeader{}
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	return &multipart.FileHeader{Filename: name, Header: header, Size: size}
}

func TestValidateAudioFile(t *testing.T) {
	v := NewValidator(config.FileUploadConfig{MaxAudioFileSize: 1024, MaxUploadSize: 2048})

	tests := []struct {
		name    string
		file    *multipart.FileHeader
		wantErr error
	}{
		{name: "wav", file: audioHeader("answer.WAV", "audio/wav", 100)},
		{name: "no content type", file: audioHeader("answer.wav", "", 100)},
		{name: "mp3", file: audioHeader("answer.mp3", "audio/mpeg", 100), wantErr: entity.ErrInvalidExtension},
		{name: "wrong content type", file: audioHeader("answer.wav", "text/plain", 100), wantErr: entity.ErrInvalidExtension},
		{name: "too large", file: audioHeader("answer.wav", "audio/wav", 4096), wantErr: entity.ErrFileTooLarge},
		{name: "missing", file: nil, wantErr: entity.ErrMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateAudioFile(tt.file)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateSubmitAnswer(t *testing.T) {
	v := NewValidator(config.FileUploadConfig{})

	assert.NoError(t, v.ValidateSubmitAnswer(&entity.SubmitAnswerRequest{Answer: "a rash"}))
	assert.ErrorIs(t, v.ValidateSubmitAnswer(&entity.SubmitAnswerRequest{Answer: "  "}), entity.ErrMissingField)
}

func TestValidateSubmitReport(t *testing.T) {
	v := NewValidator(config.FileUploadConfig{})

	assert.NoError(t, v.ValidateSubmitReport(&entity.SubmitReportRequest{}))
	assert.NoError(t, v.ValidateSubmitReport(&entity.SubmitReportRequest{CallbackURL: "https://example.com/hook"}))
	assert.ErrorIs(t, v.ValidateSubmitReport(&entity.SubmitReportRequest{CallbackURL: "example.com/hook"}), entity.ErrInvalidFormat)
}

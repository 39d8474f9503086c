package validator

import (
	"fmt"
	"mime"
	"mime/multipart"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/futig/medwatch-backend/internal/entity"
)

// wavMediaTypes are the declared part types accepted for recordings.
// Browsers differ in how they label WAV, and some send no specific type.
var wavMediaTypes = map[string]bool{
	"audio/wav":                true,
	"audio/x-wav":              true,
	"audio/wave":               true,
	"audio/vnd.wave":           true,
	"application/octet-stream": true,
}

func (v *Validator) ValidateSubmitAnswer(req *entity.SubmitAnswerRequest) error {
	if strings.TrimSpace(req.Answer) == "" {
		return fmt.Errorf("%w: answer", entity.ErrMissingField)
	}
	return nil
}

func (v *Validator) ValidateSubmitAudioAnswer(req *entity.SubmitAudioAnswerRequest) error {
	if req.AudioFile == nil {
		return fmt.Errorf("%w: audio", entity.ErrMissingField)
	}
	return v.ValidateAudioFile(req.AudioFile)
}

// ValidateSubmitReport accepts an empty callback URL; a set one must be an
// absolute http(s) URL.
func (v *Validator) ValidateSubmitReport(req *entity.SubmitReportRequest) error {
	if req.CallbackURL == "" {
		return nil
	}

	u, err := url.Parse(req.CallbackURL)
	switch {
	case err != nil:
		return fmt.Errorf("%w: callback_url: %v", entity.ErrInvalidFormat, err)
	case u.Scheme != "http" && u.Scheme != "https", u.Host == "":
		return fmt.Errorf("%w: callback_url must be an absolute http(s) URL", entity.ErrInvalidFormat)
	}
	return nil
}

// ValidateAudioFile checks the name, size and declared type of an uploaded
// WAV recording.
func (v *Validator) ValidateAudioFile(file *multipart.FileHeader) error {
	if file == nil {
		return fmt.Errorf("%w: audio", entity.ErrMissingField)
	}

	if ext := strings.ToLower(filepath.Ext(file.Filename)); ext != ".wav" {
		return fmt.Errorf("%w: %q, only .wav recordings are accepted", entity.ErrInvalidExtension, ext)
	}

	if limit := v.cfg.MaxAudioFileSize; file.Size > limit {
		return fmt.Errorf("%w: %s has %d bytes, limit is %d", entity.ErrFileTooLarge, file.Filename, file.Size, limit)
	}

	declared := file.Header.Get("Content-Type")
	if declared == "" {
		return nil
	}
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil || !wavMediaTypes[mediaType] {
		return fmt.Errorf("%w: content type %q is not WAV audio", entity.ErrInvalidExtension, declared)
	}
	return nil
}

// MaxUploadSize bounds multipart request bodies
func (v *Validator) MaxUploadSize() int64 {
	return v.cfg.MaxUploadSize
}

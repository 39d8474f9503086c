package asr

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/futig/medwatch-backend/internal/config"
	"github.com/futig/medwatch-backend/internal/entity"
	"github.com/futig/medwatch-backend/internal/integration/common"
	"github.com/futig/medwatch-backend/internal/pkg/retry"
	pkghttp "github.com/futig/medwatch-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector transcribes WAV answers through the speech recognition service
type Connector struct {
	config    config.ASRConnectorConfig
	connector *pkghttp.Connector
}

func NewConnector(cfg config.ASRConnectorConfig, logger *zap.Logger) *Connector {
	return &Connector{
		config:    cfg,
		connector: common.NewBaseConnector("asr", cfg.HTTPClientConfig, logger),
	}
}

// TranscribeBytes uploads the recording and returns the trimmed transcript.
// The checksum lets the service deduplicate retried uploads.
func (c *Connector) TranscribeBytes(ctx context.Context, audioData []byte, filename string) (string, error) {
	if len(audioData) == 0 {
		return "", fmt.Errorf("%w: empty audio", entity.ErrInvalidFile)
	}

	sum := sha256.Sum256(audioData)
	checksum := hex.EncodeToString(sum[:])
	ctx = ctxzap.ToContext(ctx, ctxzap.Extract(ctx).With(zap.String("audio_checksum", checksum)))

	ctxzap.Info(ctx, "transcribing answer",
		zap.String("filename", filename),
		zap.Int("size", len(audioData)),
		zap.String("language", c.config.Language),
	)

	form := func(w *multipart.Writer) error {
		return writeAudioForm(w, filename, audioData, map[string]string{
			"checksum": checksum,
			"language": c.config.Language,
		})
	}

	resp, err := retry.DoWithData(ctx, &c.config.Retry, func() (entity.ASRTranscribeResponse, error) {
		var resp entity.ASRTranscribeResponse
		err := c.connector.DoMultipartRequest(ctx, http.MethodPost, c.config.TranscribeEndpoint, form, &resp)
		return resp, err
	})
	if err != nil {
		return "", fmt.Errorf("transcribe %s: %w", filename, err)
	}

	text := strings.TrimSpace(resp.Transcriptions)
	ctxzap.Info(ctx, "answer transcribed", zap.Int("transcript_length", len(text)))
	return text, nil
}

// writeAudioForm writes the recording as a WAV file part followed by the
// plain fields. Empty field values are left out.
func writeAudioForm(w *multipart.Writer, filename string, audio []byte, fields map[string]string) error {
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", "audio/wav")

	part, err := w.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create audio part: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return fmt.Errorf("write audio part: %w", err)
	}

	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := w.WriteField(name, value); err != nil {
			return fmt.Errorf("write %s field: %w", name, err)
		}
	}
	return nil
}

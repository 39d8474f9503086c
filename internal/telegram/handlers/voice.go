package handlers

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os/exec"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/futig/medwatch-backend/internal/entity"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	maxVoiceFileSize   = 10 << 20
	voiceFetchTimeout  = 30 * time.Second
	voiceFetchAttempts = 3
)

// VoiceLoader fetches a Telegram voice message and returns it as WAV
type VoiceLoader func(ctx context.Context, fileID string) ([]byte, error)

// FileLocator resolves a file ID to a download link
type FileLocator interface {
	GetFile(config tgbotapi.FileConfig) (tgbotapi.File, error)
}

// VoiceDownloader pulls OGG/Opus voice notes from Telegram and transcodes
// them to the 16 kHz mono WAV the ASR service expects.
type VoiceDownloader struct {
	files FileLocator
	token string
	// endpoint is a format string taking the token and the file path
	endpoint string
	client   *http.Client
	convert  func(ctx context.Context, ogg []byte) ([]byte, error)
}

// NewVoiceLoader wires a VoiceDownloader to the bot API and ffmpeg
func NewVoiceLoader(bot *tgbotapi.BotAPI) VoiceLoader {
	d := &VoiceDownloader{
		files:    bot,
		token:    bot.Token,
		endpoint: tgbotapi.FileEndpoint,
		client: &http.Client{
			Timeout: voiceFetchTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
		convert: transcodeToWav,
	}
	return d.Load
}

func (d *VoiceDownloader) Load(ctx context.Context, fileID string) ([]byte, error) {
	file, err := d.files.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("resolve voice file: %w", err)
	}
	if file.FileSize > maxVoiceFileSize {
		return nil, fmt.Errorf("%w: voice note is %d bytes, limit %d", entity.ErrFileTooLarge, file.FileSize, maxVoiceFileSize)
	}

	link, err := url.Parse(fmt.Sprintf(d.endpoint, d.token, file.FilePath))
	if err != nil {
		return nil, fmt.Errorf("parse voice file link: %w", err)
	}
	// The link embeds the bot token
	if link.Scheme != "https" {
		return nil, fmt.Errorf("refusing to download voice file over %s", link.Scheme)
	}

	ogg, err := retry.DoWithData(
		func() ([]byte, error) { return d.fetch(ctx, link.String()) },
		retry.Context(ctx),
		retry.Attempts(voiceFetchAttempts),
		retry.Delay(300*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool { return !errors.Is(err, entity.ErrFileTooLarge) }),
		retry.OnRetry(func(n uint, err error) {
			ctxzap.Warn(ctx, "voice download failed, retrying", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	if err != nil {
		return nil, err
	}

	return d.convert(ctx, ogg)
}

func (d *VoiceDownloader) fetch(ctx context.Context, link string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("build voice request: %w", err))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download voice file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("download voice file: status %d", resp.StatusCode)
		if resp.StatusCode < http.StatusInternalServerError {
			return nil, retry.Unrecoverable(err)
		}
		return nil, err
	}

	// FileSize from GetFile is optional, so the body is capped too
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxVoiceFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read voice file: %w", err)
	}
	if len(data) > maxVoiceFileSize {
		return nil, fmt.Errorf("%w: voice note exceeds %d bytes", entity.ErrFileTooLarge, maxVoiceFileSize)
	}
	return data, nil
}

// transcodeToWav pipes the recording through ffmpeg.
func transcodeToWav(ctx context.Context, input []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner", "-loglevel", "error",
		"-i", "pipe:0",
		"-f", "wav", "-ar", "16000", "-ac", "1",
		"pipe:1",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg transcode: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}
	if stdout.Len() == 0 {
		return nil, errors.New("ffmpeg transcode: no output")
	}
	return stdout.Bytes(), nil
}

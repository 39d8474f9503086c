package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/futig/medwatch-backend/internal/entity"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fileLocator struct {
	file tgbotapi.File
	err  error
}

func (f fileLocator) GetFile(tgbotapi.FileConfig) (tgbotapi.File, error) {
	return f.file, f.err
}

func newTestDownloader(srv *httptest.Server, file tgbotapi.File) *VoiceDownloader {
	return &VoiceDownloader{
		files:    fileLocator{file: file},
		token:    "123:abc",
		endpoint: srv.URL + "/file/bot%s/%s",
		client:   srv.Client(),
		convert: func(_ context.Context, ogg []byte) ([]byte, error) {
			return append([]byte("WAV:"), ogg...), nil
		},
	}
}

func TestVoiceDownloader_Load(t *testing.T) {
	calls := 0
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/file/bot123:abc/voice/file_1.oga", r.URL.Path)
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("OggS"))
	}))
	defer srv.Close()

	d := newTestDownloader(srv, tgbotapi.File{FileID: "f1", FilePath: "voice/file_1.oga", FileSize: 4})

	wav, err := d.Load(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, "WAV:OggS", string(wav))
	assert.Equal(t, 2, calls)
}

func TestVoiceDownloader_TooLarge(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", maxVoiceFileSize+1)))
	}))
	defer srv.Close()

	declared := newTestDownloader(srv, tgbotapi.File{FilePath: "v.oga", FileSize: maxVoiceFileSize + 1})
	_, err := declared.Load(context.Background(), "f")
	assert.ErrorIs(t, err, entity.ErrFileTooLarge)

	undeclared := newTestDownloader(srv, tgbotapi.File{FilePath: "v.oga"})
	_, err = undeclared.Load(context.Background(), "f")
	assert.ErrorIs(t, err, entity.ErrFileTooLarge)
}

func TestVoiceDownloader_RejectsPlainHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("voice file fetched over plain http")
	}))
	defer srv.Close()

	_, err := newTestDownloader(srv, tgbotapi.File{FilePath: "v.oga"}).Load(context.Background(), "f")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "over http")
}

func TestVoiceDownloader_ClientErrorIsNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestDownloader(srv, tgbotapi.File{FilePath: "v.oga"}).Load(context.Background(), "f")
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	d := newTestDownloader(srv, tgbotapi.File{})
	d.files = fileLocator{err: errors.New("file is too big")}
	_, err = d.Load(context.Background(), "f")
	assert.ErrorContains(t, err, "resolve voice file")
}

package openai

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/transcription"
)

func TestOpenAIProvider_Transcribe(t *testing.T) {
	fields := map[string]string{}
	var fileName string
	var auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/v1/audio/transcriptions", r.URL.Path)
		auth = r.Header.Get("Authorization")

		_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		mr := multipart.NewReader(r.Body, params["boundary"])
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			if part.FileName() != "" {
				fileName = part.FileName()
				continue
			}
			b, _ := io.ReadAll(part)
			fields[part.FormName()] = string(b)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":" xin chào các em "}`))
	}))
	defer srv.Close()

	p, err := NewProvider(&config.TranscriptionInfo{
		ApiKey:   "gsk_test",
		BaseUrl:  srv.URL + "/openai/v1",
		Model:    "whisper-large-v3",
		Language: "vi",
	}, logrus.NewEntry(logrus.New()))
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	text, err := p.Transcribe(context.Background(), &transcription.Audio{
		Data:     []byte("RIFF"),
		MimeType: "audio/wav",
		FileName: "audio.wav",
	})
	require.NoError(t, err)
	assert.Equal(t, " xin chào các em ", text)

	assert.Equal(t, "Bearer gsk_test", auth)
	assert.Equal(t, "audio.wav", fileName)
	assert.Equal(t, "whisper-large-v3", fields["model"])
	assert.Equal(t, "vi", fields["language"])
	assert.Equal(t, "json", fields["response_format"])
	assert.Contains(t, []string{"0", "0.0"}, fields["temperature"])
}

func TestNewProvider_RequiresKey(t *testing.T) {
	_, err := NewProvider(&config.TranscriptionInfo{}, logrus.NewEntry(logrus.New()))
	assert.Error(t, err)
}

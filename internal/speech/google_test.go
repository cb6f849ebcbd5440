package speech

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/hammamikhairi/ottovoice/internal/domain"
	"github.com/hammamikhairi/ottovoice/internal/logger"
)

func testClient(t *testing.T, key string, handler http.HandlerFunc) (*GoogleClient, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewGoogleClient(key, logger.New(logger.LevelOff, nil), WithEndpoint(srv.URL+"/v1/text:synthesize")), &calls
}

func TestSynthesizeRequestShape(t *testing.T) {
	client, _ := testClient(t, "tts-key", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/text:synthesize" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("key"); got != "tts-key" {
			t.Errorf("key = %q", got)
		}
		var req synthesizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.Input.Text != "Boil the water." {
			t.Errorf("text = %q", req.Input.Text)
		}
		if req.Voice.LanguageCode != "en-US" || req.Voice.Name != "en-US-Standard-C" {
			t.Errorf("voice = %+v", req.Voice)
		}
		if req.AudioConfig.AudioEncoding != "MP3" || req.AudioConfig.SampleRateHertz != 24000 {
			t.Errorf("audioConfig = %+v", req.AudioConfig)
		}
		// "ID3" base64-encoded.
		w.Write([]byte(`{"audioContent":"SUQz"}`))
	})

	audio, err := client.Synthesize(context.Background(), "Boil the water.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(audio) != "ID3" {
		t.Fatalf("audio = %q", audio)
	}
}

func TestSynthesizeFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"missing audio", 200, `{}`, domain.ErrMalformedResponse},
		{"empty audio", 200, `{"audioContent":""}`, domain.ErrMalformedResponse},
		{"bad base64", 200, `{"audioContent":"!!!"}`, domain.ErrMalformedResponse},
		{"bad json", 200, `not json`, domain.ErrMalformedResponse},
		{"server error", 500, `{"error":{}}`, domain.ErrTransport},
		{"forbidden", 403, `{"error":{"message":"API key not valid"}}`, domain.ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := testClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			audio, err := client.Synthesize(context.Background(), "x")
			if audio != nil {
				t.Errorf("audio = %v, want nil", audio)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if !errors.Is(err, domain.ErrSynthesisFailed) {
				t.Errorf("err = %v, should wrap ErrSynthesisFailed", err)
			}
		})
	}
}

func TestSynthesizeMissingKeyMakesNoRequest(t *testing.T) {
	client, calls := testClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"audioContent":"SUQz"}`))
	})
	_, err := client.Synthesize(context.Background(), "x")
	if !errors.Is(err, domain.ErrMissingCredentials) {
		t.Fatalf("err = %v, want ErrMissingCredentials", err)
	}
	if n := atomic.LoadInt32(calls); n != 0 {
		t.Fatalf("requests = %d, want 0", n)
	}
}

func TestSynthesizeOneRequestPerCall(t *testing.T) {
	client, calls := testClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"audioContent":"SUQz"}`))
	})
	for i := 0; i < 3; i++ {
		if _, err := client.Synthesize(context.Background(), "same text"); err != nil {
			t.Fatal(err)
		}
	}
	if n := atomic.LoadInt32(calls); n != 3 {
		t.Fatalf("requests = %d, want 3 (no caching)", n)
	}
}

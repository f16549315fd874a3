package transcribe

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(path, []byte("RIFFfake"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWhisperTranscribeOK(t *testing.T) {
	var gotAuth, gotModel, gotFormat string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotModel = r.FormValue("model")
		gotFormat = r.FormValue("response_format")

		f, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file part: %v", err)
		} else {
			data, _ := io.ReadAll(f)
			f.Close()
			if string(data) != "RIFFfake" {
				t.Errorf("file part = %q", data)
			}
		}
		io.WriteString(w, "  hello from whisper \n")
	}))
	defer srv.Close()

	c := NewWhisperClient(WhisperOptions{URL: srv.URL, Model: "whisper-1", APIKey: "sk-test"})
	text, err := c.Transcribe(context.Background(), writeTempAudio(t))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "hello from whisper" {
		t.Errorf("text = %q, want trimmed body", text)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotModel != "whisper-1" {
		t.Errorf("model = %q", gotModel)
	}
	if gotFormat != "text" {
		t.Errorf("response_format = %q", gotFormat)
	}
}

func TestWhisperStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		kind   ErrorKind
	}{
		{http.StatusUnauthorized, KindAuth},
		{http.StatusForbidden, KindAuth},
		{http.StatusTooManyRequests, KindRateLimit},
		{http.StatusInternalServerError, KindService},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", tc.status)
		}))

		c := NewWhisperClient(WhisperOptions{URL: srv.URL, APIKey: "k"})
		_, err := c.Transcribe(context.Background(), writeTempAudio(t))
		srv.Close()

		if err == nil {
			t.Fatalf("status %d: expected error", tc.status)
		}
		var re *RemoteError
		if !errors.As(err, &re) {
			t.Fatalf("status %d: err = %T, want *RemoteError", tc.status, err)
		}
		if re.Kind != tc.kind || re.StatusCode != tc.status {
			t.Errorf("status %d: got kind=%v code=%d", tc.status, re.Kind, re.StatusCode)
		}
	}
}

func TestWhisperNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewWhisperClient(WhisperOptions{URL: srv.URL, APIKey: "k"})
	_, err := c.Transcribe(context.Background(), writeTempAudio(t))
	if err == nil {
		t.Fatal("expected error")
	}
	var re *RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("err = %T, want *RemoteError", err)
	}
	if re.Kind != KindNetwork {
		t.Errorf("kind = %v, want network", re.Kind)
	}
	if re.Unwrap() == nil {
		t.Error("network error should carry its cause")
	}
}

func TestWhisperMissingFile(t *testing.T) {
	c := NewWhisperClient(WhisperOptions{URL: "http://localhost:0", APIKey: "k"})
	_, err := c.Transcribe(context.Background(), filepath.Join(t.TempDir(), "gone.wav"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "open audio file") {
		t.Errorf("err = %v", err)
	}
}

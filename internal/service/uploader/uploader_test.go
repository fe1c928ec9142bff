package uploader

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestUploadSuccess(t *testing.T) {
	payload := []byte("photo bytes")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("relay could not parse form: %v", err)
		}
		if got := r.PostFormValue("filename"); got != "fault.jpg" {
			t.Errorf("filename = %q", got)
		}
		if got := r.PostFormValue("mimetype"); got != "image/jpeg" {
			t.Errorf("mimetype = %q", got)
		}
		data, err := base64.StdEncoding.DecodeString(r.PostFormValue("data"))
		if err != nil || string(data) != string(payload) {
			t.Errorf("data round trip failed: %v %q", err, data)
		}
		w.Write([]byte(`{"result":"success","link":"https://files.example/fault.jpg"}`))
	}))
	defer srv.Close()

	s := NewService(srv.URL, zap.NewNop())
	link := s.Upload(context.Background(), payload, "fault.jpg", "image/jpeg")
	if link != "https://files.example/fault.jpg" {
		t.Errorf("link = %q", link)
	}
}

func TestUploadServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewService(srv.URL, zap.NewNop())
	if link := s.Upload(context.Background(), []byte("x"), "f", "text/plain"); link != "" {
		t.Errorf("link = %q, want empty on HTTP 500", link)
	}
}

func TestUploadMalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	s := NewService(srv.URL, zap.NewNop())
	if link := s.Upload(context.Background(), []byte("x"), "f", "text/plain"); link != "" {
		t.Errorf("link = %q, want empty on malformed body", link)
	}
}

func TestUploadErrorResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":"error","error":"quota exceeded"}`))
	}))
	defer srv.Close()

	s := NewService(srv.URL, zap.NewNop())
	if link := s.Upload(context.Background(), []byte("x"), "f", "text/plain"); link != "" {
		t.Errorf("link = %q, want empty on error result", link)
	}
}

func TestUploadUnreachableRelay(t *testing.T) {
	s := NewService("http://127.0.0.1:1", zap.NewNop())
	if link := s.Upload(context.Background(), []byte("x"), "f", "text/plain"); link != "" {
		t.Errorf("link = %q, want empty when relay is unreachable", link)
	}
}

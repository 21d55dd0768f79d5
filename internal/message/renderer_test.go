package message_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/habicasa/backend/internal/message"
	"go.uber.org/zap"
)

func TestTemplate_ContainsCodeAndExpiry(t *testing.T) {
	out := message.Template{}.Verification(context.Background(), "482913")

	if !strings.Contains(out, "482913") {
		t.Errorf("message %q does not contain the code", out)
	}
	if !strings.Contains(out, "5 minutos") {
		t.Errorf("message %q does not mention the expiry", out)
	}
}

func TestOpenAI_UsesCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Tu código HabiCasa: 482913. Vence en 5 minutos."}}]}`))
	}))
	defer srv.Close()

	r := message.NewOpenAI(srv.URL, "test-key", "test-model", zap.NewNop())
	out := r.Verification(context.Background(), "482913")

	if out != "Tu código HabiCasa: 482913. Vence en 5 minutos." {
		t.Errorf("got %q, want the completion content", out)
	}
}

func TestOpenAI_FallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := message.NewOpenAI(srv.URL, "test-key", "test-model", zap.NewNop())
	out := r.Verification(context.Background(), "482913")

	want := message.Template{}.Verification(context.Background(), "482913")
	if out != want {
		t.Errorf("got %q, want template fallback %q", out, want)
	}
}

func TestOpenAI_FallsBackWhenCodeMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Hola, bienvenido a HabiCasa."}}]}`))
	}))
	defer srv.Close()

	r := message.NewOpenAI(srv.URL, "test-key", "test-model", zap.NewNop())
	out := r.Verification(context.Background(), "482913")

	want := message.Template{}.Verification(context.Background(), "482913")
	if out != want {
		t.Errorf("got %q, want template fallback %q", out, want)
	}
}

package translate

import (
	"context"
	"errors"
	"strings"
	"testing"

	errs "chat-translator/internal/errors"
	"chat-translator/internal/llm"
)

type fakeLLM struct {
	reply string
	err   error
	calls [][]llm.Message
}

func (f *fakeLLM) Generate(_ context.Context, messages []llm.Message) (llm.Response, error) {
	f.calls = append(f.calls, messages)
	if f.err != nil {
		return llm.Response{}, f.err
	}
	return llm.Response{Content: f.reply, Model: "fake"}, nil
}

func TestLLMService_Detect(t *testing.T) {
	tests := []struct {
		reply string
		want  string
	}{
		{"en", "en"},
		{" ES\n", "es"},
		{"\"de\".", "de"},
		{"pt-BR", "pt"},
		{"fr (French)", "fr"},
	}
	for _, tt := range tests {
		f := &fakeLLM{reply: tt.reply}
		got, err := NewLLMService(f, nil).Detect(context.Background(), "text")
		if err != nil {
			t.Fatalf("reply %q: %v", tt.reply, err)
		}
		if got != tt.want {
			t.Fatalf("reply %q: want %q, got %q", tt.reply, tt.want, got)
		}
	}
}

func TestLLMService_DetectIndeterminate(t *testing.T) {
	for _, reply := range []string{"und", "", "I am not sure", "123"} {
		f := &fakeLLM{reply: reply}
		_, err := NewLLMService(f, nil).Detect(context.Background(), "???")
		var de *errs.DetectionError
		if !errors.As(err, &de) {
			t.Fatalf("reply %q: want DetectionError, got %v", reply, err)
		}
	}
}

func TestLLMService_DetectBackendFailure(t *testing.T) {
	cause := errors.New("timeout")
	_, err := NewLLMService(&fakeLLM{err: cause}, nil).Detect(context.Background(), "hi")
	var de *errs.DetectionError
	if !errors.As(err, &de) || !errors.Is(err, cause) {
		t.Fatalf("want DetectionError wrapping cause, got %v", err)
	}
}

func TestLLMService_Translate(t *testing.T) {
	f := &fakeLLM{reply: "  Hola \n"}
	got, err := NewLLMService(f, nil).Translate(context.Background(), "Hello", "en", "es")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if got != "Hola" {
		t.Fatalf("want Hola, got %q", got)
	}
	if len(f.calls) != 1 || !strings.Contains(f.calls[0][0].Content, "from en to es") {
		t.Fatalf("unexpected prompt: %+v", f.calls)
	}
	if f.calls[0][1].Content != "Hello" || f.calls[0][1].Role != llm.RoleUser {
		t.Fatalf("user message not forwarded: %+v", f.calls[0][1])
	}
}

func TestLLMService_TranslateFailure(t *testing.T) {
	for name, f := range map[string]*fakeLLM{
		"backend": {err: errors.New("503")},
		"empty":   {reply: "   "},
	} {
		_, err := NewLLMService(f, nil).Translate(context.Background(), "Hello", "en", "es")
		var te *errs.TranslationError
		if !errors.As(err, &te) {
			t.Fatalf("%s: want TranslationError, got %v", name, err)
		}
		if te.SourceLang != "en" || te.TargetLang != "es" {
			t.Fatalf("%s: unexpected pair %s->%s", name, te.SourceLang, te.TargetLang)
		}
	}
}

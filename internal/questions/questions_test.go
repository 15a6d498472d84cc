package questions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quizterra/quizterra/internal/game"
)

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Topic != "rivers" || req.Count != 2 {
			t.Errorf("unexpected request: %+v", req)
		}
		json.NewEncoder(w).Encode(generateResponse{Questions: []game.Question{
			{Question: "Longest river?", Options: []string{"Nile", "Amazon"}, Answer: "Nile"},
			{Question: "Longest river in Europe?", Options: []string{"Volga", "Danube"}, Answer: "Volga"},
		}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "default", time.Second)
	qs, err := c.Generate(context.Background(), "rivers", "easy", 2)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(qs) != 2 || qs[0].Answer != "Nile" {
		t.Errorf("unexpected questions: %+v", qs)
	}
}

func TestGenerateZeroQuestionsFailsLoudly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Questions: []game.Question{}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "default", time.Second)
	if _, err := c.Generate(context.Background(), "rivers", "", 3); !errors.Is(err, game.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestGenerateProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "default", time.Second)
	if _, err := c.Generate(context.Background(), "rivers", "", 3); !errors.Is(err, game.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestGenerateCountBounds(t *testing.T) {
	c := NewClient("http://unused", "default", time.Second)
	for _, count := range []int{0, 21} {
		if _, err := c.Generate(context.Background(), "rivers", "", count); !errors.Is(err, game.ErrGenerationFailed) {
			t.Errorf("count %d: expected ErrGenerationFailed, got %v", count, err)
		}
	}
}

package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// Mock Ollama API responses
type mockEmbedResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float32 `json:"embeddings"`
}

type mockListResponse struct {
	Models []mockModel `json:"models"`
}

type mockModel struct {
	Name string `json:"name"`
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		model     string
		wantModel string
		wantURL   string
		wantErr   bool
	}{
		{
			name:      "with custom url and model",
			url:       "http://example.com:11434",
			model:     "custom-model",
			wantModel: "custom-model",
			wantURL:   "http://example.com:11434",
		},
		{
			name:      "with all defaults",
			wantModel: DefaultModel,
			wantURL:   DefaultURL,
		},
		{
			name:    "without scheme",
			url:     "localhost",
			wantErr: true,
		},
		{
			name:    "unparsable",
			url:     "http://[::1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.url, tt.model)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if client.Model() != tt.wantModel {
				t.Errorf("Model() = %q, want %q", client.Model(), tt.wantModel)
			}
			if client.URL() != tt.wantURL {
				t.Errorf("URL() = %q, want %q", client.URL(), tt.wantURL)
			}
		})
	}
}

func newMockServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Ollama is running"))
	})
	mux.HandleFunc("/api/embed", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model string `json:"model"`
			Input any    `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		count := 1
		if inputs, ok := req.Input.([]any); ok {
			count = len(inputs)
		}
		resp := mockEmbedResponse{Model: req.Model}
		for i := 0; i < count; i++ {
			resp.Embeddings = append(resp.Embeddings, []float32{float32(i + 1), 0.5, -0.25})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(mockListResponse{
			Models: []mockModel{{Name: "nomic-embed-text:latest"}, {Name: "llama3:8b"}},
		})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestIsAvailable(t *testing.T) {
	server := newMockServer(t)
	ctx := context.Background()

	if !IsAvailable(ctx, server.URL) {
		t.Error("expected mock server to be available")
	}

	closed := httptest.NewServer(http.NotFoundHandler())
	addr := closed.URL
	closed.Close()
	if IsAvailable(ctx, addr) {
		t.Error("expected closed server to be unavailable")
	}
}

func TestEmbed(t *testing.T) {
	server := newMockServer(t)
	client, err := NewClient(server.URL, "nomic-embed-text")
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	vec, err := client.Embed(ctx, "hello world")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vec) != 3 || vec[0] != 1 || vec[2] != -0.25 {
		t.Errorf("Embed() = %v", vec)
	}

	vecs, err := client.EmbedBatch(ctx, []string{"a", "b"})
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}
	if len(vecs) != 2 || vecs[1][0] != 2 {
		t.Errorf("EmbedBatch() = %v", vecs)
	}

	if _, err := client.Embed(ctx, "  "); err == nil {
		t.Error("expected error for empty input")
	}
	if _, err := client.EmbedBatch(ctx, nil); err == nil {
		t.Error("expected error for no input")
	}
}

func TestCheckModel(t *testing.T) {
	server := newMockServer(t)
	ctx := context.Background()

	tests := []struct {
		model   string
		wantErr bool
	}{
		{"nomic-embed-text", false},
		{"llama3:8b", false},
		{"missing-model", true},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			client, err := NewClient(server.URL, tt.model)
			if err != nil {
				t.Fatal(err)
			}
			err = client.CheckModel(ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckModel() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

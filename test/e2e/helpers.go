//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"mime/multipart"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/deckray/internal/api/handlers"
	"github.com/cloo-solutions/deckray/internal/domain"
	"github.com/cloo-solutions/deckray/internal/repository"
	"github.com/cloo-solutions/deckray/internal/server"
	"github.com/cloo-solutions/deckray/internal/service"
	"github.com/cloo-solutions/deckray/internal/testutil"
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	HTTPClient   *http.Client
}

// SetupE2EEnv creates a full E2E test environment with a database container
// and an in-process server.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	serverURL, serverCloser := startServer(t, pool, port)

	return &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		Pool:         pool,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path string) (*APIResponse, error) {
	req, err := http.NewRequest(http.MethodGet, e.ServerURL+path, nil)
	if err != nil {
		return nil, err
	}
	return e.doRequest(req)
}

// PostJSON performs a POST request with a JSON body
func (e *E2ETestEnv) PostJSON(path string, body interface{}) (*APIResponse, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal body: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, e.ServerURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return e.doRequest(req)
}

// PostUpload performs a POST request with a multipart file upload and the
// given extra form fields.
func (e *E2ETestEnv) PostUpload(path, filename string, content []byte, fields map[string]string) (*APIResponse, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, e.ServerURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return e.doRequest(req)
}

func (e *E2ETestEnv) doRequest(req *http.Request) (*APIResponse, error) {
	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}

	return &apiResp, nil
}

// startServer wires the real router with the real retrieval stack and test
// doubles for the two external systems e2e cannot reach: embedding inference
// is replaced by a deterministic hash embedder and document ingestion by a
// fixture converter.
func startServer(t *testing.T, pool *pgxpool.Pool, port int) (string, func()) {
	ctx := context.Background()

	rulesRepo, err := repository.NewRulesRepository(pool, "presentation_rules")
	if err != nil {
		t.Fatalf("failed to create rules repository: %v", err)
	}

	embedder := service.NewEmbeddingService(&hashEmbedder{})
	retrievalSvc := service.NewRetrievalService(rulesRepo, embedder)
	if err := retrievalSvc.Initialize(ctx); err != nil {
		t.Fatalf("failed to initialize retrieval store: %v", err)
	}

	analyzer := service.NewAnalyzer(service.AnalyzerConfig{
		Converter: &fixtureConverter{},
		Extractor: service.NewVisualFeatureExtractor(nil, ""),
		Retriever: retrievalSvc,
	})

	router := server.NewRouter(server.RouterConfig{
		AnalyzeHandler: handlers.NewAnalyzeHandler(analyzer),
		RulesHandler:   handlers.NewRulesHandler(retrievalSvc),
		ModelHandler:   handlers.NewModelHandler(),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// hashEmbedder is a deterministic stand-in for the embedding API: equal
// texts produce equal vectors, different texts almost surely differ.
type hashEmbedder struct{}

func (hashEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, domain.EmbeddingDimensions)
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(math.Sin(float64(seed % 10007)))
	}
	return vec, nil
}

// fixtureConverter replaces PDF parsing with a fixed three-slide deck keyed
// on the uploaded bytes.
type fixtureConverter struct{}

func (fixtureConverter) Convert(content []byte, _ string) ([]*domain.SlideUnit, error) {
	if len(content) == 0 {
		return nil, domain.ErrUnreadableInput
	}
	return []*domain.SlideUnit{
		domain.NewSlideUnit(1, "Quarterly Review", nil),
		domain.NewSlideUnit(2, "Revenue grew twelve percent year over year while costs stayed flat across every region.", nil),
		domain.NewSlideUnit(3, "Thank you", nil),
	}, nil
}

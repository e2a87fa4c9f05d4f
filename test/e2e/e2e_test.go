//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"

	"github.com/stemsi/marksheet-analytics/internal/config"
	"github.com/stemsi/marksheet-analytics/internal/dataset"
	"github.com/stemsi/marksheet-analytics/internal/model"
	"github.com/stemsi/marksheet-analytics/internal/sample"
	"github.com/stemsi/marksheet-analytics/internal/service"
)

const defaultBaseURL = "http://localhost:8080/api/v1"

var (
	baseURL    string
	adminToken string
	datasetID  string
)

// envelope mirrors response.APIResponse with a typed data field.
type envelope[T any] struct {
	Data  T `json:"data"`
	Error *struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	} `json:"error"`
}

func TestMain(m *testing.M) {
	// Load .env if present (ignore error)
	_ = godotenv.Load("../../.env")

	baseURL = os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	cfg := config.Load()
	if err := resetDatabase(cfg.DatabaseURL); err != nil {
		fmt.Printf("Setup failed: %v\n", err)
		os.Exit(1)
	}

	token, err := service.NewAuthService(cfg).GenerateAdminToken("e2e")
	if err != nil {
		fmt.Printf("Token failed: %v\n", err)
		os.Exit(1)
	}
	adminToken = token

	os.Exit(m.Run())
}

func resetDatabase(dbURL string) error {
	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer conn.Close(ctx)

	for _, table := range []string{"analysis_runs", "review_words", "reviews"} {
		if _, err := conn.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return fmt.Errorf("cleanup %s: %w", table, err)
		}
	}
	return nil
}

func TestE2EFlow(t *testing.T) {
	t.Run("Upload", func(t *testing.T) {
		var buf bytes.Buffer
		if err := dataset.WriteWorkbook(&buf, sample.Generate(sample.DefaultOptions())); err != nil {
			t.Fatalf("write workbook: %v", err)
		}

		resp, err := upload("/datasets", "marksheet.xlsx", buf.Bytes())
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}

		var body envelope[struct {
			Dataset model.DatasetSummary `json:"dataset"`
		}]
		decodeJSON(t, resp, &body)
		if body.Data.Dataset.Rows != 120 {
			t.Errorf("rows = %d, want 120", body.Data.Dataset.Rows)
		}
		datasetID = body.Data.Dataset.ID
	})

	if datasetID == "" {
		t.Fatal("no dataset uploaded")
	}

	t.Run("Teachers", func(t *testing.T) {
		resp, err := post("/datasets/"+datasetID+"/teachers", map[string]any{"subjects": []string{"Math"}}, "")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}

		var body envelope[struct {
			Reports []struct {
				Subject string `json:"subject"`
			} `json:"reports"`
		}]
		decodeJSON(t, resp, &body)
		if len(body.Data.Reports) != 1 || body.Data.Reports[0].Subject != "Math" {
			t.Errorf("unexpected reports: %+v", body.Data.Reports)
		}
	})

	t.Run("Bias", func(t *testing.T) {
		resp, err := post("/datasets/"+datasetID+"/bias", map[string]any{"category": "Gender"}, "")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}
	})

	t.Run("Subjects", func(t *testing.T) {
		resp, err := post("/datasets/"+datasetID+"/subjects", nil, "")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}
	})

	t.Run("UnknownSubject", func(t *testing.T) {
		resp, err := post("/datasets/"+datasetID+"/teachers", map[string]any{"subjects": []string{"Art"}}, "")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}
	})

	t.Run("Reviews", func(t *testing.T) {
		resp, err := post("/reviews", map[string]string{"text": "Clear charts clear ranking"}, "")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create status %d", resp.StatusCode)
		}

		resp, err = get("/reviews", "")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		var body envelope[service.ReviewFeed]
		decodeJSON(t, resp, &body)
		if len(body.Data.Reviews) != 1 {
			t.Fatalf("reviews = %d, want 1", len(body.Data.Reviews))
		}
		if len(body.Data.TopWords) == 0 || body.Data.TopWords[0].Word != "clear" || body.Data.TopWords[0].Count != 2 {
			t.Errorf("unexpected top words: %+v", body.Data.TopWords)
		}
	})

	t.Run("AdminRuns", func(t *testing.T) {
		resp, err := get("/admin/runs", "")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("without token: status %d", resp.StatusCode)
		}

		// The worker flushes on a timer, so poll for the audit rows.
		deadline := time.Now().Add(10 * time.Second)
		for {
			resp, err := get("/admin/runs?dataset_id="+datasetID, adminToken)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			var body envelope[struct {
				Runs []model.AnalysisRun `json:"runs"`
			}]
			decodeJSON(t, resp, &body)
			resp.Body.Close()

			if len(body.Data.Runs) >= 4 {
				return
			}
			if time.Now().After(deadline) {
				t.Fatalf("runs = %d, want at least 4", len(body.Data.Runs))
			}
			time.Sleep(500 * time.Millisecond)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete, baseURL+"/datasets/"+datasetID, nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("delete status %d", resp.StatusCode)
		}

		resp, err = get("/datasets/"+datasetID, "")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("after delete: status %d", resp.StatusCode)
		}
	})
}

// Helpers

func upload(path, fileName string, content []byte) (*http.Response, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+path, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	client := &http.Client{Timeout: 30 * time.Second}
	return client.Do(req)
}

func post(path string, body any, token string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	client := &http.Client{Timeout: 30 * time.Second}
	return client.Do(req)
}

func get(path string, token string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

func readBody(resp *http.Response) string {
	b, _ := io.ReadAll(resp.Body)
	return string(b)
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("json decode: %v", err)
	}
}

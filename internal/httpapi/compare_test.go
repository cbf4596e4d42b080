package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newCompareContext(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/compare", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandleCompareIdenticalText(t *testing.T) {
	t.Parallel()

	server := &Server{logger: zerolog.Nop()}
	body := `{
		"text": "The Order comes into force on 1 April 2020.\n\nIt applies to the county of Devon.",
		"target_texts": [
			"The Order comes into force on 1 April 2020.",
			"It applies to the county of Devon."
		]
	}`

	c, rec := newCompareContext(t, body)
	if err := server.handleCompare(c); err != nil {
		t.Fatalf("unexpected handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	var envelope struct {
		Status string          `json:"status"`
		Data   compareResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Status != "success" {
		t.Fatalf("unexpected envelope status: %q", envelope.Status)
	}
	if envelope.Data.Similarity != 100.0 {
		t.Fatalf("expected similarity 100, got %f", envelope.Data.Similarity)
	}
	if envelope.Data.Reordered {
		t.Fatalf("identical texts must not report reordering")
	}
}

func TestHandleCompareMissingText(t *testing.T) {
	t.Parallel()

	server := &Server{logger: zerolog.Nop()}
	c, rec := newCompareContext(t, `{"target_texts":["something"]}`)

	if err := server.handleCompare(c); err != nil {
		t.Fatalf("unexpected handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleCompareMissingTargets(t *testing.T) {
	t.Parallel()

	server := &Server{logger: zerolog.Nop()}
	c, rec := newCompareContext(t, `{"text":"some text"}`)

	if err := server.handleCompare(c); err != nil {
		t.Fatalf("unexpected handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleCorpusCompareMissingText(t *testing.T) {
	t.Parallel()

	server := &Server{logger: zerolog.Nop()}
	c, rec := newCompareContext(t, `{"text":"  \n\n  ","category":"Other"}`)

	if err := server.handleCorpusCompare(c); err != nil {
		t.Fatalf("unexpected handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank text, got %d", rec.Code)
	}
}

func TestHandleCorpusCompareRejectsBadJSON(t *testing.T) {
	t.Parallel()

	server := &Server{logger: zerolog.Nop()}
	c, rec := newCompareContext(t, `{"text":`)

	if err := server.handleCorpusCompare(c); err != nil {
		t.Fatalf("unexpected handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed JSON, got %d", rec.Code)
	}
}

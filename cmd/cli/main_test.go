package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("failed to read stdout: %v", err)
	}
	return buf.String()
}

func TestPrintJSON(t *testing.T) {
	out := captureOutput(t, func() {
		printJSON(struct {
			A int `json:"a"`
		}{A: 1})
	})

	expected := "{\n  \"a\": 1\n}\n"
	if out != expected {
		t.Fatalf("unexpected json output:\n%s", out)
	}
}

func TestDoRequest_RendersResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"balance":"42"}`))
	}))
	defer server.Close()

	origURL := baseURL
	baseURL = server.URL
	defer func() { baseURL = origURL }()

	req, err := http.NewRequest(http.MethodGet, baseURL+"/v1/balances", nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}

	out := captureOutput(t, func() {
		if err := doRequest(req); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	if !strings.Contains(out, `"balance": "42"`) {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestDoRequest_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"conflict"}`))
	}))
	defer server.Close()

	req, err := http.NewRequest(http.MethodPost, server.URL+"/v1/transactions", nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}

	if err := doRequest(req); err == nil || !strings.Contains(err.Error(), "409") {
		t.Fatalf("expected 409 error, got %v", err)
	}
}

func TestTokenCmd(t *testing.T) {
	cmd := tokenCmd()
	cmd.SetArgs([]string{"--secret", "test-secret", "--customer", "cust-a"})

	out := captureOutput(t, func() {
		if err := cmd.Execute(); err != nil {
			t.Errorf("command failed: %v", err)
		}
	})

	token := strings.TrimSpace(out)
	if strings.Count(token, ".") != 2 {
		t.Fatalf("expected a JWT, got %q", token)
	}
}

package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const testToken = "123:secret-token"

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, testToken, 5*time.Second)
}

func TestGetMe_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bot"+testToken+"/getMe" {
			t.Errorf("path = %q, want /bot<token>/getMe", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		w.Write([]byte(`{"ok":true,"result":{"id":42,"is_bot":true,"username":"spider_bot"}}`))
	})

	u, err := client.GetMe(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Username != "spider_bot" {
		t.Errorf("Username = %q, want spider_bot", u.Username)
	}
	if u.ID != 42 {
		t.Errorf("ID = %d, want 42", u.ID)
	}
}

func TestGetMe_Unauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"ok":false,"error_code":401,"description":"Unauthorized"}`))
	})

	_, err := client.GetMe(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Code != 401 {
		t.Errorf("Code = %d, want 401", apiErr.Code)
	}
}

func TestGetMe_ServerErrorWithoutBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.GetMe(context.Background())
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
	if !strings.Contains(err.Error(), "status 502") {
		t.Errorf("error = %q, want mention of status 502", err.Error())
	}
}

func TestGetMe_ErrorDoesNotLeakToken(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", testToken, time.Second)

	_, err := client.GetMe(context.Background())
	if err == nil {
		t.Fatal("expected connection error")
	}
	if strings.Contains(err.Error(), "secret-token") {
		t.Errorf("error leaks bot token: %q", err.Error())
	}
}

func TestGetMe_CanceledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true,"result":{"username":"x"}}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.GetMe(ctx); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestGetWebhookInfo_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/getWebhookInfo") {
			t.Errorf("path = %q, want getWebhookInfo", r.URL.Path)
		}
		w.Write([]byte(`{"ok":true,"result":{"url":"https://example.com/hook","pending_update_count":3}}`))
	})

	info, err := client.GetWebhookInfo(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.URL != "https://example.com/hook" {
		t.Errorf("URL = %q, want https://example.com/hook", info.URL)
	}
	if info.PendingUpdateCount != 3 {
		t.Errorf("PendingUpdateCount = %d, want 3", info.PendingUpdateCount)
	}
}

func TestSetWebhook_SendsURL(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["url"] != "https://example.com/hook" {
			t.Errorf("url = %q, want https://example.com/hook", body["url"])
		}
		w.Write([]byte(`{"ok":true,"result":true,"description":"Webhook was set"}`))
	})

	if err := client.SetWebhook(context.Background(), "https://example.com/hook"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSetWebhook_Rejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: bad webhook"}`))
	})

	err := client.SetWebhook(context.Background(), "http://insecure")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Method != "setWebhook" {
		t.Errorf("Method = %q, want setWebhook", apiErr.Method)
	}
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	c := NewClient("", testToken, time.Second)
	if c.baseURL != DefaultAPIURL {
		t.Errorf("baseURL = %q, want %q", c.baseURL, DefaultAPIURL)
	}
}

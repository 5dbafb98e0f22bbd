package anomaly

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"expense-insight/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var draft = domain.AnomalyDraft{
	Amount:   500,
	Category: domain.CategoryRent,
	Date:     time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
}

func TestClassify_Success(t *testing.T) {
	var got classifyRequest
	var auth, path string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"is_anomaly": true, "score": 0.93}`))
	}))
	defer srv.Close()

	result, err := NewClient(srv.URL+"/", time.Second).Classify(context.Background(), draft, "caller-token")
	require.NoError(t, err)
	assert.True(t, result.IsAnomaly)
	assert.Equal(t, 0.93, result.Score)
	assert.Equal(t, domain.StatusAnomaly, result.Status())

	assert.Equal(t, "/anomaly", path)
	assert.Equal(t, "Bearer caller-token", auth)
	assert.Equal(t, classifyRequest{Amount: 500, Category: "Rent", Date: "2024-01-15"}, got)
}

func TestClassify_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"unauthorized", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}},
		{"malformed json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"is_anomaly":`))
		}},
		{"missing fields", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"label": "ok"}`))
		}},
		{"score without verdict", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"score": 0.9}`))
		}},
		{"slow", func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
			_, _ = w.Write([]byte(`{"is_anomaly": false, "score": 0.1}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			result, err := NewClient(srv.URL, 100*time.Millisecond).Classify(context.Background(), draft, "tok")
			assert.Nil(t, result)
			assert.ErrorIs(t, err, domain.ErrUpstreamDegraded)
		})
	}
}

func TestClassify_NullScore(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"null score", `{"label":"Outlier","score":null,"is_anomaly":true}`},
		{"missing score", `{"label":"Outlier","is_anomaly":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			result, err := NewClient(srv.URL, time.Second).Classify(context.Background(), draft, "tok")
			require.NoError(t, err)
			assert.True(t, result.IsAnomaly)
			assert.Zero(t, result.Score)
			assert.Equal(t, domain.StatusAnomaly, result.Status())
		})
	}
}

func TestClassify_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).Classify(context.Background(), draft, "tok")
	assert.ErrorIs(t, err, domain.ErrUpstreamDegraded)
}

func TestClassify_NotConfigured(t *testing.T) {
	_, err := NewClient("", time.Second).Classify(context.Background(), draft, "tok")
	assert.ErrorIs(t, err, domain.ErrUpstreamDegraded)
}

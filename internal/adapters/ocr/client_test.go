package ocr

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"expense-insight/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_Success(t *testing.T) {
	var content, filename string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if assert.NoError(t, err) {
			defer file.Close()
			data, _ := io.ReadAll(file)
			content = string(data)
			filename = header.Filename
		}
		_, _ = w.Write([]byte(`{"text": "TOTAL 12.00"}`))
	}))
	defer srv.Close()

	text, err := NewClient(srv.URL, time.Second).Extract(context.Background(), "../../receipt.PNG", strings.NewReader("image-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "TOTAL 12.00", text)
	assert.Equal(t, "image-bytes", content)
	assert.True(t, strings.HasSuffix(filename, ".PNG"))
	assert.NotContains(t, filename, "receipt")
}

func TestExtract_Failures(t *testing.T) {
	tests := map[string]http.HandlerFunc{
		"bad status": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
		"bad json": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		},
		"no text": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		},
	}

	for name, handler := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second).Extract(context.Background(), "a.png", strings.NewReader("x"))
			assert.ErrorIs(t, err, domain.ErrUpstreamDegraded)
		})
	}

	_, err := NewClient("", time.Second).Extract(context.Background(), "a.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, domain.ErrUpstreamDegraded)
}

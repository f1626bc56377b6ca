package crm

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"salesroom/errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClient_FetchDeal(t *testing.T) {
	req := require.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal(http.MethodGet, r.Method)
		req.Equal("/deals/d1", r.URL.Path)
		req.Equal("Bearer secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":"d1","title":"Renewal","customerName":"Acme","customerPhone":"+1 555","value":1200,"stage":"proposal"}`))
	}))
	defer server.Close()

	deal, err := NewClient(slog.Default(), server.URL+"/", "secret", time.Second).FetchDeal(context.Background(), "d1")

	req.NoError(err)
	req.Equal("Acme", deal.CustomerName)
	req.Equal("+1 555", deal.CustomerPhone)
	req.NotNil(deal.Value)
	req.Equal(1200.0, *deal.Value)
	req.Equal("proposal", deal.Stage)
}

func TestClient_FetchDeal_Not_Found(t *testing.T) {
	req := require.New(t)
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := NewClient(slog.Default(), server.URL, "", time.Second).FetchDeal(context.Background(), "missing")

	req.ErrorIs(err, errors.ErrDealNotFound)
}

func TestClient_Non_2xx_Is_A_Status_Error(t *testing.T) {
	req := require.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	_, err := NewClient(slog.Default(), server.URL, "", time.Second).FetchDeal(context.Background(), "d1")

	var statusErr *errors.StatusError
	req.ErrorAs(err, &statusErr)
	req.Equal(http.StatusBadGateway, statusErr.StatusCode)
	req.Equal("upstream down", statusErr.Body)
}

func TestClient_UpdateDealFields_Sends_Patch(t *testing.T) {
	req := require.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal(http.MethodPatch, r.Method)
		req.Equal("application/json", r.Header.Get("Content-Type"))
		var patch map[string]any
		req.NoError(json.NewDecoder(r.Body).Decode(&patch))
		req.Equal(map[string]any{"value": 1500.0}, patch)
		_, _ = w.Write([]byte(`{"id":"d1","value":1500}`))
	}))
	defer server.Close()

	deal, err := NewClient(slog.Default(), server.URL, "", time.Second).
		UpdateDealFields(context.Background(), "d1", map[string]any{"value": 1500.0})

	req.NoError(err)
	req.Equal(1500.0, *deal.Value)
}

func TestClient_Honours_Context(t *testing.T) {
	req := require.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewClient(slog.Default(), server.URL, "", time.Minute).FetchDeal(ctx, "d1")

	req.ErrorIs(err, context.DeadlineExceeded)
}

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/inkwellapp/inkwell/internal/common"
	"github.com/inkwellapp/inkwell/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_CapturesSessionCookie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/login", r.URL.Path)
		var req protocol.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a@b.com", req.Email)
		http.SetCookie(w, &http.Cookie{Name: SessionCookieName, Value: "tok123"})
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, srv.Client())
	token, err := c.Login(context.Background(), "a@b.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, "tok123", token)
}

func TestMutate_SendsCookieAndDecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie(SessionCookieName)
		require.NoError(t, err)
		assert.Equal(t, "tok123", ck.Value)

		var req protocol.MutationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, protocol.MutationPageUpsert, req.Name)

		json.NewEncoder(w).Encode(protocol.MutationResponse{
			Status: protocol.StatusOK,
			Page:   &protocol.Page{ID: "p1"},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, srv.Client())
	c.SetSessionToken("tok123")

	resp, err := c.Mutate(context.Background(), protocol.MutationPageUpsert,
		protocol.PageUpsertArgs{Page: protocol.Page{ID: "p1"}})
	require.NoError(t, err)
	assert.Equal(t, protocol.StatusOK, resp.Status)
	require.NotNil(t, resp.Page)
	assert.Equal(t, "p1", resp.Page.ID)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   any
		check  func(t *testing.T, err error)
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, common.ErrorUnauthorized)
			},
		},
		{
			name:   "server error is transient",
			status: http.StatusBadGateway,
			check: func(t *testing.T, err error) {
				assert.True(t, IsTransient(err))
			},
		},
		{
			name:   "rate limited carries retry-after",
			status: http.StatusTooManyRequests,
			body:   protocol.ErrorResponse{Error: "blocked", RetryAfterSeconds: 60},
			check: func(t *testing.T, err error) {
				var rl *RateLimitedError
				require.ErrorAs(t, err, &rl)
				assert.Equal(t, time.Minute, rl.RetryAfter)
			},
		},
		{
			name:   "bad request is terminal",
			status: http.StatusBadRequest,
			body:   protocol.ErrorResponse{Error: "bad shape"},
			check: func(t *testing.T, err error) {
				assert.False(t, IsTransient(err))
				assert.ErrorIs(t, err, common.ErrorValidation)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				if tt.body != nil {
					json.NewEncoder(w).Encode(tt.body)
				}
			}))
			defer srv.Close()

			c := NewHTTPClient(srv.URL, srv.Client())
			_, err := c.Mutate(context.Background(), protocol.MutationPageDelete,
				protocol.PageDeleteArgs{PageID: "x"})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestMutate_NetworkErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := NewHTTPClient(srv.URL, nil)
	_, err := c.Mutate(context.Background(), protocol.MutationPageUpsert, nil)
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestQuery_DecodesResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req protocol.QueryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, protocol.QueryChangeFeed, req.Name)

		result, _ := json.Marshal(protocol.Changes{Cursor: 42})
		json.NewEncoder(w).Encode(protocol.QueryResponse{Result: result})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, srv.Client())
	c.SetSessionToken("tok")

	var changes protocol.Changes
	require.NoError(t, c.Query(context.Background(), protocol.QueryChangeFeed,
		protocol.ChangeFeedArgs{Cursor: 0}, &changes))
	assert.Equal(t, int64(42), changes.Cursor)
}

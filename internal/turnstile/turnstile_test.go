package turnstile

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rana-ox/testing-d1/internal/errs"
	"github.com/rana-ox/testing-d1/internal/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type siteVerifyCall struct {
	method string
	form   url.Values
}

func newSiteVerifyServer(t *testing.T, status int, body string, seen *siteVerifyCall) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if seen != nil {
			seen.method = r.Method
			seen.form = r.PostForm
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVerifySuccess(t *testing.T) {
	var seen siteVerifyCall
	srv := newSiteVerifyServer(t, http.StatusOK, `{"success":true,"hostname":"example.com"}`, &seen)

	v := New(Config{SecretKey: "s3cret", VerifyURL: srv.URL})
	err := v.Verify(context.Background(), params.Fields{"turnstileToken": "tok-1"}, "203.0.113.7")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, seen.method)
	assert.Equal(t, "s3cret", seen.form.Get("secret"))
	assert.Equal(t, "tok-1", seen.form.Get("response"))
	assert.Equal(t, "203.0.113.7", seen.form.Get("remoteip"))
	_, err = uuid.Parse(seen.form.Get("idempotency_key"))
	assert.NoError(t, err)
}

func TestVerifyAcceptsWidgetFieldName(t *testing.T) {
	var seen siteVerifyCall
	srv := newSiteVerifyServer(t, http.StatusOK, `{"success":true}`, &seen)

	v := New(Config{SecretKey: "s3cret", VerifyURL: srv.URL})
	err := v.Verify(context.Background(), params.Fields{"cf-turnstile-response": "tok-2"}, "")
	require.NoError(t, err)

	assert.Equal(t, "tok-2", seen.form.Get("response"))
	assert.Contains(t, seen.form, "remoteip")
	assert.Equal(t, "", seen.form.Get("remoteip"))
}

func TestVerifyMissingToken(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	v := New(Config{SecretKey: "s3cret", VerifyURL: srv.URL})

	for _, fields := range []params.Fields{{}, {"turnstileToken": ""}, {"cf-turnstile-response": nil}} {
		err := v.Verify(context.Background(), fields, "")
		assert.True(t, errs.Is(err, errs.KindMissingChallengeToken))
	}
	assert.False(t, called, "provider must not be called without a token")
}

func TestVerifyRejected(t *testing.T) {
	srv := newSiteVerifyServer(t, http.StatusOK, `{"success":false,"error-codes":["bad-token"]}`, nil)

	v := New(Config{SecretKey: "s3cret", VerifyURL: srv.URL})
	err := v.Verify(context.Background(), params.Fields{"turnstileToken": "nope"}, "")

	require.True(t, errs.Is(err, errs.KindChallengeRejected))
	assert.Equal(t, []string{"bad-token"}, errs.From(err).Details)
}

func TestVerifyRejectedWithoutCodes(t *testing.T) {
	srv := newSiteVerifyServer(t, http.StatusOK, `{"success":false}`, nil)

	v := New(Config{SecretKey: "s3cret", VerifyURL: srv.URL})
	err := v.Verify(context.Background(), params.Fields{"turnstileToken": "nope"}, "")

	require.True(t, errs.Is(err, errs.KindChallengeRejected))
	details := errs.From(err).Details
	assert.NotNil(t, details)
	assert.Empty(t, details)
}

func TestVerifyHostnameMismatch(t *testing.T) {
	srv := newSiteVerifyServer(t, http.StatusOK, `{"success":true,"hostname":"evil.example"}`, nil)

	v := New(Config{SecretKey: "s3cret", VerifyURL: srv.URL, ExpectedHostname: "docs.example"})
	err := v.Verify(context.Background(), params.Fields{"turnstileToken": "tok"}, "")

	require.True(t, errs.Is(err, errs.KindChallengeRejected))
	assert.Equal(t, []string{"hostname-mismatch"}, errs.From(err).Details)
}

func TestVerifyServiceErrors(t *testing.T) {
	t.Run("unparsable response", func(t *testing.T) {
		srv := newSiteVerifyServer(t, http.StatusBadGateway, `<html>upstream down</html>`, nil)

		v := New(Config{SecretKey: "s3cret", VerifyURL: srv.URL})
		err := v.Verify(context.Background(), params.Fields{"turnstileToken": "tok"}, "")
		assert.True(t, errs.Is(err, errs.KindChallengeService))
	})

	t.Run("unreachable provider", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		deadURL := srv.URL
		srv.Close()

		v := New(Config{SecretKey: "s3cret", VerifyURL: deadURL})
		err := v.Verify(context.Background(), params.Fields{"turnstileToken": "tok"}, "")
		assert.True(t, errs.Is(err, errs.KindChallengeService))
	})

	t.Run("provider too slow", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		v := New(Config{SecretKey: "s3cret", VerifyURL: srv.URL, Timeout: 50 * time.Millisecond})
		err := v.Verify(context.Background(), params.Fields{"turnstileToken": "tok"}, "")
		assert.True(t, errs.Is(err, errs.KindChallengeService))
	})
}

func TestNoopVerifier(t *testing.T) {
	assert.NoError(t, NoopVerifier{}.Verify(context.Background(), params.Fields{}, ""))
}

package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("payload"))
	})
	mux.HandleFunc("/empty", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestDownload_OK(t *testing.T) {
	srv := newServer(t)
	log, hook := logtest.NewNullLogger()
	f := &Fetcher{Client: srv.Client(), Log: log}

	got := f.Download(context.Background(), srv.URL+"/ok")
	if string(got) != "payload" {
		t.Fatalf("Download = %q, want payload", got)
	}
	got = f.Download(context.Background(), srv.URL+"/empty")
	if got == nil || len(got) != 0 {
		t.Fatalf("Download(204) = %#v, want empty non-nil", got)
	}
	if len(hook.AllEntries()) != 0 {
		t.Fatalf("unexpected log entries: %d", len(hook.AllEntries()))
	}
}

func TestDownload_FailuresReturnNil(t *testing.T) {
	srv := newServer(t)
	log, hook := logtest.NewNullLogger()
	f := &Fetcher{Client: srv.Client(), Log: log, MaxBytes: 4}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	cases := []struct {
		name string
		ctx  context.Context
		url  string
	}{
		{"not found", context.Background(), srv.URL + "/missing"},
		{"too large", context.Background(), srv.URL + "/ok"},
		{"bad url", context.Background(), "://nope"},
		{"cancelled", cancelled, srv.URL + "/ok"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hook.Reset()
			if got := f.Download(tc.ctx, tc.url); got != nil {
				t.Fatalf("Download = %q, want nil", got)
			}
			e := hook.LastEntry()
			if e == nil || e.Level != logrus.WarnLevel || e.Data["url"] != tc.url {
				t.Fatalf("expected a warning for %s, got %+v", tc.url, e)
			}
		})
	}
}

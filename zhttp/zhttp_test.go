package zhttp

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Referer") != "node7" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte("0.5\n"))
	}))
	defer srv.Close()

	z, err := New(time.Second, "", false)
	if err != nil {
		t.Fatalf("found err: %v", err)
	}

	data, err := z.Fetch(srv.URL, map[string]string{"Referer": "node7"}, 2)
	if err != nil {
		t.Fatalf("found err: %v", err)
	}
	if string(data) != "0.5\n" {
		t.Errorf("Wanted: %q, found: %q", "0.5\n", data)
	}

	_, err = z.Fetch(srv.URL, nil, 2)
	if err == nil || err.Error() != "http status code: 403" {
		t.Errorf("Wanted status error, found: %v", err)
	}
}

func TestGetRetriesTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	z, _ := New(time.Second, "", false)
	if _, _, err := z.Get(url, nil, 3); err == nil {
		t.Error("expected error from closed server")
	}
}

func TestNewBadProxy(t *testing.T) {
	if _, err := New(time.Second, "://bad", false); err == nil {
		t.Error("expected proxy parse error")
	}
}

func TestSkipVerify(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	strict, _ := New(time.Second, "", false)
	if _, err := strict.Fetch(srv.URL, nil, 1); err == nil {
		t.Error("expected certificate error")
	}

	loose, _ := New(time.Second, "", true)
	data, err := loose.Fetch(srv.URL, nil, 1)
	if err != nil || string(data) != "ok" {
		t.Errorf("Wanted: ok, found: %q %v", data, err)
	}
}

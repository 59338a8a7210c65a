package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/facebookgo/ensure"
)

func graphServer(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == "POST" && r.URL.Path == "/":
			ensure.Nil(t, r.ParseForm())
			ensure.DeepEqual(t, r.PostFormValue("access_token"), "at")
			io.WriteString(w, `[{"code":200,"body":"{\"data\":[{\"id\":\"3\"}]}"}]`)
		case r.URL.Path == "/me/likes" && r.URL.Query().Get("after") == "":
			ensure.DeepEqual(t, r.URL.Query().Get("access_token"), "at")
			io.WriteString(w, `{"data":[{"id":"1","name":"a"}],"paging":{"next":"/me/likes?after=MQ"}}`)
		case r.URL.Path == "/me/likes":
			io.WriteString(w, `{"data":[{"id":"2","name":"b"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"error":{"message":"unknown path","code":803}}`)
		}
	}))
}

func TestParseFields(t *testing.T) {
	fields, err := parseFields("id")
	ensure.Nil(t, err)
	ensure.DeepEqual(t, fields, []string{"id"})

	fields, err = parseFields("")
	ensure.Nil(t, err)
	ensure.True(t, fields == nil)
}

func TestRunPages(t *testing.T) {
	server := graphServer(t)
	defer server.Close()

	var out, errOut bytes.Buffer
	err := run([]string{
		"-base-url", server.URL,
		"-access-token", "at",
		"-pages", "2",
		"me/likes",
	}, &out, &errOut)
	ensure.Nil(t, err)
	ensure.DeepEqual(t, out.String(), "{\"id\":\"1\",\"name\":\"a\"}\n{\"id\":\"2\",\"name\":\"b\"}\n")
}

func TestRunDefaultsToOnePage(t *testing.T) {
	server := graphServer(t)
	defer server.Close()

	var out, errOut bytes.Buffer
	err := run([]string{"-base-url", server.URL, "-access-token", "at", "me/likes"}, &out, &errOut)
	ensure.Nil(t, err)
	ensure.DeepEqual(t, out.String(), "{\"id\":\"1\",\"name\":\"a\"}\n")
}

func TestRunFields(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("fields")
		io.WriteString(w, `{"data":[]}`)
	}))
	defer server.Close()

	var out, errOut bytes.Buffer
	ensure.Nil(t, run([]string{"-base-url", server.URL, "-fields", "message", "me/feed"}, &out, &errOut))
	ensure.DeepEqual(t, query, "message")
	ensure.DeepEqual(t, out.String(), "")
}

func TestRunBatch(t *testing.T) {
	server := graphServer(t)
	defer server.Close()

	var out, errOut bytes.Buffer
	err := run([]string{
		"-base-url", server.URL,
		"-access-token", "at",
		"-batch",
		"me/likes",
	}, &out, &errOut)
	ensure.Nil(t, err)
	ensure.DeepEqual(t, out.String(), "{\"id\":\"3\"}\n")
}

func TestRunConfigFile(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("fields")
		io.WriteString(w, `{"data":[{"id":"1"}]}`)
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "fbgraph.yaml")
	ensure.Nil(t, os.WriteFile(path, []byte("base_url: "+server.URL+"\nfields:\n  - id\n  - name\nlimit: 5\n"), 0644))

	var out, errOut bytes.Buffer
	ensure.Nil(t, run([]string{"-config", path, "me/likes"}, &out, &errOut))
	ensure.DeepEqual(t, query, "id,name")
	ensure.DeepEqual(t, out.String(), "{\"id\":\"1\"}\n")
}

func TestRunAPIError(t *testing.T) {
	server := graphServer(t)
	defer server.Close()

	var out, errOut bytes.Buffer
	err := run([]string{"-base-url", server.URL, "nope"}, &out, &errOut)
	ensure.Err(t, err, regexp.MustCompile(`code=803`))
}

func TestRunMissingPath(t *testing.T) {
	var out, errOut bytes.Buffer
	err := run(nil, &out, &errOut)
	ensure.Err(t, err, regexp.MustCompile("expected a single connection path"))
}

func TestRunBadLogLevel(t *testing.T) {
	var out, errOut bytes.Buffer
	err := run([]string{"-log-level", "loud", "me"}, &out, &errOut)
	ensure.Err(t, err, regexp.MustCompile("invalid log level"))
}

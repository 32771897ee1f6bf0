package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/tsawler/statcrawl/htmltable"
)

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != DefaultUserAgent {
			t.Errorf("User-Agent = %q, want %q", got, DefaultUserAgent)
		}
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	body, err := NewClient().Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if string(body) != "hello" {
		t.Errorf("Get() = %q, want hello", body)
	}
}

func TestGet_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := NewClient().Get(context.Background(), srv.URL); err == nil {
		t.Error("Get() expected error for 404")
	}
}

func TestGetHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<table><thead><tr><th>Rank</th><th>City</th></tr></thead>
<tbody><tr><td>1</td><td>Oslo</td></tr></tbody></table>`))
	}))
	defer srv.Close()

	doc, err := NewClient().GetHTML(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("GetHTML() failed: %v", err)
	}
	if got := len(htmltable.Find(doc)); got != 1 {
		t.Errorf("found %d tables, want 1", got)
	}
}

func TestGetHTML_DecodesDeclaredCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		// "Zürich" in Latin-1: 0xFC for ü.
		w.Write([]byte("<p>Z\xfcrich</p>"))
	}))
	defer srv.Close()

	doc, err := NewClient().GetHTML(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("GetHTML() failed: %v", err)
	}
	if text := collectText(doc); !strings.Contains(text, "Zürich") {
		t.Errorf("decoded text = %q, want to contain Zürich", text)
	}
}

func collectText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/redirect":
			http.Redirect(w, r, "/file.csv", http.StatusFound)
		case "/file.csv":
			w.Write([]byte("a,b\n1,2\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "out.csv")
	if err := NewClient().Download(context.Background(), srv.URL+"/redirect", dest); err != nil {
		t.Fatalf("Download() failed: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	if string(data) != "a,b\n1,2\n" {
		t.Errorf("downloaded = %q", data)
	}
}

func TestDownload_ErrorLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "out.csv")
	if err := NewClient().Download(context.Background(), srv.URL, dest); err == nil {
		t.Fatal("Download() expected error for 500")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("failed download should not leave a file behind")
	}
}

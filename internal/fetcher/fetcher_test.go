package fetcher

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("http://example.com"))
	assert.True(t, IsRemote("https://example.com/a.html"))
	assert.False(t, IsRemote("ftp://example.com"))
	assert.False(t, IsRemote("./docs/http://weird"))
	assert.False(t, IsRemote("/tmp/file.txt"))
}

func TestFetch_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte("<p>remote body</p>"))
	}))
	defer srv.Close()

	calls := 0
	f := New(WithHTTPClient(func() *http.Client {
		calls++
		return srv.Client()
	}))

	text, err := f.Fetch(context.Background(), srv.URL+"/doc")
	require.NoError(t, err)
	assert.Equal(t, "<p>remote body</p>", text)

	_, err = f.Fetch(context.Background(), srv.URL+"/doc")
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "one client per request")
}

func TestFetch_RemoteErrorStatusStillReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("not here"))
	}))
	defer srv.Close()

	text, err := New().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "not here", text)
}

func TestFetch_RemoteCharset(t *testing.T) {
	latin1 := []byte{'c', 'a', 'f', 0xe9}

	tests := []struct {
		name        string
		contentType string
		body        []byte
		want        string
		wantErr     string
	}{
		{name: "declared latin-1", contentType: "text/plain; charset=iso-8859-1", body: latin1, want: "café"},
		{name: "declared utf-8", contentType: "text/html; charset=UTF-8", body: []byte("café"), want: "café"},
		{name: "undeclared utf-8", contentType: "text/plain", body: []byte("café"), want: "café"},
		{name: "undeclared invalid bytes", contentType: "text/plain", body: latin1, wantErr: "UTF-8"},
		{name: "declared utf-8 invalid bytes", contentType: "text/plain; charset=utf-8", body: latin1, wantErr: "UTF-8"},
		{name: "unknown charset", contentType: "text/plain; charset=klingon", body: latin1, wantErr: "unsupported charset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.Write(tt.body)
			}))
			defer srv.Close()

			text, err := New().Fetch(context.Background(), srv.URL)
			if tt.wantErr != "" {
				require.Error(t, err)
				var fe *FetchError
				require.True(t, errors.As(err, &fe))
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestFetch_RemoteUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New().Fetch(context.Background(), url)
	require.Error(t, err)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, url, fe.Source)
}

func TestFetch_RemoteCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Fetch(ctx, srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetch_Local(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("línea uno\nlínea dos\n"), 0o644))

	text, err := New().Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "línea uno\nlínea dos\n", text)
}

func TestFetch_LocalLineEndings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dos.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\r\ntwo\rthree\n"), 0o644))

	text, err := New().Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\nthree\n", text)
}

func TestFetch_LocalMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.txt")

	_, err := New().Fetch(context.Background(), path)
	require.Error(t, err)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, path, fe.Source)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestFetch_LocalInvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latin1.txt")
	require.NoError(t, os.WriteFile(path, []byte{'c', 'a', 'f', 0xe9}, 0o644))

	_, err := New().Fetch(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UTF-8")
}

func TestFetch_MarkdownRendering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "README.md")
	require.NoError(t, os.WriteFile(path, []byte("# Title\n\nbody"), 0o644))

	raw, err := New().Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nbody", raw)

	rendered, err := New(WithMarkdownRendering(true)).Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, rendered, "<h1>Title</h1>")
}

func TestFetch_DocumentExtraction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.xlsx")
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Menu")
	require.NoError(t, err)
	sheet.AddRow().AddCell().SetString("Hawaiana")
	require.NoError(t, file.Save(path))

	text, err := New(WithDocumentExtraction(true)).Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, text, "Hawaiana")
}

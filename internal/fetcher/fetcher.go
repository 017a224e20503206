// Package fetcher resolves a source identifier to its raw text.
//
// Remote sources (http:// or https://) are fetched with a GET issued by a
// client created for that single request. Anything else is read as a local
// file. No size limit is enforced on either path: a very large response or
// file is read into memory in full.
//
// Remote bodies are decoded from the charset declared in Content-Type; a body
// with no declared charset must already be UTF-8. Local files must be UTF-8
// and have their line endings translated to \n.
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"

	"document-indexer/internal/parser"
)

// FetchError reports a source that could not be read.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsRemote reports whether source names an HTTP(S) resource.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

type Fetcher struct {
	newClient        func() *http.Client
	extractDocuments bool
	renderMarkdown   bool
}

type Option func(*Fetcher)

// WithHTTPClient sets the factory called once per remote fetch.
func WithHTTPClient(newClient func() *http.Client) Option {
	return func(f *Fetcher) {
		f.newClient = newClient
	}
}

// WithDocumentExtraction converts PDF and office files to text instead of
// reading their bytes.
func WithDocumentExtraction(enabled bool) Option {
	return func(f *Fetcher) {
		f.extractDocuments = enabled
	}
}

// WithMarkdownRendering renders local markdown files to HTML.
func WithMarkdownRendering(enabled bool) Option {
	return func(f *Fetcher) {
		f.renderMarkdown = enabled
	}
}

func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		newClient: func() *http.Client { return &http.Client{} },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the text behind source. Failures are *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, source string) (string, error) {
	var (
		text string
		err  error
	)
	if IsRemote(source) {
		text, err = f.fetchRemote(ctx, source)
	} else {
		text, err = f.fetchLocal(ctx, source)
	}
	if err != nil {
		return "", &FetchError{Source: source, Err: err}
	}
	return text, nil
}

func (f *Fetcher) fetchRemote(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	client := f.newClient()
	defer client.CloseIdleConnections()

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	// the body is indexed whatever the status, like any other text
	if resp.StatusCode >= http.StatusBadRequest {
		log.Warn().Str("source", url).Int("status", resp.StatusCode).Msg("Remote source returned an error status")
	}

	text, err := decodeBody(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", err
	}

	log.Debug().Str("source", url).Int("bytes", len(body)).Msg("Fetched remote source")
	return text, nil
}

// decodeBody converts body to UTF-8 using the charset in contentType.
func decodeBody(body []byte, contentType string) (string, error) {
	var label string
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		label = params["charset"]
	}

	if label != "" {
		enc, name := charset.Lookup(label)
		if enc == nil {
			return "", fmt.Errorf("unsupported charset %q", label)
		}
		// utf-8 bodies are validated as-is below
		if name != "utf-8" {
			decoded, err := io.ReadAll(enc.NewDecoder().Reader(bytes.NewReader(body)))
			if err != nil {
				return "", fmt.Errorf("failed to decode %s body: %w", name, err)
			}
			body = decoded
		}
	}

	if !utf8.Valid(body) {
		return "", fmt.Errorf("response body is not valid UTF-8")
	}
	return string(body), nil
}

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

func (f *Fetcher) fetchLocal(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if f.extractDocuments && parser.Supported(path) {
		return parser.ExtractText(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s is not valid UTF-8", path)
	}
	text := lineEndings.Replace(string(data))

	if f.renderMarkdown && parser.IsMarkdown(path) {
		return parser.RenderMarkdown(text)
	}

	log.Debug().Str("source", path).Int("bytes", len(data)).Msg("Read local source")
	return text, nil
}

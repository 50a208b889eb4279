// Package httpclient implements the HTTP built-in boundary: URL validation,
// header keyword-stripping, default User-Agent injection, and a bounded
// request timeout. It deliberately knows nothing about object.Value — the
// builtins/http.go adapter translates LisPy values into a Request and a
// Response back into LisPy values — so the evaluator/promise core never has
// to import net/http, and this package stays trivially testable with
// net/http/httptest.
package httpclient

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lispy/lisperr"
)

const defaultUserAgent = "LisPy-HTTP/1.0"

var client = &http.Client{Timeout: 30 * time.Second}

// Request is the method-agnostic shape every HTTP builtin (get/post/put/
// delete/http-request) constructs.
type Request struct {
	Method      string
	URL         string
	Headers     map[string]string // keyword-style keys ("content-type" or ":content-type") accepted
	Body        []byte
	ContentType string // empty when Body is empty
}

// Response is what every HTTP builtin hands back to the evaluator after
// translation into a LisPy map.
type Response struct {
	StatusCode int
	Headers    map[string][]string
	Body       []byte
	URL        string
}

// Do validates req, performs it, and returns the response — or an HTTPError
// on any network, protocol, or validation failure.
func Do(req Request) (*Response, error) {
	parsed, err := url.Parse(req.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, lisperr.New(lisperr.HTTP, "invalid URL %q: must be http or https", req.URL)
	}

	var bodyReader io.Reader
	if len(req.Body) > 0 {
		bodyReader = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequest(strings.ToUpper(req.Method), req.URL, bodyReader)
	if err != nil {
		return nil, lisperr.Wrap(lisperr.HTTP, err, "url", req.URL)
	}

	hasUserAgent := false
	for key, value := range req.Headers {
		key = strings.TrimPrefix(key, ":")
		if strings.EqualFold(key, "user-agent") {
			hasUserAgent = true
		}
		httpReq.Header.Set(key, value)
	}
	if !hasUserAgent {
		httpReq.Header.Set("User-Agent", defaultUserAgent)
	}
	if req.ContentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, lisperr.Wrap(lisperr.HTTP, err, "url", req.URL)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, lisperr.Wrap(lisperr.HTTP, err, "url", req.URL)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    map[string][]string(resp.Header),
		Body:       body,
		URL:        req.URL,
	}, nil
}

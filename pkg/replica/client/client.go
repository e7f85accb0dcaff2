/* Copyright 2025 Dnote Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package client implements the remote endpoint of an entity over HTTP
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dnote/replica/pkg/cli/log"
	"github.com/dnote/replica/pkg/replica/sync"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// ErrContentTypeMismatch is returned when the server responds with an unexpected Content-Type
var ErrContentTypeMismatch = errors.New("content type mismatch")

// HTTPError represents an HTTP error response from the server
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf(`response %d "%s"`, e.StatusCode, e.Message)
}

// IsNotFound returns true if the error is a 404 Not Found error
func (e *HTTPError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

const contentTypeApplicationJSON = "application/json"

const (
	// clientRateLimitPerSecond is the max requests per second the client will make
	clientRateLimitPerSecond = 50
	// clientRateLimitBurst is the burst capacity for rate limiting
	clientRateLimitBurst = 100
)

// rateLimitedTransport wraps an http.RoundTripper with rate limiting
type rateLimitedTransport struct {
	transport http.RoundTripper
	limiter   *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.transport.RoundTrip(req)
}

// NewRateLimitedHTTPClient creates an HTTP client with rate limiting
func NewRateLimitedHTTPClient() *http.Client {
	interval := time.Second / time.Duration(clientRateLimitPerSecond)

	transport := &rateLimitedTransport{
		transport: http.DefaultTransport,
		limiter:   rate.NewLimiter(rate.Every(interval), clientRateLimitBurst),
	}
	return &http.Client{
		Transport: transport,
	}
}

// Config is the configuration shared by the endpoints of every entity
type Config struct {
	// APIEndpoint is the base URL of the server, e.g. http://localhost:3001
	APIEndpoint string
	// Version is sent in the Replica-Version header
	Version string
	// HTTPClient defaults to a rate limited client
	HTTPClient *http.Client
}

// Endpoint is the remote collection of one entity at {APIEndpoint}/v1/{entity}.
// It implements sync.Endpoint.
type Endpoint[T any] struct {
	config Config
	entity string
	hc     *http.Client
}

// New returns the endpoint of the given entity
func New[T any](config Config, entity string) *Endpoint[T] {
	hc := config.HTTPClient
	if hc == nil {
		hc = NewRateLimitedHTTPClient()
	}

	return &Endpoint[T]{
		config: config,
		entity: entity,
		hc:     hc,
	}
}

func (e *Endpoint[T]) path(parts ...string) string {
	p := fmt.Sprintf("/v1/%s", url.PathEscape(e.entity))
	for _, part := range parts {
		p = fmt.Sprintf("%s/%s", p, url.PathEscape(part))
	}

	return p
}

func (e *Endpoint[T]) getReq(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	endpoint := fmt.Sprintf("%s%s", strings.TrimRight(e.config.APIEndpoint, "/"), path)

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "constructing http request")
	}

	if body != nil {
		req.Header.Set("Content-Type", contentTypeApplicationJSON)
	}
	if e.config.Version != "" {
		req.Header.Set("Replica-Version", e.config.Version)
	}

	return req, nil
}

// checkRespErr returns an *HTTPError if the response indicates an error
func checkRespErr(res *http.Response) error {
	if res.StatusCode < 400 {
		return nil
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrapf(err, "server responded with %d but client could not read the response body", res.StatusCode)
	}

	return &HTTPError{
		StatusCode: res.StatusCode,
		Message:    strings.TrimRight(string(body), "\n"),
	}
}

func checkContentType(res *http.Response) error {
	got := res.Header.Get("Content-Type")

	mediaType, _, err := mime.ParseMediaType(got)
	if err != nil || mediaType != contentTypeApplicationJSON {
		return errors.Wrapf(ErrContentTypeMismatch, "got: '%s' want: '%s'. Did you configure your endpoint correctly?", got, contentTypeApplicationJSON)
	}

	return nil
}

// doReq does a http request to the given path in the api endpoint and
// decodes the JSON response into ret
func (e *Endpoint[T]) doReq(ctx context.Context, method, path string, payload interface{}, ret interface{}) error {
	var body []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrap(err, "marshalling payload")
		}
		body = b
	}

	req, err := e.getReq(ctx, method, path, body)
	if err != nil {
		return errors.Wrap(err, "getting request")
	}

	log.Debug("HTTP %s %s\n", method, path)

	res, err := e.hc.Do(req)
	if err != nil {
		return errors.Wrap(err, "making http request")
	}
	defer res.Body.Close()

	log.Debug("HTTP %d %s\n", res.StatusCode, res.Status)

	if err = checkRespErr(res); err != nil {
		return errors.Wrap(err, "server responded with an error")
	}

	if err = checkContentType(res); err != nil {
		return errors.Wrap(err, "unexpected Content-Type")
	}

	if err := json.NewDecoder(res.Body).Decode(ret); err != nil {
		return errors.Wrap(err, "unmarshalling the payload")
	}

	return nil
}

// List gets every record of the entity
func (e *Endpoint[T]) List(ctx context.Context) (sync.ListResponse[T], error) {
	var ret sync.ListResponse[T]
	if err := e.doReq(ctx, http.MethodGet, e.path(), nil, &ret); err != nil {
		return ret, errors.Wrapf(err, "listing %s", e.entity)
	}

	return ret, nil
}

// Fetch gets a single record
func (e *Endpoint[T]) Fetch(ctx context.Context, id string) (sync.FetchResponse[T], error) {
	var ret sync.FetchResponse[T]
	if err := e.doReq(ctx, http.MethodGet, e.path(id), nil, &ret); err != nil {
		return ret, errors.Wrapf(err, "fetching %s %s", e.entity, id)
	}

	return ret, nil
}

// Sync sends the local changes and returns the server's view of them
func (e *Endpoint[T]) Sync(ctx context.Context, p sync.SyncPayload[T]) (sync.SyncResponse[T], error) {
	if p.Entries == nil {
		p.Entries = []T{}
	}
	if p.Removed == nil {
		p.Removed = []string{}
	}

	var ret sync.SyncResponse[T]
	if err := e.doReq(ctx, http.MethodPost, e.path("sync"), p, &ret); err != nil {
		return ret, errors.Wrapf(err, "syncing %s", e.entity)
	}

	return ret, nil
}

// HealthCheck checks that the server is reachable
func HealthCheck(ctx context.Context, config Config) error {
	hc := config.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}

	endpoint := fmt.Sprintf("%s/health", strings.TrimRight(config.APIEndpoint, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.Wrap(err, "constructing http request")
	}

	res, err := hc.Do(req)
	if err != nil {
		return errors.Wrap(err, "making http request")
	}
	defer res.Body.Close()

	return checkRespErr(res)
}

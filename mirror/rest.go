package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// REST is a remote mirror behind a PostgREST compatible HTTP endpoint.
type REST struct {
	base   string // e.g. https://example.supabase.co/rest/v1
	client *http.Client
}

// NewREST returns a mirror at base, authenticated with key.
func NewREST(base, key string, log logrus.FieldLogger) *REST {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &REST{
		base: strings.TrimSuffix(base, "/"),
		client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: &apiKey{base: http.DefaultTransport, key: key, log: log},
		},
	}
}

// apiKey authenticates every request and logs the response status.
type apiKey struct {
	base http.RoundTripper
	key  string
	log  logrus.FieldLogger
}

func (t *apiKey) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.key != "" {
		req.Header.Set("apikey", t.key)
		req.Header.Set("Authorization", "Bearer "+t.key)
	}
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	t.log.Debugf("%v %v%v %v", req.Method, req.URL.Host, req.URL.Path, resp.Status)
	return resp, nil
}

func (r *REST) endpoint(table string, query url.Values) string {
	addr := r.base + "/" + url.PathEscape(table)
	if len(query) > 0 {
		addr += "?" + query.Encode()
	}
	return addr
}

// do sends the request and decodes the JSON response into data, if not nil.
func (r *REST) do(ctx context.Context, method, addr string, body, data any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, addr, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=minimal")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("cannot http %v %v%v: %v %s", method, resp.Request.URL.Host, resp.Request.URL.Path, resp.Status, bytes.TrimSpace(msg))
	}
	if data == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(data)
}

// eq is a PostgREST equality filter.
func eq(v any) string {
	if v == nil {
		return "is.null"
	}
	return "eq." + str(v)
}

func (r *REST) Insert(ctx context.Context, table, device string, row Row) error {
	if err := checkTable(table); err != nil {
		return err
	}
	body := make(Row, len(row)+1)
	for _, c := range Columns[table] {
		body[c] = row[c]
	}
	body[DeviceColumn] = device
	if err := r.do(ctx, http.MethodPost, r.endpoint(table, nil), body, nil); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

func (r *REST) Delete(ctx context.Context, table, device string, key Row) error {
	if err := checkTable(table); err != nil {
		return err
	}
	query := url.Values{DeviceColumn: {eq(device)}}
	for _, c := range keys[table] {
		query.Set(c, eq(key[c]))
	}
	if err := r.do(ctx, http.MethodDelete, r.endpoint(table, query), nil, nil); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return nil
}

func (r *REST) Select(ctx context.Context, table, device string) ([]Row, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	query := url.Values{
		DeviceColumn: {eq(device)},
		"select":     {strings.Join(Columns[table], ",")},
		"order":      {"id.asc"},
	}
	var rows []Row
	if err := r.do(ctx, http.MethodGet, r.endpoint(table, query), nil, &rows); err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	return rows, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package entrez is a PubMed search client built on the NCBI E-utilities.
//
// A query runs esearch to obtain matching PMIDs, then efetch in batches to
// retrieve the records. Records are yielded lazily: each efetch batch is
// requested only when the consumer has drained the previous one.
package entrez

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/pubmed-query/internal/httputil"
	"github.com/pdiddy/pubmed-query/internal/logging"
	"github.com/pdiddy/pubmed-query/pkg/types"
)

// eutilsBase is the E-utilities endpoint. Declared as a var so tests can
// substitute an httptest server.
var eutilsBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

const (
	database         = "pubmed"
	defaultBatchSize = 250

	// maxRetmax is the largest id list esearch returns in one call.
	maxRetmax = types.MaxResultsLimit

	// NCBI allows 3 requests per second without a key and 10 with one.
	delayWithoutKey = 340 * time.Millisecond
	delayWithKey    = 110 * time.Millisecond
)

// FetchError reports a failure of an E-utilities call: transport errors,
// non-200 responses, undecodable payloads, or errors reported by NCBI.
type FetchError struct {
	Op  string // "esearch" or "efetch"
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("entrez %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client queries PubMed. It satisfies limit.Client and limit.Counter.
// A Client is not safe for concurrent use beyond the request pacing it
// does itself.
type Client struct {
	http *http.Client
	cfg  types.EntrezConfig
	log  *logrus.Entry

	mu   sync.Mutex
	last time.Time
}

// New returns a client. A zero BatchSize or RequestDelay in cfg picks the
// defaults and a negative RequestDelay disables pacing. log may be nil.
func New(httpClient *http.Client, cfg types.EntrezConfig, log *logrus.Entry) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.RequestDelay == 0 {
		cfg.RequestDelay = delayWithoutKey
		if cfg.APIKey != "" {
			cfg.RequestDelay = delayWithKey
		}
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Client{http: httpClient, cfg: cfg, log: log.WithField("component", "entrez")}
}

// Count returns min(number of matches, limit) using an id-only esearch.
// No record is fetched.
func (c *Client) Count(ctx context.Context, expression string, limit int) (int, error) {
	res, err := c.search(ctx, expression, 0)
	if err != nil {
		return 0, err
	}
	return min(res.Count, limit), nil
}

// Query returns the records matching expression, at most maxResults. The
// returned sequence performs no I/O until it is ranged over and may be
// ranged over again to re-run the query. The first error ends the sequence.
// A query that would need more than maxRetmax ids fails instead of
// returning a truncated set.
func (c *Client) Query(ctx context.Context, expression string, maxResults int) iter.Seq2[types.RawRecord, error] {
	return func(yield func(types.RawRecord, error) bool) {
		if maxResults <= 0 {
			return
		}
		res, err := c.search(ctx, expression, min(maxResults, maxRetmax))
		if err != nil {
			yield(types.RawRecord{}, err)
			return
		}
		if want := min(res.Count, maxResults); want > maxRetmax {
			yield(types.RawRecord{}, &FetchError{Op: "esearch",
				Err: fmt.Errorf("%d records requested, at most %d can be retrieved", want, maxRetmax)})
			return
		}
		ids := res.IDs
		if len(ids) > maxResults {
			ids = ids[:maxResults]
		}

		for start := 0; start < len(ids); start += c.cfg.BatchSize {
			end := min(start+c.cfg.BatchSize, len(ids))
			records, err := c.fetch(ctx, ids[start:end])
			if err != nil {
				yield(types.RawRecord{}, err)
				return
			}
			for _, r := range records {
				if !yield(r, nil) {
					return
				}
			}
		}
	}
}

// searchResult is the decoded part of an esearch response the client uses.
type searchResult struct {
	Count int
	IDs   []string
}

func (c *Client) search(ctx context.Context, expression string, retmax int) (searchResult, error) {
	params := c.baseParams()
	params.Set("term", expression)
	params.Set("retmax", strconv.Itoa(retmax))
	params.Set("retmode", "json")

	body, err := c.get(ctx, "esearch", params)
	if err != nil {
		return searchResult{}, err
	}
	defer body.Close()

	var resp esearchResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return searchResult{}, &FetchError{Op: "esearch", Err: fmt.Errorf("parsing response: %w", err)}
	}
	r := resp.Result
	if r.Error != "" {
		return searchResult{}, &FetchError{Op: "esearch", Err: fmt.Errorf("NCBI: %s", r.Error)}
	}

	count := 0
	if r.Count != "" {
		count, err = strconv.Atoi(r.Count)
		if err != nil {
			return searchResult{}, &FetchError{Op: "esearch", Err: fmt.Errorf("invalid count %q", r.Count)}
		}
	}

	c.log.WithFields(logrus.Fields{
		"count":       count,
		"ids":         len(r.IDList),
		"translation": r.QueryTranslation,
	}).Debug("esearch done")

	return searchResult{Count: count, IDs: r.IDList}, nil
}

func (c *Client) fetch(ctx context.Context, ids []string) ([]types.RawRecord, error) {
	params := c.baseParams()
	params.Set("id", strings.Join(ids, ","))
	params.Set("retmode", "xml")

	body, err := c.get(ctx, "efetch", params)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var set articleSet
	if err := xml.NewDecoder(body).Decode(&set); err != nil {
		return nil, &FetchError{Op: "efetch", Err: fmt.Errorf("parsing response: %w", err)}
	}

	records := set.records()
	c.log.WithFields(logrus.Fields{"requested": len(ids), "received": len(records)}).Debug("efetch batch done")
	return records, nil
}

func (c *Client) baseParams() url.Values {
	params := url.Values{"db": {database}}
	if c.cfg.Tool != "" {
		params.Set("tool", c.cfg.Tool)
	}
	if c.cfg.Email != "" {
		params.Set("email", c.cfg.Email)
	}
	if c.cfg.APIKey != "" {
		params.Set("api_key", c.cfg.APIKey)
	}
	return params
}

// get performs one paced E-utilities GET and returns the body of a 200
// response. The caller closes it.
func (c *Client) get(ctx context.Context, op string, params url.Values) (io.ReadCloser, error) {
	if err := c.pace(ctx); err != nil {
		return nil, &FetchError{Op: op, Err: err}
	}

	reqURL := eutilsBase + "/" + op + ".fcgi?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &FetchError{Op: op, Err: fmt.Errorf("creating request: %w", err)}
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	c.log.WithField("op", op).Debug("request")
	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxRetries, c.log)
	if err != nil {
		return nil, &FetchError{Op: op, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, &FetchError{Op: op, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}
	return resp.Body, nil
}

// pace blocks until RequestDelay has passed since the previous request.
func (c *Client) pace(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.last.IsZero() && c.cfg.RequestDelay > 0 {
		if wait := c.cfg.RequestDelay - time.Since(c.last); wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
	}
	c.last = time.Now()
	return nil
}

// esearch JSON structures.
type esearchResponse struct {
	Result esearchResult `json:"esearchresult"`
}

type esearchResult struct {
	Count            string   `json:"count"`
	RetMax           string   `json:"retmax"`
	IDList           []string `json:"idlist"`
	QueryTranslation string   `json:"querytranslation"`
	Error            string   `json:"ERROR"`
}

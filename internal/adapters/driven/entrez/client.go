package entrez

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/ncfp/internal/core/domain"
	"github.com/custodia-labs/ncfp/internal/core/ports/driven"
	"github.com/custodia-labs/ncfp/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.RemoteLookup = (*Client)(nil)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 60 * time.Second

	// MaxSearchResults caps the UIDs returned for a single search term.
	MaxSearchResults = 500

	// maxErrorBody bounds the response text kept in an APIError.
	maxErrorBody = 256
)

// Config configures the E-utilities client.
type Config struct {
	BaseURL           string
	Email             string
	APIKey            string
	Tool              string
	RequestsPerSecond float64
	Timeout           time.Duration

	// HTTPClient overrides the default client; Timeout is then ignored.
	HTTPClient *http.Client
	Logger     *logger.Logger
}

// ConfigFromSettings builds a client config from application settings.
func ConfigFromSettings(s domain.EntrezSettings) Config {
	return Config{
		BaseURL:           s.BaseURL,
		Email:             s.Email,
		APIKey:            s.APIKey,
		Tool:              s.Tool,
		RequestsPerSecond: s.RateLimit(),
	}
}

// Client talks to NCBI E-utilities.
type Client struct {
	baseURL string
	common  url.Values
	http    *http.Client
	limiter *RateLimiter
	log     *logger.Logger
}

// NewClient creates an E-utilities client.
func NewClient(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = domain.DefaultEntrezBaseURL
	}

	common := url.Values{}
	if cfg.Tool != "" {
		common.Set("tool", cfg.Tool)
	}
	if cfg.Email != "" {
		common.Set("email", cfg.Email)
	}
	if cfg.APIKey != "" {
		common.Set("api_key", cfg.APIKey)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Client{
		baseURL: base,
		common:  common,
		http:    hc,
		limiter: NewRateLimiter(cfg.RequestsPerSecond),
		log:     log.WithPrefix("entrez"),
	}
}

// MapQueries maps protein accessions to nucleotide query terms.
// Each protein is resolved to its UID by esummary, then linked to
// nuccore by elink; the linked UIDs are joined into a "[uid]" query.
func (c *Client) MapQueries(ctx context.Context, aaQueries []string) (map[string]string, error) {
	if len(aaQueries) == 0 {
		return map[string]string{}, nil
	}

	docs, err := c.summaries(ctx, "protein", aaQueries)
	if err != nil {
		return nil, err
	}

	// Accessions may be given with or without a version
	byAccession := make(map[string]string, len(docs)*2)
	for _, d := range docs {
		byAccession[d.Caption] = d.UID
		byAccession[d.AccessionVersion] = d.UID
	}
	proteinUIDs := make(map[string]string)
	var ids []string
	for _, q := range aaQueries {
		uid, ok := byAccession[q]
		if !ok {
			uid, ok = byAccession[stripVersion(q)]
		}
		if !ok {
			c.log.Debug("no protein record for %s", q)
			continue
		}
		proteinUIDs[q] = uid
		ids = append(ids, uid)
	}
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	links, err := c.links(ctx, "protein", "nuccore", ids)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string)
	for q, uid := range proteinUIDs {
		linked := links[uid]
		if len(linked) == 0 {
			continue
		}
		terms := make([]string, len(linked))
		for i, id := range linked {
			terms[i] = id + "[uid]"
		}
		out[q] = strings.Join(terms, " OR ")
	}
	return out, nil
}

// SearchIDs runs one nuccore search per query term.
func (c *Client) SearchIDs(ctx context.Context, queries []string) (map[string][]string, error) {
	out := make(map[string][]string)
	for _, q := range queries {
		params := url.Values{}
		params.Set("db", "nuccore")
		params.Set("term", q)
		params.Set("retmax", strconv.Itoa(MaxSearchResults))
		params.Set("retmode", "json")

		body, err := c.call(ctx, "esearch.fcgi", params)
		if err != nil {
			return nil, err
		}

		var resp esearchResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%w: esearch: %v", domain.ErrUnparseableResponse, err)
		}
		if resp.Result == nil {
			return nil, fmt.Errorf("%w: esearch: missing esearchresult", domain.ErrUnparseableResponse)
		}
		if resp.Result.Error != "" {
			// The term stays unresolved; the rest of the batch is unaffected
			c.log.Warn("search %q rejected: %s", q, resp.Result.Error)
			continue
		}
		if len(resp.Result.IDs) > 0 {
			out[q] = resp.Result.IDs
		}
	}
	return out, nil
}

// FetchSummaries returns nuccore summaries keyed by UID.
func (c *Client) FetchSummaries(ctx context.Context, uids []string) (map[string]domain.Summary, error) {
	out := make(map[string]domain.Summary)
	if len(uids) == 0 {
		return out, nil
	}

	docs, err := c.summaries(ctx, "nuccore", uids)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		date := d.UpdateDate
		if date == "" {
			date = d.CreateDate
		}
		out[d.UID] = domain.Summary{
			UID:       d.UID,
			Accession: d.AccessionVersion,
			Length:    d.Length,
			Organism:  d.Organism,
			Taxonomy:  d.TaxID.String(),
			Date:      date,
		}
	}
	return out, nil
}

// FetchRecords downloads full GenBank records (with parts) for the UIDs,
// keyed by each record's versioned accession.
func (c *Client) FetchRecords(ctx context.Context, uids []string) (map[string]string, error) {
	out := make(map[string]string)
	if len(uids) == 0 {
		return out, nil
	}

	params := url.Values{}
	params.Set("db", "nuccore")
	params.Set("id", strings.Join(uids, ","))
	params.Set("rettype", "gbwithparts")
	params.Set("retmode", "text")

	body, err := c.call(ctx, "efetch.fcgi", params)
	if err != nil {
		return nil, err
	}

	records, err := SplitRecords(string(body))
	if err != nil {
		return nil, err
	}
	for _, text := range records {
		acc := RecordAccession(text)
		if acc == "" {
			return nil, fmt.Errorf("%w: efetch: record without accession", domain.ErrUnparseableResponse)
		}
		out[acc] = text
	}
	c.log.Debug("fetched %d records for %d uids", len(out), len(uids))
	return out, nil
}

// ==================== E-utilities calls ====================

type esearchResponse struct {
	Result *struct {
		Count string   `json:"count"`
		IDs   []string `json:"idlist"`
		Error string   `json:"ERROR"`
	} `json:"esearchresult"`
}

type esummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`

	// Present instead of Result when no document could be summarised.
	Messages []string `json:"esummaryresult"`
}

type summaryDoc struct {
	UID              string      `json:"uid"`
	Caption          string      `json:"caption"`
	AccessionVersion string      `json:"accessionversion"`
	Length           int         `json:"slen"`
	Organism         string      `json:"organism"`
	TaxID            json.Number `json:"taxid"`
	UpdateDate       string      `json:"updatedate"`
	CreateDate       string      `json:"createdate"`
	Error            string      `json:"error"`
}

type elinkResponse struct {
	LinkSets []struct {
		DBFrom     string   `json:"dbfrom"`
		IDs        []string `json:"ids"`
		LinkSetDBs []struct {
			DBTo     string   `json:"dbto"`
			LinkName string   `json:"linkname"`
			Links    []string `json:"links"`
		} `json:"linksetdbs"`
	} `json:"linksets"`
}

// summaries runs esummary and returns the documents in response order.
// Documents reported as errors are dropped.
func (c *Client) summaries(ctx context.Context, db string, ids []string) ([]summaryDoc, error) {
	params := url.Values{}
	params.Set("db", db)
	params.Set("id", strings.Join(ids, ","))
	params.Set("retmode", "json")

	body, err := c.call(ctx, "esummary.fcgi", params)
	if err != nil {
		return nil, err
	}

	var resp esummaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: esummary: %v", domain.ErrUnparseableResponse, err)
	}
	if resp.Result == nil {
		if resp.Messages != nil {
			c.log.Debug("esummary %s: %s", db, strings.Join(resp.Messages, "; "))
			return nil, nil
		}
		return nil, fmt.Errorf("%w: esummary: missing result", domain.ErrUnparseableResponse)
	}

	var order []string
	if raw, ok := resp.Result["uids"]; ok {
		if err := json.Unmarshal(raw, &order); err != nil {
			return nil, fmt.Errorf("%w: esummary uids: %v", domain.ErrUnparseableResponse, err)
		}
	}

	docs := make([]summaryDoc, 0, len(order))
	for _, uid := range order {
		raw, ok := resp.Result[uid]
		if !ok {
			continue
		}
		var d summaryDoc
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("%w: esummary %s: %v", domain.ErrUnparseableResponse, uid, err)
		}
		if d.Error != "" || d.AccessionVersion == "" {
			c.log.Debug("esummary %s %s: %s", db, uid, d.Error)
			continue
		}
		if d.UID == "" {
			d.UID = uid
		}
		docs = append(docs, d)
	}
	return docs, nil
}

// links runs elink with one id parameter per UID so that each source UID
// gets its own link set.
func (c *Client) links(ctx context.Context, from, to string, ids []string) (map[string][]string, error) {
	params := url.Values{}
	params.Set("dbfrom", from)
	params.Set("db", to)
	params.Set("retmode", "json")
	for _, id := range ids {
		params.Add("id", id)
	}

	body, err := c.call(ctx, "elink.fcgi", params)
	if err != nil {
		return nil, err
	}

	var resp elinkResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: elink: %v", domain.ErrUnparseableResponse, err)
	}

	out := make(map[string][]string)
	for _, set := range resp.LinkSets {
		if len(set.IDs) == 0 {
			continue
		}
		src := set.IDs[0]
		for _, db := range set.LinkSetDBs {
			if db.DBTo != to || db.LinkName != from+"_"+to {
				continue
			}
			out[src] = append(out[src], db.Links...)
		}
	}
	return out, nil
}

// call POSTs an E-utilities request and returns the response body.
func (c *Client) call(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	for k, v := range c.common {
		params[k] = v
	}
	endpointURL := c.baseURL + "/" + endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: reading response: %w", endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    truncate(strings.TrimSpace(string(body)), maxErrorBody),
			URL:        endpointURL,
		}
		if ra, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			apiErr.RetryAfter = ra
		}
		if IsRateLimited(apiErr) {
			c.limiter.RecordRateLimitError(apiErr.RetryAfter)
			c.log.Warn("rate limited by %s, backing off", endpoint)
		}
		return nil, apiErr
	}

	return body, nil
}

// ==================== Record text helpers ====================

// SplitRecords splits concatenated GenBank flat-file text on "//" lines.
// Every non-empty record must start with a LOCUS line.
func SplitRecords(text string) ([]string, error) {
	var records []string
	var b strings.Builder

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		b.WriteString(line)
		b.WriteByte('\n')
		if strings.TrimSpace(line) == "//" {
			records = append(records, strings.TrimLeft(b.String(), "\n"))
			b.Reset()
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: splitting records: %v", domain.ErrUnparseableResponse, err)
	}
	if rest := strings.TrimSpace(b.String()); rest != "" {
		return nil, fmt.Errorf("%w: unterminated record", domain.ErrUnparseableResponse)
	}

	for _, r := range records {
		if !strings.HasPrefix(r, "LOCUS") {
			return nil, fmt.Errorf("%w: record does not start with LOCUS", domain.ErrUnparseableResponse)
		}
	}
	return records, nil
}

// RecordAccession returns the versioned accession from a record's VERSION
// line, falling back to the first ACCESSION.
func RecordAccession(text string) string {
	var accession string
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "VERSION":
			return fields[1]
		case "ACCESSION":
			if accession == "" {
				accession = fields[1]
			}
		case "FEATURES", "ORIGIN":
			return accession
		}
	}
	return accession
}

func stripVersion(accession string) string {
	if i := strings.LastIndexByte(accession, '.'); i > 0 {
		return accession[:i]
	}
	return accession
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

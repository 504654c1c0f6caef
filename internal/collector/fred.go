package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"NormPeakPlot/internal/model"
)

const (
	DefaultFREDBaseURL    = "https://fred.stlouisfed.org"
	DefaultFREDAPIBaseURL = "https://api.stlouisfed.org"
	// FRED allows 120 requests per minute per key.
	DefaultRequestsPerMinute = 120
)

// FREDOptions configures a FREDSource.
type FREDOptions struct {
	BaseURL           string
	APIBaseURL        string
	APIKey            string
	ProxyURL          string
	Timeout           time.Duration
	RequestsPerMinute int
}

// FREDSource downloads a series from FRED. Without an API key it uses the
// public graph CSV export; with one it uses the JSON observations API.
type FREDSource struct {
	BaseURL    string
	APIBaseURL string
	APIKey     string
	Client     *http.Client
	limiter    *rate.Limiter
}

// NewFREDSource creates a FRED source with optional proxy support.
func NewFREDSource(o FREDOptions) *FREDSource {
	transport := &http.Transport{}
	if o.ProxyURL != "" {
		if u, err := url.Parse(o.ProxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.BaseURL == "" {
		o.BaseURL = DefaultFREDBaseURL
	}
	if o.APIBaseURL == "" {
		o.APIBaseURL = DefaultFREDAPIBaseURL
	}
	if o.RequestsPerMinute <= 0 {
		o.RequestsPerMinute = DefaultRequestsPerMinute
	}
	return &FREDSource{
		BaseURL:    o.BaseURL,
		APIBaseURL: o.APIBaseURL,
		APIKey:     o.APIKey,
		Client: &http.Client{
			Timeout:   o.Timeout,
			Transport: transport,
		},
		limiter: rate.NewLimiter(rate.Limit(float64(o.RequestsPerMinute)/60), 1),
	}
}

func (f *FREDSource) Name() string { return "fred" }

// fredObservations is the response of fred/series/observations.
type fredObservations struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
	ErrorMessage string `json:"error_message"`
}

// Fetch downloads the full published history of spec.FREDID.
func (f *FREDSource) Fetch(ctx context.Context, spec model.SeriesSpec) ([]model.Observation, error) {
	var endpoint string
	if f.APIKey != "" {
		q := url.Values{}
		q.Set("series_id", spec.FREDID)
		q.Set("api_key", f.APIKey)
		q.Set("file_type", "json")
		endpoint = f.APIBaseURL + "/fred/series/observations?" + q.Encode()
	} else {
		endpoint = f.BaseURL + "/graph/fredgraph.csv?id=" + url.QueryEscape(spec.FREDID)
	}

	body, err := f.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var obs []model.Observation
	if f.APIKey != "" {
		obs, err = decodeFREDJSON(body)
	} else {
		obs, err = parseObservations(bytes.NewReader(body))
	}
	if err != nil {
		return nil, fmt.Errorf("fred decode %s: %w: %w", spec.FREDID, ErrDataUnavailable, err)
	}
	if len(obs) == 0 {
		return nil, fmt.Errorf("fred %s: no observations: %w", spec.FREDID, ErrDataUnavailable)
	}
	sort.Slice(obs, func(i, j int) bool { return obs[i].Date.Before(obs[j].Date) })
	return obs, nil
}

func (f *FREDSource) get(ctx context.Context, endpoint string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("fred rate limit: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "npp/1.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fred fetch: %w: %w", ErrDataUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fred read body: %w: %w", ErrDataUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fred: status %d: %w", resp.StatusCode, ErrDataUnavailable)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("fred: empty body: %w", ErrDataUnavailable)
	}
	return body, nil
}

func decodeFREDJSON(body []byte) ([]model.Observation, error) {
	var resp fredObservations
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	if resp.ErrorMessage != "" {
		return nil, fmt.Errorf("api error: %s", resp.ErrorMessage)
	}
	obs := make([]model.Observation, 0, len(resp.Observations))
	for _, o := range resp.Observations {
		if o.Value == missingValue || o.Value == "" {
			continue
		}
		d, err := time.Parse(model.DateFormat, o.Date)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", o.Date, err)
		}
		v, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("parse value %q: %w", o.Value, err)
		}
		obs = append(obs, model.Observation{Date: d, Value: v})
	}
	return obs, nil
}

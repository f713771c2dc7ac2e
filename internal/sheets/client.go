package sheets

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// DefaultBaseURL is the Google Docs host serving CSV exports.
const DefaultBaseURL = "https://docs.google.com"

// Tab names one sheet tab by its gid.
type Tab struct {
	Name string `yaml:"name" json:"name"`
	GID  string `yaml:"gid" json:"gid"`
}

// Client downloads sheet tabs as CSV.
type Client struct {
	http    *resty.Client
	sheetID string
	log     zerolog.Logger
}

// NewClient creates a client for the spreadsheet sheetID. An empty baseURL
// uses DefaultBaseURL.
func NewClient(baseURL, sheetID string, logger zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetHeader("Accept", "text/csv")

	return &Client{
		http:    client,
		sheetID: sheetID,
		log:     logger.With().Str("component", "sheets").Logger(),
	}
}

// FetchTab downloads one tab and returns its CSV records.
func (c *Client) FetchTab(ctx context.Context, tab Tab) ([][]string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("sheet", c.sheetID).
		SetQueryParams(map[string]string{"format": "csv", "gid": tab.GID}).
		Get("/spreadsheets/d/{sheet}/export")
	if err != nil {
		return nil, fmt.Errorf("fetch tab %q: %w", tab.Name, err)
	}
	if resp.StatusCode() != http.StatusOK {
		c.log.Error().
			Str("tab", tab.Name).
			Int("status_code", resp.StatusCode()).
			Msg("sheet export failed")
		return nil, fmt.Errorf("fetch tab %q: unexpected status %d", tab.Name, resp.StatusCode())
	}

	r := csv.NewReader(strings.NewReader(string(resp.Body())))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse tab %q: %w", tab.Name, err)
	}
	c.log.Debug().Str("tab", tab.Name).Int("records", len(records)).Msg("tab downloaded")
	return records, nil
}

// FetchPlanning downloads every tab and parses its rows.
func (c *Client) FetchPlanning(ctx context.Context, tabs []Tab) (*Planning, error) {
	p := &Planning{}
	for _, tab := range tabs {
		records, err := c.FetchTab(ctx, tab)
		if err != nil {
			return nil, err
		}
		rows, skipped, err := ParseRows(records)
		if err != nil {
			return nil, fmt.Errorf("tab %q: %w", tab.Name, err)
		}
		p.Rows = append(p.Rows, rows...)
		p.Skipped += skipped
	}
	return p, nil
}

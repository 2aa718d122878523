package simplicate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"revrec/internal/domain"
)

// Client implements ports.CRMClient against a Simplicate-style REST API.
// Origin vocabulary is normalized here, once, on ingestion: the projects and
// sales endpoints each use their own spelling and the hours endpoint refers
// back to either.
type Client struct {
	baseURL   string
	apiKey    string
	apiSecret string
	http      *http.Client
	log       *slog.Logger
}

func NewClient(baseURL, apiKey, apiSecret string, log *slog.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		apiSecret: apiSecret,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// ListEntities fetches projects and open offers and maps both onto the
// canonical entity model.
func (c *Client) ListEntities(ctx context.Context) ([]domain.Entity, error) {
	var projects []rawProject
	if err := c.get(ctx, "/api/v2/projects/project", nil, &projects); err != nil {
		return nil, err
	}
	var offers []rawSale
	if err := c.get(ctx, "/api/v2/sales/sales", nil, &offers); err != nil {
		return nil, err
	}

	out := make([]domain.Entity, 0, len(projects)+len(offers))
	for _, p := range projects {
		out = append(out, domain.Entity{
			ID:          p.ID,
			Name:        p.Name,
			CompanyName: p.Organization.Name,
			Origin:      domain.ParseOriginKind("project"),
			Tags:        tagNames(p.Tags),
		})
	}
	for _, o := range offers {
		out = append(out, domain.Entity{
			ID:          o.ID,
			Name:        o.Subject,
			CompanyName: o.Organization.Name,
			Origin:      domain.ParseOriginKind("sales"),
			Tags:        tagNames(o.Tags),
		})
	}
	return out, nil
}

// ListBillingLines fetches all billable service lines.
func (c *Client) ListBillingLines(ctx context.Context) ([]domain.BillingLine, error) {
	var services []rawService
	if err := c.get(ctx, "/api/v2/projects/service", nil, &services); err != nil {
		return nil, err
	}
	out := make([]domain.BillingLine, 0, len(services))
	for _, s := range services {
		origin := domain.ParseOriginKind(s.LinkedType)
		if origin == domain.OriginUnknown {
			// Services historically always belong to projects; older API
			// versions omit the linked type entirely.
			origin = domain.OriginProject
		}
		out = append(out, domain.BillingLine{
			ID:           s.ID,
			EntityID:     s.LinkedID,
			EntityOrigin: origin,
			Quantity:     float64(s.Amount),
			Rate:         decimal.NewFromFloat(float64(s.Price)),
			Invoiced:     float64(s.InvoicedAmount),
			Basis:        domain.ParseInvoiceBasis(s.InvoiceBasis),
		})
	}
	return out, nil
}

// ListHourRecords fetches hours dated within [from, to).
func (c *Client) ListHourRecords(ctx context.Context, from, to time.Time) ([]domain.HourRecord, error) {
	q := url.Values{}
	q.Set("q[start_date][ge]", from.Format("2006-01-02"))
	q.Set("q[start_date][lt]", to.Format("2006-01-02"))
	var hours []rawHour
	if err := c.get(ctx, "/api/v2/hours/hours", q, &hours); err != nil {
		return nil, err
	}
	out := make([]domain.HourRecord, 0, len(hours))
	for _, h := range hours {
		out = append(out, domain.HourRecord{
			ID:           h.ID,
			Date:         parseDate(h.StartDate),
			Quantity:     float64(h.Hours),
			LineID:       h.ProjectServiceID,
			EntityID:     h.LinkedID,
			EntityOrigin: domain.ParseOriginKind(h.LinkedType),
		})
	}
	return out, nil
}

// get performs an authenticated GET and decodes the standard {"data": ...}
// envelope into dst.
func (c *Client) get(ctx context.Context, path string, query url.Values, dst any) error {
	if c.apiKey == "" || c.apiSecret == "" {
		return errors.New("simplicate: missing api credentials")
	}
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return err
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authentication-Key", c.apiKey)
	req.Header.Set("Authentication-Secret", c.apiSecret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("simplicate: unexpected status %d on %s: %s", resp.StatusCode, path, string(body))
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return err
	}
	return json.Unmarshal(envelope.Data, dst)
}

// parseDate tolerates the two date formats the hours endpoint emits. An
// unparseable date yields the zero time; the grouper drops such records.
func parseDate(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func tagNames(tags []rawTag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t.Label != "" {
			out = append(out, t.Label)
		}
	}
	return out
}

// looseFloat decodes a JSON number that may arrive as a number, a numeric
// string, null or be absent. Anything unparseable decodes to zero; numeric
// data quality degrades to zero rather than failing the pull.
type looseFloat float64

func (f *looseFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = looseFloat(v)
	return nil
}

type rawTag struct {
	Label string `json:"label"`
}

type rawOrganization struct {
	Name string `json:"name"`
}

type rawProject struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Organization rawOrganization `json:"organization"`
	Tags         []rawTag        `json:"tags"`
}

type rawSale struct {
	ID           string          `json:"id"`
	Subject      string          `json:"subject"`
	Organization rawOrganization `json:"organization"`
	Tags         []rawTag        `json:"tags"`
}

type rawService struct {
	ID             string     `json:"id"`
	LinkedType     string     `json:"linked_type"`
	LinkedID       string     `json:"linked_id"`
	Amount         looseFloat `json:"amount"`
	Price          looseFloat `json:"price"`
	InvoicedAmount looseFloat `json:"invoiced_amount"`
	InvoiceBasis   string     `json:"invoice_basis"`
}

type rawHour struct {
	ID               string     `json:"id"`
	Hours            looseFloat `json:"hours"`
	StartDate        string     `json:"start_date"`
	ProjectServiceID string     `json:"projectservice_id"`
	LinkedType       string     `json:"linked_type"`
	LinkedID         string     `json:"linked_id"`
}

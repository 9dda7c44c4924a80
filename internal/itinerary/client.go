// Package itinerary proxies the third-party itinerary generation service.
package itinerary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/funnytourism/tourism-api/internal/config"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrNotFound = errors.New("itinerary not found")
	// ErrBusy is returned when the upstream is throttling us.
	ErrBusy = errors.New("itinerary service is busy")
)

// UpstreamError carries a non-2xx answer from the service.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("itinerary service answered %d: %s", e.Status, e.Message)
}

type CityNights struct {
	City   string `json:"city"`
	Nights int    `json:"nights"`
}

// Itinerary holds the fields of a generated itinerary used for booking
// notifications. The service returns many more.
type Itinerary struct {
	UUID           string       `json:"uuid"`
	CustomerName   string       `json:"customer_name"`
	CustomerEmail  string       `json:"customer_email"`
	CustomerPhone  string       `json:"customer_phone"`
	CityNights     []CityNights `json:"city_nights"`
	StartDate      string       `json:"start_date"`
	Adults         int          `json:"adults"`
	Children       int          `json:"children"`
	HotelCategory  json.Number  `json:"hotel_category"`
	TourType       string       `json:"tour_type"`
	TotalPrice     json.Number  `json:"total_price"`
	PricePerPerson json.Number  `json:"price_per_person"`
}

func (it *Itinerary) Destination() string {
	cities := make([]string, len(it.CityNights))
	for i, cn := range it.CityNights {
		cities[i] = cn.City
	}
	return strings.Join(cities, " & ")
}

func (it *Itinerary) Nights() int {
	n := 0
	for _, cn := range it.CityNights {
		n += cn.Nights
	}
	return n
}

// Client talks to the service. It sets no timeout of its own; callers
// bound each call through the context.
type Client struct {
	BaseURL        string
	AuthToken      string
	OrganizationID int
	HTTP           *http.Client
}

func NewClient(cfg config.TQAConfig) *Client {
	return &Client{
		BaseURL:        strings.TrimRight(cfg.APIURL, "/"),
		AuthToken:      cfg.AuthToken,
		OrganizationID: cfg.OrganizationID,
		HTTP:           &http.Client{},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return nil, err
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if c.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AuthToken)
	}
	logrus.WithFields(logrus.Fields{"method": method, "path": path, "request_id": reqID}).Debug("itinerary service call")
	return c.HTTP.Do(req)
}

// Generate asks the service for a priced itinerary. The organization id is
// added unless the request already names one.
func (c *Client) Generate(ctx context.Context, req map[string]interface{}) (json.RawMessage, error) {
	payload := map[string]interface{}{"organization_id": c.OrganizationID}
	for k, v := range req {
		payload[k] = v
	}
	resp, err := c.do(ctx, http.MethodPost, "/api/itinerary/preview", payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, generateError(resp.StatusCode, body)
	}
	if !json.Valid(body) {
		return nil, &UpstreamError{Status: resp.StatusCode, Message: "Invalid response from itinerary service"}
	}
	return json.RawMessage(body), nil
}

func generateError(status int, body []byte) error {
	var e struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	if err := json.Unmarshal(body, &e); err != nil || e.Error == "" {
		e.Error = strings.TrimSpace(string(body))
	}
	switch {
	case strings.Contains(e.Error, "Too many requests"):
		return ErrBusy
	case e.Error == "":
		e.Error = "Failed to generate itinerary"
	case len(e.Details) > 0:
		e.Error = e.Error + ": " + strings.Join(e.Details, ", ")
	}
	return &UpstreamError{Status: status, Message: e.Error}
}

// Get fetches a generated itinerary. Any non-2xx answer is ErrNotFound.
func (c *Client) Get(ctx context.Context, id string) (*Itinerary, json.RawMessage, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/itinerary/"+id, nil)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logrus.WithFields(logrus.Fields{"uuid": id, "status": resp.StatusCode}).Warn("itinerary lookup failed")
		return nil, nil, ErrNotFound
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	var it Itinerary
	if err := json.Unmarshal(body, &it); err != nil {
		return nil, nil, fmt.Errorf("decode itinerary: %w", err)
	}
	return &it, json.RawMessage(body), nil
}

// RequestBooking forwards the customer's booking request.
func (c *Client) RequestBooking(ctx context.Context, id string) (json.RawMessage, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/itinerary/"+id+"/request-booking", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return json.RawMessage("null"), nil
	}
	return json.RawMessage(body), nil
}

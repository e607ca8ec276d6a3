package backend

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mark3labs/rentalwizard/internal/logger"
	"github.com/mark3labs/rentalwizard/internal/rental"
)

const (
	objectsPath = "/api/rental-objects"
	userAgent   = "rentalwizard/1.0"
)

// Options configures HTTPClient.
type Options struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Debug   bool
}

// HTTPClient talks to the rental-object REST API.
type HTTPClient struct {
	rc  *resty.Client
	log *logger.Logger
}

// NewHTTPClient returns a client for the API at opts.BaseURL.
func NewHTTPClient(opts Options) *HTTPClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}

	rc := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetDebug(opts.Debug).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")
	if opts.Token != "" {
		rc.SetAuthToken(opts.Token)
	}

	return &HTTPClient{rc: rc, log: logger.Named("backend")}
}

func (c *HTTPClient) Get(ctx context.Context, slug string) (*rental.Object, error) {
	var obj rental.Object
	resp, err := c.rc.R().
		SetContext(ctx).
		SetPathParam("slug", slug).
		SetResult(&obj).
		SetError(&APIError{}).
		Get(objectsPath + "/{slug}")
	if err := c.check("get", resp, err); err != nil {
		return nil, err
	}
	return &obj, nil
}

func (c *HTTPClient) Create(ctx context.Context, dto *rental.DTO) (*rental.Object, error) {
	var obj rental.Object
	resp, err := c.rc.R().
		SetContext(ctx).
		SetBody(dto).
		SetResult(&obj).
		SetError(&APIError{}).
		Post(objectsPath)
	if err := c.check("create", resp, err); err != nil {
		return nil, err
	}
	return &obj, nil
}

func (c *HTTPClient) Update(ctx context.Context, id string, dto *rental.DTO) (*rental.Object, error) {
	var obj rental.Object
	resp, err := c.rc.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetBody(dto).
		SetResult(&obj).
		SetError(&APIError{}).
		Put(objectsPath + "/{id}")
	if err := c.check("update", resp, err); err != nil {
		return nil, err
	}
	return &obj, nil
}

func (c *HTTPClient) check(op string, resp *resty.Response, err error) error {
	if err != nil {
		c.log.Error("%s request failed: %v", op, err)
		return fmt.Errorf("%s rental object: %w", op, err)
	}
	if !resp.IsError() {
		c.log.Debug("%s %s -> %d in %s", resp.Request.Method, resp.Request.URL, resp.StatusCode(), resp.Time())
		return nil
	}

	apiErr, ok := resp.Error().(*APIError)
	if !ok || apiErr == nil {
		apiErr = &APIError{}
	}
	apiErr.Status = resp.StatusCode()
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode())
	}
	c.log.Warn("%s %s -> %d: %s", resp.Request.Method, resp.Request.URL, apiErr.Status, apiErr.Message)
	return fmt.Errorf("%s rental object: %w", op, apiErr)
}

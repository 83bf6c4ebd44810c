package supplier

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/buildmat/internal/config"
)

// Client exposes the supplier price feed operations used by the application.
type Client interface {
	FetchQuotes(ctx context.Context) ([]Quote, error)
}

// Quote is one supplier price. MaterialID is preferred for matching; Name
// is used when the supplier does not know catalog ids.
type Quote struct {
	MaterialID string          `json:"material_id"`
	Name       string          `json:"name"`
	Supplier   string          `json:"supplier"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a supplier feed client using the provided configuration values.
func NewClient(cfg config.SupplierConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.FeedURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(15 * time.Second)
	if cfg.Token != "" {
		restyClient.SetAuthToken(cfg.Token)
	}

	return &APIClient{httpClient: restyClient}
}

type quotesResponse struct {
	Quotes []Quote `json:"quotes"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// FetchQuotes downloads the current price list.
func (c *APIClient) FetchQuotes(ctx context.Context) ([]Quote, error) {
	result := new(quotesResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		SetError(apiErr).
		Get("/prices")
	if err != nil {
		return nil, fmt.Errorf("fetch supplier quotes: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		code := resp.StatusCode()
		if apiErr.Error.Code != 0 {
			code = apiErr.Error.Code
		}
		return nil, fmt.Errorf("supplier feed error: code=%d, message=%s", code, apiErr.Error.Message)
	}

	return result.Quotes, nil
}

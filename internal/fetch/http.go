package fetch

import (
	"bountywatch/internal/telemetry"
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPSource fetches the page without a browser, for mirrors or
// server rendered copies of the listing.
type HTTPSource struct {
	http *resty.Client
}

func NewHTTPSource(timeout time.Duration, userAgent string, tel telemetry.API) HTTPSource {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "text/html")
	telemetry.InstrumentResty(client, telemetry.NewScopedAPI("fetch_http", tel))
	return HTTPSource{http: client}
}

func (h HTTPSource) Render(ctx context.Context, url string) (string, error) {
	res, err := h.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return "", err
	}
	if res.IsError() {
		return "", fmt.Errorf("unexpected status %s", res.Status())
	}
	return res.String(), nil
}

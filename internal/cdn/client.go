// Package cdn lists property assets published behind a CDN. The CDN serves a
// manifest.json at its base URL naming the files stored for each property.
package cdn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/yourorg/listing-api/listing"
)

var ErrManifestTooLarge = errors.New("manifest too large")

const manifestLimit = 4 << 20

type Client struct {
	baseURL string
	http    *retryablehttp.Client
	limiter *rate.Limiter
}

func NewClient(baseURL string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 900 * time.Millisecond
	rc.RetryMax = 3
	rc.HTTPClient.Timeout = 6 * time.Second
	rc.Logger = nil

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    rc,
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 2),
	}
}

// manifest is keyed by property key. Entries are bare filenames relative to
// <base>/<key>/<kind>s/ or absolute URLs.
type manifest struct {
	Properties map[string]struct {
		Images    []string `json:"images"`
		Videos    []string `json:"videos"`
		Documents []string `json:"documents"`
	} `json:"properties"`
}

// Assets implements listing.AssetSource.
func (c *Client) Assets(ctx context.Context) (listing.AssetPool, error) {
	body, err := c.fetch(ctx, c.baseURL+"/manifest.json")
	if err != nil { return nil, err }
	var m manifest
	if err := json.Unmarshal(body, &m); err != nil { return nil, fmt.Errorf("decode manifest: %w", err) }

	pool := listing.AssetPool{}
	for key, entry := range m.Properties {
		c.addAll(pool, key, listing.KindImage, entry.Images)
		c.addAll(pool, key, listing.KindVideo, entry.Videos)
		c.addAll(pool, key, listing.KindDocument, entry.Documents)
	}
	return pool, nil
}

func (c *Client) addAll(pool listing.AssetPool, key string, kind listing.AssetKind, entries []string) {
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" { continue }
		if u, err := url.Parse(e); err == nil && u.IsAbs() {
			pool.Add(key, kind, listing.Asset{Name: path.Base(u.Path), Locator: e})
			continue
		}
		loc := c.baseURL + "/" + url.PathEscape(key) + "/" + string(kind) + "s/" + url.PathEscape(e)
		pool.Add(key, kind, listing.Asset{Name: e, Locator: loc})
	}
}

func (c *Client) fetch(ctx context.Context, u string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil { return nil, err }

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil { return nil, err }
	req.Header.Set("accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil { return nil, err }
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("cdn error %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return ioReadAllLimit(resp.Body, manifestLimit)
}

func ioReadAllLimit(r io.Reader, limit int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil { return nil, err }
	if int64(len(b)) > limit { return nil, ErrManifestTooLarge }
	return b, nil
}

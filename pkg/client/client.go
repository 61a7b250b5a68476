package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/snorochevskiy/photo-sync-tst/pkg/api"
	"github.com/snorochevskiy/photo-sync-tst/pkg/types"
)

// Client is the HTTP implementation of the remote peer capability, speaking
// to another node's peer API. A 404 on a checksum query means the remote has
// no data at that level and surfaces as an absent checksum, not an error;
// every other fault is a remote error that aborts the current sync.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the peer at baseURL (e.g. "http://beta:7600").
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) Years(ctx context.Context) ([]int, error) {
	var resp api.YearsResponse
	if _, err := c.getJSON(ctx, "/v1/years", &resp); err != nil {
		return nil, err
	}
	return resp.Years, nil
}

func (c *Client) YearChecksum(ctx context.Context, year int) (*types.Checksum, error) {
	return c.checksum(ctx, fmt.Sprintf("/v1/years/%d/checksum", year))
}

func (c *Client) Months(ctx context.Context, year int) ([]int, error) {
	var resp api.MonthsResponse
	if _, err := c.getJSON(ctx, fmt.Sprintf("/v1/years/%d/months", year), &resp); err != nil {
		return nil, err
	}
	return resp.Months, nil
}

func (c *Client) MonthChecksum(ctx context.Context, year, month int) (*types.Checksum, error) {
	return c.checksum(ctx, fmt.Sprintf("/v1/years/%d/months/%d/checksum", year, month))
}

func (c *Client) Days(ctx context.Context, year, month int) ([]int, error) {
	var resp api.DaysResponse
	if _, err := c.getJSON(ctx, fmt.Sprintf("/v1/years/%d/months/%d/days", year, month), &resp); err != nil {
		return nil, err
	}
	return resp.Days, nil
}

func (c *Client) DayChecksum(ctx context.Context, d types.Date) (*types.Checksum, error) {
	return c.checksum(ctx, fmt.Sprintf("/v1/days/%s/checksum", d))
}

func (c *Client) DayObjects(ctx context.Context, d types.Date) ([]types.ObjectID, error) {
	var resp api.ObjectsResponse
	if _, err := c.getJSON(ctx, fmt.Sprintf("/v1/days/%s/objects", d), &resp); err != nil {
		return nil, err
	}
	return resp.Objects, nil
}

func (c *Client) PutDay(ctx context.Context, d types.Date, ids []types.ObjectID) error {
	body, err := json.Marshal(api.PutDayRequest{Objects: ids})
	if err != nil {
		return fmt.Errorf("%w: encode put day: %v", types.ErrRemote, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+fmt.Sprintf("/v1/days/%s", d), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrRemote, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: put day %s: %v", types.ErrRemote, d, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: put day %s: %s", types.ErrRemote, d, remoteMessage(resp))
	}
	return nil
}

// checksum fetches a checksum endpoint, mapping 404 to an absent value.
func (c *Client) checksum(ctx context.Context, path string) (*types.Checksum, error) {
	var resp api.ChecksumResponse
	status, err := c.getJSON(ctx, path, &resp)
	if status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &resp.Checksum, nil
}

// getJSON performs a GET and decodes the response. The returned status is
// valid whenever a response was received, even on error.
func (c *Client) getJSON(ctx context.Context, path string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", types.ErrRemote, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: get %s: %v", types.ErrRemote, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, fmt.Errorf("%w: get %s: %s", types.ErrRemote, path, remoteMessage(resp))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: decode %s: %v", types.ErrRemote, path, err)
	}
	return resp.StatusCode, nil
}

// remoteMessage extracts the error message from a non-2xx response.
func remoteMessage(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var e api.ErrorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return fmt.Sprintf("%s (%s)", e.Error, resp.Status)
	}
	return resp.Status
}

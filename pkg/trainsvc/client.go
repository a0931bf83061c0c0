package trainsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type client struct {
	httpclient *http.Client
	root       string
}

var _ Client = &client{}

// New returns a client of the training service at root URL, like "http://trainer:8000".
//
// Requests time out after timeout. Zero timeout means no timeout.
func New(root string, timeout time.Duration) (Client, error) {
	u, err := url.Parse(root)
	if err != nil {
		return nil, fmt.Errorf("training service url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("training service url should be http(s)://host[:port]/...: %s", root)
	}
	return &client{
		httpclient: &http.Client{Timeout: timeout},
		root:       strings.TrimSuffix(root, "/"),
	}, nil
}

func (c *client) Endpoint(elem ...string) string {
	segments := make([]string, 0, len(elem)+1)
	segments = append(segments, c.root)
	for _, e := range elem {
		segments = append(segments, url.PathEscape(strings.Trim(e, "/")))
	}
	return strings.Join(segments, "/")
}

func (c *client) StartTraining(ctx context.Context, sreq StartRequest) (Response, error) {
	body, err := json.Marshal(sreq.Payload())
	if err != nil {
		return Response{}, err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.Endpoint("train"), bytes.NewReader(body),
	)
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        payload,
	}, nil
}

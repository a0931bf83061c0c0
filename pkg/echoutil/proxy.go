package echoutil

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	kio "github.com/helixlab/helix/pkg/io"
	"github.com/labstack/echo/v4"
)

// the service behind cannot be reached. Nothing is written to the response yet.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// hop-by-hop headers, not to be relayed.
var hopByHop = []string{
	"Connection", "Keep-Alive", "Proxy-Connection", "Upgrade", "Te", "Host",
}

// Proxy sends the request of c to url as it is, and relays the response to c.
//
// When the request cannot be sent, it returns ErrUpstreamUnavailable
// without writing the response. Error responses from upstream are relayed, not errors.
func Proxy(c echo.Context, url string) error {
	return ProxyWith(http.DefaultClient, c, url)
}

func ProxyWith(client *http.Client, c echo.Context, url string) error {
	src := c.Request()
	req, err := http.NewRequestWithContext(src.Context(), src.Method, url, src.Body)
	if err != nil {
		return err
	}
	if src.Body == nil || src.Body == http.NoBody {
		req.Body = http.NoBody
	}
	req.ContentLength = src.ContentLength
	CopyHeader(req.Header, src.Header, hopByHop...)
	req.TransferEncoding = append(req.TransferEncoding, src.TransferEncoding...)

	if src.Trailer != nil {
		req.Trailer = http.Header{}
		for k := range src.Trailer {
			req.Trailer[k] = nil
		}
		// request trailers are available after the body is read out.
		body := kio.NewTriggerReader(src.Body)
		body.OnEnd(func() { CopyHeader(req.Trailer, src.Trailer) })
		req.Body = io.NopCloser(body)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	return CopyResponse(c, resp)
}

// CopyHeader adds headers in src to dest, except ones listed (case insensitive).
func CopyHeader(dest http.Header, src http.Header, except ...string) {
	exc := map[string]struct{}{}
	for _, x := range except {
		exc[http.CanonicalHeaderKey(x)] = struct{}{}
	}

	for k, vs := range src {
		if _, ok := exc[http.CanonicalHeaderKey(k)]; ok {
			continue
		}
		for _, v := range vs {
			dest.Add(k, v)
		}
	}
}

// CopyResponse writes resp to c, streaming the body.
func CopyResponse(c echo.Context, resp *http.Response) error {
	ctx := c.Request().Context()

	dst := c.Response()
	dstHeader := dst.Header()
	CopyHeader(dstHeader, resp.Header, hopByHop...)

	chunked := false
	for _, te := range resp.TransferEncoding {
		dstHeader.Add("Transfer-Encoding", te)
		if strings.EqualFold(te, "chunked") {
			chunked = true
		}
	}
	for trailer := range resp.Trailer {
		dstHeader.Add("Trailer", trailer)
	}

	dst.WriteHeader(resp.StatusCode)

	src := kio.NewTriggerReader(resp.Body)
	src.OnEnd(func() {
		trailer := dst.Header()
		for k, vs := range resp.Trailer {
			for _, v := range vs {
				trailer.Add(k, v)
			}
		}
	})
	if !chunked {
		_, err := io.Copy(dst.Writer, src)
		return err
	}

	// flush each chunk, for streaming responses like progress of training.
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return werr
			}
			dst.Flush()
		}
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}
	}
}

package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	apierr "github.com/helixlab/helix/pkg/api/types/errors"
	"github.com/helixlab/helix/pkg/configs/extras"
	"github.com/helixlab/helix/pkg/echoutil"
	"github.com/labstack/echo/v4"
)

type Rewriter func(req *url.URL) (*url.URL, error)

var ErrRewrite = errors.New("rewrite error")

// RewriteWith returns a Rewriter which maps request URLs under ep.Path onto ep.ProxyTo.
func RewriteWith(ep extras.Endpoint) (Rewriter, error) {
	if ep.ProxyTo == nil {
		return nil, fmt.Errorf("%w: no destination for %s", ErrRewrite, ep.Path)
	}
	sourcePath := strings.TrimSuffix(ep.Path, "/")

	return func(req *url.URL) (*url.URL, error) {
		dest := *ep.ProxyTo // copy, not to modify the endpoint.

		switch p := req.Path; {
		case p == sourcePath:
		case strings.HasPrefix(p, sourcePath+"/"):
			rest := strings.TrimPrefix(p, sourcePath+"/")
			if rest == "" {
				rest = "/"
			}
			dest = *dest.JoinPath(rest)
		default:
			return nil, fmt.Errorf("%w: path prefix is not match", ErrRewrite)
		}

		dest.Fragment = req.Fragment
		dest.RawQuery = req.RawQuery
		return &dest, nil
	}, nil
}

// ExtraAPI routes requests under ex.Path to ex.ProxyTo, for any methods.
func ExtraAPI(e *echo.Echo, ex extras.Endpoint, proxyFn ProxyFunc) error {
	rew, err := RewriteWith(ex)
	if err != nil {
		return err
	}

	e.Any(path.Join(ex.Path, "*"), func(c echo.Context) error {
		dest, err := rew(c.Request().URL)
		if err != nil {
			return apierr.NotFound("")
		}
		err = proxyFn(c, dest.String())
		if errors.Is(err, echoutil.ErrUpstreamUnavailable) {
			return apierr.BadGateway(ex.ProxyTo.Host, err)
		}
		return err
	})
	return nil
}

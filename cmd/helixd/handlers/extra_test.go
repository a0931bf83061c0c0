package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/helixlab/helix/cmd/helixd/handlers"
	"github.com/helixlab/helix/pkg/configs/extras"
	"github.com/helixlab/helix/pkg/echoutil"
	"github.com/helixlab/helix/pkg/utils/try"
	"github.com/labstack/echo/v4"
)

func TestRewriter(t *testing.T) {
	type When struct {
		Path    string
		ProxyTo string
		Url     string
	}
	type Then struct {
		Url string
	}

	theory := func(when When, then Then) func(t *testing.T) {
		return func(t *testing.T) {
			testee := try.To(handlers.RewriteWith(extras.Endpoint{
				Path:    when.Path,
				ProxyTo: try.To(url.Parse(when.ProxyTo)).OrFatal(t),
			})).OrFatal(t)

			requrl := try.To(url.Parse(when.Url)).OrFatal(t)
			for range 2 { // rewriter should be safe for repeated calls
				dest, err := testee(requrl)
				if err != nil {
					t.Fatalf("unexpected error: %s", err)
				}
				if dest.String() != then.Url {
					t.Fatalf("want %s, but got %s", then.Url, dest.String())
				}
			}
		}
	}

	t.Run("between no path URLs", theory(
		When{Path: "/", ProxyTo: "http://example.com", Url: "http://localhost.com"},
		Then{Url: "http://example.com"},
	))
	t.Run("between no path URLs (with port)", theory(
		When{Path: "/", ProxyTo: "http://example.com:8888", Url: "http://localhost.com:8080"},
		Then{Url: "http://example.com:8888"},
	))
	t.Run("between no path URLs (trailing slash in request)", theory(
		When{Path: "/", ProxyTo: "http://example.com", Url: "http://localhost.com/"},
		Then{Url: "http://example.com/"},
	))
	t.Run("between no path URLs (trailing slash in destination)", theory(
		When{Path: "/", ProxyTo: "http://example.com/", Url: "http://localhost.com"},
		Then{Url: "http://example.com/"},
	))
	t.Run("between no path URLs with query and fragment", theory(
		When{Path: "/", ProxyTo: "http://example.com", Url: "http://localhost.com?query=1#fragment"},
		Then{Url: "http://example.com?query=1#fragment"},
	))
	t.Run("between path URLs", theory(
		When{Path: "/trainer", ProxyTo: "http://example.com/api", Url: "http://localhost.com/trainer"},
		Then{Url: "http://example.com/api"},
	))
	t.Run("between path URLs (trailing slash in request)", theory(
		When{Path: "/trainer", ProxyTo: "http://example.com/api", Url: "http://localhost.com/trainer/"},
		Then{Url: "http://example.com/api/"},
	))
	t.Run("between path URLs (trailing slash in endpoint)", theory(
		When{Path: "/trainer/", ProxyTo: "http://example.com/api", Url: "http://localhost.com/trainer"},
		Then{Url: "http://example.com/api"},
	))
	t.Run("between path URLs (trailing slash in destination)", theory(
		When{Path: "/trainer", ProxyTo: "http://example.com/api/", Url: "http://localhost.com/trainer"},
		Then{Url: "http://example.com/api/"},
	))
	t.Run("between sub-path URLs", theory(
		When{Path: "/trainer", ProxyTo: "http://example.com/root", Url: "http://localhost.com/trainer/sub/path"},
		Then{Url: "http://example.com/root/sub/path"},
	))
	t.Run("between sub-path URLs with query (with port)", theory(
		When{Path: "/trainer", ProxyTo: "http://example.com:8888/root", Url: "http://localhost.com:8080/trainer/sub/path?query=1"},
		Then{Url: "http://example.com:8888/root/sub/path?query=1"},
	))
	t.Run("between sub-path URLs (trailing slash in request)", theory(
		When{Path: "/trainer", ProxyTo: "http://example.com/root", Url: "http://localhost.com/trainer/sub/path/?query=1"},
		Then{Url: "http://example.com/root/sub/path/?query=1"},
	))
	t.Run("between sub-path URLs (trailing slash in destination)", theory(
		When{Path: "/trainer", ProxyTo: "http://example.com/root/", Url: "http://localhost.com/trainer/sub/path?query=1"},
		Then{Url: "http://example.com/root/sub/path?query=1"},
	))
	t.Run("between sub-path URLs with query and fragment", theory(
		When{Path: "/trainer", ProxyTo: "http://example.com/root", Url: "http://localhost.com/trainer/sub/path?query=1#fragment"},
		Then{Url: "http://example.com/root/sub/path?query=1#fragment"},
	))

	t.Run("it rejects paths out of the endpoint", func(t *testing.T) {
		testee := try.To(handlers.RewriteWith(extras.Endpoint{
			Path:    "/trainer",
			ProxyTo: try.To(url.Parse("http://example.com/root")).OrFatal(t),
		})).OrFatal(t)

		for _, u := range []string{"http://localhost.com/trainers", "http://localhost.com/other/trainer"} {
			if _, err := testee(try.To(url.Parse(u)).OrFatal(t)); !errors.Is(err, handlers.ErrRewrite) {
				t.Errorf("%s: unexpected error: %v", u, err)
			}
		}
	})
}

func TestExtraAPI(t *testing.T) {
	var gotMethod, gotPath string
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusTeapot)
	}))
	defer svr.Close()

	e := echo.New()
	ep := extras.Endpoint{
		Path:    "/trainer",
		ProxyTo: try.To(url.Parse(svr.URL + "/v2")).OrFatal(t),
	}
	if err := handlers.ExtraAPI(e, ep, echoutil.Proxy); err != nil {
		t.Fatal(err)
	}

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
		req := httptest.NewRequest(method, "/trainer/metrics", nil)
		resp := httptest.NewRecorder()
		e.ServeHTTP(resp, req)

		if resp.Code != http.StatusTeapot {
			t.Errorf("%s: status: %d", method, resp.Code)
		}
		if gotMethod != method || gotPath != "/v2/metrics" {
			t.Errorf("%s: upstream got %s %s", method, gotMethod, gotPath)
		}
	}
}

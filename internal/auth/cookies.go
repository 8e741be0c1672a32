package auth

import (
	"net/http"
)

// CookieJar is the request-scoped cookie store an identity is read from and
// written to.
type CookieJar interface {
	Get(name string) (string, bool)
	Set(cookie *http.Cookie)
}

type httpCookieJar struct {
	r *http.Request
	w http.ResponseWriter
}

// NewHTTPCookieJar reads cookies from r and writes Set-Cookie headers to w.
// Set must be called before the response is written.
func NewHTTPCookieJar(w http.ResponseWriter, r *http.Request) CookieJar {
	return &httpCookieJar{r: r, w: w}
}

func (j *httpCookieJar) Get(name string) (string, bool) {
	c, err := j.r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func (j *httpCookieJar) Set(cookie *http.Cookie) {
	http.SetCookie(j.w, cookie)
}

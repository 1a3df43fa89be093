package router

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/azizndao/gexpress/errors"
)

func (c *Ctx) Method() string {
	return c.Request.Method
}

func (c *Ctx) Path() string {
	return c.Request.URL.Path
}

// URL gets the full request URL
func (c *Ctx) URL() *url.URL {
	return c.Request.URL
}

// Get gets a request header by key
func (c *Ctx) Get(key string) string {
	return c.Request.Header.Get(key)
}

// ContentType gets the Content-Type header
func (c *Ctx) ContentType() string {
	return c.Get("Content-Type")
}

func (c *Ctx) UserAgent() string {
	return c.Request.UserAgent()
}

// Authorization gets the Authorization header
func (c *Ctx) Authorization() string {
	return c.Get("Authorization")
}

// BearerToken extracts the bearer token from the Authorization header
// Returns empty string if no bearer token is present
func (c *Ctx) BearerToken() string {
	token, ok := strings.CutPrefix(c.Authorization(), "Bearer ")
	if !ok {
		return ""
	}
	return token
}

// IP returns the client's IP address. Proxy headers are honoured, so put a
// real-ip middleware in front when the server is not behind a trusted proxy.
func (c *Ctx) IP() string {
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if ip := c.Get("X-Real-IP"); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return host
}

// Scheme gets the request scheme (http or https)
func (c *Ctx) Scheme() string {
	if c.Request.TLS != nil {
		return "https"
	}
	if scheme := c.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}

// Host gets the request host
func (c *Ctx) Host() string {
	if host := c.Get("X-Forwarded-Host"); host != "" {
		return host
	}
	return c.Request.Host
}

// BaseURL gets the base URL (scheme + host)
func (c *Ctx) BaseURL() string {
	return fmt.Sprintf("%s://%s", c.Scheme(), c.Host())
}

// IsSecure checks if the request is using HTTPS
func (c *Ctx) IsSecure() bool {
	return c.Scheme() == "https"
}

// Query gets a query parameter by key
func (c *Ctx) Query(key string) string {
	return c.Request.URL.Query().Get(key)
}

// QueryDefault gets a query parameter with a default value
func (c *Ctx) QueryDefault(key, defaultValue string) string {
	if value := c.Query(key); value != "" {
		return value
	}
	return defaultValue
}

// QueryAll gets all values for a query parameter key
func (c *Ctx) QueryAll(key string) []string {
	return c.Request.URL.Query()[key]
}

// QueryInt gets a query parameter as int
func (c *Ctx) QueryInt(key string) (int, error) {
	value := c.Query(key)
	if value == "" {
		return 0, errors.BadRequest(fmt.Sprintf("missing query parameter %q", key), nil)
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.BadRequest(fmt.Sprintf("query parameter %q must be an integer", key), err)
	}
	return n, nil
}

// QueryIntDefault gets a query parameter as int with a default value
func (c *Ctx) QueryIntDefault(key string, defaultValue int) int {
	n, err := c.QueryInt(key)
	if err != nil {
		return defaultValue
	}
	return n
}

// QueryBool gets a query parameter as bool
func (c *Ctx) QueryBool(key string) bool {
	switch strings.ToLower(c.Query(key)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

// PathInt gets a path parameter as int
func (c *Ctx) PathInt(name string) (int, error) {
	value, ok := c.params.Get(name)
	if !ok {
		return 0, errors.BadRequest(fmt.Sprintf("missing path parameter %q", name), nil)
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.BadRequest(fmt.Sprintf("path parameter %q must be an integer", name), err)
	}
	return n, nil
}

// PathIntDefault gets a path parameter as int with a default value
func (c *Ctx) PathIntDefault(name string, defaultValue int) int {
	n, err := c.PathInt(name)
	if err != nil {
		return defaultValue
	}
	return n
}

// FormValue gets a form value by key
func (c *Ctx) FormValue(key string) string {
	return c.Request.FormValue(key)
}

func (c *Ctx) GetCookie(name string) (*http.Cookie, error) {
	return c.Request.Cookie(name)
}

// GetCookieDefault gets a cookie value with a default fallback
func (c *Ctx) GetCookieDefault(name, defaultValue string) string {
	cookie, err := c.Request.Cookie(name)
	if err != nil {
		return defaultValue
	}
	return cookie.Value
}

// Body gets the raw request body as bytes
// The body is cached after the first read, so this method can be called multiple times
func (c *Ctx) Body() ([]byte, error) {
	if c.bodyRead {
		return c.body, nil
	}
	defer c.Request.Body.Close()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errors.RequestEntityTooLarge(
				fmt.Sprintf("Request body too large. Maximum size is %d bytes", maxErr.Limit), err)
		}
		return nil, err
	}

	c.body = body
	c.bodyRead = true
	return body, nil
}

// ParseBody parses the JSON request body into out
func (c *Ctx) ParseBody(out any) error {
	contentType := c.ContentType()
	if contentType != "" && !strings.HasPrefix(strings.ToLower(contentType), "application/json") {
		return errors.BadRequest("Invalid Content-Type", fmt.Errorf("expected application/json, got %s", contentType))
	}

	body, err := c.Body()
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return errors.BadRequest("Empty request body", nil)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.BadRequest("Invalid JSON", err)
	}
	return nil
}

// ValidateBody parses and validates the request body in one call
func (c *Ctx) ValidateBody(out any) error {
	if err := c.ParseBody(out); err != nil {
		return err
	}
	return c.router.validator.Validate(out, c.locale())
}

// ValidateBody is a generic helper to parse and validate the request body
func ValidateBody[T any](c *Ctx) (*T, error) {
	var out T
	if err := c.ValidateBody(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// locale returns the primary language of Accept-Language, or "en".
func (c *Ctx) locale() string {
	accept := c.Get("Accept-Language")
	if accept == "" {
		return "en"
	}
	lang, _, _ := strings.Cut(accept, ",")
	lang, _, _ = strings.Cut(lang, ";")
	lang, _, _ = strings.Cut(lang, "-")
	if lang = strings.ToLower(strings.TrimSpace(lang)); lang != "" {
		return lang
	}
	return "en"
}

// AcceptsJSON checks if the client accepts JSON responses
func (c *Ctx) AcceptsJSON() bool {
	return c.Accepts("application/json")
}

// Accepts checks if the client accepts a specific content type
func (c *Ctx) Accepts(contentType string) bool {
	accept := strings.ToLower(c.Get("Accept"))
	return strings.Contains(accept, strings.ToLower(contentType)) || strings.Contains(accept, "*/*")
}

// GetRequestID returns the X-Request-ID header
func (c *Ctx) GetRequestID() string {
	return c.Get("X-Request-ID")
}

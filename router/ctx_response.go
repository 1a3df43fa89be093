package router

import (
	"encoding/json"
	"net/http"
)

// Set sets a response header
func (c *Ctx) Set(key, value string) *Ctx {
	c.Response.Header().Set(key, value)
	return c
}

// SetHeaders sets multiple headers at once
func (c *Ctx) SetHeaders(headers map[string]string) *Ctx {
	for key, value := range headers {
		c.Response.Header().Set(key, value)
	}
	return c
}

func (c *Ctx) SetCookie(cookie *http.Cookie) *Ctx {
	http.SetCookie(c.Response, cookie)
	return c
}

// ClearCookie clears a cookie by setting it to expire
func (c *Ctx) ClearCookie(name string) *Ctx {
	return c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.IsSecure(),
		SameSite: http.SameSiteLaxMode,
	})
}

// Status sets the response status code (stored until response is sent)
func (c *Ctx) Status(code int) *Ctx {
	c.statusCode = code
	return c
}

// StatusCode returns the status the next response helper will send.
func (c *Ctx) StatusCode() int {
	return c.statusCode
}

// End sends the stored status with no body
func (c *Ctx) End() error {
	c.Response.WriteHeader(c.statusCode)
	return nil
}

// NoContent sends a 204 No Content response
func (c *Ctx) NoContent() error {
	return c.Status(http.StatusNoContent).End()
}

// Created sends a 201 Created response with optional data
func (c *Ctx) Created(data any) error {
	c.statusCode = http.StatusCreated
	if data != nil {
		return c.JSON(data)
	}
	return c.End()
}

// Accepted sends a 202 Accepted response with optional data
func (c *Ctx) Accepted(data any) error {
	c.statusCode = http.StatusAccepted
	if data != nil {
		return c.JSON(data)
	}
	return c.End()
}

// JSON sends a JSON response
func (c *Ctx) JSON(data any) error {
	c.Set("Content-Type", "application/json; charset=utf-8")
	c.Response.WriteHeader(c.statusCode)
	return json.NewEncoder(c.Response).Encode(data)
}

// SendString sends a plain text response
func (c *Ctx) SendString(text string) error {
	c.Set("Content-Type", "text/plain; charset=utf-8")
	c.Response.WriteHeader(c.statusCode)
	_, err := c.Response.Write([]byte(text))
	return err
}

func (c *Ctx) HTML(data []byte) error {
	c.Set("Content-Type", "text/html; charset=utf-8")
	c.Response.WriteHeader(c.statusCode)
	_, err := c.Response.Write(data)
	return err
}

func (c *Ctx) Redirect(status int, url string) error {
	http.Redirect(c.Response, c.Request, url, status)
	return nil
}

// IsSuccess checks if the stored status code is in the 2xx range
func (c *Ctx) IsSuccess() bool {
	return c.statusCode >= 200 && c.statusCode < 300
}

// IsClientError checks if the stored status code is in the 4xx range
func (c *Ctx) IsClientError() bool {
	return c.statusCode >= 400 && c.statusCode < 500
}

// IsServerError checks if the stored status code is in the 5xx range
func (c *Ctx) IsServerError() bool {
	return c.statusCode >= 500 && c.statusCode < 600
}

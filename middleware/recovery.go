package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/azizndao/gexpress/errors"
	"github.com/azizndao/gexpress/router"
)

// Recovery returns a layer that recovers panics raised by any later layer.
// The panic is logged with its stack, the rest of the chain is abandoned and,
// if nothing was written yet, a 500 JSON error is sent.
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
func Recovery() router.Handler {
	return func(c *router.Ctx) (err error) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			c.Abort()
			cause, ok := rvr.(error)
			if !ok {
				cause = fmt.Errorf("panic: %v", rvr)
			}
			c.Logger().ErrorWithSource(c.Context(), 0, cause,
				"method", c.Method(),
				"path", c.Path(),
				"stack", string(debug.Stack()),
			)

			if !c.Written() {
				_ = c.Status(http.StatusInternalServerError).
					JSON(errors.InternalServerError("Internal Server Error", nil))
			}
			err = nil
		}()

		return c.Continue()
	}
}

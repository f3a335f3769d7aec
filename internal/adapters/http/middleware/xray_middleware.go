package middleware

import (
	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/labstack/echo/v4"
)

// XRayMiddleware opens one segment per request and records the request line
// and final status on it.
func XRayMiddleware(segmentName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx, seg := xray.BeginSegment(req.Context(), segmentName)
			seg.Lock()
			seg.GetHTTP().GetRequest().Method = req.Method
			seg.GetHTTP().GetRequest().URL = req.URL.Path
			seg.Unlock()
			c.SetRequest(req.Clone(ctx))

			err := next(c)
			if err != nil {
				c.Error(err)
			}
			seg.Lock()
			seg.GetHTTP().GetResponse().Status = c.Response().Status
			seg.Unlock()
			seg.Close(nil)
			return nil
		}
	}
}

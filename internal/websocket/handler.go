package websocket

import (
	"net/url"

	"github.com/gin-gonic/gin"

	ws "github.com/coder/websocket"
)

// Handler upgrades the request and streams wake-up events until the peer
// leaves. allowedOrigins are CORS-style origins; the same-host origin is
// always accepted.
func Handler(hub *Hub, allowedOrigins []string) gin.HandlerFunc {
	opts := &ws.AcceptOptions{OriginPatterns: originPatterns(allowedOrigins)}
	return func(c *gin.Context) {
		conn, err := ws.Accept(c.Writer, c.Request, opts)
		if err != nil {
			hub.logger.Warn("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		NewClient(hub, conn).Run(c.Request.Context())
	}
}

// originPatterns turns "http://localhost:3000" into "localhost:3000".
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
			continue
		}
		patterns = append(patterns, o)
	}
	return patterns
}

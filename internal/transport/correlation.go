package transport

import (
	"strings"

	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/observability"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const HeaderCorrelationID = "X-Correlation-ID"

// CorrelationID stores the caller's correlation id (or a fresh one) in the
// request context and echoes it on the response.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(HeaderCorrelationID))
		if id == "" {
			id = uuid.NewString()
		}

		c.SetUserContext(observability.WithCorrelationID(c.UserContext(), id))
		c.Set(HeaderCorrelationID, id)
		return c.Next()
	}
}

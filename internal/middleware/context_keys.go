package middleware

import "github.com/gin-gonic/gin"

// clientIDKey is the key used to store the authenticated client's ID in the context.
const clientIDKey = contextKey("clientID")

// GetClientIDFromContext retrieves the authenticated client ID from the Gin context.
// It returns the client ID and a boolean indicating if it was found.
func GetClientIDFromContext(c *gin.Context) (string, bool) {
	clientIDVal, exists := c.Get(string(clientIDKey))
	if !exists {
		// check in the request context as well
		ctxVal := c.Request.Context().Value(clientIDKey)
		if ctxVal != nil {
			return ctxVal.(string), true
		}
		return "", false
	}

	clientID, ok := clientIDVal.(string)
	if !ok {
		// This should not happen if the auth middleware sets it correctly
		return "", false
	}

	return clientID, true
}

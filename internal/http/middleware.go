package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"habit-tracker/internal/session"
)

const sessionKey = "session"

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		if username, ok := currentSession(c).Username(); ok {
			entry = entry.WithField("user", username)
		}
		entry.Debug("request")
	}
}

// sessionMiddleware attaches an anonymous session to every request and
// authenticates it from a valid bearer token.
func sessionMiddleware(tokens *session.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.New()
		c.Set(sessionKey, sess)

		if token, ok := bearerToken(c.GetHeader("Authorization")); ok && tokens != nil {
			// a bad token leaves the session anonymous; requireAuth rejects it
			_ = tokens.Resume(sess, token)
		}
		c.Next()
	}
}

func requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := currentSession(c).Username(); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		c.Next()
	}
}

func currentSession(c *gin.Context) *session.Session {
	if v, ok := c.Get(sessionKey); ok {
		if sess, ok := v.(*session.Session); ok {
			return sess
		}
	}
	sess := session.New()
	c.Set(sessionKey, sess)
	return sess
}

func sessionUser(c *gin.Context) string {
	username, _ := currentSession(c).Username()
	return username
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

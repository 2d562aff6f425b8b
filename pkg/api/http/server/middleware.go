package server

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// loggingMiddleware shims in a handler middleware that logs requests.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logrus.WithFields(logrus.Fields{
			"method": r.Method,
			"uri":    r.RequestURI,
			"length": r.ContentLength,
		}).Debug("request")
		next.ServeHTTP(w, r)
	})
}

package tls

import (
	"net"
	"net/http"

	"shoppinglist-api/internal/logging"

	"github.com/sirupsen/logrus"
)

// RedirectHandler answers plain HTTP with a permanent redirect to the HTTPS port.
// 308 keeps the method and body, so list and item writes survive the hop.
func RedirectHandler(httpsPort string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Host
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		if httpsPort != "443" {
			host = net.JoinHostPort(host, httpsPort)
		}
		target := "https://" + host + r.URL.RequestURI()

		logging.Logger.WithFields(logrus.Fields{
			"client_ip": r.RemoteAddr,
			"method":    r.Method,
			"https_url": target,
		}).Debug("HTTP to HTTPS redirect")

		http.Redirect(w, r, target, http.StatusPermanentRedirect)
	})
}

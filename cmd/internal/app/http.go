package app

import (
	"net"
	"net/http"
	"strings"

	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/realtime"
)

func registerHTTP(mux *http.ServeMux, api http.Handler, metrics *Metrics) {
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready\n"))
	})
	if metrics != nil {
		mux.Handle("/metrics", metrics.Handler())
	}
	mux.Handle("/", api)
}

// runtimeBaseURL turns a listen address into a URL a local client can dial.
func runtimeBaseURL(addr string) string {
	host, port, err := net.SplitHostPort(strings.TrimSpace(addr))
	if err != nil {
		return "http://" + strings.TrimSpace(addr)
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}

// wsURL is the websocket endpoint behind an HTTP base, or "" if base is unusable.
func wsURL(base, path string) string {
	u, err := realtime.WSURL(base, path)
	if err != nil {
		return ""
	}
	return u
}

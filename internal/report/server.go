package report

import (
	"context"
	"net/http"
	"time"

	"github.com/calluna-data/habimap/internal/monitoring"
)

// Serve exposes the output directory over HTTP so the report and figures
// can be opened in a browser. It blocks until ctx is cancelled, then shuts
// the server down gracefully.
func Serve(ctx context.Context, addr, dir string) error {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(dir)))

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		monitoring.Logf("got request %q", r.URL.Path)
		mux.ServeHTTP(w, r)
	})

	server := &http.Server{
		Addr:    addr,
		Handler: h,
	}

	errc := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	monitoring.Logf("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

package app

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/educsys/frequencia-academica/internal/metrics"
)

type HTTPServer struct {
	srv *http.Server
}

// StartHTTP sobe o servidor de operação (/healthz e /metrics). O healthz
// verifica se o diretório de dados segue gravável, já que todo o estado
// vive em arquivos locais.
func StartHTTP(ctx context.Context, addr, dataDir string) *HTTPServer {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		sonda := filepath.Join(dataDir, ".healthz")
		if err := os.WriteFile(sonda, []byte("ok"), 0o644); err != nil {
			http.Error(w, "diretório de dados não gravável: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		_ = os.Remove(sonda)
		_, _ = w.Write([]byte("ok"))
	})

	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		_ = srv.ListenAndServe() // encerrado via Shutdown
	}()

	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	return &HTTPServer{srv: srv}
}

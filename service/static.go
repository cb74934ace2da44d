package service

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"inkwell/app/middleware"

	"github.com/rs/zerolog"
)

// RunStaticServer serves a directory written by BuildSite until ctx ends or
// the process is interrupted.
func RunStaticServer(ctx context.Context, dir, addr string, logger zerolog.Logger) error {
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return fmt.Errorf("static directory %s does not exist; run build first", dir)
	}
	logger.Info().Str("dir", dir).Msg("Serving static site")

	var handler http.Handler = http.FileServer(http.Dir(dir))
	handler = middleware.Recoverer(logger)(handler)
	handler = middleware.Logger(logger)(handler)
	s := newServer(addr, handler, 15*time.Second, 15*time.Second, logger)
	return serve(ctx, s, 10*time.Second)
}

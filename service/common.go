package service

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// Server is an http.Server that logs its lifecycle.
type Server struct {
	*http.Server
	logger zerolog.Logger
}

func newServer(addr string, handler http.Handler, read, write time.Duration, logger zerolog.Logger) Server {
	return Server{
		Server: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  read,
			WriteTimeout: write,
			IdleTimeout:  2 * time.Minute,
		},
		logger: logger,
	}
}

func (s Server) Start(errChannel chan<- error) {
	s.logger.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	s.logger.Info().Msg("Gracefully shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		s.logger.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		s.logger.Info().Msg("HttpServer gracefully shut down")
	}
}

// serve runs s until it fails, ctx ends or the process gets SIGINT or
// SIGTERM, then shuts it down.
func serve(ctx context.Context, s Server, shutdownTimeout time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errChannel := make(chan error, 2)
	go s.Start(errChannel)
	go listenToInterrupt(ctx, errChannel)

	err := <-errChannel
	s.ShutdownGracefully(shutdownTimeout)
	if errors.Is(err, http.ErrServerClosed) || errors.Is(err, errInterrupted) || ctx.Err() != nil {
		return nil
	}
	return err
}

var errInterrupted = errors.New("interrupted")

func listenToInterrupt(ctx context.Context, errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(c)
	select {
	case <-c:
		errChannel <- errInterrupted
	case <-ctx.Done():
		errChannel <- ctx.Err()
	}
}

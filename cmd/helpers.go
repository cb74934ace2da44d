package cmd

import (
	"fmt"
	"os"

	"inkwell/app/config"
	"inkwell/app/logging"
	"inkwell/app/services"
	"inkwell/service"

	"github.com/rs/zerolog"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (zerolog.Logger, error) {
	return logging.New(logging.Options{
		Level:   cfg.Log.Level,
		Pretty:  cfg.Log.Pretty,
		Verbose: verbose,
		Out:     os.Stderr,
	})
}

// openApp loads the config and opens the store. The caller closes the app.
func openApp() (*service.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	return service.NewApp(cfg, logger)
}

// withApp runs fn with an open app and closes it afterwards.
func withApp(fn func(app *service.App) error) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}

// adminService returns the admin operations gated by the terminal, or by
// nothing with --yes.
func adminService(app *service.App) *services.AdminService {
	return app.Admin(confirmer())
}

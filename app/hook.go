package app

import (
	"context"
	"errors"
	"fmt"
)

// Shutdown stops the modules, then closes the event bus and database.
func (app *App) Shutdown(ctx context.Context) error {
	logger := app.Observability.Logger
	logger.Info("Shutting down application...")

	var errs []error
	if app.LadderModule != nil {
		if err := app.LadderModule.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("ladder module: %w", err))
		}
	}
	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("event bus: %w", err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	logger.Info("Application shut down gracefully")
	return nil
}

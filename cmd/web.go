/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/flamego/flamego"
	"github.com/urfave/cli/v3"

	"github.com/humaidq/labnorm/biomarker"
	"github.com/humaidq/labnorm/routes"
)

var CmdServe = &cli.Command{
	Name:    "serve",
	Aliases: []string{"start", "run"},
	Usage:   "Start the normalization HTTP API",
	Flags: append(engineFlags(),
		&cli.StringFlag{
			Name:  "port",
			Value: "8080",
			Usage: "the web server port",
		},
	),
	Action: serve,
}

// defaultProfileNormalizer fills in the configured profile for requests that
// name none.
type defaultProfileNormalizer struct {
	next    routes.Normalizer
	profile string
}

func (n defaultProfileNormalizer) NormalizeBatch(ctx context.Context, rows []biomarker.RawBiomarker, subject biomarker.SubjectContext) (*biomarker.BatchResult, error) {
	if subject.ProfileName == "" {
		subject.ProfileName = n.profile
	}

	return n.next.NormalizeBatch(ctx, rows, subject)
}

// effectiveProfile is the profile applied to requests that name none.
func effectiveProfile(flag string) string {
	if flag != "" {
		return flag
	}

	return biomarker.DefaultProfileName
}

// newWebApp wires the API routes around a normalizer.
func newWebApp(normalizer routes.Normalizer, info routes.Info, timeout time.Duration) *flamego.Flame {
	f := flamego.New()
	f.Use(flamego.Recovery())
	f.Use(routes.RequestLogger)

	f.MapTo(normalizer, (*routes.Normalizer)(nil))
	f.Map(info)

	f.Get("/healthz", routes.Healthz)
	f.Group("/api", func() {
		f.Post("/normalize", routes.Normalize)
	}, routes.Timeout(timeout))

	f.NotFound(routes.NotFound)

	return f
}

func serve(ctx context.Context, cmd *cli.Command) error {
	eng, err := openEngine(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer eng.Close()

	profile := cmd.String("profile")

	var normalizer routes.Normalizer = eng.processor
	if profile != "" {
		normalizer = defaultProfileNormalizer{next: eng.processor, profile: profile}
	}

	info := routes.Info{
		Strategies:     eng.processor.Pipeline().Catalog().Strategies(),
		DefaultProfile: effectiveProfile(profile),
		Store:          eng.store,
	}

	f := newWebApp(normalizer, info, cmd.Duration("timeout"))

	port := cmd.String("port")
	srv := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%s", port),
		Handler:           f,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cmd.Duration("timeout") + 15*time.Second,
		ErrorLog:          requestStdLogger,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)

	go func() {
		appLogger.Info("Starting web server", "port", port, "store", eng.store)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("web server failed: %w", err)
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down web server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down web server: %w", err)
	}

	return nil
}

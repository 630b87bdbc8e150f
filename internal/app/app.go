// Copyright 2026 The DCCL Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package app is the process lifecycle shell every dcclctl daemon
// subcommand runs under: signal-driven shutdown with a grace period,
// and a fan-out of independent run loops joined with an errgroup.
// Adapted from the teacher's internal/start package — the
// sync.Once/atomic.Value single-run guard and the errgroup fan-out are
// kept; the stdlib log.Print is replaced with structured zerolog
// logging per this project's ambient stack.
package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// RunFunc is one supervised run loop: it must return promptly once ctx
// is canceled.
type RunFunc func(ctx context.Context) error

// Run executes fn, canceling its context on the first SIGINT and
// forcing a return after stopTimeout if fn does not exit on its own.
func Run(ctx context.Context, log zerolog.Logger, stopTimeout time.Duration, fn RunFunc) error {
	notify := make(chan os.Signal, 3)
	signal.Notify(notify, os.Interrupt)
	defer signal.Stop(notify)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	var once sync.Once
	finish := func() { once.Do(func() { close(done) }) }

	var runErr atomic.Value
	go func() {
		if err := fn(ctx); err != nil {
			runErr.Store(err)
		}
		finish()
	}()

	select {
	case <-notify:
		log.Info().Msg("received interrupt, shutting down")
	case <-done:
	}
	cancel()

	go func() {
		<-time.After(stopTimeout)
		finish()
	}()
	<-done

	if err, ok := runErr.Load().(error); ok {
		return err
	}
	return nil
}

// RunAll joins independent run loops under one errgroup.Context: the
// first to return an error cancels the rest.
func RunAll(ctx context.Context, runs ...RunFunc) error {
	group, gctx := errgroup.WithContext(ctx)
	for _, run := range runs {
		run := run
		group.Go(func() error { return run(gctx) })
	}
	return group.Wait()
}

// Copyright 2018, RadiantBlue Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/venicegeo/bf-snap/gpt"
	"github.com/venicegeo/bf-snap/runs"
	"github.com/venicegeo/bf-snap/util"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"
)

const shutdownTimeout = 10 * time.Second

// openRunStore uses the database when one is configured and falls back to
// an in-memory history otherwise
func openRunStore(ctx util.LogContext) runs.Store {
	database, err := getDbConnectionFunc(ctx)
	if err != nil {
		util.LogAlert(ctx, fmt.Sprintf("No database available, keeping run history in memory: %v", err))
		return runs.NewMemoryStore()
	}
	return runs.NewPostgresStore(database)
}

func createRouter(ctx util.LogContext, store runs.Store, registry runs.OperatorRegistry) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/", func(writer http.ResponseWriter, request *http.Request) {
		writer.Write([]byte("OK"))
	})
	router.Handle("/runs", runs.NewListHandler(store)).Methods("GET")
	router.Handle("/runs/{id}", runs.NewRunHandler(store)).Methods("GET")
	router.Handle("/operators/{operator}/defaults", runs.NewDefaultsHandler(registry)).Methods("GET")
	router.Handle("/metadata", runs.NewMetadataHandler()).Methods("POST")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	util.LogInfo(ctx, "Router created")
	return router
}

func serveAction(c *cli.Context) error {
	logContext := &(util.BasicLogContext{})

	store := openRunStore(logContext)
	registry := gpt.NewRegistry(gptConfig(c))

	return launchServerFunc(util.GetPortStr(), createRouter(logContext, store, registry))
}

var launchServerFunc = launchServer

// launchServer serves until the listener fails or the process is told to
// stop, then drains in-flight requests
func launchServer(portStr string, router *mux.Router) error {
	logContext := &(util.BasicLogContext{})
	server := &http.Server{
		Addr:              portStr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		util.LogInfo(logContext, "Listening on "+portStr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		util.LogInfo(logContext, "Shutting down server")
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		return util.LogSimpleErr(logContext, "Server failed", err)
	}
	return nil
}

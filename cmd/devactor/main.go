package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-actor-client/actor/actorfake"
	"github.com/jrsteele09/go-actor-client/internal/config"
	"github.com/jrsteele09/go-actor-client/internal/logger"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running dev actor")
	}
	log.Info().Msg("Dev actor stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	logger.Init(c.GetLogLevel(), c.GetEnv())
	displayAppname("dev actor")

	e := newServer(actorfake.New(c.GetActorID()), c.GetActorID())
	addr := config.GetEnv("DEVACTOR_ADDR", ":4943")
	go listenAndServe(e, addr)
	waitForStopSignal()
	return shutdown(e)
}

func listenAndServe(e *echo.Echo, addr string) {
	log.Info().Str("addr", addr).Msg("Dev actor listening")
	if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Err(err).Msg("Dev actor failed")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(e *echo.Echo) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("echo.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

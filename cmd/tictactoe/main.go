package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/jaminalder/tictactoe-solver/internal/app"
	"github.com/jaminalder/tictactoe-solver/internal/bootstrap"
	"github.com/jaminalder/tictactoe-solver/internal/domain"
	"github.com/jaminalder/tictactoe-solver/internal/engine"
	"github.com/jaminalder/tictactoe-solver/internal/render"
	"github.com/jaminalder/tictactoe-solver/internal/web"
)

const usage = `usage:
  tictactoe serve [--config FILE] [--addr ADDR] [--log-level LEVEL] [--dev] [--mode pvp|ai]
  tictactoe solve BOARD [--side X|O]
  tictactoe selfplay [BOARD]

BOARD is nine cells row by row using X, O and '.' for empty, e.g. XX.OO....`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "serve":
		err = serve(os.Args[2:])
	case "solve":
		err = solve(os.Args[2:])
	case "selfplay":
		err = selfplay(os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serve(args []string) error {
	flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	cfgPath := flags.String("config", ".env", "config file")
	bootstrap.RegisterFlags(flags)
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := bootstrap.Setup(*cfgPath, flags)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := bootstrap.NewLogger(*cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	svc := app.NewService(log.Named("app"))
	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: web.NewServer(svc, *cfg, log.Named("http")),
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	log.Infow("server listening", "addr", cfg.Addr, "mode", cfg.DefaultMode)
	var runErr error
	select {
	case <-sigCtx.Done():
		log.Info("shutdown signal received")
	case err, ok := <-serverErrCh:
		if ok {
			runErr = err
			log.Errorw("server error", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Warnw("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			log.Errorw("forced close failed", zap.Error(closeErr))
		}
	}
	return runErr
}

func solve(args []string) error {
	flags := pflag.NewFlagSet("solve", pflag.ContinueOnError)
	sideFlag := flags.String("side", "", "side to move (default: inferred from mark counts)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return errors.New("solve needs exactly one BOARD argument")
	}
	pos, err := domain.ParsePosition(flags.Arg(0))
	if err != nil {
		return err
	}
	side := pos.SideToMove()
	if *sideFlag != "" {
		if side, err = domain.ParseMark(*sideFlag); err != nil {
			return err
		}
	}

	term := render.NewTerminal(os.Stdout)
	term.Position(pos)
	fmt.Println()
	if out := domain.TerminalState(pos); out.Terminal() {
		term.Outcome(out)
		term.Value(side, engine.Value(pos, side))
		return nil
	}
	term.Analysis(side, engine.Analyze(pos, side), engine.BestMove(pos, side))
	return nil
}

func selfplay(args []string) error {
	var pos domain.Position
	if len(args) > 0 {
		var err error
		if pos, err = domain.ParsePosition(args[0]); err != nil {
			return err
		}
	}
	term := render.NewTerminal(os.Stdout)
	side := pos.SideToMove()
	term.Position(pos)
	for !domain.TerminalState(pos).Terminal() {
		res := engine.BestMove(pos, side)
		if err := pos.Place(res.Move, side); err != nil {
			return err
		}
		fmt.Printf("\n%v plays %d\n", side, res.Move)
		term.Position(pos)
		side = side.Opponent()
	}
	fmt.Println()
	term.Outcome(domain.TerminalState(pos))
	return nil
}

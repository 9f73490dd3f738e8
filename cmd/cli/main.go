package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/dmitrijs2005/megasession/internal/client/cli"
	"github.com/dmitrijs2005/megasession/internal/client/config"
	"github.com/dmitrijs2005/megasession/internal/flagx"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	args := flagx.Positional(os.Args[1:], []string{"-c", "-config", "-a", "-t"}, "-v")
	err = app.Run(ctx, args)
	_ = app.Close()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}

}

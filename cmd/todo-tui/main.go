package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/todoflow-labs/todo-service/internal/client"
	"github.com/todoflow-labs/todo-service/internal/config"
	"github.com/todoflow-labs/todo-service/internal/logging"
	"github.com/todoflow-labs/todo-service/internal/tui"
)

func main() {
	logFile := flag.String("log", "", "write diagnostic logs to this file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// the terminal belongs to the UI, so logs only go to a file when asked
	logger := logging.Nop()
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()
		logger = logging.NewWithWriter(f, cfg.LogLevel)
	}

	board := client.NewBoard(client.NewAPI(cfg.APIURL, nil), logger)
	if err := tui.Run(board); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/IzmdI/rawstore-plots/src/logger"
	"github.com/IzmdI/rawstore-plots/src/merge"
)

func main() {
	var dir string
	var out string
	var level string
	flag.StringVar(&dir, "dir", "data", "Directory holding fio --output-format=json result files")
	flag.StringVar(&out, "out", merge.DefaultOutputName, "Summary file name inside -dir, without .jsonl")
	flag.StringVar(&level, "log-level", "info", "Log level: debug|info|warn|error")
	flag.Parse()
	logger.SetLogLevel(level)

	res, err := merge.Merge(dir, out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Summary: %s\n", res.Output)
	fmt.Printf("Appended: %d, older: %d, failed: %d\n", res.Appended, res.Skipped, res.Failed)
}

// Package cmdmain dispatches subcommands and configures logging from the
// root flag set. The subcommand registration mechanism follows the design of
// [perkeep/cmdmain].
//
// [perkeep/cmdmain]: https://github.com/perkeep/perkeep/tree/56726780f66b5654c1d7c01dc85b0e686ddbffd2/pkg/cmdmain
package cmdmain

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/jgathje/framesink/internal/logging"
)

var (
	logFormat string
	logLevel  int
	logFile   string
)

type SubCmd interface {
	Help() string
	Exec(cmd string, args []string) error
}

var subCmds = map[string]SubCmd{}

func RegisterSubCmd(name string, makeSubCmd func() SubCmd) {
	if _, ok := subCmds[name]; ok {
		log.Fatalf("duplicate subcommand: %q", name)
	}
	subCmds[name] = makeSubCmd()
}

func usage(name string) func() {
	return func() {
		fmt.Fprintf(os.Stderr, `%v writes rendered video frames to encoder and file sinks

Usage:
	%v [flags] <command> [command flags]
`, name, name)

		fmt.Fprintln(os.Stderr, "\nCommands:")
		for name, cmd := range subCmds {
			fmt.Fprintf(os.Stderr, "  %-8s %s\n", name, cmd.Help())
		}

		fmt.Fprintln(os.Stderr, "\nFlags:")
		flag.PrintDefaults()
		fmt.Fprintln(os.Stderr)
		fmt.Fprintf(os.Stderr, "Run `%v <command> -h` to show full help for a command\n", name)
	}
}

func Main() {
	flag.StringVar(&logFile, "logfile", "", "Log file, empty string means stderr")
	flag.StringVar(&logFormat, "log-format", "text", "Logging format: text or json")
	flag.IntVar(&logLevel, "log-level", 0, "Logging level (slog.Level)")

	flag.Usage = usage(os.Args[0])
	flag.Parse()

	if len(flag.Args()) < 1 {
		fmt.Println("error: missing subcommand")
		flag.Usage()
		os.Exit(1)
	}

	var lf io.Writer = nil
	if logFile != "" {
		f, err := os.Create(logFile)
		if err != nil {
			fmt.Printf("failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		lf = f
	}
	logging.Configure(logging.Format(logFormat), slog.Level(logLevel), lf)

	subCmd, ok := subCmds[flag.Arg(0)]
	if !ok {
		fmt.Println("error: unknown subcommand")
		flag.Usage()
		os.Exit(1)
	}

	subCmdArgs := flag.Args()[1:]
	if err := subCmd.Exec(os.Args[0], subCmdArgs); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// Command meshnorm normalizes meshes into a common reference frame using
// corresponding landmark points.
//
// Usage:
//
//	meshnorm run     [-catalog file] [-in dir] [-out dir] [flags]
//	meshnorm align   -model "x,y,z; ..." [-reference "x,y,z; ..."] -o out in
//	meshnorm gen     [-shape box] [-size 40,30,20] [-rotate rx,ry,rz] -o out
//	meshnorm catalog
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

const usage = `usage: meshnorm <command> [flags]

commands:
  run      normalize every mesh listed in a landmark catalog
  align    normalize one mesh with landmarks given on the command line
  gen      write a synthetic mesh
  catalog  print the built-in landmark catalog
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run dispatches a subcommand and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	var err error
	switch args[0] {
	case "run":
		err = runBatch(ctx, args[1:], stdout, stderr)
	case "align":
		err = runAlign(args[1:], stdout, stderr)
	case "gen":
		err = runGen(args[1:], stderr)
	case "catalog":
		err = runCatalog(stdout)
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "meshnorm: unknown command %q\n\n%s", args[0], usage)
		return 2
	}
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "meshnorm %s: %v\n", args[0], err)
		}
		return exitCode(err)
	}
	return 0
}

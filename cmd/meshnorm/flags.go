package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chazu/meshalign/pkg/align"
)

// errUsage signals a flag error that the FlagSet already reported.
var errUsage = errors.New("usage")

// errFailedItems signals a batch that completed with skipped meshes.
var errFailedItems = errors.New("some meshes failed")

func exitCode(err error) int {
	switch {
	case errors.Is(err, errUsage):
		return 2
	case errors.Is(err, errFailedItems):
		return 3
	default:
		return 1
	}
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("meshnorm "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return nil
}

// parseTriple parses "x,y,z".
func parseTriple(s string) ([3]float64, error) {
	var out [3]float64
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return out, fmt.Errorf("%q: want x,y,z", s)
	}
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return out, fmt.Errorf("%q: %w", s, err)
		}
		out[i] = f
	}
	return out, nil
}

// parsePoints parses "x,y,z; x,y,z; ...".
func parsePoints(s string) (align.PointSet, error) {
	var ps align.PointSet
	for _, item := range strings.Split(s, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		c, err := parseTriple(item)
		if err != nil {
			return nil, err
		}
		ps = append(ps, align.Point3{X: c[0], Y: c[1], Z: c[2]})
	}
	return ps, nil
}

// parseFloats parses "a,b,c,...".
func parseFloats(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []float64
	for _, p := range strings.Split(s, ",") {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", s, err)
		}
		out = append(out, f)
	}
	return out, nil
}

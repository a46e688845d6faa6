// Command validate checks that a feature collection is a contiguous hourly
// series: after sorting by observed time, every adjacent pair must be exactly
// one hour apart. It exits 1 and names the first break otherwise.
//
// Usage:
//
//	go run ./cmd/validate -in datafixed.json
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/observation-gapfill/internal/adapter/file"
	"github.com/couchcryptid/observation-gapfill/internal/domain"
)

func main() {
	in := flag.String("in", "datafixed.json", "path of the feature collection to check")
	flag.Parse()

	os.Exit(run(*in, os.Stdout, os.Stderr))
}

func run(path string, stdout, stderr io.Writer) int {
	doc, err := file.ReadDocument(path)
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: %v\n", err)
		return 1
	}

	set := doc.Features
	domain.SortByObserved(set)

	if err := domain.CheckContiguity(set); err != nil {
		var ce *domain.ContiguityError
		if errors.As(err, &ce) {
			fmt.Fprintf(stdout, "FAIL %s: %d observations, first break at %s -> %s\n", path, len(set), ce.Prev, ce.Cur)
			return 1
		}
		fmt.Fprintf(stderr, "FATAL: %v\n", err)
		return 1
	}

	if len(set) == 0 {
		fmt.Fprintf(stdout, "PASS %s: empty collection\n", path)
		return 0
	}
	fmt.Fprintf(stdout, "PASS %s: %d observations from %s to %s\n", path, len(set),
		domain.FormatTimestamp(set[0].Observed), domain.FormatTimestamp(set[len(set)-1].Observed))
	return 0
}

package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/setevik/faulttrace/internal/event"
	"github.com/setevik/faulttrace/internal/tracer"
)

var (
	sevColors = map[event.Severity]*color.Color{
		event.SevWarning: color.New(color.FgYellow),
		event.SevError:   color.New(color.FgRed),
		event.SevFatal:   color.New(color.FgRed, color.Bold),
	}
	headerColor = color.New(color.Bold)
)

// printDigest renders the retained records and the run's statistics.
func printDigest(w io.Writer, rec tracer.Recorder, dropped uint64) {
	headerColor.Fprintln(w, "Retained records (oldest to newest):")
	n := rec.IterateErrors(func(r event.Record) {
		c, ok := sevColors[r.Severity]
		if !ok {
			c = color.New()
		}
		fmt.Fprintf(w, "  %-28s %s  x%-6d t=%d\n",
			r.Signature.String(),
			c.Sprintf("%-7s", r.Severity.Label()),
			r.Occurrences,
			r.Timestamp,
		)
	})
	if n == 0 {
		fmt.Fprintln(w, "  (none)")
	}

	stats, err := rec.Statistics()
	if err != nil {
		fmt.Fprintf(w, "statistics unavailable: %v\n", err)
		return
	}

	headerColor.Fprintln(w, "Statistics:")
	fmt.Fprintf(w, "  accepted     %d\n", stats.Total)
	fmt.Fprintf(w, "  unique       %d\n", stats.Unique)
	fmt.Fprintf(w, "  overflows    %d\n", stats.Overflows)
	fmt.Fprintf(w, "  runtime      %d\n", stats.RuntimeErrors)
	fmt.Fprintf(w, "  transient    %d\n", stats.TransientFaults)
	fmt.Fprintf(w, "  warnings     %d\n", stats.Warnings)
	fmt.Fprintf(w, "  errors       %d\n", stats.Errors)
	fmt.Fprintf(w, "  fatals       %d\n", stats.Fatals)
	fmt.Fprintf(w, "  suppressed   %d\n", stats.Suppressed)
	if dropped > 0 {
		fmt.Fprintf(w, "  dropped      %d (guard contention)\n", dropped)
	}
}

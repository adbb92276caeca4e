package cli

import (
	"fmt"
	"io"

	"murmur/internal/seed"

	"github.com/fatih/color"
)

var (
	okMark   = color.New(color.FgGreen, color.Bold)
	warnMark = color.New(color.FgYellow)
	label    = color.New(color.FgCyan)
)

func printOK(w io.Writer, format string, args ...any) {
	_, _ = okMark.Fprint(w, "✓ ")
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}

func printWarn(w io.Writer, format string, args ...any) {
	_, _ = warnMark.Fprintf(w, "! "+format+"\n", args...)
}

func printSummary(w io.Writer, sum *seed.Summary) {
	rows := []struct {
		name  string
		count int
	}{
		{"users", sum.Users},
		{"posts", sum.Posts},
		{"follows", sum.Follows},
		{"likes", sum.Likes},
		{"comments", sum.Comments},
	}
	for _, r := range rows {
		_, _ = label.Fprintf(w, "  %-9s", r.name)
		_, _ = fmt.Fprintf(w, "%d\n", r.count)
	}
}

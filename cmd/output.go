package cmd

import (
	"fmt"
	"os"
)

// ── Unified output helpers ────────────────────────────────────────────────────
// Status lines printed by pat's subcommands share these icons and
// indentation. The support table itself is rendered by internal/render.
//
// Icon semantics:
//   ✓  success / up to date
//   ⚠  warning                  (written to stderr)
//   ~  neutral info / state change

// printOK prints a success line.
//   name = "" → "  ✓  msg"
//   name set  → "  ✓  [name] msg"
func printOK(name, msg string) {
	if name == "" {
		fmt.Printf("  ✓  %s\n", msg)
	} else {
		fmt.Printf("  ✓  [%s] %s\n", name, msg)
	}
}

// printWarn prints a warning line to stderr so it never mixes with a
// rendered table.
func printWarn(name, msg string) {
	if name == "" {
		fmt.Fprintf(os.Stderr, "  ⚠  %s\n", msg)
	} else {
		fmt.Fprintf(os.Stderr, "  ⚠  [%s] %s\n", name, msg)
	}
}

// printInfo prints a neutral informational / state-change line to stderr.
func printInfo(name, msg string) {
	if name == "" {
		fmt.Fprintf(os.Stderr, "  ~  %s\n", msg)
	} else {
		fmt.Fprintf(os.Stderr, "  ~  [%s] %s\n", name, msg)
	}
}

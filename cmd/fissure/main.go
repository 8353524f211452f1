// fissure is the operator CLI: classify defect descriptions, record access
// decisions, and produce the activity report, sharing the audit log with the
// HTTP service.
//
// Usage:
//
//	fissure classify --user <id> [description...]
//	fissure access   --user <id> --granted|--denied [--role <role>] [--details <text>]
//	fissure report   [--format text|markdown|json|yaml] [--out <path>] [--archive]
//	fissure snapshot [--format json|yaml]
//	fissure events   [--kind <kind>] [--actor <id>] [--limit <n>]
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

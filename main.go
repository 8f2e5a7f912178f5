// Package main is the entry point for the jasstat CLI tool, which replays
// Jass session and tournament history into ratings and cumulative statistics.
package main

import "github.com/schieber/jasstat/cmd"

func main() {
	cmd.Execute()
}

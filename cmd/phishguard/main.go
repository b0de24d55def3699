// Package main provides the entry point for the phishguard CLI.
//
// phishguard classifies URLs as safe, suspicious or phishing by running
// them through a fixed sequence of detection stages.
//
// Usage:
//
//	phishguard classify <url> [url...]
//	phishguard serve --addr 127.0.0.1:8000
//
// See --help for all available options.
package main

func main() {
	Execute()
}

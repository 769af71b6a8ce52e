// cmd/questctl/main.go
package main

import "quest-workers/internal/cli"

func main() {
	cli.Execute()
}

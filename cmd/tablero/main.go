// cmd/tablero/main.go
package main

import "github.com/transito-gt/tablero/pkg/cli"

func main() {
	cli.Execute()
}

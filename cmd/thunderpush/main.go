package main

import "github.com/lestrrat-go/thunderpush/internal/cli"

var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.Execute()
}

package main

import "github.com/darmiel/lakegate/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/weavecli/weave/cmd"

func main() {
	cmd.Execute()
}

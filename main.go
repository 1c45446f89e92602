package main

import "github.com/KaramelBytes/trendloom-cli/cmd"

func main() {
	cmd.Execute()
}

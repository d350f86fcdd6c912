package main

import "github.com/robustnas/robq/cmd"

func main() {
	cmd.Execute()
}

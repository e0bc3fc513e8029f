package main

import "github.com/klytics/copykit/cmd"

func main() {
	cmd.Execute()
}

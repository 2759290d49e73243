package main

import "github.com/meetpipe/meeting-gateway/cmd"

func main() {
	cmd.Execute()
}

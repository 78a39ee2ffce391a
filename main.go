package main

import "github.com/voicekit/focusd/cmd"

func main() {
	cmd.Execute()
}

package main

import (
	"voicenote/cmd/voicenote/cmd"
)

func main() {
	cmd.Execute()
}

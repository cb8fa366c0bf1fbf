package main

import (
	"bountywatch/cmd/bountywatch/commands"
	"context"
)

func main() {
	commands.ExecuteContext(context.Background())
}

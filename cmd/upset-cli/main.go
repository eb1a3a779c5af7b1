package main

import (
	"context"

	"upset-backend/cmd/upset-cli/commands"
	"upset-backend/lib/telemetry"
)

func main() {
	ctx := context.Background()
	telemetry.SetupFromEnv(ctx, "upset-cli")
	telemetry.InitSlog(true)
	commands.ExecuteContext(ctx)
}

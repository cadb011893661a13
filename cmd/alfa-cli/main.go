package main

import (
	"context"

	"alfagate-backend/cmd/alfa-cli/commands"
	"alfagate-backend/lib/serviceutil"
	"alfagate-backend/lib/telemetry"
)

func main() {
	ctx := context.Background()
	t, err := telemetry.SetupFromEnv(ctx, "alfa-cli")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	defer t.Shutdown(context.Background())

	telemetry.InitSlog(true)
	commands.ExecuteContext(ctx)
}

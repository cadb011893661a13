package main

import (
	"context"

	"alfagate-backend/lib/restyutil"
	"alfagate-backend/lib/scrapers/alfa"
	"alfagate-backend/lib/serviceutil"
	"alfagate-backend/lib/telemetry"
)

func InitTelemetry(ctx context.Context, verbose bool) {
	t, err := telemetry.SetupFromEnv(ctx, "alfa-server")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		t.Shutdown(context.Background())
	}()
	telemetry.InstrumentPerfStats(ctx)

	telemetry.InitSlog(verbose)
	if !verbose {
		return
	}

	alfa.SetRestyInstrumentOutput(
		restyutil.NewFilesystemOutput(".dev/resty_telemetry/alfa"),
	)
}

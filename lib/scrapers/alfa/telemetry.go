package alfa

import (
	"alfagate-backend/lib/restyutil"
	"alfagate-backend/lib/telemetry"
)

var tracer = telemetry.Tracer("alfagate.lib.scrapers.alfa")
var restyInstrumentOutput restyutil.InstrumentOutput

func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyInstrumentOutput = out
}

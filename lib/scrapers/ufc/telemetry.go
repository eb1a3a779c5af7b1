package ufc

import (
	"upset-backend/lib/restyutil"
)

var restyInstrumentOutput restyutil.InstrumentOutput

// SetRestyInstrumentOutput enables full request/response dumps for
// clients constructed after the call, meant for verbose debugging
// runs.
func SetRestyInstrumentOutput(output restyutil.InstrumentOutput) {
	restyInstrumentOutput = output
}

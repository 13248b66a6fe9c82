package a

import (
	"time"
	stdtime "time"
)

var jakarta = time.FixedZone("WIB", 7*60*60)

func bad() {
	_ = time.Now() // want `time.Now\(\) should be followed by .UTC\(\) or .In\(loc\) for timezone consistency`
}

func good() {
	_ = time.Now().UTC()
}

func alsoBad() {
	t := time.Now() // want `time.Now\(\) should be followed by .UTC\(\)`
	_ = t
}

func inLocationGood() {
	_ = time.Now().In(jakarta)
}

func chainingGood() {
	_ = time.Now().UTC().Format(time.RFC3339)
}

func chainingBad() {
	_ = time.Now().Add(time.Hour).UTC() // want `time.Now\(\) should be followed by .UTC\(\)`
}

func renamedImportBad() {
	_ = stdtime.Now() // want `time.Now\(\) should be followed by .UTC\(\)`
}

func funcValueGood() func() time.Time {
	return func() time.Time { return time.Now().UTC() }
}

type clock struct{}

func (clock) Now() time.Time { return time.Time{} }

func otherNowGood() {
	var c clock
	_ = c.Now()
}

func nolintGeneral() {
	//nolint
	_ = time.Now()
}

func nolintSpecific() {
	_ = time.Now() //nolint:timeutc
}

func nolintList() {
	_ = time.Now() //nolint:errcheck,timeutc
}

func nolintOtherLinter() {
	_ = time.Now() //nolint:otherlinter // want `time.Now\(\) should be followed by .UTC\(\)`
}

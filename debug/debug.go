package debug

import (
	"os"
	"strconv"
)

type debug struct {
	Store  bool
	Redact bool
	Match  bool
	Run    bool
}

var d *debug

func init() {
	d = &debug{}
	d.Store = boolEnv("SNAPSHOT_DEBUG_STORE")
	d.Redact = boolEnv("SNAPSHOT_DEBUG_REDACT")
	d.Match = boolEnv("SNAPSHOT_DEBUG_MATCH")
	d.Run = boolEnv("SNAPSHOT_DEBUG_RUN")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Store() bool {
	return d.Store
}
func Redact() bool {
	return d.Redact
}
func Match() bool {
	return d.Match
}
func Run() bool {
	return d.Run
}

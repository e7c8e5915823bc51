package debug

import (
	"fmt"
	"os"
	"strings"
)

// Logf prints to stderr. String slice arguments are joined with commas.
func Logf(msg string, args ...any) {
	for i := range args {
		if x, ok := args[i].([]string); ok {
			args[i] = strings.Join(x, ", ")
		}
	}
	fmt.Fprintf(os.Stderr, msg, args...)
}

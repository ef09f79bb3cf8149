package codegen

import (
	"strconv"
	"strings"

	"funcc/pkg/isa"
)

// Prefixes of the numbered labels the control flow lowering emits.
const (
	ifElsePrefix     = "IF_ELSE_"
	ifEndPrefix      = "IF_END_"
	whileStartPrefix = "WHILE_START_"
	whileEndPrefix   = "WHILE_END_"
)

var labelFamilies = []string{ifElsePrefix, ifEndPrefix, whileStartPrefix, whileEndPrefix}

func label(prefix string, idx int) string {
	return prefix + strconv.Itoa(idx)
}

// ReservedLabel reports whether the generator may emit name as a label of
// its own. The configurable entry label is checked separately.
func ReservedLabel(name string) bool {
	if name == isa.WriteLabel || name == isa.ReadLabel {
		return true
	}
	for _, prefix := range labelFamilies {
		rest, ok := strings.CutPrefix(name, prefix)
		if ok && rest != "" && strings.Trim(rest, "0123456789") == "" {
			return true
		}
	}
	return false
}

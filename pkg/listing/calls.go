package listing

import (
	"fmt"
	"strconv"
)

// ReturnSite describes one call sequence: the jal that captures the pc, the
// address it computes as the return point and the address that actually
// follows the jalr into the callee.
type ReturnSite struct {
	Line       int
	JalAddr    int
	ReturnAddr int
	AfterJalr  int
}

func (s ReturnSite) OK() bool { return s.ReturnAddr == s.AfterJalr }

// ReturnSites finds every "jal xN, 0" immediately followed by
// "addi xN, xN, K" and pairs it with the next "jalr x0, ..." after it.
func (lst *Listing) ReturnSites() ([]ReturnSite, error) {
	ins := lst.Instructions()
	var sites []ReturnSite
	for i := 0; i+1 < len(ins); i++ {
		jal, addi := ins[i], ins[i+1]
		if jal.Mnemonic != "jal" || jal.Operands[1] != "0" {
			continue
		}
		if addi.Mnemonic != "addi" || addi.Operands[0] != jal.Operands[0] || addi.Operands[1] != jal.Operands[0] {
			continue
		}
		k, err := strconv.Atoi(addi.Operands[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad return offset '%s'", addi.No, addi.Operands[2])
		}
		site := ReturnSite{Line: jal.No, JalAddr: jal.Addr, ReturnAddr: jal.Addr + 1 + k, AfterJalr: -1}
		for _, l := range ins[i+2:] {
			if l.Mnemonic == "jalr" && l.Operands[0] == "x0" {
				site.AfterJalr = l.Addr + l.Words
				break
			}
		}
		if site.AfterJalr < 0 {
			return nil, fmt.Errorf("line %d: call sequence without jalr", jal.No)
		}
		sites = append(sites, site)
	}
	return sites, nil
}

// VerifyCalls checks every call sequence returns to the instruction after
// its jalr.
func (lst *Listing) VerifyCalls() error {
	sites, err := lst.ReturnSites()
	if err != nil {
		return err
	}
	for _, s := range sites {
		if !s.OK() {
			return fmt.Errorf("line %d: call returns to %d, expected %d", s.Line, s.ReturnAddr, s.AfterJalr)
		}
	}
	return nil
}

// Verify runs every check on the listing.
func (lst *Listing) Verify() error {
	if err := lst.Check(); err != nil {
		return err
	}
	return lst.VerifyCalls()
}

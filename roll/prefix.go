package roll

import "math"

// Prefix is the vim style repeat count typed before a command. Zero means no
// count was typed. A count applies to exactly one command: the dispatcher
// resets it after every command that is not a digit.
type Prefix uint32

// Digit appends a decimal digit, saturating at the largest count.
func (p *Prefix) Digit(d uint32) {
	*p = Prefix(clampAdd(clampMul(uint32(*p), 10, math.MaxUint32), d, math.MaxUint32))
}

// Count returns the count, or 0 when none was typed.
func (p Prefix) Count() uint32 { return uint32(p) }

// Or returns the count, or def when none was typed.
func (p Prefix) Or(def uint32) uint32 {
	if p == 0 {
		return def
	}
	return uint32(p)
}

// Pending reports whether digits have been typed.
func (p Prefix) Pending() bool { return p != 0 }

// Reset clears the count.
func (p *Prefix) Reset() { *p = 0 }

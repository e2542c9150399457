package fsd

// rand steps the disturber's linear congruential generator and returns a
// non-negative value.
//
// Although it is safe to use this kind of pseudo-random number generator
// here, it behaves very regularly when it comes to parity: every call flips
// the parity of the seed. The read hook therefore makes an odd number of
// rand calls on every invocation that draws a withheld byte count; without
// that, a range of width 2 would produce the same withheld byte count on
// every disturbed read.
func (d *Disturber) rand() uint64 {
	d.randMu.Lock()
	d.randSeed = d.randSeed*1103515245 + 12345
	v := d.randSeed & 0x7ffffffff
	d.randMu.Unlock()
	return uint64(v)
}

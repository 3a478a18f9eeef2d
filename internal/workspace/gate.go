package workspace

// Gate tracks the audit verdict that decides whether submission is allowed.
type Gate struct {
	Audited      bool
	Passed       bool
	Reason       string
	Improvements []string
}

func (g *Gate) Record(pass bool, reason string, improvements []string) {
	g.Audited = true
	g.Passed = pass
	g.Reason = reason
	g.Improvements = append([]string(nil), improvements...)
}

// Invalidate closes the gate after the audited content changed. The last
// verdict stays visible until the next audit.
func (g *Gate) Invalidate() {
	g.Passed = false
}

func (g *Gate) Reset() {
	*g = Gate{}
}

// CanSubmit reports whether the last audit passed.
func (g *Gate) CanSubmit() bool {
	return g.Audited && g.Passed
}

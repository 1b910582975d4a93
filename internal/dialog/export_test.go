package dialog

// TableKinds lists, per step, the kinds the transition table accepts.
func TableKinds(m *Machine) map[Step][]Kind {
	out := make(map[Step][]Kind)
	for tr := range m.table {
		out[tr.step] = append(out[tr.step], tr.kind)
	}

	return out
}

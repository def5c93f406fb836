package attendance

var transitions = map[Status][]RecordType{
	StatusAbsent:     {CheckIn},
	StatusWorking:    {BreakStart, CheckOut},
	StatusOnBreak:    {BreakEnd},
	StatusCheckedOut: {CheckIn},
}

// AllowedNext lists the record types that may follow the given status.
func AllowedNext(status Status) []RecordType {
	allowed := transitions[status]
	out := make([]RecordType, len(allowed))
	copy(out, allowed)
	return out
}

func CanTransition(status Status, rt RecordType) bool {
	for _, allowed := range transitions[status] {
		if allowed == rt {
			return true
		}
	}
	return false
}

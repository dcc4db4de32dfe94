package ui

// RepeatMode decides what happens when the file ends.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatOne
)

// Next toggles between the modes.
func (r RepeatMode) Next() RepeatMode {
	if r == RepeatOff {
		return RepeatOne
	}
	return RepeatOff
}

func (r RepeatMode) String() string {
	if r == RepeatOne {
		return "one"
	}
	return "off"
}

// Icon is the status line marker, empty when repeat is off.
func (r RepeatMode) Icon() string {
	if r == RepeatOne {
		return "[repeat]"
	}
	return ""
}

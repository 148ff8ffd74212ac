package tui

// StatusKind indicates severity for status messages.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusSuccess
	StatusWarn
	StatusError
)

// class is the theme class for the kind.
func (k StatusKind) class() string {
	switch k {
	case StatusSuccess:
		return "status--success"
	case StatusWarn:
		return "status--warn"
	case StatusError:
		return "status--error"
	default:
		return "status--info"
	}
}

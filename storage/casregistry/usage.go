package casregistry

// Usage restricts which programs should accept a given backend.
type Usage uint8

const (
	// UsageCLI marks a backend usable by short-lived CLI programs.
	UsageCLI Usage = 1 << iota
	// UsageDaemon marks a backend usable by long-running daemons.
	UsageDaemon
)

func (u Usage) allows(want Usage) bool { return u&want != 0 }

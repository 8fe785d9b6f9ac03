package model

// JobSpec describes one queued rebuild. It is immutable: discovery or the
// name editor creates it, the worker and the rebuild state only read it.
type JobSpec struct {
	Kind       TargetKind
	Image      string
	Container  string // optional
	EntryPath  string
	SourceDir  string
	MakeTarget string // optional
	Service    string // optional, compose service name
}

// JobStatus is the lifecycle state of a rebuild job. Transitions are
// monotonic: Pending -> Running -> Succeeded or Failed. A terminal status
// is never re-entered.
type JobStatus int

const (
	StatusPending JobStatus = iota
	StatusRunning
	StatusSucceeded
	StatusFailed
)

func (s JobStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status is Succeeded or Failed.
func (s JobStatus) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Stream identifies which pipe of the build process a line came from.
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

// OutputLine is one captured line of build output.
type OutputLine struct {
	Stream Stream
	Text   string
}

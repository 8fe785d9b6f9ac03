package model

import "path/filepath"

// TargetKind says what kind of build entry backs a discovered target.
type TargetKind string

const (
	KindDockerfile TargetKind = "dockerfile"
	KindCompose    TargetKind = "compose"
	KindMake       TargetKind = "make"
)

// Target is one containerized build candidate found by discovery.
type Target struct {
	Kind       TargetKind
	Image      string
	Container  string // optional; empty when no running container is associated
	EntryPath  string // Dockerfile, compose file, or Makefile path
	SourceDir  string
	MakeTarget string // only for KindMake
	Service    string // only for KindCompose
}

// DisplayName returns the label shown in the dashboard list.
func (t Target) DisplayName() string {
	if t.Image != "" {
		return t.Image
	}
	if t.Service != "" {
		return t.Service
	}
	return filepath.Base(t.SourceDir)
}

// Spec converts a target into an immutable rebuild job spec.
func (t Target) Spec() JobSpec {
	return JobSpec{
		Image:      t.Image,
		Container:  t.Container,
		EntryPath:  t.EntryPath,
		SourceDir:  t.SourceDir,
		MakeTarget: t.MakeTarget,
		Service:    t.Service,
		Kind:       t.Kind,
	}
}

package rebuild

import (
	"fmt"
	"os"
	"strings"

	"github.com/bkodra/rebuild-tui/internal/model"
)

// Command is the resolved external build invocation for one job.
type Command struct {
	Name string
	Args []string
	Dir  string
}

func (c Command) String() string {
	return c.Name + " " + strings.Join(c.Args, " ")
}

// ResolveCommand turns a job spec into the build command to run. It
// fails when the backing build file no longer exists, so a stale spec
// becomes a job failure instead of a confusing subprocess error.
func ResolveCommand(spec model.JobSpec, dockerBin string, noCache bool) (Command, error) {
	if _, err := os.Stat(spec.EntryPath); err != nil {
		return Command{}, fmt.Errorf("build file %s: %w", spec.EntryPath, err)
	}

	switch spec.Kind {
	case model.KindDockerfile:
		args := []string{"build", "-f", spec.EntryPath, "-t", spec.Image}
		if noCache {
			args = append(args, "--no-cache")
		}
		args = append(args, spec.SourceDir)
		return Command{Name: dockerBin, Args: args, Dir: spec.SourceDir}, nil

	case model.KindCompose:
		args := []string{"compose", "-f", spec.EntryPath, "build"}
		if noCache {
			args = append(args, "--no-cache")
		}
		args = append(args, spec.Service)
		return Command{Name: dockerBin, Args: args, Dir: spec.SourceDir}, nil

	case model.KindMake:
		args := []string{spec.MakeTarget}
		if noCache {
			args = append(args, "NO_CACHE=1")
		}
		return Command{Name: "make", Args: args, Dir: spec.SourceDir}, nil

	default:
		return Command{}, fmt.Errorf("unknown build kind %q", spec.Kind)
	}
}

package discover

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// composeService is one buildable service pulled from a compose file.
// Services without a build section are skipped: they cannot be rebuilt
// locally.
type composeService struct {
	Name          string
	Image         string
	ContainerName string
}

type composeFile struct {
	Services map[string]struct {
		Image         string    `yaml:"image"`
		ContainerName string    `yaml:"container_name"`
		Build         yaml.Node `yaml:"build"`
	} `yaml:"services"`
}

func parseCompose(path string) ([]composeService, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read compose: %w", err)
	}

	var cf composeFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse compose %s: %w", path, err)
	}

	var svcs []composeService
	for name, svc := range cf.Services {
		if svc.Build.IsZero() {
			continue
		}
		svcs = append(svcs, composeService{
			Name:          name,
			Image:         svc.Image,
			ContainerName: svc.ContainerName,
		})
	}
	sort.Slice(svcs, func(i, j int) bool { return svcs[i].Name < svcs[j].Name })
	return svcs, nil
}

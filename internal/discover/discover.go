// Package discover walks a directory tree and collects containerized
// build targets: Dockerfiles, compose services, and Makefiles that carry
// an image-build target.
package discover

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bkodra/rebuild-tui/internal/model"
)

var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	".cache":       true,
}

var composeNames = map[string]bool{
	"docker-compose.yml":  true,
	"docker-compose.yaml": true,
	"compose.yml":         true,
	"compose.yaml":        true,
}

// makeImageTarget matches Makefile targets that look like image builds,
// e.g. "docker-build:", "image:", "build-image:".
var makeImageTarget = regexp.MustCompile(`^((?:docker-)?(?:build-)?image|docker-build|container):`)

// Scan walks root up to maxDepth levels deep and returns every build
// target found, ordered by path for a stable dashboard listing.
func Scan(root string, maxDepth int) ([]model.Target, error) {
	root = filepath.Clean(root)
	var targets []model.Target

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return skipOnWalkErr(d)
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			if depth(root, path) > maxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		dir := filepath.Dir(path)
		switch {
		case name == "Dockerfile" || strings.HasPrefix(name, "Dockerfile."):
			targets = append(targets, model.Target{
				Kind:      model.KindDockerfile,
				Image:     DefaultImageName(path, dir),
				EntryPath: path,
				SourceDir: dir,
			})
		case composeNames[name]:
			svcs, err := parseCompose(path)
			if err != nil {
				return nil // malformed compose files are ignored
			}
			for _, svc := range svcs {
				t := model.Target{
					Kind:      model.KindCompose,
					Image:     svc.Image,
					Container: svc.ContainerName,
					EntryPath: path,
					SourceDir: dir,
					Service:   svc.Name,
				}
				if t.Image == "" {
					t.Image = svc.Name
				}
				targets = append(targets, t)
			}
		case name == "Makefile":
			if tgt := imageMakeTarget(path); tgt != "" {
				targets = append(targets, model.Target{
					Kind:       model.KindMake,
					Image:      DefaultImageName(path, dir),
					EntryPath:  path,
					SourceDir:  dir,
					MakeTarget: tgt,
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	sort.Slice(targets, func(i, j int) bool {
		if targets[i].EntryPath != targets[j].EntryPath {
			return targets[i].EntryPath < targets[j].EntryPath
		}
		return targets[i].Service < targets[j].Service
	})
	return targets, nil
}

// skipOnWalkErr maps a walk error onto the walker's next step. An
// unreadable directory skips its whole subtree; an error on a single
// file must not abandon the rest of its parent directory.
func skipOnWalkErr(d fs.DirEntry) error {
	if d != nil && d.IsDir() {
		return filepath.SkipDir
	}
	return nil
}

// DefaultImageName derives an image name from the source directory,
// falling back to "unknown" when nothing usable remains.
func DefaultImageName(entryPath, sourceDir string) string {
	base := filepath.Base(sourceDir)
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "unknown"
	}
	name := strings.ToLower(base)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '-'
		}
	}, name)
	name = strings.Trim(name, "-.")
	if name == "" {
		return "unknown"
	}
	return name
}

func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return len(strings.Split(rel, string(filepath.Separator)))
}

// imageMakeTarget returns the first image-building target declared in the
// Makefile, or "" when none is present.
func imageMakeTarget(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if m := makeImageTarget.FindStringSubmatch(scanner.Text()); m != nil {
			return m[1]
		}
	}
	return ""
}

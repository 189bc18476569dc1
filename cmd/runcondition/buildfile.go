package main

import (
	"fmt"
	"os"

	"github.com/aretw0/runcondition/pkg/domain"
	"github.com/aretw0/runcondition/pkg/matrix"
	"gopkg.in/yaml.v3"
)

// buildFile is the YAML description of a triggered build.
//
//	id: app-7
//	project: app
//	number: 7
//	causes:
//	  - user:fred
//	  - kind: upstream
//	    upstream_project: core
//	    upstream_build: 3
//	axes:
//	  - name: db
//	    values: [mysql, oracle]
type buildFile struct {
	ID      string          `yaml:"id"`
	Project string          `yaml:"project"`
	Number  int             `yaml:"number"`
	Causes  []causeEntry    `yaml:"causes"`
	Axes    matrix.AxisList `yaml:"axes"`
}

// causeEntry accepts a compact cause string or a full cause mapping.
// A mapping without a kind is kept and never matches.
type causeEntry domain.Cause

func (c *causeEntry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		parsed, err := domain.ParseCause(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*c = causeEntry(parsed)
		return nil
	}

	var full domain.Cause
	if err := node.Decode(&full); err != nil {
		return err
	}
	*c = causeEntry(full)
	return nil
}

// Build converts the file into a domain build.
func (f buildFile) Build() (*domain.Build, error) {
	if f.ID == "" {
		return nil, fmt.Errorf("build id is required")
	}
	causes := make([]domain.Cause, len(f.Causes))
	for i, c := range f.Causes {
		causes[i] = domain.Cause(c)
	}
	project := f.Project
	if project == "" {
		project = f.ID
	}
	return domain.NewBuild(f.ID, project, f.Number, causes...), nil
}

func loadBuildFile(path string) (buildFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return buildFile{}, fmt.Errorf("failed to read build file: %w", err)
	}
	var f buildFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return buildFile{}, fmt.Errorf("failed to parse build file %s: %w", path, err)
	}
	return f, nil
}

// Package tips is the static catalog of study tips for parents and daily check-in questions.
package tips

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed tips.yml
var catalogYAML []byte

type Tip struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

type CheckIn struct {
	Intro     string   `yaml:"intro" json:"intro"`
	Questions []string `yaml:"questions" json:"questions"`
}

type Catalog struct {
	Tips    []Tip   `yaml:"tips" json:"tips"`
	CheckIn CheckIn `yaml:"check_in" json:"checkIn"`
}

// Load decodes the embedded catalog.
func Load() (Catalog, error) {
	return Parse(catalogYAML)
}

// Parse decodes a catalog and rejects unknown fields.
func Parse(data []byte) (Catalog, error) {
	var catalog Catalog
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&catalog); err != nil {
		return Catalog{}, fmt.Errorf("decoder.Decode() > %w", err)
	}
	return catalog, nil
}

// Write prints the catalog as Markdown.
func (c Catalog) Write(w io.Writer) error {
	var b strings.Builder
	b.WriteString("# Parent Tips\n\n")
	for _, tip := range c.Tips {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", tip.Title, tip.Description)
	}
	b.WriteString("# Daily Check-in\n\n")
	if c.CheckIn.Intro != "" {
		fmt.Fprintf(&b, "%s\n\n", c.CheckIn.Intro)
	}
	for _, question := range c.CheckIn.Questions {
		fmt.Fprintf(&b, "- %s\n", question)
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("io.WriteString() > %w", err)
	}
	return nil
}

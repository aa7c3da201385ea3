package dmabuf

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/NeowayLabs/drmcheck/formats"
)

// Report is the printable form of Capabilities.
type Report struct {
	HasModifiers bool           `yaml:"has_modifiers"`
	Texture      []FormatReport `yaml:"texture"`
	Render       []FormatReport `yaml:"render"`
}

type FormatReport struct {
	Format    string   `yaml:"format"`
	Name      string   `yaml:"name"`
	Modifiers []string `yaml:"modifiers"`
}

func reportSet(set *formats.Set) []FormatReport {
	entries := set.Entries()
	out := make([]FormatReport, len(entries))
	for i, e := range entries {
		mods := e.Modifiers()
		names := make([]string, len(mods))
		for j, m := range mods {
			names[j] = m.String()
		}
		out[i] = FormatReport{
			Format:    e.Format().String(),
			Name:      e.Format().Name(),
			Modifiers: names,
		}
	}
	return out
}

func (c *Capabilities) Report() *Report {
	return &Report{
		HasModifiers: c.HasModifiers,
		Texture:      reportSet(&c.Texture),
		Render:       reportSet(&c.Render),
	}
}

func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

// WriteText prints one line per format: fourcc, name, then the texture
// modifiers with render capable ones marked by '*'.
func (r *Report) WriteText(w io.Writer) error {
	render := make(map[string]map[string]bool, len(r.Render))
	for _, f := range r.Render {
		mods := make(map[string]bool, len(f.Modifiers))
		for _, m := range f.Modifiers {
			mods[m] = true
		}
		render[f.Format] = mods
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	status := "unsupported"
	if r.HasModifiers {
		status = "supported"
	}
	fmt.Fprintf(tw, "formats: %d, explicit modifiers %s\n", len(r.Texture), status)
	for _, f := range r.Texture {
		mods := make([]string, len(f.Modifiers))
		for i, m := range f.Modifiers {
			if render[f.Format][m] {
				m += "*"
			}
			mods[i] = m
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Format, f.Name, strings.Join(mods, " "))
	}
	return tw.Flush()
}

package keysynth

import (
	_ "embed"
	"io"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/ossrs/go-oryx-lib/errors"
)

//go:embed report.tmpl
var reportTemplate string

var reportTmpl = template.Must(template.New("report").Funcs(sprig.TxtFuncMap()).Parse(reportTemplate))

// WriteReport writes a human readable summary of the configuration, printed
// by the command line tools at start-up.
func (c *Config) WriteReport(w io.Writer, program, version string) error {
	data := struct {
		Program, Version string
		Config           *Config
		BlockMs          float64
		Order, Enabled   []string
	}{
		Program: program,
		Version: version,
		Config:  c,
		BlockMs: float64(c.BlockPeriod().Microseconds()) / 1000,
	}
	for _, k := range c.Effects.Order {
		data.Order = append(data.Order, k.String())
		if c.Effects.EffectEnabled(k) {
			data.Enabled = append(data.Enabled, k.String())
		}
	}
	if err := reportTmpl.Execute(w, data); err != nil {
		return errors.Wrapf(err, "write config report")
	}
	return nil
}

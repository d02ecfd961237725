package model

import (
	"bytes"

	"github.com/dd0wney/cluso-attacktree/pkg/logging"
	"github.com/dd0wney/cluso-attacktree/pkg/metrics"
)

// Loader builds models and reports on each load. The zero value logs nothing
// and records no metrics.
type Loader struct {
	Logger  logging.Logger
	Metrics *metrics.Registry
}

// Load reads and builds the model file at path
func (l *Loader) Load(path string) (*Model, error) {
	data, err := readFile(path)
	if err != nil {
		l.record(nil, err)
		return nil, err
	}

	m, err := l.parse(data)
	if err != nil {
		l.logger().Error("model load failed", logging.Path(path), logging.Error(err))
		return nil, err
	}
	l.logger().Info("model loaded", logging.Path(path), logging.Model(m.Name), logging.Int("nodes", m.Registry.Len()))
	return m, nil
}

// Parse builds a model from YAML data
func (l *Loader) Parse(data []byte) (*Model, error) {
	return l.parse(data)
}

func (l *Loader) parse(data []byte) (*Model, error) {
	doc, err := Decode(bytes.NewReader(data))
	if err != nil {
		l.record(nil, err)
		return nil, err
	}

	m, err := Build(doc)
	l.record(m, err)
	if err != nil {
		return nil, err
	}

	if m.Analytic && m.Runs > 0 {
		l.logger().Warn("runs ignored for analytic model", logging.Model(m.Name), logging.Runs(m.Runs))
	}
	return m, nil
}

func (l *Loader) record(m *Model, err error) {
	if l.Metrics == nil {
		return
	}
	if err != nil {
		l.Metrics.RecordModelLoad(false, nil)
		return
	}
	l.Metrics.RecordModelLoad(true, m.CountByKind())
}

func (l *Loader) logger() logging.Logger {
	if l.Logger == nil {
		return logging.NewNopLogger()
	}
	return l.Logger
}

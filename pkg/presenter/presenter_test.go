package presenter

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func newTestPresenter() (*Presenter, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return NewWithOptions(out, errOut, ColorNever), out, errOut
}

func TestSuccess(t *testing.T) {
	p, out, _ := newTestPresenter()
	p.Success("installed")
	assert.Contains(t, out.String(), "✓ installed")
}

func TestWarning(t *testing.T) {
	p, out, _ := newTestPresenter()
	p.Warning("stale path")
	assert.Contains(t, out.String(), "⚠ stale path")
}

func TestError(t *testing.T) {
	p, out, errOut := newTestPresenter()
	p.Error(errors.New("boom"), "installing skill")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "[ERROR] installing skill: boom")
}

func TestErrorNil(t *testing.T) {
	p, _, errOut := newTestPresenter()
	p.Error(nil, "context")
	assert.Empty(t, errOut.String())
}

func TestQuietSuppressesAllButErrors(t *testing.T) {
	p, out, errOut := newTestPresenter()
	p.SetQuiet(true)

	p.Success("hidden")
	p.Warning("hidden")
	p.Info("hidden")
	p.Section("hidden")
	assert.Empty(t, out.String())

	p.Error(errors.New("still shown"), "")
	assert.Contains(t, errOut.String(), "still shown")
	assert.True(t, p.IsQuiet())
}

func TestSection(t *testing.T) {
	p, out, _ := newTestPresenter()
	p.Section("Skills")
	assert.Contains(t, out.String(), "Skills\n------\n")
}

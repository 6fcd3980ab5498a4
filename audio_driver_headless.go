//go:build headless

// audio_driver_headless.go - No-output stand-in for the OTO driver

package main

type OtoDriver struct {
	engine  *Engine
	started bool
}

func NewOtoDriver(sampleRate int) (*OtoDriver, error) {
	return &OtoDriver{}, nil
}

func (d *OtoDriver) Attach(e *Engine) {
	d.engine = e
}

func (d *OtoDriver) Initialize() error { return nil }

func (d *OtoDriver) Start() {
	d.started = true
}

func (d *OtoDriver) Stop() {
	d.started = false
}

func (d *OtoDriver) Close() error {
	d.started = false
	return nil
}

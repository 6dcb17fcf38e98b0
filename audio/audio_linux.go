//go:build linux

package audio

import (
	"fmt"

	"github.com/jfreymuth/pulse"
)

type pulseContext struct {
	client *pulse.Client
}

func NewContext() (Context, error) {
	c, err := pulse.NewClient()
	if err != nil {
		return nil, fmt.Errorf("pulse: %w", err)
	}
	return &pulseContext{client: c}, nil
}

func (p *pulseContext) Devices() ([]DeviceInfo, error) {
	sources, err := p.client.ListSources()
	if err != nil {
		return nil, fmt.Errorf("pulse list sources: %w", err)
	}

	defaultID := ""
	if def, err := p.client.DefaultSource(); err == nil && def != nil {
		defaultID = def.ID()
	}

	var devices []DeviceInfo
	for i, s := range sources {
		devices = append(devices, DeviceInfo{
			Index:   i,
			Name:    s.Name(),
			Default: s.ID() == defaultID,
		})
	}
	return devices, nil
}

func (p *pulseContext) Close() {
	p.client.Close()
}

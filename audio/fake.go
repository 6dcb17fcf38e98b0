package audio

// FakeContext serves a canned device list for tests and headless runs.
type FakeContext struct {
	DeviceList []DeviceInfo
	Err        error
	Closed     bool
}

func NewFakeContext(names ...string) *FakeContext {
	f := &FakeContext{}
	for i, name := range names {
		f.DeviceList = append(f.DeviceList, DeviceInfo{
			Index:   i,
			Name:    name,
			Default: i == 0,
		})
	}
	return f
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.DeviceList, nil
}

func (f *FakeContext) Close() {
	f.Closed = true
}

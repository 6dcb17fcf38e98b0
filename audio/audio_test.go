package audio

import "testing"

func TestIsBluetooth(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"AirPods Pro", true},
		{"Sony WH-1000XM5", true},
		{"Jabra Elite 85t", true},
		{"Built-in Microphone", false},
		{"USB Audio Device", false},
		{"Hyperx QuadCast", false},
		{"BT headset (bluetooth)", true},
	}
	for _, tt := range tests {
		if got := IsBluetooth(tt.name); got != tt.want {
			t.Errorf("IsBluetooth(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFakeContextDevices(t *testing.T) {
	ctx := NewFakeContext("Built-in Microphone", "USB Audio Device")
	devices, err := ctx.Devices()
	if err != nil {
		t.Fatal(err)
	}
	if len(devices) != 2 {
		t.Fatalf("got %d devices, want 2", len(devices))
	}
	if devices[0].Index != 0 || devices[1].Index != 1 {
		t.Error("indices should follow enumeration order")
	}
	if !devices[0].Default || devices[1].Default {
		t.Error("first device should be the default")
	}
}

package beep

import "testing"

func TestToneLength(t *testing.T) {
	s := tone(1000, 0.05, 0.5, 40)
	want := int(sampleRate * 0.05)
	if len(s) != want {
		t.Fatalf("got %d samples, want %d", len(s), want)
	}
}

func TestToneDecays(t *testing.T) {
	s := tone(1000, 0.2, 0.5, 60)
	var headPeak, tailPeak int16
	for _, v := range s[:len(s)/4] {
		if v > headPeak {
			headPeak = v
		}
	}
	for _, v := range s[3*len(s)/4:] {
		if v > tailPeak {
			tailPeak = v
		}
	}
	if tailPeak >= headPeak {
		t.Fatalf("envelope should decay: head=%d tail=%d", headPeak, tailPeak)
	}
}

func TestDoubleToneHasGap(t *testing.T) {
	s := doubleTone(350, 0.08, 0.05, 0.6, 30)
	beepLen := int(sampleRate * 0.08)
	gapLen := int(sampleRate * 0.05)
	if len(s) != beepLen*2+gapLen {
		t.Fatalf("got %d samples, want %d", len(s), beepLen*2+gapLen)
	}
	for i := beepLen; i < beepLen+gapLen; i++ {
		if s[i] != 0 {
			t.Fatalf("gap sample %d is %d, want silence", i, s[i])
		}
	}
}

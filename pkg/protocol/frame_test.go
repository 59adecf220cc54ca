package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestChecksum(t *testing.T) {
	payload := []byte{90, 90, 90, 90, 90, 90}
	// ^(0x01 + 6 + 6*90) & 0xFF
	if got := Checksum(FuncServoSet, payload); got != 0xDC {
		t.Errorf("checksum: got 0x%02X, want 0xDC", got)
	}
	if got := Checksum(FuncReadAngles, nil); got != ^byte(0x11) {
		t.Errorf("empty payload checksum: got 0x%02X, want 0x%02X", got, ^byte(0x11))
	}
}

func TestFrame_BytesProfileA(t *testing.T) {
	f := frameA(FuncServoSet, []byte{90, 90, 90, 90, 90, 90})
	want := []byte{0xAA, 0x77, 0x01, 0x06, 90, 90, 90, 90, 90, 90, 0xDC}
	if got := f.Bytes(); !bytes.Equal(got, want) {
		t.Errorf("frame bytes: got % X, want % X", got, want)
	}
}

func TestFrame_BytesProfileB(t *testing.T) {
	f := frameB(FuncStreamStart, nil)
	want := []byte{0x55, 0x55, 0x01, 0x11}
	if got := f.Bytes(); !bytes.Equal(got, want) {
		t.Errorf("stream start bytes: got % X, want % X", got, want)
	}
}

func TestParseFrame_RoundTrip(t *testing.T) {
	for _, f := range []Frame{
		frameA(FuncServoSet, []byte{10, 20, 30, 40, 50, 60}),
		frameA(FuncReadAngles, nil),
		frameB(FuncMultiServo, []byte{1, 2, 3, 4}),
		frameB(FuncStreamStop, nil),
	} {
		raw := f.Bytes()
		parsed, n, err := ParseFrame(f.Profile, raw)
		if err != nil {
			t.Fatalf("parse %v: %v", f.Profile, err)
		}
		if n != len(raw) {
			t.Errorf("consumed %d bytes, want %d", n, len(raw))
		}
		if parsed.Function != f.Function {
			t.Errorf("function: got 0x%02X, want 0x%02X", parsed.Function, f.Function)
		}
		if !bytes.Equal(parsed.Payload, f.Payload) && len(f.Payload) > 0 {
			t.Errorf("payload: got % X, want % X", parsed.Payload, f.Payload)
		}
	}
}

func TestParseFrame_BadHeader(t *testing.T) {
	_, _, err := ParseFrame(ProfileA, []byte{0x55, 0x55, 0x01, 0x11})
	if !errors.Is(err, ErrBadHeader) {
		t.Errorf("got %v, want ErrBadHeader", err)
	}
}

func TestParseFrame_Truncated(t *testing.T) {
	full := frameA(FuncServoSet, []byte{90, 90, 90, 90, 90, 90}).Bytes()
	for cut := 1; cut < len(full); cut++ {
		_, _, err := ParseFrame(ProfileA, full[:cut])
		if err == nil {
			t.Errorf("cut at %d: expected error, got frame", cut)
		}
	}
}

func TestParseProfile(t *testing.T) {
	if p, err := ParseProfile("a"); err != nil || p != ProfileA {
		t.Errorf("parse a: got %v, %v", p, err)
	}
	if p, err := ParseProfile("B"); err != nil || p != ProfileB {
		t.Errorf("parse B: got %v, %v", p, err)
	}
	if _, err := ParseProfile("c"); err == nil {
		t.Error("parse c: expected error")
	}
}

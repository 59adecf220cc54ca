package hand

import (
	"testing"
)

func TestParseCurls(t *testing.T) {
	text := "pinky: no curl; ring: half curl; middle: full curl; index: no curl; thumb: half curl"
	curls, err := ParseCurls(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := map[int]CurlLevel{
		Pinky:  NoCurl,
		Ring:   HalfCurl,
		Middle: FullCurl,
		Index:  NoCurl,
		Thumb:  HalfCurl,
	}
	for finger, level := range want {
		if curls[finger] != level {
			t.Errorf("%s: got %d, want %d", JointName(finger), curls[finger], level)
		}
	}
}

func TestParseCurls_MissingFingersDefaultHalf(t *testing.T) {
	curls, err := ParseCurls("thumb: full curl")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if curls[Thumb] != FullCurl {
		t.Errorf("thumb: got %d, want FullCurl", curls[Thumb])
	}
	for _, finger := range []int{Index, Middle, Ring, Pinky} {
		if curls[finger] != HalfCurl {
			t.Errorf("%s: got %d, want HalfCurl default", JointName(finger), curls[finger])
		}
	}
}

func TestParseCurls_CaseAndSpacing(t *testing.T) {
	curls, err := ParseCurls("INDEX:   No Curl")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if curls[Index] != NoCurl {
		t.Errorf("index: got %d, want NoCurl", curls[Index])
	}
}

func TestParseCurls_NoFingers(t *testing.T) {
	if _, err := ParseCurls("the hand appears relaxed"); err == nil {
		t.Error("fingerless text accepted")
	}
}

func TestCurlPose(t *testing.T) {
	pose := CurlPose(map[int]CurlLevel{
		Thumb:  NoCurl,
		Index:  FullCurl,
		Middle: HalfCurl,
		Ring:   FullCurl,
		Pinky:  NoCurl,
	})
	// Thumb extension is 0 degrees on its inverted table; the ring's full
	// curl stops at its 25 degree floor.
	want := Pose{0, 0, 90, 25, 180, 90}
	if pose != want {
		t.Errorf("got %v, want %v", pose, want)
	}
	if pose[Wrist] != 90 {
		t.Errorf("wrist moved by curl mapping: %d", pose[Wrist])
	}
}

func TestParseCurlPose(t *testing.T) {
	pose, err := ParseCurlPose("index: no curl; middle: no curl")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if pose[Index] != 180 || pose[Middle] != 180 {
		t.Errorf("extended fingers: got %v", pose)
	}
	if pose[Ring] != 100 {
		t.Errorf("defaulted ring: got %d, want 100", pose[Ring])
	}
}

package hand

import (
	"fmt"
	"regexp"
	"strings"
)

// CurlLevel is a discrete finger curl state as predicted by the language
// model: 0 = full curl (closed), 1 = half curl, 2 = no curl (extended).
type CurlLevel int

const (
	FullCurl CurlLevel = iota
	HalfCurl
	NoCurl
)

var curlLevels = map[string]CurlLevel{
	"full curl": FullCurl,
	"half curl": HalfCurl,
	"no curl":   NoCurl,
}

// curlAngles maps each finger's curl level to a servo angle. The values are
// device calibration from the original rig; the thumb runs opposite to the
// other fingers because its servo is inverted.
var curlAngles = map[int][3]int{
	Thumb:  {180, 90, 0},   // full, half, no
	Index:  {0, 90, 180},
	Middle: {0, 90, 180},
	Ring:   {25, 100, 180},
	Pinky:  {0, 90, 180},
}

var fingerIndex = map[string]int{
	"thumb":  Thumb,
	"index":  Index,
	"middle": Middle,
	"ring":   Ring,
	"pinky":  Pinky,
}

var curlPattern = regexp.MustCompile(`(?i)(pinky|ring|middle|index|thumb):\s*(no curl|half curl|full curl)`)

// ParseCurls extracts per-finger curl levels from a free-text description
// like "pinky: no curl; ring: half curl; middle: full curl; index: no curl;
// thumb: half curl". Fingers not mentioned default to half curl. An error
// is returned only when no finger is mentioned at all.
func ParseCurls(text string) (map[int]CurlLevel, error) {
	matches := curlPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("hand: no finger curls found in %q", text)
	}
	curls := map[int]CurlLevel{
		Thumb:  HalfCurl,
		Index:  HalfCurl,
		Middle: HalfCurl,
		Ring:   HalfCurl,
		Pinky:  HalfCurl,
	}
	for _, m := range matches {
		finger := fingerIndex[strings.ToLower(m[1])]
		curls[finger] = curlLevels[strings.ToLower(m[2])]
	}
	return curls, nil
}

// CurlPose converts per-finger curl levels into a Pose via the fixed
// per-finger angle table. The wrist is held at neutral.
func CurlPose(curls map[int]CurlLevel) Pose {
	pose := Neutral()
	for finger, level := range curls {
		if table, ok := curlAngles[finger]; ok {
			pose[finger] = table[level]
		}
	}
	return pose
}

// ParseCurlPose parses a curl description straight into a Pose.
func ParseCurlPose(text string) (Pose, error) {
	curls, err := ParseCurls(text)
	if err != nil {
		return Neutral(), err
	}
	return CurlPose(curls), nil
}

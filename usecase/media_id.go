package usecase

import (
	"encoding/json"
	"strings"
)

// videoIDShape recognizes one historical shape of a provider item id.
type videoIDShape func(raw json.RawMessage) (string, bool)

// Every shape that accepts an id yields the same value, so order is irrelevant.
var videoIDShapes = []videoIDShape{
	nestedVideoID,
	bareStringID,
	kindedVideoID,
}

// ExtractVideoID returns the video id of a provider item id, or false when
// no known shape matches.
func ExtractVideoID(raw json.RawMessage) (string, bool) {
	for _, shape := range videoIDShapes {
		if id, ok := shape(raw); ok {
			return id, true
		}
	}
	return "", false
}

// {"videoId": "abc"}
func nestedVideoID(raw json.RawMessage) (string, bool) {
	var obj struct {
		VideoID *string `json:"videoId"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil || obj.VideoID == nil {
		return "", false
	}
	return usableID(*obj.VideoID)
}

// "abc"
func bareStringID(raw json.RawMessage) (string, bool) {
	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		return "", false
	}
	return usableID(id)
}

// {"kind": "youtube#video", "videoId": "abc"}
func kindedVideoID(raw json.RawMessage) (string, bool) {
	var obj struct {
		Kind    string `json:"kind"`
		VideoID string `json:"videoId"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil || obj.Kind != "youtube#video" {
		return "", false
	}
	return usableID(obj.VideoID)
}

func usableID(id string) (string, bool) {
	if strings.TrimSpace(id) == "" {
		return "", false
	}
	return id, true
}

package types

import "image"

// DescriptorRecord is one enrolled face: who it belongs to, its 128-d
// descriptor, and the colour histogram of the face region.
type DescriptorRecord struct {
	Identity   string    `json:"name"`
	Descriptor []float64 `json:"encoding"`
	Histogram  []float32 `json:"hist,omitempty"`
}

// AttendanceEntry is a single line of a daily attendance log.
type AttendanceEntry struct {
	Identity string
	Time     string // HH:MM:SS
}

// Face is a detected face in a frame.
type Face struct {
	Box        image.Rectangle
	Descriptor []float64
}

// IdentitySummary counts enrolled records per identity.
type IdentitySummary struct {
	Name  string
	Count int
}

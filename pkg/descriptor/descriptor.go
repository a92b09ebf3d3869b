// Package descriptor handles the numeric face vectors produced by the
// feature-extraction frontend. Vectors are persisted as JSON arrays, so a row
// written by any client version stays readable here.
package descriptor

import (
	"errors"
	"math"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrMalformed = errors.New("malformed face descriptor")

// Vector is one face descriptor. Dimensionality is fixed by the extractor,
// not by this package; vectors of different lengths are simply incomparable.
type Vector []float64

// Valid reports whether v is usable as a probe or enrollment: non-empty and
// free of NaN/Inf components.
func Valid(v Vector) bool {
	if len(v) == 0 {
		return false
	}
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func Encode(v Vector) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func Decode(s string) (Vector, error) {
	var v Vector
	if err := json.UnmarshalFromString(s, &v); err != nil {
		return nil, ErrMalformed
	}
	return v, nil
}

// Similarity maps euclidean distance into a 0..1 band:
// max(0, 1 - dist/sqrt(D)). sqrt(D) is the maximum distance between two
// vectors whose components stay within unit range, so the score is a rough
// normalization, not a calibrated probability. Vectors of different lengths
// score 0 and can never win a match.
func Similarity(probe, stored Vector) float64 {
	if len(probe) != len(stored) || len(probe) == 0 {
		return 0
	}

	var sum float64
	for i := range probe {
		d := probe[i] - stored[i]
		sum += d * d
	}

	dist := math.Sqrt(sum)
	maxDist := math.Sqrt(float64(len(probe)))

	return math.Max(0, 1-dist/maxDist)
}

package model

import (
	"encoding/json"
	"fmt"
)

// Feature indices of FeatureVector.
//
// The order is the order the classifier is trained on. The extractor and the
// classifier both index through these constants, and persisted classifier
// artifacts record FeatureNames so a reordering is detected at load time.
const (
	FeatureLength = iota
	FeatureDotCount
	FeatureHyphenCount
	FeatureAtCount
	FeatureDoubleSlashCount
	FeatureHasIP
	FeatureInsecureScheme
	FeatureDomainEntropy
	FeatureSuspiciousTLD

	// FeatureCount is the length of FeatureVector.
	FeatureCount
)

// FeatureNames is the canonical feature ordering.
var FeatureNames = [FeatureCount]string{
	FeatureLength:           "length",
	FeatureDotCount:         "dot_count",
	FeatureHyphenCount:      "hyphen_count",
	FeatureAtCount:          "at_count",
	FeatureDoubleSlashCount: "double_slash_count",
	FeatureHasIP:            "has_ip",
	FeatureInsecureScheme:   "insecure_scheme",
	FeatureDomainEntropy:    "domain_entropy",
	FeatureSuspiciousTLD:    "suspicious_tld",
}

// FeatureVector is the lexical feature vector of a URL.
type FeatureVector [FeatureCount]float64

// Get returns the value of the named feature.
func (v FeatureVector) Get(name string) (float64, error) {
	if i := featureIndex(name); i >= 0 {
		return v[i], nil
	}
	return 0, fmt.Errorf("unknown feature %q", name)
}

// Map returns the vector as a name -> value map, mainly for logging and JSON output.
func (v FeatureVector) Map() map[string]float64 {
	m := make(map[string]float64, FeatureCount)
	for i, n := range FeatureNames {
		m[n] = v[i]
	}
	return m
}

// MarshalJSON encodes the vector as a name -> value object.
func (v FeatureVector) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Map())
}

// UnmarshalJSON decodes a name -> value object. Missing features are zero;
// unknown names are an error.
func (v *FeatureVector) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	var out FeatureVector
	for name, val := range m {
		i := featureIndex(name)
		if i < 0 {
			return fmt.Errorf("unknown feature %q", name)
		}
		out[i] = val
	}
	*v = out
	return nil
}

func featureIndex(name string) int {
	for i, n := range FeatureNames {
		if n == name {
			return i
		}
	}
	return -1
}

// SameFeatureOrder reports whether names matches FeatureNames exactly.
func SameFeatureOrder(names []string) bool {
	if len(names) != FeatureCount {
		return false
	}
	for i, n := range names {
		if FeatureNames[i] != n {
			return false
		}
	}
	return true
}

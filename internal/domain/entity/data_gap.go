package entity

// DataGapKind classifies a configuration or data gap found during aggregation.
type DataGapKind string

const (
	GapUnknownDenomination DataGapKind = "unknown_denomination"
	GapUnsupportedNetwork  DataGapKind = "unsupported_network"
	GapUnparseableValue    DataGapKind = "unparseable_value"
)

// DataGap records an input that was omitted from a view. Gaps are diagnostics
// only and are never surfaced to the user as errors.
type DataGap struct {
	Kind         DataGapKind `json:"kind"`
	Denomination string      `json:"denomination"`
	NetworkID    string      `json:"networkId,omitempty" yaml:"networkId,omitempty"`
	Detail       string      `json:"detail,omitempty"`
}

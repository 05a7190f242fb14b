// Package finding defines the results produced by passive response analysis.
package finding

import (
	"time"
)

// SchemaVersion identifies the findings JSON schema version.
const SchemaVersion = "1.0"

// Kind identifies the type of issue a Finding reports.
type Kind string

const (
	Base64Disclosure    Kind = "base64_disclosure"
	ViewStateDisclosure Kind = "viewstate_disclosure"
	ViewStateWithoutMAC Kind = "viewstate_without_mac"
	ViewStateEmails     Kind = "viewstate_emails"
	ViewStateIPAddress  Kind = "viewstate_ip_addresses"
	ViewStateSplit      Kind = "viewstate_split"
	OldASPNetVersion    Kind = "old_aspnet_version"
)

// Plugin identifiers of the rules that raise findings.
const (
	HiddenFieldPluginID = 10032
	Base64PluginID      = 10094
)

// Finding is a single potential vulnerability detected in a response.
type Finding struct {
	PluginID   int        `json:"plugin_id"`
	Kind       Kind       `json:"kind"`
	Name       string     `json:"name"`
	Risk       Risk       `json:"risk"`
	Confidence Confidence `json:"confidence"`
	Evidence   string     `json:"evidence"`
	OtherInfo  string     `json:"other_info,omitempty"`
	CWEID      int        `json:"cwe_id"`
	WASCID     int        `json:"wasc_id"`
}

type template struct {
	pluginID   int
	name       string
	risk       Risk
	confidence Confidence
	cweID      int
	wascID     int
}

var templates = map[Kind]template{
	Base64Disclosure:    {Base64PluginID, "Base64 Disclosure", RiskInfo, ConfidenceMedium, 200, 13},
	ViewStateDisclosure: {Base64PluginID, "ViewState Disclosure", RiskInfo, ConfidenceMedium, 200, 13},
	ViewStateWithoutMAC: {Base64PluginID, "ViewState without MAC Signature", RiskHigh, ConfidenceMedium, 642, 13},
	ViewStateEmails:     {HiddenFieldPluginID, "Emails Found in the ViewState", RiskMedium, ConfidenceMedium, 16, 14},
	ViewStateIPAddress:  {HiddenFieldPluginID, "Potential IP Addresses Found in the ViewState", RiskMedium, ConfidenceMedium, 16, 14},
	ViewStateSplit:      {HiddenFieldPluginID, "Split ViewState in Use", RiskInfo, ConfidenceLow, 16, 14},
	OldASPNetVersion:    {HiddenFieldPluginID, "Old ASP.NET Version in Use", RiskLow, ConfidenceMedium, 16, 14},
}

// New returns a Finding of the given kind, with the fixed attributes of that
// kind filled in. It panics if kind is not one of the constants above.
func New(kind Kind, evidence, otherInfo string) Finding {
	t, ok := templates[kind]
	if !ok {
		panic("finding: unknown kind " + string(kind))
	}
	return Finding{
		PluginID:   t.pluginID,
		Kind:       kind,
		Name:       t.name,
		Risk:       t.risk,
		Confidence: t.confidence,
		Evidence:   evidence,
		OtherInfo:  otherInfo,
		CWEID:      t.cweID,
		WASCID:     t.wascID,
	}
}

// Record is the top-level struct which is serialised to produce findings JSON
// files. This struct should not change unless SchemaVersion is also incremented.
type Record struct {
	SchemaVersion string    `json:"schema_version"`
	URL           string    `json:"url"`
	Created       time.Time `json:"created"`
	Findings      []Finding `json:"findings"`
}

// CreateRecord associates the findings for a response with the URL it was
// fetched from, to produce a Record object that can be serialised.
func CreateRecord(url string, findings []Finding) *Record {
	if findings == nil {
		findings = []Finding{}
	}
	return &Record{
		SchemaVersion: SchemaVersion,
		URL:           url,
		Created:       time.Now().UTC(),
		Findings:      findings,
	}
}

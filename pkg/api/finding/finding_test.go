package finding_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ossf/passive-analysis/pkg/api/finding"
)

func TestNew(t *testing.T) {
	tests := []struct {
		kind       finding.Kind
		pluginID   int
		risk       finding.Risk
		confidence finding.Confidence
		cweID      int
		wascID     int
	}{
		{finding.Base64Disclosure, 10094, finding.RiskInfo, finding.ConfidenceMedium, 200, 13},
		{finding.ViewStateDisclosure, 10094, finding.RiskInfo, finding.ConfidenceMedium, 200, 13},
		{finding.ViewStateWithoutMAC, 10094, finding.RiskHigh, finding.ConfidenceMedium, 642, 13},
		{finding.ViewStateEmails, 10032, finding.RiskMedium, finding.ConfidenceMedium, 16, 14},
		{finding.ViewStateIPAddress, 10032, finding.RiskMedium, finding.ConfidenceMedium, 16, 14},
		{finding.ViewStateSplit, 10032, finding.RiskInfo, finding.ConfidenceLow, 16, 14},
		{finding.OldASPNetVersion, 10032, finding.RiskLow, finding.ConfidenceMedium, 16, 14},
	}
	for _, test := range tests {
		t.Run(string(test.kind), func(t *testing.T) {
			f := finding.New(test.kind, "evidence", "other")
			if f.Kind != test.kind || f.PluginID != test.pluginID || f.Risk != test.risk ||
				f.Confidence != test.confidence || f.CWEID != test.cweID || f.WASCID != test.wascID {
				t.Errorf("New(%v) = %+v", test.kind, f)
			}
			if f.Name == "" {
				t.Errorf("New(%v) has no name", test.kind)
			}
			if f.Evidence != "evidence" || f.OtherInfo != "other" {
				t.Errorf("New(%v) evidence = %q, other info = %q", test.kind, f.Evidence, f.OtherInfo)
			}
		})
	}
}

func TestRiskText(t *testing.T) {
	tests := []struct {
		risk finding.Risk
		want []byte
	}{
		{finding.RiskInfo, []byte("info")},
		{finding.RiskLow, []byte("low")},
		{finding.RiskMedium, []byte("medium")},
		{finding.RiskHigh, []byte("high")},
	}
	for _, test := range tests {
		got, _ := test.risk.MarshalText()
		if !bytes.Equal(got, test.want) {
			t.Errorf("MarshalText() = %s; want %s", got, test.want)
		}
		var parsed finding.Risk
		if err := parsed.UnmarshalText(test.want); err != nil {
			t.Fatalf("UnmarshalText(%s) = %v; want nil", test.want, err)
		}
		if parsed != test.risk {
			t.Errorf("UnmarshalText(%s) parsed %v; want %v", test.want, parsed, test.risk)
		}
	}
}

func TestUnmarshalTextUnknown(t *testing.T) {
	var r finding.Risk
	if err := r.UnmarshalText([]byte("critical")); !errors.Is(err, finding.ErrUnknownLevel) {
		t.Errorf("Risk.UnmarshalText() = %v; want ErrUnknownLevel", err)
	}
	var c finding.Confidence
	if err := c.UnmarshalText([]byte("")); !errors.Is(err, finding.ErrUnknownLevel) {
		t.Errorf("Confidence.UnmarshalText() = %v; want ErrUnknownLevel", err)
	}
}

func TestRecordJSON(t *testing.T) {
	r := finding.CreateRecord("http://example.com/", nil)
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("json.Marshal() = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("json.Unmarshal() = %v", err)
	}
	if decoded["schema_version"] != finding.SchemaVersion {
		t.Errorf("schema_version = %v; want %v", decoded["schema_version"], finding.SchemaVersion)
	}
	if decoded["url"] != "http://example.com/" {
		t.Errorf("url = %v", decoded["url"])
	}
	if findings, ok := decoded["findings"].([]any); !ok || len(findings) != 0 {
		t.Errorf("findings = %v; want empty list", decoded["findings"])
	}
}

func TestFindingJSON(t *testing.T) {
	f := finding.New(finding.ViewStateWithoutMAC, "xml", "")
	b, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("json.Marshal() = %v", err)
	}
	want := `{"plugin_id":10094,"kind":"viewstate_without_mac","name":"ViewState without MAC Signature",` +
		`"risk":"high","confidence":"medium","evidence":"xml","cwe_id":642,"wasc_id":13}`
	if string(b) != want {
		t.Errorf("json.Marshal() = %s; want %s", b, want)
	}
}

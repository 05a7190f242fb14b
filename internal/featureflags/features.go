package featureflags

var (
	// HiddenFieldAnalysis inspects the hidden __VIEWSTATE form fields of HTML
	// responses, reporting split and outdated ViewState and putting split
	// values back together so they can be decoded.
	HiddenFieldAnalysis = new("HiddenFieldAnalysis",
		"analyse hidden ViewState form fields", true)

	// ViewStateContentAnalysis searches the strings inside a page's ViewState
	// for e-mail and IP addresses.
	ViewStateContentAnalysis = new("ViewStateContentAnalysis",
		"report e-mail and IP addresses stored in ViewState", true)

	// ReportDecodedData includes the decoded bytes of Base64 data in the
	// findings raised for it.
	ReportDecodedData = new("ReportDecodedData",
		"include decoded Base64 data in findings", true)

	// PubSubExtender keeps extending the deadline of GCP pubsub messages
	// while the worker scans them. Other drivers are never extended.
	PubSubExtender = new("PubSubExtender",
		"extend GCP pubsub message deadlines during long scans", true)
)

package domain

import dErrors "sigil/pkg/domain-errors"

// DocType is a domain value that classifies a registered document.
// Invariant: the value must be one of the supported document types.
//
// Usage: construct via ParseDocType at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type DocType string

// Supported document types.
const (
	DocTypeDiploma     DocType = "diploma"
	DocTypeCertificate DocType = "certificate"
	DocTypeLicense     DocType = "license"
	DocTypeTranscript  DocType = "transcript"
)

// validDocTypes is the single source of truth for valid document types.
var validDocTypes = map[DocType]bool{
	DocTypeDiploma:     true,
	DocTypeCertificate: true,
	DocTypeLicense:     true,
	DocTypeTranscript:  true,
}

// ParseDocType constructs a DocType from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported;
// no other errors are expected.
func ParseDocType(s string) (DocType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "document type cannot be empty")
	}
	t := DocType(s)
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unsupported document type: "+s)
	}
	return t, nil
}

// IsValid reports whether the document type is on the allowlist.
func (t DocType) IsValid() bool {
	return validDocTypes[t]
}

func (t DocType) String() string {
	return string(t)
}

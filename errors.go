package notary

import "fmt"

// InvalidDocumentTypeError rejects a sign request whose type is outside the
// allowed set. Rejected before any cryptographic work happens.
type InvalidDocumentTypeError struct {
	Type string
}

func (e InvalidDocumentTypeError) Error() string {
	if e.Type == "" {
		return "invalid document type"
	}
	return fmt.Sprintf("invalid document type: %s", e.Type)
}

// Is enables errors.Is matching on InvalidDocumentTypeError.
func (e InvalidDocumentTypeError) Is(target error) bool {
	_, ok := target.(InvalidDocumentTypeError)
	if ok {
		return true
	}
	_, ok = target.(*InvalidDocumentTypeError)
	return ok
}

// ErrInvalidDocumentType is the sentinel error for rejected document types.
var ErrInvalidDocumentType = InvalidDocumentTypeError{}

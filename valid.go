package mscfb

// Validation selects how disagreements between the header, the DIFAT and the
// FAT are treated. Strict turns them into ErrStructural, Permissive records
// them in the Diagnostics and keeps decoding.
type Validation int

const (
	ValidationStrict Validation = iota
	ValidationPermissive
)

func (v Validation) IsStrict() bool {
	return v == ValidationStrict
}

func (v Validation) String() string {
	if v.IsStrict() {
		return "strict"
	}
	return "permissive"
}

// ParseValidation maps "strict" and "permissive" to a Validation. Anything else
// falls back to strict.
func ParseValidation(s string) Validation {
	if s == "permissive" {
		return ValidationPermissive
	}
	return ValidationStrict
}

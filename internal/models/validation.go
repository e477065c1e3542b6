package models

// ValidationError is a blocking field-validation finding.
type ValidationError struct {
	RuleCode string
	Field    string
	Message  string
}

// ValidationWarning is an informational, non-blocking finding.
type ValidationWarning struct {
	RuleCode string
	Field    string
	Message  string
}

// ValidationResult collects the findings for one entity. IsValid reflects
// errors only; warnings never block persistence.
type ValidationResult struct {
	EntityID   string
	EntityType string
	IsValid    bool
	Errors     []ValidationError
	Warnings   []ValidationWarning
}

// AddError appends a blocking finding and marks the result invalid.
func (r *ValidationResult) AddError(code, field, message string) {
	r.Errors = append(r.Errors, ValidationError{RuleCode: code, Field: field, Message: message})
	r.IsValid = false
}

// AddWarning appends a non-blocking finding.
func (r *ValidationResult) AddWarning(code, field, message string) {
	r.Warnings = append(r.Warnings, ValidationWarning{RuleCode: code, Field: field, Message: message})
}

package diagnostic

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"typemapper/internal/common"
)

// Diagnostics holds all diagnostic information from validation.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// TypePair identifies which type mapping this relates to (if any).
	TypePair string
	// FieldPath identifies which member this relates to (if any).
	FieldPath string
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, typePair, fieldPath string) {
	d.Errors = append(d.Errors, newDiagnostic(DiagnosticError, code, message, typePair, fieldPath))
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, typePair, fieldPath string) {
	d.Warnings = append(d.Warnings, newDiagnostic(DiagnosticWarning, code, message, typePair, fieldPath))
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, typePair, fieldPath string) {
	d.Infos = append(d.Infos, newDiagnostic(DiagnosticInfo, code, message, typePair, fieldPath))
}

func newDiagnostic(sev DiagnosticSeverity, code, message, typePair, fieldPath string) Diagnostic {
	return Diagnostic{
		Severity:  sev,
		Code:      code,
		Message:   message,
		TypePair:  typePair,
		FieldPath: fieldPath,
	}
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other *Diagnostics) {
	if other == nil {
		return
	}

	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	var err error
	for _, e := range d.Errors {
		err = multierr.Append(err, fmt.Errorf("%s", e))
	}

	return err
}

// All returns every diagnostic, most severe first. Within a severity the
// order of addition is kept.
func (d *Diagnostics) All() []Diagnostic {
	all := slices.Concat(d.Errors, d.Warnings, d.Infos)

	slices.SortStableFunc(all, func(a, b Diagnostic) int {
		return int(b.Severity) - int(a.Severity)
	})

	return all
}

// WriteTo prints one diagnostic per line.
func (d *Diagnostics) WriteTo(w io.Writer) (int64, error) {
	var total int64

	for _, diag := range d.All() {
		n, err := fmt.Fprintf(w, "%s: %s\n", diag.Severity, diag)
		total += int64(n)

		if err != nil {
			return total, err
		}
	}

	return total, nil
}

// Log writes every diagnostic to logger at the matching level.
func (d *Diagnostics) Log(logger *zap.Logger) {
	for _, diag := range d.All() {
		fields := []zap.Field{zap.String("code", diag.Code)}
		if diag.TypePair != "" {
			fields = append(fields, zap.String("pair", diag.TypePair))
		}

		if diag.FieldPath != "" {
			fields = append(fields, zap.String("member", diag.FieldPath))
		}

		switch diag.Severity {
		case DiagnosticError:
			logger.Error(diag.Message, fields...)
		case DiagnosticWarning:
			logger.Warn(diag.Message, fields...)
		default:
			logger.Info(diag.Message, fields...)
		}
	}
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.TypePair != "" {
		prefix = append(prefix, "["+d.TypePair+"]")
	}

	if d.FieldPath != "" {
		prefix = append(prefix, d.FieldPath)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}

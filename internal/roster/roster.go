// Package roster reads participant records from semicolon-delimited text.
//
// Each non-blank line is either
//
//	email;first_name;last_name;family;category
//
// or the older two-field form
//
//	email;family
//
// which puts everyone in the "default" category and derives the first name
// from the mailbox. The first record fixes the form for the whole roster;
// later lines with a different field count are reported, not reinterpreted.
// Lines starting with '#' are comments.
package roster

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"

	"github.com/VDandavate/Secret-Santa-Generator/internal/participant"
)

// DefaultCategory is assigned to records in the two-field format.
const DefaultCategory = "default"

// ErrInput is matched by every record problem.
var ErrInput = errors.New("roster: invalid input")

// RecordError describes a problem with one input line.
type RecordError struct {
	Line   int
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

func (e *RecordError) Unwrap() error {
	return ErrInput
}

// Report captures every problem found in one roster.
type Report struct {
	Path         string
	Participants int
	Categories   int
	Errors       []error
}

// IsValid reports whether the roster had no problems.
func (r *Report) IsValid() bool {
	return r != nil && len(r.Errors) == 0
}

// Err joins the report's problems into one error, or returns nil.
func (r *Report) Err() error {
	if r.IsValid() {
		return nil
	}
	joined := errors.Join(r.Errors...)
	if r.Path != "" {
		return fmt.Errorf("roster: %s: %d invalid record(s): %w", r.Path, len(r.Errors), joined)
	}
	return fmt.Errorf("roster: %d invalid record(s): %w", len(r.Errors), joined)
}

// Read parses every record from r, collecting problems into the report
// instead of stopping at the first one. The directory only contains the
// records that parsed cleanly; callers must check the report before using it.
func Read(r io.Reader) (participant.Directory, *Report, error) {
	dir := make(participant.Directory)
	report := &Report{}
	firstSeen := make(map[string]int)
	width, widthLine := 0, 0

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := splitRecord(line)
		if width == 0 && (len(fields) == fullFields || len(fields) == legacyFields) {
			width, widthLine = len(fields), lineNo
		}
		if width != 0 && len(fields) != width {
			report.Errors = append(report.Errors, &RecordError{
				Line:   lineNo,
				Reason: fmt.Sprintf("expected %d fields like line %d, got %d", width, widthLine, len(fields)),
			})
			continue
		}
		p, err := parseRecord(fields)
		if err != nil {
			report.Errors = append(report.Errors, &RecordError{Line: lineNo, Reason: err.Error()})
			continue
		}
		if prev, dup := firstSeen[p.ID]; dup {
			report.Errors = append(report.Errors, &RecordError{
				Line:   lineNo,
				Reason: fmt.Sprintf("duplicate email %s (first seen on line %d)", p.ID, prev),
			})
			continue
		}
		firstSeen[p.ID] = lineNo
		dir[p.ID] = p
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("roster: read: %w", err)
	}
	report.Participants = len(dir)
	report.Categories = len(participant.Partition(dir))
	return dir, report, nil
}

// Parse reads a roster and fails on any record problem.
func Parse(r io.Reader) (participant.Directory, error) {
	dir, report, err := Read(r)
	if err != nil {
		return nil, err
	}
	if err := report.Err(); err != nil {
		return nil, err
	}
	return dir, nil
}

// Load reads and validates the roster at path.
func Load(path string) (participant.Directory, error) {
	dir, report, err := ValidateFile(path)
	if err != nil {
		return nil, err
	}
	if err := report.Err(); err != nil {
		return nil, err
	}
	return dir, nil
}

// ValidateFile reads the roster at path and reports every record problem.
// The error is only set when the file itself cannot be read.
func ValidateFile(path string) (participant.Directory, *Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("roster: open %s: %w", path, err)
	}
	defer f.Close()
	dir, report, err := Read(f)
	if err != nil {
		return nil, nil, err
	}
	report.Path = path
	return dir, report, nil
}

const (
	fullFields   = 5
	legacyFields = 2
)

func splitRecord(line string) []string {
	fields := strings.Split(line, ";")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

func parseRecord(fields []string) (participant.Participant, error) {
	var p participant.Participant
	switch len(fields) {
	case fullFields:
		p = participant.Participant{
			ID:        fields[0],
			FirstName: fields[1],
			LastName:  fields[2],
			Family:    fields[3],
			Category:  fields[4],
		}
	case legacyFields:
		p = participant.Participant{
			ID:       fields[0],
			Family:   fields[1],
			Category: DefaultCategory,
		}
		if at := strings.IndexByte(p.ID, '@'); at > 0 {
			p.FirstName = p.ID[:at]
		}
	default:
		return p, fmt.Errorf("expected 5 fields (email;first_name;last_name;family;category) or 2 (email;family), got %d", len(fields))
	}

	var missing []string
	if p.ID == "" {
		missing = append(missing, "email")
	}
	if len(fields) == fullFields && p.FirstName == "" {
		missing = append(missing, "first_name")
	}
	if p.Family == "" {
		missing = append(missing, "family")
	}
	if p.Category == "" {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return p, fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}
	if err := validateEmail(p.ID); err != nil {
		return p, err
	}
	return p, nil
}

func validateEmail(id string) error {
	addr, err := mail.ParseAddress(id)
	if err != nil || addr.Address != id {
		return fmt.Errorf("invalid email %q", id)
	}
	return nil
}

// backend/src/parsers/parser.go
package parsers

import (
	"fmt"
	"io"
	"strings"

	"github.com/username/wheelfolio/backend/src/models"
	"github.com/username/wheelfolio/backend/src/parsers/flex"
)

// Parser converts one broker export document into trade records. Document
// order is preserved; it is not guaranteed chronological.
type Parser interface {
	Parse(file io.Reader, documentName string) ([]models.TradeRecord, error)
}

// GetParser returns the parser registered for a broker source.
func GetParser(source string) (Parser, error) {
	switch strings.ToLower(source) {
	case "ibkr", "flex":
		return flex.NewParser(), nil
	default:
		return nil, fmt.Errorf("no parser registered for source %q", source)
	}
}

// ParseError reports a structurally malformed source document. Malformed
// individual fields degrade to defaults instead; only the whole document
// failing to parse produces this error, and it aborts only that document's
// ingestion.
type ParseError struct {
	Document string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Document, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

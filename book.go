package depositplan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Book is the set of portfolios and the deposit plans distributing cash into them.
type Book struct {
	// Currency is used to render amounts, it plays no role in the allocation.
	Currency   string        `json:"currency,omitempty" yaml:"currency,omitempty"`
	Portfolios []Portfolio   `json:"portfolios" yaml:"portfolios"`
	Plans      []DepositPlan `json:"plans" yaml:"plans"`
}

// Format is a book file format.
type Format string

const (
	YAML Format = "yaml"
	JSON Format = "json"
)

// FormatOf returns the format matching the file extension, YAML by default.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return JSON
	}
	return YAML
}

// Allocate runs the allocation of the deposits with the book's portfolios and plans.
func (b *Book) Allocate(deposits []Deposit) []PortfolioAllocation {
	return Allocate(b.Portfolios, b.Plans, deposits)
}

// Plan returns the plan with the given ID, if any.
func (b *Book) Plan(id string) (DepositPlan, bool) {
	for _, p := range b.Plans {
		if p.ID == id {
			return p, true
		}
	}
	return DepositPlan{}, false
}

// PortfolioName returns the name of the portfolio, or its ID if it has no name.
func (b *Book) PortfolioName(id string) string {
	for _, p := range b.Portfolios {
		if p.ID == id && p.Name != "" {
			return p.Name
		}
	}
	return id
}

// DecodeBook reads a book in the given format.
func DecodeBook(r io.Reader, format Format) (*Book, error) {
	var b Book
	switch format {
	case JSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&b); err != nil {
			return nil, fmt.Errorf("could not decode json book: %w", err)
		}
	case YAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&b); err != nil && err != io.EOF {
			return nil, fmt.Errorf("could not decode yaml book: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported book format %q", format)
	}
	return &b, nil
}

// EncodeBook writes the book in the given format.
func EncodeBook(w io.Writer, b *Book, format Format) error {
	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(b); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported book format %q", format)
}

// LoadBook reads a book file, the format is derived from the file extension.
func LoadBook(path string) (*Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	b, err := DecodeBook(f, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// SaveBook writes the book into a file, the format is derived from the file extension.
func SaveBook(path string, b *Book) error {
	var buf bytes.Buffer
	if err := EncodeBook(&buf, b, FormatOf(path)); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

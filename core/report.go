// Package core parses coverage reports, correlates them with changed files and publishes the result.
package core

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/huangsam/covpost/internal/contract"
	"github.com/huangsam/covpost/schema"
)

// xmlCounter mirrors a <counter> element. Attributes are kept as strings so that
// malformed numbers surface as parse errors with context.
type xmlCounter struct {
	Type    string `xml:"type,attr"`
	Missed  string `xml:"missed,attr"`
	Covered string `xml:"covered,attr"`
}

type xmlClass struct {
	Name           string       `xml:"name,attr"`
	SourceFileName string       `xml:"sourcefilename,attr"`
	Counters       []xmlCounter `xml:"counter"`
}

type xmlPackage struct {
	Name    string     `xml:"name,attr"`
	Classes []xmlClass `xml:"class"`
}

// xmlGroup is the multi-module container; groups may nest.
type xmlGroup struct {
	Name     string       `xml:"name,attr"`
	Groups   []xmlGroup   `xml:"group"`
	Packages []xmlPackage `xml:"package"`
}

type xmlReport struct {
	XMLName  xml.Name     `xml:"report"`
	Name     string       `xml:"name,attr"`
	Groups   []xmlGroup   `xml:"group"`
	Packages []xmlPackage `xml:"package"`
	Counters []xmlCounter `xml:"counter"`
}

// LoadReport opens the report at path and parses it.
func LoadReport(path string) (*schema.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open coverage report: %w", err)
	}
	defer func() { _ = f.Close() }()

	report, err := ParseReport(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return report, nil
}

// ParseReport decodes a coverage report document into the package, class and counter tree.
// Packages nested in groups are flattened into the top-level package list.
func ParseReport(r io.Reader) (*schema.Report, error) {
	var raw xmlReport
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode coverage report: %w", err)
	}

	report := &schema.Report{Name: raw.Name}
	counters, err := convertCounters(raw.Counters, schema.TotalCounterTypes)
	if err != nil {
		return nil, fmt.Errorf("report %q: %w", raw.Name, err)
	}
	report.Counters = counters

	packages := slices.Clone(raw.Packages)
	packages = appendGroupPackages(packages, raw.Groups)
	for _, p := range packages {
		entry := schema.PackageEntry{Name: p.Name}
		for _, c := range p.Classes {
			classCounters, err := convertCounters(c.Counters, schema.ChangedFileCounterTypes)
			if err != nil {
				return nil, fmt.Errorf("class %q: %w", c.Name, err)
			}
			entry.Classes = append(entry.Classes, schema.ClassEntry{
				Name:           c.Name,
				SourceFileName: c.SourceFileName,
				Counters:       classCounters,
			})
		}
		report.Packages = append(report.Packages, entry)
	}
	return report, nil
}

func appendGroupPackages(dst []xmlPackage, groups []xmlGroup) []xmlPackage {
	for _, g := range groups {
		dst = append(dst, g.Packages...)
		dst = appendGroupPackages(dst, g.Groups)
	}
	return dst
}

// convertCounters parses raw counters. Only types in needed must be well formed;
// malformed counters of any other type are dropped since nothing reads them.
func convertCounters(raw []xmlCounter, needed []schema.CounterType) ([]schema.Counter, error) {
	out := make([]schema.Counter, 0, len(raw))
	for _, c := range raw {
		typ := schema.CounterType(strings.TrimSpace(c.Type))
		covered, errCovered := parseCount(c.Covered)
		missed, errMissed := parseCount(c.Missed)
		if errCovered != nil || errMissed != nil {
			if !slices.Contains(needed, typ) {
				contract.Logger.Debug().Str("type", string(typ)).Msg("skipping malformed counter")
				continue
			}
			if errCovered != nil {
				return nil, fmt.Errorf("counter %s covered: %w", c.Type, errCovered)
			}
			return nil, fmt.Errorf("counter %s missed: %w", c.Type, errMissed)
		}
		out = append(out, schema.Counter{Type: typ, Covered: covered, Missed: missed})
	}
	return out, nil
}

func parseCount(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric value %q", s)
	}
	return v, nil
}

// TotalCoverage formats the root-level counters whose type belongs to schema.TotalCounterTypes.
// Rows follow the declared type order; types missing from the report are omitted.
func TotalCoverage(report *schema.Report) []schema.TotalCoverageRow {
	rows := make([]schema.TotalCoverageRow, 0, len(schema.TotalCounterTypes))
	for _, t := range schema.TotalCounterTypes {
		for _, c := range report.Counters {
			if c.Type != t {
				continue
			}
			rows = append(rows, schema.TotalCoverageRow{
				Type:     t,
				Covered:  c.Covered,
				Missed:   c.Missed,
				Coverage: schema.CoveragePercent(c.Covered, c.Missed),
			})
			break
		}
	}
	return rows
}

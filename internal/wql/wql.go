// Package wql builds and parses the query text exchanged with
// instrumentation providers: "SELECT <props|*> FROM <class>".
package wql

import (
	"fmt"
	"strings"
)

// Build produces the query text for a class and an optional property
// list. No properties selects everything:
//
//	Build("Win32_Processor", nil)                  // SELECT * FROM Win32_Processor
//	Build("Win32_Processor", []string{"Name"})     // SELECT Name FROM Win32_Processor
//	Build("Win32_Processor", []string{"A", "B"})   // SELECT A,B FROM Win32_Processor
func Build(class string, properties []string) string {
	if len(properties) == 0 {
		return "SELECT * FROM " + class
	}
	return "SELECT " + strings.Join(properties, ",") + " FROM " + class
}

// Query is the parsed form of a query text.
type Query struct {
	// Class is the object class named after FROM.
	Class string

	// Properties lists the selected property names in query order.
	// Empty means "*" - all declared properties.
	Properties []string
}

// All reports whether the query selects every property.
func (q Query) All() bool {
	return len(q.Properties) == 0
}

// Parse is the inverse of Build, used by the local providers to
// interpret query text. Keywords are matched case-insensitively; class
// and property names keep their case.
func Parse(text string) (Query, error) {
	fields := strings.Fields(text)
	if len(fields) < 4 || !strings.EqualFold(fields[0], "SELECT") {
		return Query{}, fmt.Errorf("malformed query %q", text)
	}

	// Property list may contain spaces around commas; everything between
	// SELECT and FROM belongs to it.
	fromIdx := -1
	for i, f := range fields {
		if i > 0 && strings.EqualFold(f, "FROM") {
			fromIdx = i
			break
		}
	}
	if fromIdx < 0 || fromIdx+1 >= len(fields) {
		return Query{}, fmt.Errorf("malformed query %q: missing FROM clause", text)
	}
	if fromIdx+2 != len(fields) {
		return Query{}, fmt.Errorf("malformed query %q: trailing tokens after class", text)
	}

	q := Query{Class: fields[fromIdx+1]}

	propText := strings.Join(fields[1:fromIdx], "")
	if propText == "" {
		return Query{}, fmt.Errorf("malformed query %q: empty select list", text)
	}
	if propText == "*" {
		return q, nil
	}
	for _, p := range strings.Split(propText, ",") {
		if p == "" {
			return Query{}, fmt.Errorf("malformed query %q: empty property name", text)
		}
		q.Properties = append(q.Properties, p)
	}
	return q, nil
}

// Package serverxml edits server configuration documents. Every function
// takes the current document bytes and returns the new bytes or an
// *EditError; nothing is retained between calls and a failed edit never
// produces output.
package serverxml

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// IndentSpaces is the indentation written after a feature is added.
const IndentSpaces = 2

// Element and attribute names in a server document.
const (
	TagServer         = "server"
	TagFeatureManager = "featureManager"
	TagFeature        = "feature"
	TagHTTPEndpoint   = "httpEndpoint"
	AttrOnError       = "onError"

	attrXMLNSXSI  = "xmlns:xsi"
	attrSchemaLoc = "xsi:noNamespaceSchemaLocation"
	xsiNamespace  = "http://www.w3.org/2001/XMLSchema-instance"
	whitespaceSet = " \t\r\n"
)

// OnErrorValues lists the onError values understood by the server. The editor itself does not
// restrict SetOnError to these.
var OnErrorValues = []string{"FAIL", "WARN", "IGNORE"}

// Kind identifies an edit operation.
type Kind string

// Edit kinds, as recorded in the journal.
const (
	KindAddFeature    Kind = "add"
	KindRemoveFeature Kind = "remove"
	KindSetOnError    Kind = "onError"
	KindSetSchema     Kind = "schema"
)

// Op is a single edit that can be applied to document bytes.
type Op struct {
	Kind Kind
	Arg  string
}

// String returns "kind arg".
func (o Op) String() string {
	return string(o.Kind) + " " + o.Arg
}

// Apply runs the edit against doc.
func (o Op) Apply(doc []byte) ([]byte, error) {
	switch o.Kind {
	case KindAddFeature:
		return AddFeature(doc, o.Arg)
	case KindRemoveFeature:
		return RemoveFeature(doc, o.Arg)
	case KindSetOnError:
		return SetOnError(doc, o.Arg)
	case KindSetSchema:
		return SetSchemaLocation(doc, o.Arg)
	default:
		return nil, fmt.Errorf("unknown edit kind %q", o.Kind)
	}
}

func parse(data []byte, op Kind, target string) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.PreserveCData = true
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, &EditError{Op: op, Target: target, Err: fmt.Errorf("%w: %v", ErrMalformedDocument, err)}
	}
	if doc.Root() == nil {
		return nil, &EditError{Op: op, Target: target, Err: fmt.Errorf("%w: no root element", ErrMalformedDocument)}
	}
	return doc, nil
}

func serialize(doc *etree.Document, op Kind, target string) ([]byte, error) {
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, &EditError{Op: op, Target: target, Err: fmt.Errorf("serializing document: %w", err)}
	}
	return out, nil
}

// findFirst returns the first element named tag in document order.
func findFirst(e *etree.Element, tag string) *etree.Element {
	for _, child := range e.ChildElements() {
		if child.Tag == tag && child.Space == "" {
			return child
		}
		if found := findFirst(child, tag); found != nil {
			return found
		}
	}
	return nil
}

// textContent concatenates all character data below e.
func textContent(e *etree.Element) string {
	var b strings.Builder
	for _, t := range e.Child {
		switch c := t.(type) {
		case *etree.CharData:
			b.WriteString(c.Data)
		case *etree.Element:
			b.WriteString(textContent(c))
		}
	}
	return b.String()
}

func childIndex(parent *etree.Element, t etree.Token) int {
	for i, c := range parent.Child {
		if c == t {
			return i
		}
	}
	return -1
}

func isBlank(t etree.Token) bool {
	cd, ok := t.(*etree.CharData)
	return ok && strings.Trim(cd.Data, whitespaceSet) == ""
}

// stripBlankText removes every whitespace-only text node below e.
func stripBlankText(e *etree.Element) {
	for i := len(e.Child) - 1; i >= 0; i-- {
		t := e.Child[i]
		if isBlank(t) {
			e.RemoveChildAt(i)
			continue
		}
		if child, ok := t.(*etree.Element); ok {
			stripBlankText(child)
		}
	}
}

func declaredFeatures(fm *etree.Element) []*etree.Element {
	var out []*etree.Element
	for _, child := range fm.ChildElements() {
		if child.Tag == TagFeature {
			out = append(out, child)
		}
	}
	return out
}

// Features returns the feature ids declared in the featureManager element,
// in document order.
func Features(data []byte) ([]string, error) {
	doc, err := parse(data, "features", "")
	if err != nil {
		return nil, err
	}
	fm := findFirst(&doc.Element, TagFeatureManager)
	if fm == nil {
		return nil, &EditError{Op: "features", Err: ErrMissingContainer}
	}
	var ids []string
	for _, el := range declaredFeatures(fm) {
		ids = append(ids, textContent(el))
	}
	return ids, nil
}

// AddFeature appends a feature declaration for id to featureManager. If id
// is already declared, data is returned unchanged. Otherwise every
// whitespace-only text node is dropped and the document is re-indented.
func AddFeature(data []byte, id string) ([]byte, error) {
	doc, err := parse(data, KindAddFeature, id)
	if err != nil {
		return nil, err
	}
	fm := findFirst(&doc.Element, TagFeatureManager)
	if fm == nil {
		return nil, &EditError{Op: KindAddFeature, Target: id, Err: ErrMissingContainer}
	}

	for _, el := range declaredFeatures(fm) {
		if textContent(el) == id {
			return data, nil
		}
	}

	fm.CreateElement(TagFeature).SetText(id)

	stripBlankText(&doc.Element)
	doc.Indent(IndentSpaces)
	return serialize(doc, KindAddFeature, id)
}

// RemoveFeature deletes the feature declaration whose text equals id,
// together with the whitespace node directly before it. The document is not
// re-indented; the remaining layout is written back as it was read.
func RemoveFeature(data []byte, id string) ([]byte, error) {
	doc, err := parse(data, KindRemoveFeature, id)
	if err != nil {
		return nil, err
	}
	fm := findFirst(&doc.Element, TagFeatureManager)
	if fm == nil {
		return nil, &EditError{Op: KindRemoveFeature, Target: id, Err: ErrMissingContainer}
	}

	var match *etree.Element
	for _, el := range declaredFeatures(fm) {
		if textContent(el) == id {
			match = el
			break
		}
	}
	if match == nil {
		return nil, &EditError{Op: KindRemoveFeature, Target: id, Err: ErrFeatureNotFound}
	}

	idx := childIndex(fm, match)
	fm.RemoveChildAt(idx)
	if idx > 0 && isBlank(fm.Child[idx-1]) {
		fm.RemoveChildAt(idx - 1)
	}

	return serialize(doc, KindRemoveFeature, id)
}

// OnError returns the onError attribute of the first httpEndpoint element,
// or "" when the attribute is not set.
func OnError(data []byte) (string, error) {
	doc, err := parse(data, KindSetOnError, "")
	if err != nil {
		return "", err
	}
	ep := findFirst(&doc.Element, TagHTTPEndpoint)
	if ep == nil {
		return "", &EditError{Op: KindSetOnError, Err: fmt.Errorf("%w: %s", ErrMissingElement, TagHTTPEndpoint)}
	}
	return ep.SelectAttrValue(AttrOnError, ""), nil
}

// SetOnError sets the onError attribute of the first httpEndpoint element.
// Like RemoveFeature it keeps the existing layout.
func SetOnError(data []byte, value string) ([]byte, error) {
	doc, err := parse(data, KindSetOnError, value)
	if err != nil {
		return nil, err
	}
	ep := findFirst(&doc.Element, TagHTTPEndpoint)
	if ep == nil {
		return nil, &EditError{Op: KindSetOnError, Target: value, Err: fmt.Errorf("%w: %s", ErrMissingElement, TagHTTPEndpoint)}
	}
	ep.CreateAttr(AttrOnError, value)
	return serialize(doc, KindSetOnError, value)
}

// SetSchemaLocation points the root element at an XSD so editors can offer
// completion. Attributes already present are left alone; when nothing
// changes data is returned unchanged.
func SetSchemaLocation(data []byte, xsdPath string) ([]byte, error) {
	doc, err := parse(data, KindSetSchema, xsdPath)
	if err != nil {
		return nil, err
	}
	root := doc.Root()
	changed := false
	if root.SelectAttr(attrXMLNSXSI) == nil {
		root.CreateAttr(attrXMLNSXSI, xsiNamespace)
		changed = true
	}
	if root.SelectAttr(attrSchemaLoc) == nil {
		root.CreateAttr(attrSchemaLoc, xsdPath)
		changed = true
	}
	if !changed {
		return data, nil
	}
	return serialize(doc, KindSetSchema, xsdPath)
}

// Package scope classifies and renders assistant replies. The backend
// returns free-form text that may be a serialized work-scope document;
// classification decides once, and rendering switches over the result.
package scope

import (
	"encoding/json"
	"sort"
	"strings"
)

// Kind identifies which render variant applies to a reply.
type Kind int

const (
	// KindPlain is unparseable content rendered verbatim.
	KindPlain Kind = iota
	// KindStructured is a JSON object with no recognized field set.
	KindStructured
	// KindTechStack is a JSON object carrying only a tech-stack breakdown.
	KindTechStack
	// KindWorkScope is a full work-scope document.
	KindWorkScope
)

// Section is one ordered section of a work-scope document.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// EffortTable is the effort-estimation table of a work-scope document.
type EffortTable struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Document is the structured work-scope deliverable.
type Document struct {
	Overview         string            `json:"overview"`
	Sections         []Section         `json:"sections"`
	TechStack        map[string]string `json:"tech_stack"`
	EffortTable      *EffortTable      `json:"effort_estimation_table"`
	FollowUpQuestion string            `json:"follow_up_question"`
}

// Field is one key/value pair of a generic structured reply.
type Field struct {
	Key   string
	Value string
}

// Rendering is the tagged union produced by Classify. Exactly one of
// Doc, Fields or Text is meaningful, selected by Kind.
type Rendering struct {
	Kind   Kind
	Doc    *Document
	Fields []Field
	Text   string
}

// Classify decodes content once and picks a render variant:
//
//   - JSON object with "overview" and "effort_estimation_table" fields:
//     work-scope document.
//   - JSON object with a "tech_stack" field: tech-stack breakdown.
//   - any other JSON object: generic structured dump, keys sorted.
//   - anything else: plain text.
//
// followUp is the response's trailing follow-up question. It joins the
// parsed document when decoding succeeded, and is concatenated after
// the text otherwise.
func Classify(content, followUp string) Rendering {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &raw); err != nil || raw == nil {
		text := content
		if followUp != "" {
			text = strings.TrimRight(text, "\n") + "\n\n" + followUp
		}
		return Rendering{Kind: KindPlain, Text: text}
	}

	_, hasOverview := raw["overview"]
	_, hasEffort := raw["effort_estimation_table"]
	_, hasStack := raw["tech_stack"]

	if (hasOverview && hasEffort) || hasStack {
		var doc Document
		if err := json.Unmarshal([]byte(content), &doc); err == nil {
			if followUp != "" {
				doc.FollowUpQuestion = followUp
			}
			kind := KindWorkScope
			if !(hasOverview && hasEffort) {
				kind = KindTechStack
			}
			return Rendering{Kind: kind, Doc: &doc}
		}
		// Recognized fields with the wrong types fall through to the
		// generic dump.
	}

	return Rendering{Kind: KindStructured, Fields: dumpFields(raw, followUp)}
}

// dumpFields flattens a JSON object into sorted key/value pairs.
func dumpFields(raw map[string]json.RawMessage, followUp string) []Field {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]Field, 0, len(keys)+1)
	for _, k := range keys {
		fields = append(fields, Field{Key: k, Value: fieldValue(raw[k])})
	}
	if followUp != "" {
		fields = append(fields, Field{Key: "follow_up_question", Value: followUp})
	}
	return fields
}

// MergeFollowUp folds a response's trailing follow-up question into the
// content before it is persisted, so a message carries everything needed
// to render it. A JSON object gets a follow_up_question field; anything
// else gets the question concatenated after a blank line.
func MergeFollowUp(content, followUp string) string {
	if followUp == "" {
		return content
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &raw); err != nil || raw == nil {
		return strings.TrimRight(content, "\n") + "\n\n" + followUp
	}

	q, err := json.Marshal(followUp)
	if err != nil {
		return content
	}
	raw["follow_up_question"] = q

	merged, err := json.Marshal(raw)
	if err != nil {
		return content
	}
	return string(merged)
}

// fieldValue renders a raw JSON value for display: strings lose their
// quotes, everything else stays compact JSON.
func fieldValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

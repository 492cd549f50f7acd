// Package content turns a model-produced content description into slide
// records.
//
// The payload is expected to hold a JSON array of records but frequently
// arrives wrapped in prose or markdown fences, or with small syntax slips.
// Parse tries a fixed list of strategies and keeps the first that yields an
// array. Records are decoded without a schema: every field keeps its raw JSON
// shape and object members keep their source order, so the assembler can
// coerce each field on its own and report what it could not use.
package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Strategy names, in the order they are tried.
const (
	StrategyWhole                = "whole"
	StrategyBracketSlice         = "bracket_slice"
	StrategyBracketSliceRepaired = "bracket_slice_repaired"
)

var (
	errNotArray   = errors.New("payload is not a JSON array")
	errNoBrackets = errors.New("payload has no [...] span")
	errNotRecords = errors.New("repaired payload is not a non-empty array of objects")
)

// Attempt records why one strategy failed.
type Attempt struct {
	Strategy string
	Err      error
}

// ContentParseError is returned when no strategy produced a JSON array.
type ContentParseError struct {
	Payload  string
	Attempts []Attempt
	Err      error
}

func (e *ContentParseError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Strategy, a.Err))
	}
	return "content description is not a JSON array of records (" + strings.Join(parts, "; ") + ")"
}

func (e *ContentParseError) Unwrap() error { return e.Err }

// Parsed is a successfully interpreted content description.
type Parsed struct {
	Records  []Record
	Strategy string
}

type strategy struct {
	name    string
	extract func(payload string) (string, error)
	accept  func(records []Record) error // optional check on decoded records
}

var strategies = []strategy{
	{name: StrategyWhole, extract: func(p string) (string, error) { return p, nil }},
	{name: StrategyBracketSlice, extract: bracketSlice},
	{
		name: StrategyBracketSliceRepaired,
		extract: func(p string) (string, error) {
			s, err := bracketSlice(p)
			if err != nil {
				return "", err
			}
			return jsonrepair.JSONRepair(s)
		},
		// Repair turns bracketed prose into an array of strings, so only
		// arrays of objects count as records here.
		accept: allObjects,
	},
}

func allObjects(records []Record) error {
	if len(records) == 0 {
		return errNotRecords
	}
	for _, r := range records {
		if _, ok := r.Value.(Object); !ok {
			return errNotRecords
		}
	}
	return nil
}

// bracketSlice returns the text from the first '[' to the last ']'.
func bracketSlice(payload string) (string, error) {
	start := strings.IndexByte(payload, '[')
	end := strings.LastIndexByte(payload, ']')
	if start < 0 || end < start {
		return "", errNoBrackets
	}
	return payload[start : end+1], nil
}

// Parse interprets payload as a sequence of records.
func Parse(payload string) (*Parsed, error) {
	perr := &ContentParseError{Payload: payload}
	for _, s := range strategies {
		text, err := s.extract(payload)
		if err == nil {
			var records []Record
			records, err = decodeRecords(text)
			if err == nil && s.accept != nil {
				err = s.accept(records)
			}
			if err == nil {
				return &Parsed{Records: records, Strategy: s.name}, nil
			}
		}
		perr.Attempts = append(perr.Attempts, Attempt{Strategy: s.name, Err: err})
		perr.Err = err
	}
	return nil, perr
}

func decodeRecords(text string) ([]Record, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, errNotArray
	}

	records := make([]Record, len(arr))
	for i, item := range arr {
		records[i] = newRecord(item)
	}
	return records, nil
}

// Member is one key/value pair of a JSON object.
type Member struct {
	Key   string
	Value any
}

// Object is a JSON object with its members in source order. Repeated keys are
// all kept.
type Object []Member

// Get returns the value of the last member named key.
func (o Object) Get(key string) (any, bool) {
	for i := len(o) - 1; i >= 0; i-- {
		if o[i].Key == key {
			return o[i].Value, true
		}
	}
	return nil, false
}

// MarshalJSON keeps member order.
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := compactJSON(m.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := compactJSON(m.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// decodeValue reads one JSON value. Objects become Object, arrays []any,
// numbers json.Number.
func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		obj := Object{}
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := kt.(string)
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj = append(obj, Member{Key: key, Value: v})
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := []any{}
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected %q", delim)
	}
}

package store

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidCursor = errors.New("invalid cursor token")

// Cursor references the last document of a page. It is only valid for the
// query scope it was minted under.
type Cursor struct {
	scope string
	id    string
	value any
}

// ID is the id of the last document of the page the cursor continues.
func (c *Cursor) ID() string { return c.id }

// Value is the order-field value of that document, nil for unordered queries.
func (c *Cursor) Value() any { return c.value }

type cursorToken struct {
	Scope string          `json:"s"`
	ID    string          `json:"i"`
	Kind  string          `json:"k,omitempty"`
	Value json.RawMessage `json:"v,omitempty"`
}

// Encode renders the cursor as an opaque URL-safe token.
func (c *Cursor) Encode() string {
	tok := cursorToken{Scope: c.scope, ID: c.id}
	switch v := c.value.(type) {
	case nil:
	case time.Time:
		tok.Kind = "t"
		tok.Value, _ = json.Marshal(FormatTime(v))
	case string:
		tok.Kind = "s"
		tok.Value, _ = json.Marshal(v)
	case bool:
		tok.Kind = "b"
		tok.Value, _ = json.Marshal(v)
	default:
		if n, ok := toFloat(v); ok {
			tok.Kind = "n"
			tok.Value, _ = json.Marshal(n)
		}
	}
	raw, _ := json.Marshal(tok)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor parses a token produced by Encode. An empty token yields a nil cursor.
func DecodeCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	var tok cursorToken
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if tok.Scope == "" || tok.ID == "" {
		return nil, ErrInvalidCursor
	}

	c := &Cursor{scope: tok.Scope, id: tok.ID}
	switch tok.Kind {
	case "":
	case "t":
		var s string
		if err := json.Unmarshal(tok.Value, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
		}
		t, ok := ParseTime(s)
		if !ok {
			return nil, fmt.Errorf("%w: bad time %q", ErrInvalidCursor, s)
		}
		c.value = t
	case "s":
		var s string
		if err := json.Unmarshal(tok.Value, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
		}
		c.value = s
	case "b":
		var b bool
		if err := json.Unmarshal(tok.Value, &b); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
		}
		c.value = b
	case "n":
		var n float64
		if err := json.Unmarshal(tok.Value, &n); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
		}
		c.value = n
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidCursor, tok.Kind)
	}
	return c, nil
}

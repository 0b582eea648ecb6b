package neomap

import (
	"fmt"
	"strings"
)

// tagName is the struct tag key read by the descriptor builder.
const tagName = "neo"

// Direction is the side of a relationship the owning node sits on.
type Direction int

const (
	// Outgoing follows edges that start at the owning node.
	Outgoing Direction = iota + 1
	// Incoming follows edges that end at the owning node.
	Incoming
)

func (d Direction) String() string {
	switch d {
	case Outgoing:
		return "out"
	case Incoming:
		return "in"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

func parseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "", "out", "outgoing":
		return Outgoing, nil
	case "in", "incoming":
		return Incoming, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

// tagOptions holds the parsed parts of a single `neo` struct tag.
type tagOptions struct {
	// type level, only valid on the blank marker field
	labels    []string
	projected bool

	property    string
	labelsField bool
	target      bool

	relType   string
	direction Direction
	hasDir    bool

	projection string
	key        string
	matchOn    string
}

// kinds counts how many field kinds the tag selects; a field may have one.
func (o tagOptions) kinds() int {
	n := 0
	for _, set := range []bool{o.property != "", o.labelsField, o.target, o.relType != "", o.projection != ""} {
		if set {
			n++
		}
	}
	return n
}

// parseTag splits a `neo` tag such as "rel:ACTED_IN,dir:out" into its parts.
func parseTag(tag string) (tagOptions, error) {
	var opts tagOptions
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		name, value, hasValue := strings.Cut(part, ":")
		if hasValue && value == "" {
			return opts, fmt.Errorf("%w: empty value in %q", ErrInvalidTag, part)
		}

		switch name {
		case "node":
			if !hasValue {
				return opts, fmt.Errorf("%w: node needs a label", ErrInvalidTag)
			}
			opts.labels = append(opts.labels, value)
		case "projected":
			opts.projected = true
		case "property":
			if !hasValue {
				return opts, fmt.Errorf("%w: property needs a key", ErrInvalidTag)
			}
			opts.property = value
		case "labels":
			opts.labelsField = true
		case "target":
			opts.target = true
		case "rel":
			if !hasValue {
				return opts, fmt.Errorf("%w: rel needs a type", ErrInvalidTag)
			}
			opts.relType = value
		case "dir":
			dir, err := parseDirection(value)
			if err != nil {
				return opts, err
			}
			opts.direction = dir
			opts.hasDir = true
		case "projection":
			if !hasValue {
				return opts, fmt.Errorf("%w: projection needs a name", ErrInvalidTag)
			}
			opts.projection = value
		case "key":
			opts.key = value
		case "matchOn":
			opts.matchOn = value
		default:
			return opts, fmt.Errorf("%w: unknown option %q", ErrInvalidTag, part)
		}
	}

	if opts.hasDir && opts.relType == "" {
		return opts, fmt.Errorf("%w: dir without rel", ErrInvalidTag)
	}
	if opts.relType != "" && !opts.hasDir {
		opts.direction = Outgoing
	}
	if (opts.key != "" || opts.matchOn != "") && opts.projection == "" {
		return opts, fmt.Errorf("%w: key and matchOn need a projection", ErrInvalidTag)
	}
	if (opts.key == "") != (opts.matchOn == "") {
		return opts, fmt.Errorf("%w: projection %q sets only one of key and matchOn", ErrInvalidTag, opts.projection)
	}
	if opts.kinds() > 1 {
		return opts, fmt.Errorf("%w: %q maps a field more than one way", ErrInvalidTag, tag)
	}
	return opts, nil
}

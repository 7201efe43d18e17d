// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package jsonschema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMaxDepth is returned when resolving a reference requires following
// more nested references or documents than ResolveOptions.MaxDepth allows.
var ErrMaxDepth = errors.New("maximum reference depth exceeded")

// A CyclicReferenceError reports a chain of references that never reaches
// a schema with concrete content.
type CyclicReferenceError struct {
	Refs []string // the $ref values along the chain, in order
}

func (e *CyclicReferenceError) Error() string {
	return fmt.Sprintf("cyclic reference: %s", strings.Join(e.Refs, " -> "))
}

// A ReferenceNotFoundError reports a JSON pointer segment that does not
// exist in the target document.
type ReferenceNotFoundError struct {
	Ref      string // the reference as written
	Document string // the document the reference was found in
	Segment  string // the first pointer segment that could not be followed
}

func (e *ReferenceNotFoundError) Error() string {
	doc := e.Document
	if doc == "" {
		doc = "root document"
	}
	return fmt.Sprintf("reference %q in %s not found: no %q", e.Ref, doc, e.Segment)
}

// An UnresolvedReferenceError is returned when a schema with a $ref is used
// before the reference was resolved with a [Resolver].
type UnresolvedReferenceError struct {
	Ref string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("reference %q has not been resolved", e.Ref)
}
